// Package dateinfer recovers a document date from extracted metadata and
// text. Every candidate carries a confidence score; metadata tags outrank
// textual matches, explicit formulas ("fait le 15 mars 2019") outrank loose
// ones, and a bare year is barely better than nothing.
package dateinfer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"reclaim/internal/extraction"
	"reclaim/internal/services/exiftool"
	"reclaim/internal/textutil"
)

// Options configures an Inferencer.
type Options struct {
	// Locales selects month-name tables, e.g. "fr", "en".
	Locales []string
	// MonthOverrides adds or replaces whole locale tables (twelve names,
	// January first).
	MonthOverrides map[string][]string
	// MinYear rejects earlier candidates as noise.
	MinYear int
	// MaxDate rejects later candidates. Zero means no upper bound.
	MaxDate time.Time
}

// Inferencer scans metadata and text for date candidates.
type Inferencer struct {
	months  *monthMatcher
	minYear int
	maxDate time.Time

	explicitName *regexp.Regexp
	explicitNum  *regexp.Regexp
	labelName    *regexp.Regexp
	labelNum     *regexp.Regexp
	fullName     *regexp.Regexp
	fullNum      *regexp.Regexp
	monthYear    *regexp.Regexp
	compact      *regexp.Regexp
	yearOnly     *regexp.Regexp
}

func New(opts Options) (*Inferencer, error) {
	if len(opts.Locales) == 0 {
		opts.Locales = []string{"fr", "en"}
	}
	months, err := newMonthMatcher(opts.Locales, opts.MonthOverrides)
	if err != nil {
		return nil, err
	}

	nameDate := `(\d{1,2})(?:er)?\s+(` + months.pattern + `)\s+((?:19|20)\d{2})`
	numDate := `(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})`

	in := &Inferencer{
		months:  months,
		minYear: opts.MinYear,
		maxDate: opts.MaxDate,

		explicitName: regexp.MustCompile(`(?:fait|signe|etabli|donne|,|^)\s*le\s+` + nameDate),
		explicitNum:  regexp.MustCompile(`(?:fait|signe|etabli|donne|,|^)\s*le\s+` + numDate),
		labelName:    regexp.MustCompile(`date\s*(?:du|de|:)\s*:?\s*` + nameDate),
		labelNum:     regexp.MustCompile(`date\s*(?:du|de|:)\s*:?\s*` + numDate),
		fullName:     regexp.MustCompile(`\b` + nameDate + `\b`),
		fullNum:      regexp.MustCompile(`\b` + numDate + `\b`),
		monthYear:    regexp.MustCompile(`\b(` + months.pattern + `)\s+((?:19|20)\d{2})\b`),
		compact:      regexp.MustCompile(`(?:^|[^0-9])((?:19|20)\d{2})(\d{2})(\d{2})(?:[^0-9]|$)`),
		yearOnly:     regexp.MustCompile(`\b((?:19|20)\d{2})\b`),
	}
	return in, nil
}

// metadataDateTags is exiftool.DateTags with group prefixes stripped and
// duplicates removed, matching the keys the metadata reader returns.
func metadataDateTags() []string {
	seen := make(map[string]bool)
	tags := make([]string, 0, len(exiftool.DateTags))
	for _, tag := range exiftool.DateTags {
		if idx := strings.LastIndex(tag, ":"); idx >= 0 {
			tag = tag[idx+1:]
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

var metadataLayouts = []string{
	"2006:01:02",
	"2006-01-02",
	"2006:01:02 15:04:05",
	"02/01/2006",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006",
	"2006",
}

// Infer combines all sources: metadata first, then text, then the file
// modification time as a last resort.
func (in *Inferencer) Infer(result *extraction.Result, modTime time.Time) Candidate {
	best := in.FromMetadata(result.Metadata)
	if text := in.FromText(result.Lines); better(text, best) {
		best = text
	}
	if best.Valid() {
		return best
	}
	if !modTime.IsZero() {
		c := Candidate{
			Year:   modTime.Year(),
			Month:  int(modTime.Month()),
			Day:    modTime.Day(),
			Source: "mtime",
			Score:  ScoreModTime,
		}
		if in.inRange(c) {
			return c
		}
	}
	return Candidate{}
}

// FromMetadata walks the date tags in priority order and returns the first
// parseable, plausible value.
func (in *Inferencer) FromMetadata(meta map[string]string) Candidate {
	for _, tag := range metadataDateTags() {
		value := strings.TrimSpace(meta[tag])
		if value == "" {
			continue
		}
		for _, layout := range metadataLayouts {
			parsed, err := time.Parse(layout, value)
			if err != nil {
				continue
			}
			c := Candidate{
				Year:   parsed.Year(),
				Source: "metadata:" + tag,
				Score:  ScoreMetadata,
			}
			if layout != "2006" {
				c.Month = int(parsed.Month())
				c.Day = parsed.Day()
			}
			if in.inRange(c) {
				return c
			}
			break
		}
	}
	return Candidate{}
}

// FromText scans lines in document order and returns the best candidate.
// Ties go to the earlier match.
func (in *Inferencer) FromText(lines []string) Candidate {
	var best Candidate
	for i, raw := range lines {
		line := textutil.FoldAccents(strings.ToLower(raw))
		for _, c := range in.scanLine(line) {
			c.Source = fmt.Sprintf("%s (line %d)", c.Source, i+1)
			if better(c, best) {
				best = c
			}
		}
		if best.Score >= ScoreExplicit {
			break
		}
	}
	return best
}

func (in *Inferencer) scanLine(line string) []Candidate {
	var out []Candidate
	add := func(c Candidate, source string, score int) {
		c.Source = source
		c.Score = score
		if in.inRange(c) {
			out = append(out, c)
		}
	}

	for _, m := range in.explicitName.FindAllStringSubmatch(line, -1) {
		if c, ok := in.nameCandidate(m[1], m[2], m[3]); ok {
			add(c, "text:explicit", ScoreExplicit)
		}
	}
	for _, m := range in.explicitNum.FindAllStringSubmatch(line, -1) {
		if c, ok := in.numCandidate(m[1], m[2], m[3]); ok {
			add(c, "text:explicit", ScoreExplicit)
		}
	}
	for _, m := range in.labelName.FindAllStringSubmatch(line, -1) {
		if c, ok := in.nameCandidate(m[1], m[2], m[3]); ok {
			add(c, "text:date-label", ScoreExplicit)
		}
	}
	for _, m := range in.labelNum.FindAllStringSubmatch(line, -1) {
		if c, ok := in.numCandidate(m[1], m[2], m[3]); ok {
			add(c, "text:date-label", ScoreExplicit)
		}
	}
	for _, m := range in.fullName.FindAllStringSubmatch(line, -1) {
		if c, ok := in.nameCandidate(m[1], m[2], m[3]); ok {
			add(c, "text:full-date", ScoreFullDate)
		}
	}
	for _, m := range in.fullNum.FindAllStringSubmatch(line, -1) {
		if c, ok := in.numCandidate(m[1], m[2], m[3]); ok {
			add(c, "text:full-date", ScoreFullDate)
		}
	}
	for _, m := range in.monthYear.FindAllStringSubmatch(line, -1) {
		if month, ok := in.months.month(m[1]); ok {
			add(Candidate{Year: atoi(m[2]), Month: month}, "text:month-year", ScorePartial)
		}
	}
	for _, m := range in.compact.FindAllStringSubmatch(line, -1) {
		c := Candidate{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
		if validMonthDay(c.Month, c.Day) {
			add(c, "text:compact", ScorePartial)
		}
	}
	for _, m := range in.yearOnly.FindAllStringSubmatch(line, -1) {
		add(Candidate{Year: atoi(m[1])}, "text:year", ScoreYearOnly)
	}
	return out
}

func (in *Inferencer) nameCandidate(day, month, year string) (Candidate, bool) {
	m, ok := in.months.month(month)
	if !ok {
		return Candidate{}, false
	}
	d := atoi(day)
	if d < 1 || d > 31 {
		return Candidate{}, false
	}
	return Candidate{Year: atoi(year), Month: m, Day: d}, true
}

// numCandidate reads day-first numeric dates, the dominant convention in
// the corpus this tool targets.
func (in *Inferencer) numCandidate(day, month, year string) (Candidate, bool) {
	c := Candidate{Year: in.normalizeYear(atoi(year)), Month: atoi(month), Day: atoi(day)}
	if !validMonthDay(c.Month, c.Day) {
		return Candidate{}, false
	}
	return c, true
}

// normalizeYear completes two-digit years, preferring the interpretation
// that does not land in the future.
func (in *Inferencer) normalizeYear(y int) int {
	if y >= 100 {
		return y
	}
	y += 2000
	if !in.maxDate.IsZero() && y > in.maxDate.Year() {
		y -= 100
	}
	return y
}

func (in *Inferencer) inRange(c Candidate) bool {
	if c.Year <= 0 || (in.minYear > 0 && c.Year < in.minYear) {
		return false
	}
	if in.maxDate.IsZero() {
		return true
	}
	month, day := c.Month, c.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	earliest := time.Date(c.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return !earliest.After(in.maxDate)
}

func validMonthDay(month, day int) bool {
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
