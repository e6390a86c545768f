// Package titleinfer recovers a human-readable title for a recovered file.
// Embedded metadata wins when present; otherwise the first lines of the
// extracted text are cleaned, filtered against boilerplate, and accumulated
// until they carry enough substance to name the file.
package titleinfer

import (
	"regexp"
	"strings"

	"reclaim/internal/extraction"
	"reclaim/internal/textutil"
)

const (
	// defaultScanWindow bounds how many candidate lines are considered.
	defaultScanWindow = 12
	// singleLineChars is the density at which one line suffices as a title.
	singleLineChars = 40
	// accumulatedChars is the density at which accumulated lines stop.
	accumulatedChars = 50
	// minLineChars rejects fragments too short to contribute.
	minLineChars = 4
	// maxDigitRatio rejects lines and stems that are mostly numbers.
	maxDigitRatio = 0.5
	// boilerplateThreshold is the cosine similarity above which a line is
	// considered boilerplate and skipped.
	boilerplateThreshold = 0.8
	// minMetadataTitle rejects degenerate embedded titles.
	minMetadataTitle = 3
)

// defaultBoilerplate lists phrases that frequently open documents without
// describing them. Configured phrases are added on top.
var defaultBoilerplate = []string{
	"microsoft word",
	"untitled document",
	"sans titre",
	"document numerise",
	"scanned document",
	"nouveau document",
}

// Title is an inferred document title and where it came from.
type Title struct {
	Text   string
	Source string
}

// Found reports whether inference produced anything usable.
func (t Title) Found() bool {
	return t.Text != ""
}

// Options configures an Inferencer.
type Options struct {
	ScanWindow  int
	Boilerplate []string
}

// Inferencer extracts titles from extraction results.
type Inferencer struct {
	window      int
	boilerplate []*textutil.Fingerprint
}

func New(opts Options) *Inferencer {
	window := opts.ScanWindow
	if window <= 0 {
		window = defaultScanWindow
	}
	phrases := append(append([]string{}, defaultBoilerplate...), opts.Boilerplate...)
	fingerprints := make([]*textutil.Fingerprint, 0, len(phrases))
	for _, phrase := range phrases {
		if fp := textutil.NewFingerprint(phrase); fp != nil {
			fingerprints = append(fingerprints, fp)
		}
	}
	return &Inferencer{window: window, boilerplate: fingerprints}
}

// Infer returns the best title for result. originalStem is the recovered
// filename without extension; it is used as a last resort when it does not
// look like a carving artifact.
func (in *Inferencer) Infer(result *extraction.Result, originalStem string) Title {
	if title := in.fromMetadata(result); title.Found() {
		return title
	}
	if title := in.fromText(result.Lines); title.Found() {
		return title
	}
	if title := in.fromYearLine(result.Lines); title.Found() {
		return title
	}
	if stem := strings.TrimSpace(originalStem); stem != "" && textutil.DigitRatio(stem) < maxDigitRatio {
		return Title{Text: stem, Source: "stem"}
	}
	return Title{}
}

func (in *Inferencer) fromMetadata(result *extraction.Result) Title {
	title := strings.TrimSpace(result.Tag("Title"))
	if len(title) < minMetadataTitle || textutil.DigitRatio(title) > maxDigitRatio || in.isBoilerplate(title) {
		return Title{}
	}
	author := strings.TrimSpace(result.Tag("Author"))
	if author == "" {
		author = strings.TrimSpace(result.Tag("Creator"))
	}
	if author != "" && len(author) >= minMetadataTitle &&
		textutil.DigitRatio(author) < maxDigitRatio &&
		!strings.Contains(strings.ToLower(title), strings.ToLower(author)) {
		title = author + " " + title
	}
	return Title{Text: title, Source: "metadata"}
}

// fromText scans the first usable lines. A single dense line wins outright;
// otherwise lines accumulate until they carry enough substance together.
func (in *Inferencer) fromText(lines []string) Title {
	var parts []string
	accumulated := 0
	seen := 0
	for _, raw := range lines {
		line := textutil.CleanLine(raw)
		if line == "" {
			continue
		}
		seen++
		if seen > in.window {
			break
		}
		chars := textutil.WordCharCount(line)
		if chars < minLineChars || textutil.DigitRatio(line) > maxDigitRatio || in.isBoilerplate(line) {
			continue
		}
		if chars > singleLineChars && len(parts) == 0 {
			return Title{Text: line, Source: "text"}
		}
		parts = append(parts, line)
		accumulated += chars
		if accumulated > accumulatedChars {
			break
		}
	}
	if len(parts) == 0 {
		return Title{}
	}
	return Title{Text: strings.Join(parts, " "), Source: "text"}
}

var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// fromYearLine is the last text resort: when every line fails the density
// filters, a line carrying a plausible year still beats an anonymous stem.
func (in *Inferencer) fromYearLine(lines []string) Title {
	seen := 0
	for _, raw := range lines {
		line := textutil.CleanLine(raw)
		if line == "" {
			continue
		}
		seen++
		if seen > in.window {
			break
		}
		if in.isBoilerplate(line) {
			continue
		}
		if yearPattern.MatchString(line) {
			return Title{Text: line, Source: "text"}
		}
	}
	return Title{}
}

func (in *Inferencer) isBoilerplate(line string) bool {
	fp := textutil.NewFingerprint(line)
	if fp == nil {
		return false
	}
	for _, known := range in.boilerplate {
		if fp.Similarity(known) >= boilerplateThreshold {
			return true
		}
	}
	return false
}
