package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxFileNameLength caps sanitized filename stems. Long inferred titles are
// truncated rather than rejected.
const MaxFileNameLength = 100

// accentFolder strips combining marks after canonical decomposition, so
// "résumé" becomes "resume" instead of dropping the characters entirely.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	unsafePattern = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	// Carving tools interleave NUL-expanded runs into recovered names,
	// e.g. "23292344_000_000D_000_000f_000a_000v.pdf". The recurring
	// "_00…" groups carry no information.
	carvingNoisePattern = regexp.MustCompile(`_00+`)
	underscoreRuns      = regexp.MustCompile(`_{2,}`)
)

// FoldAccents converts accented characters to their ASCII base forms.
// Input that cannot be transformed is returned unchanged.
func FoldAccents(value string) string {
	folded, _, err := transform.String(accentFolder, value)
	if err != nil {
		return value
	}
	return folded
}

// SanitizeFileName converts an arbitrary title into a filesystem-safe
// filename stem. Accents are folded, whitespace becomes underscores,
// remaining unsafe characters are replaced, carving artifacts and
// underscore runs are collapsed, and the result is length-capped.
func SanitizeFileName(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "\x00", "")
	value = FoldAccents(value)
	value = strings.Join(strings.Fields(value), "_")
	value = unsafePattern.ReplaceAllString(value, "_")
	value = carvingNoisePattern.ReplaceAllString(value, "")
	value = underscoreRuns.ReplaceAllString(value, "_")
	value = strings.Trim(value, "_")
	if len(value) > MaxFileNameLength {
		value = strings.Trim(value[:MaxFileNameLength], "_")
	}
	return value
}

// CollapseSpacedLetters repairs OCR output that renders words with a space
// between every letter, so "S a l u t " becomes "Salut ".
func CollapseSpacedLetters(line string) string {
	return spacedLetterPattern.ReplaceAllString(line, "$1")
}

var spacedLetterPattern = regexp.MustCompile(` (\w) `)

// CleanLine normalizes a line of extracted text for inference: spaced-out
// letters are collapsed, ellipses removed, and runs of dashes, dots, and
// whitespace reduced to single occurrences.
func CleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = CollapseSpacedLetters(line)
	line = strings.ReplaceAll(line, "…", "")
	line = dashRuns.ReplaceAllString(line, "-")
	line = dotRuns.ReplaceAllString(line, ".")
	line = spaceRuns.ReplaceAllString(line, " ")
	return line
}

var (
	dashRuns  = regexp.MustCompile(`--+`)
	dotRuns   = regexp.MustCompile(`\.\.+`)
	spaceRuns = regexp.MustCompile(`\s\s+`)
)

// WordCharCount returns the number of letter and digit characters in a line.
// Used by the title inferencer's density filters.
func WordCharCount(line string) int {
	count := 0
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			count++
		}
	}
	return count
}

// DigitRatio reports how much of a string consists of digits, ignoring
// non-alphanumeric characters. Carved filenames are typically all digits.
func DigitRatio(value string) float64 {
	digits, total := 0, 0
	for _, r := range value {
		switch {
		case unicode.IsDigit(r):
			digits++
			total++
		case unicode.IsLetter(r):
			total++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(digits) / float64(total)
}
