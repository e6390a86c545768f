package dateinfer

import "fmt"

// Confidence scores, highest first. Metadata always outranks text because
// embedded tags survive carving intact while body text goes through OCR.
const (
	ScoreMetadata = 50
	ScoreExplicit = 30 // "fait le 15 mars 2019", "date : 15/03/2019"
	ScoreFullDate = 10 // day, month and year all present
	ScorePartial  = 5  // month and year, or a compact YYYYMMDD token
	ScoreYearOnly = 2
	ScoreModTime  = 1
)

// Candidate is one possible document date. Month and Day are zero when the
// source did not carry them.
type Candidate struct {
	Year   int
	Month  int
	Day    int
	Source string
	Score  int
}

// Valid reports whether the candidate carries at least a year.
func (c Candidate) Valid() bool {
	return c.Year > 0
}

// String renders the candidate for logs and the ledger.
func (c Candidate) String() string {
	switch {
	case !c.Valid():
		return "unknown"
	case c.Month == 0:
		return fmt.Sprintf("%04d", c.Year)
	case c.Day == 0:
		return fmt.Sprintf("%04d-%02d", c.Year, c.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", c.Year, c.Month, c.Day)
	}
}

// better reports whether a should win over b. Higher score wins; on a tie
// the more complete candidate wins; on a further tie the earlier one (a)
// stands, so callers must offer candidates in document order.
func better(a, b Candidate) bool {
	if !b.Valid() {
		return true
	}
	if !a.Valid() {
		return false
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return completeness(a) > completeness(b)
}

func completeness(c Candidate) int {
	n := 0
	if c.Month > 0 {
		n++
	}
	if c.Day > 0 {
		n++
	}
	return n
}
