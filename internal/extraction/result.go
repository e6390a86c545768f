package extraction

import "strings"

// Result carries everything learned from a source file: the text lines used
// for inference, tag metadata from exiftool, and the detected format. A
// Result with Success false still holds whatever metadata was recovered.
type Result struct {
	Lines       []string
	Metadata    map[string]string
	Format      Kind
	Success     bool
	ErrorDetail string
}

// FirstLines returns up to n non-empty lines from the extracted text.
func (r *Result) FirstLines(n int) []string {
	out := make([]string, 0, n)
	for _, line := range r.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

// Text joins all extracted lines for pattern scans that span line breaks.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Tag returns a metadata value, or "" when absent.
func (r *Result) Tag(name string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[name]
}

func splitLines(text string, limit int) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}
	return raw
}
