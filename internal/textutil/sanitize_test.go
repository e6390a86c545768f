package textutil_test

import (
	"strings"
	"testing"

	"reclaim/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Quarterly Report", "Quarterly_Report"},
		{"accents", "ça c'est sûr", "ca_c_est_sur"},
		{"path separators", "a/b\\c", "a_b_c"},
		{"nul bytes", "repo\x00rt", "report"},
		{"carving noise", "23292344_000_000D_000_000f_000a_000v_000o", "23292344Dfavo"},
		{"underscore runs", "a___b", "a_b"},
		{"trims underscores", "_hello_", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.SanitizeFileName(tc.input); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	long := strings.Repeat("abcde ", 40)
	got := textutil.SanitizeFileName(long)
	if len(got) > textutil.MaxFileNameLength {
		t.Fatalf("expected length <= %d, got %d", textutil.MaxFileNameLength, len(got))
	}
	if strings.HasSuffix(got, "_") {
		t.Fatalf("expected trailing underscore trimmed, got %q", got)
	}
}

func TestCleanLine(t *testing.T) {
	got := textutil.CleanLine("S a l u t --- tout  le  monde......")
	if strings.Contains(got, "--") || strings.Contains(got, "..") || strings.Contains(got, "  ") {
		t.Fatalf("expected runs collapsed, got %q", got)
	}
	if !strings.HasPrefix(got, "Salut") {
		t.Fatalf("expected spaced letters collapsed, got %q", got)
	}
}

func TestDigitRatio(t *testing.T) {
	if ratio := textutil.DigitRatio("f1234567"); ratio < 0.8 {
		t.Fatalf("expected carved name to be digit heavy, got %f", ratio)
	}
	if ratio := textutil.DigitRatio("budget-2019"); ratio > 0.5 {
		t.Fatalf("expected mixed name below threshold, got %f", ratio)
	}
	if ratio := textutil.DigitRatio("___"); ratio != 1 {
		t.Fatalf("expected no-alnum input to count as all digits, got %f", ratio)
	}
}

func TestFingerprintSimilarity(t *testing.T) {
	a := textutil.NewFingerprint("university campus newsletter edition")
	b := textutil.NewFingerprint("university campus newsletter edition")
	c := textutil.NewFingerprint("completely unrelated grocery list")

	if sim := a.Similarity(b); sim < 0.99 {
		t.Fatalf("identical text similarity = %f, want ~1", sim)
	}
	if sim := a.Similarity(c); sim > 0.1 {
		t.Fatalf("unrelated text similarity = %f, want ~0", sim)
	}
	var nilFP *textutil.Fingerprint
	if sim := nilFP.Similarity(a); sim != 0 {
		t.Fatalf("nil fingerprint similarity = %f, want 0", sim)
	}
}
