package extraction

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating zip: %v", err)
	}
	w := zip.NewWriter(f)
	for name, content := range entries {
		ew, err := w.Create(name)
		if err != nil {
			t.Fatalf("adding entry %s: %v", name, err)
		}
		if _, err := ew.Write([]byte(content)); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing file: %v", err)
	}
	return path
}

func TestSniffMagicPrefixes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"pdf", []byte("%PDF-1.4\n..."), KindPDF},
		{"ole", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, KindLegacyOffice},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, KindImage},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, KindImage},
		{"rtf", []byte(`{\rtf1\ansi hello}`), KindMarkup},
		{"html", []byte("<!DOCTYPE html><html><body>x</body></html>"), KindMarkup},
		{"text", []byte("Compte rendu de la reunion du 15 mars 2019\nsuite du texte\n"), KindText},
		{"mbox", []byte("From alice@example.org Mon Jan  6 10:00:00 2020\nSubject: hello\n\nbody\n"), KindMbox},
		{"binary", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.name, tt.data)
			if got := Sniff(path); got != tt.want {
				t.Errorf("Sniff(%s) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestSniffZipContainers(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		want    Kind
	}{
		{"docx", map[string]string{"[Content_Types].xml": "<Types/>", "word/document.xml": "<w:document/>"}, KindMarkup},
		{"xlsx", map[string]string{"[Content_Types].xml": "<Types/>", "xl/workbook.xml": "<workbook/>"}, KindSpreadsheet},
		{"pptx", map[string]string{"[Content_Types].xml": "<Types/>", "ppt/presentation.xml": "<p/>"}, KindPresentation},
		{"odt", map[string]string{"mimetype": "application/vnd.oasis.opendocument.text", "content.xml": "<office/>"}, KindMarkup},
		{"ods", map[string]string{"mimetype": "application/vnd.oasis.opendocument.spreadsheet", "content.xml": "<office/>"}, KindSpreadsheet},
		{"plain", map[string]string{"photos/a.jpg": "x", "photos/b.jpg": "y"}, KindZip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeZip(t, tt.entries)
			if got := Sniff(path); got != tt.want {
				t.Errorf("Sniff(%s) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		ext    string
		want   Kind
		wantOK bool
	}{
		{"pdf", KindPDF, true},
		{".PDF", KindPDF, true},
		{"doc", KindLegacyOffice, true},
		{"docx", KindMarkup, true},
		{"xls", KindSpreadsheet, true},
		{"ods", KindSpreadsheet, true},
		{"ppt", KindPresentation, true},
		{"jpg", KindImage, true},
		{"weird", "", false},
	}
	for _, tt := range tests {
		got, ok := KindForExtension(tt.ext)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("KindForExtension(%q) = %s, %t; want %s, %t", tt.ext, got, ok, tt.want, tt.wantOK)
		}
	}
}
