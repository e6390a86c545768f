package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeMetadata struct {
	ext  string
	tags map[string]string
	err  error
}

func (f *fakeMetadata) Tags(ctx context.Context, path string, tags ...string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func (f *fakeMetadata) FileTypeExtension(ctx context.Context, path string) (string, error) {
	if f.ext == "" {
		return "", errors.New("unknown type")
	}
	return f.ext, nil
}

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) OCR(ctx context.Context, imagePath string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakePDF struct {
	text        string
	textErr     error
	renderCalls int
}

func (f *fakePDF) Text(ctx context.Context, path string) (string, error) {
	return f.text, f.textErr
}

func (f *fakePDF) RenderFirstPage(ctx context.Context, path, destDir string) (string, error) {
	f.renderCalls++
	image := filepath.Join(destDir, "page-1.png")
	if err := os.WriteFile(image, []byte("png"), 0o644); err != nil {
		return "", err
	}
	return image, nil
}

type fakeOffice struct {
	text string
	err  error
}

func (f *fakeOffice) convert(destDir, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	out := filepath.Join(destDir, name)
	return out, os.WriteFile(out, []byte(f.text), 0o644)
}

func (f *fakeOffice) ToText(ctx context.Context, path, destDir string) (string, error) {
	return f.convert(destDir, "out.txt")
}

func (f *fakeOffice) ToCSV(ctx context.Context, path, destDir string) (string, error) {
	return f.convert(destDir, "out.csv")
}

func (f *fakeOffice) ToImage(ctx context.Context, path, destDir string) (string, error) {
	return f.convert(destDir, "out.png")
}

func TestExtractPDFWithEmbeddedText(t *testing.T) {
	path := writeTempFile(t, "doc.bin", []byte("%PDF-1.4 payload"))
	meta := &fakeMetadata{ext: "pdf", tags: map[string]string{"ModifyDate": "2019:03:15"}}
	pdf := &fakePDF{text: "Compte rendu de la reunion\nfait le 15 mars 2019\n"}
	ocr := &fakeOCR{text: "should not be used"}

	e := New(meta, ocr, pdf, &fakeOffice{}, nil, Options{ScanLines: 50}, nil)
	result := e.Extract(context.Background(), path)

	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorDetail)
	}
	if result.Format != KindPDF {
		t.Errorf("Format = %s, want %s", result.Format, KindPDF)
	}
	if ocr.calls != 0 {
		t.Errorf("OCR invoked %d times for a PDF with embedded text", ocr.calls)
	}
	if got := result.Tag("ModifyDate"); got != "2019:03:15" {
		t.Errorf("ModifyDate = %q", got)
	}
	if len(result.Lines) == 0 || !strings.Contains(result.Lines[0], "Compte rendu") {
		t.Errorf("unexpected lines: %v", result.Lines)
	}
}

func TestExtractScannedPDFFallsBackToOCR(t *testing.T) {
	path := writeTempFile(t, "scan.bin", []byte("%PDF-1.4 scanned"))
	pdf := &fakePDF{text: "  \n "}
	ocr := &fakeOCR{text: "Facture du 12/04/2018"}

	e := New(&fakeMetadata{ext: "pdf"}, ocr, pdf, &fakeOffice{}, nil, Options{}, nil)
	result := e.Extract(context.Background(), path)

	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorDetail)
	}
	if pdf.renderCalls != 1 {
		t.Errorf("renderCalls = %d, want 1", pdf.renderCalls)
	}
	if ocr.calls != 1 {
		t.Errorf("OCR calls = %d, want 1", ocr.calls)
	}
	if !strings.Contains(result.Text(), "Facture") {
		t.Errorf("unexpected text: %q", result.Text())
	}
}

func TestExtractForcePDFOCR(t *testing.T) {
	path := writeTempFile(t, "doc.bin", []byte("%PDF-1.4 payload"))
	pdf := &fakePDF{text: "plenty of embedded text that would normally win"}
	ocr := &fakeOCR{text: "ocr text"}

	e := New(&fakeMetadata{ext: "pdf"}, ocr, pdf, &fakeOffice{}, nil, Options{ForcePDFOCR: true}, nil)
	result := e.Extract(context.Background(), path)

	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorDetail)
	}
	if ocr.calls != 1 {
		t.Errorf("OCR calls = %d, want 1", ocr.calls)
	}
}

func TestExtractToolFailureKeepsMetadata(t *testing.T) {
	path := writeTempFile(t, "broken.bin", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	meta := &fakeMetadata{tags: map[string]string{"CreateDate": "2017:06:01"}}
	office := &fakeOffice{err: errors.New("conversion aborted")}

	e := New(meta, &fakeOCR{}, &fakePDF{}, office, nil, Options{}, nil)
	result := e.Extract(context.Background(), path)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.ErrorDetail == "" {
		t.Error("ErrorDetail empty")
	}
	if got := result.Tag("CreateDate"); got != "2017:06:01" {
		t.Errorf("CreateDate = %q, metadata should survive conversion failure", got)
	}
}

func TestExtractPlainText(t *testing.T) {
	path := writeTempFile(t, "note.bin", []byte("Liste de courses\n\npommes\npoires\n"))
	e := New(&fakeMetadata{}, nil, nil, nil, nil, Options{ScanLines: 10}, nil)
	result := e.Extract(context.Background(), path)

	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorDetail)
	}
	if result.Format != KindText {
		t.Errorf("Format = %s, want %s", result.Format, KindText)
	}
	lines := result.FirstLines(2)
	if len(lines) != 2 || lines[0] != "Liste de courses" || lines[1] != "pommes" {
		t.Errorf("FirstLines = %v", lines)
	}
}

func TestExtractMailboxHoistsHeaders(t *testing.T) {
	mbox := "From alice@example.org Mon Jan  6 10:00:00 2020\n" +
		"Date: Mon, 6 Jan 2020 10:00:00 +0100\n" +
		"Subject: Compte rendu assemblee\n" +
		"\n" +
		"Bonjour,\n"
	path := writeTempFile(t, "mail.bin", []byte(mbox))
	e := New(&fakeMetadata{}, nil, nil, nil, nil, Options{}, nil)
	result := e.Extract(context.Background(), path)

	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorDetail)
	}
	if result.Format != KindMbox {
		t.Errorf("Format = %s, want %s", result.Format, KindMbox)
	}
	lines := result.FirstLines(2)
	if len(lines) < 2 {
		t.Fatalf("FirstLines = %v", lines)
	}
	if !strings.Contains(lines[0], "Compte rendu") && !strings.Contains(lines[1], "Compte rendu") {
		t.Errorf("subject not hoisted: %v", lines)
	}
}

func TestExtractZipListsEntries(t *testing.T) {
	path := writeZip(t, map[string]string{"rapport/chapitre1.txt": "x", "rapport/chapitre2.txt": "y"})
	e := New(&fakeMetadata{}, nil, nil, nil, nil, Options{}, nil)
	result := e.Extract(context.Background(), path)

	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorDetail)
	}
	if result.Format != KindZip {
		t.Errorf("Format = %s, want %s", result.Format, KindZip)
	}
	if !strings.Contains(result.Text(), "chapitre1.txt") {
		t.Errorf("entry names missing: %q", result.Text())
	}
}
