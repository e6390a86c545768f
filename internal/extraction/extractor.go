package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reclaim/internal/logging"
	"reclaim/internal/services"
)

// MetadataReader reads tag metadata and the real extension of a file.
type MetadataReader interface {
	Tags(ctx context.Context, path string, tags ...string) (map[string]string, error)
	FileTypeExtension(ctx context.Context, path string) (string, error)
}

// OCREngine recognizes text in a rendered page image.
type OCREngine interface {
	OCR(ctx context.Context, imagePath string) (string, error)
}

// PDFConverter extracts embedded text from a PDF and renders its first page.
type PDFConverter interface {
	Text(ctx context.Context, path string) (string, error)
	RenderFirstPage(ctx context.Context, path, destDir string) (string, error)
}

// OfficeConverter converts office documents through a headless office suite.
type OfficeConverter interface {
	ToText(ctx context.Context, path, destDir string) (string, error)
	ToCSV(ctx context.Context, path, destDir string) (string, error)
	ToImage(ctx context.Context, path, destDir string) (string, error)
}

// DocumentConverter converts markup documents to plain text.
type DocumentConverter interface {
	ToText(ctx context.Context, path, destPath string) (string, error)
}

// Options bound how much of a file is read during extraction.
type Options struct {
	ScanLines   int
	ForcePDFOCR bool
}

// Extractor turns a recovered file into a Result by routing it to the tool
// that understands its format. Tool failures degrade the Result rather than
// aborting: metadata and format survive a failed text conversion.
type Extractor struct {
	metadata MetadataReader
	ocr      OCREngine
	pdf      PDFConverter
	office   OfficeConverter
	document DocumentConverter
	opts     Options
	logger   *slog.Logger
}

// minEmbeddedText is the threshold below which PDF text is considered a
// scan artifact and OCR runs instead.
const minEmbeddedText = 20

func New(metadata MetadataReader, ocr OCREngine, pdf PDFConverter, office OfficeConverter, document DocumentConverter, opts Options, logger *slog.Logger) *Extractor {
	if opts.ScanLines <= 0 {
		opts.ScanLines = 200
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		metadata: metadata,
		ocr:      ocr,
		pdf:      pdf,
		office:   office,
		document: document,
		opts:     opts,
		logger:   logger,
	}
}

// Extract classifies path and pulls out text lines and metadata.
func (e *Extractor) Extract(ctx context.Context, path string) *Result {
	result := &Result{Metadata: map[string]string{}}

	kind := e.classify(ctx, path)
	result.Format = kind

	// Metadata is gathered independently of text conversion so a broken
	// payload can still yield a date from its tags.
	if e.metadata != nil {
		tags, err := e.metadata.Tags(ctx, path, allTags()...)
		if err != nil {
			e.logger.Debug("metadata read failed",
				logging.String(logging.FieldSourcePath, path),
				logging.Error(err))
		} else {
			result.Metadata = tags
		}
	}

	text, err := e.extractText(ctx, path, kind)
	if err != nil {
		result.ErrorDetail = err.Error()
		return result
	}
	result.Lines = splitLines(text, e.opts.ScanLines)
	result.Success = true
	return result
}

func (e *Extractor) classify(ctx context.Context, path string) Kind {
	if e.metadata != nil {
		ext, err := e.metadata.FileTypeExtension(ctx, path)
		if err == nil {
			if kind, ok := KindForExtension(ext); ok {
				return kind
			}
		}
	}
	return Sniff(path)
}

func (e *Extractor) extractText(ctx context.Context, path string, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return e.pdfText(ctx, path)
	case KindLegacyOffice, KindMarkup:
		return e.officeText(ctx, path, kind)
	case KindSpreadsheet:
		return e.withWorkDir(path, func(dir string) (string, error) {
			out, err := e.office.ToCSV(ctx, path, dir)
			if err != nil {
				return "", err
			}
			return readFileString(out)
		})
	case KindPresentation:
		return e.ocrRendered(ctx, path)
	case KindImage:
		if e.ocr == nil {
			return "", services.Wrap(services.ErrConfiguration, "extraction", "ocr", "no OCR engine configured", nil)
		}
		return e.ocr.OCR(ctx, path)
	case KindZip:
		return listZip(path)
	case KindTar:
		return listTar(path)
	case KindText:
		return readTextHead(path, e.opts.ScanLines)
	case KindMbox:
		return readMailbox(path, e.opts.ScanLines)
	default:
		return "", services.Wrap(services.ErrValidation, "extraction", "classify",
			fmt.Sprintf("unrecognized format for %s", path), nil)
	}
}

// pdfText prefers embedded text. Scanned PDFs carry little or none, so the
// first page is rendered and handed to OCR.
func (e *Extractor) pdfText(ctx context.Context, path string) (string, error) {
	if e.pdf == nil {
		return "", services.Wrap(services.ErrConfiguration, "extraction", "pdf", "no PDF converter configured", nil)
	}
	if !e.opts.ForcePDFOCR {
		text, err := e.pdf.Text(ctx, path)
		if err == nil && len(strings.TrimSpace(text)) >= minEmbeddedText {
			return text, nil
		}
		if err != nil {
			e.logger.Debug("pdf text extraction failed, falling back to OCR",
				logging.String(logging.FieldSourcePath, path),
				logging.Error(err))
		}
	}
	if e.ocr == nil {
		return "", services.Wrap(services.ErrConfiguration, "extraction", "ocr", "no OCR engine configured", nil)
	}
	return e.withWorkDir(path, func(dir string) (string, error) {
		image, err := e.pdf.RenderFirstPage(ctx, path, dir)
		if err != nil {
			return "", err
		}
		return e.ocr.OCR(ctx, image)
	})
}

func (e *Extractor) officeText(ctx context.Context, path string, kind Kind) (string, error) {
	if kind == KindMarkup && e.document != nil {
		text, err := e.withWorkDir(path, func(dir string) (string, error) {
			return e.document.ToText(ctx, path, filepath.Join(dir, "converted.txt"))
		})
		if err == nil {
			return text, nil
		}
		e.logger.Debug("pandoc conversion failed, falling back to office suite",
			logging.String(logging.FieldSourcePath, path),
			logging.Error(err))
	}
	if e.office == nil {
		return "", services.Wrap(services.ErrConfiguration, "extraction", "office", "no office converter configured", nil)
	}
	return e.withWorkDir(path, func(dir string) (string, error) {
		out, err := e.office.ToText(ctx, path, dir)
		if err != nil {
			return "", err
		}
		return readFileString(out)
	})
}

// ocrRendered handles presentations and drawings, which rarely convert to
// useful linear text: the first slide is rendered and OCRed instead.
func (e *Extractor) ocrRendered(ctx context.Context, path string) (string, error) {
	if e.office == nil || e.ocr == nil {
		return "", services.Wrap(services.ErrConfiguration, "extraction", "render", "office converter and OCR engine required", nil)
	}
	return e.withWorkDir(path, func(dir string) (string, error) {
		image, err := e.office.ToImage(ctx, path, dir)
		if err != nil {
			return "", err
		}
		return e.ocr.OCR(ctx, image)
	})
}

func (e *Extractor) withWorkDir(path string, fn func(dir string) (string, error)) (string, error) {
	dir, err := os.MkdirTemp("", "reclaim-extract-*")
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", "workdir",
			fmt.Sprintf("creating work directory for %s", path), err)
	}
	defer os.RemoveAll(dir)
	return fn(dir)
}

func readFileString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "extraction", "read",
			fmt.Sprintf("reading converted output %s", path), err)
	}
	return string(data), nil
}
