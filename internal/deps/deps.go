// Package deps verifies that the external extraction tools are installed
// before a run starts chewing through files.
package deps

import (
	"os/exec"

	"reclaim/internal/config"
)

// Requirement is one external binary the pipeline may invoke.
type Requirement struct {
	Name     string
	Binary   string
	Purpose  string
	Optional bool
}

// Status is the check result for one requirement.
type Status struct {
	Requirement
	Found bool
	Path  string
}

// Requirements lists the tools for the configured binaries. Soffice and
// pandoc are optional: runs degrade to metadata-only results for the
// formats they cover.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "exiftool", Binary: cfg.Tools.Exiftool, Purpose: "metadata and file type detection"},
		{Name: "pdftotext", Binary: cfg.Tools.Pdftotext, Purpose: "PDF text extraction"},
		{Name: "pdftoppm", Binary: cfg.Tools.Pdftoppm, Purpose: "PDF page rendering for OCR"},
		{Name: "tesseract", Binary: cfg.Tools.Tesseract, Purpose: "OCR for images and scanned PDFs"},
		{Name: "soffice", Binary: cfg.Tools.Soffice, Purpose: "office document conversion", Optional: true},
		{Name: "pandoc", Binary: cfg.Tools.Pandoc, Purpose: "markup document conversion", Optional: true},
	}
}

// Check resolves each requirement on PATH.
func Check(requirements []Requirement) []Status {
	statuses := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{Requirement: req}
		if path, err := exec.LookPath(req.Binary); err == nil {
			status.Found = true
			status.Path = path
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Missing returns the names of required tools that were not found.
func Missing(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Found && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
