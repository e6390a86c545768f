package extraction

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"reclaim/internal/services"
)

const maxArchiveEntries = 50

// listZip renders a zip archive as text: one line per entry, with the entry
// modification date in a form the date scanner recognizes.
func listZip(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extraction", "zip",
			fmt.Sprintf("opening archive %s", path), err)
	}
	defer r.Close()

	var sb strings.Builder
	for i, entry := range r.File {
		if i == maxArchiveEntries {
			break
		}
		mod := entry.Modified
		if mod.IsZero() {
			fmt.Fprintf(&sb, "%s\n", entry.Name)
			continue
		}
		fmt.Fprintf(&sb, "%s %02d/%02d/%04d\n", entry.Name, mod.Day(), int(mod.Month()), mod.Year())
	}
	return sb.String(), nil
}

// listTar renders a tar archive the same way.
func listTar(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extraction", "tar",
			fmt.Sprintf("opening archive %s", path), err)
	}
	defer f.Close()

	var sb strings.Builder
	tr := tar.NewReader(f)
	for i := 0; i < maxArchiveEntries; i++ {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if sb.Len() > 0 {
				break
			}
			return "", services.Wrap(services.ErrValidation, "extraction", "tar",
				fmt.Sprintf("reading archive %s", path), err)
		}
		mod := hdr.ModTime
		if mod.IsZero() {
			fmt.Fprintf(&sb, "%s\n", hdr.Name)
			continue
		}
		fmt.Fprintf(&sb, "%s %02d/%02d/%04d\n", hdr.Name, mod.Day(), int(mod.Month()), mod.Year())
	}
	return sb.String(), nil
}
