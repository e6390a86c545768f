// Package naming turns an inferred identity (title, year, month) into a
// destination path under the output tree, handling name collisions and the
// unknown-date buckets.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reclaim/internal/services"
	"reclaim/internal/textutil"
)

// Bucket names for files whose date could not be recovered.
const (
	BucketUnknownYear  = "unknown-year"
	BucketUnknownMonth = "unknown-month"
)

// fallbackStem names files whose title, stem, and metadata all came up empty.
const fallbackStem = "document"

// Index answers whether a destination path is already promised to another
// file, typically backed by the operation ledger.
type Index interface {
	Reserved(path string) (bool, error)
}

// Request describes one file to place.
type Request struct {
	// SourcePath is the recovered file. Its stem is the naming fallback.
	SourcePath string
	// Title is the inferred title, empty when inference found nothing.
	Title string
	// Extension is the detected extension without dot, empty to keep the
	// source extension.
	Extension string
	// Year and Month route the file into the date tree. Zero means unknown.
	Year  int
	Month int
	// KeepName preserves the original filename instead of the title.
	KeepName bool
}

// Placement is a resolved destination.
type Placement struct {
	Dir  string
	Name string
	Path string
}

// Resolver allocates destination paths under a root directory. Paths handed
// out during a run are remembered so two files never resolve to the same
// destination even before anything is copied.
type Resolver struct {
	root     string
	index    Index
	reserved map[string]bool
}

func New(root string, index Index) *Resolver {
	return &Resolver{
		root:     root,
		index:    index,
		reserved: make(map[string]bool),
	}
}

// Resolve computes the destination for req without touching the output
// tree. The returned path is reserved for the caller.
func (r *Resolver) Resolve(req Request) (Placement, error) {
	dir := filepath.Join(r.root, bucketPath(req.Year, req.Month))
	stem, ext := r.nameParts(req)

	// The suffix space is unbounded so resolution always terminates with
	// a free name. %02d widens past _99 on its own.
	for n := 0; ; n++ {
		name := stem + ext
		if n > 0 {
			name = fmt.Sprintf("%s_%02d%s", stem, n, ext)
		}
		path := filepath.Join(dir, name)
		taken, err := r.taken(path)
		if err != nil {
			return Placement{}, err
		}
		if taken {
			continue
		}
		r.reserved[path] = true
		return Placement{Dir: dir, Name: name, Path: path}, nil
	}
}

// EnsureDir creates the destination directory for a placement.
func (r *Resolver) EnsureDir(p Placement) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "naming", "mkdir",
			fmt.Sprintf("creating %s", p.Dir), err)
	}
	return nil
}

// Release returns a reserved path, used when the copy it was reserved for
// fails.
func (r *Resolver) Release(path string) {
	delete(r.reserved, path)
}

func (r *Resolver) taken(path string) (bool, error) {
	if r.reserved[path] {
		return true, nil
	}
	if _, err := os.Lstat(path); err == nil {
		return true, nil
	}
	if r.index != nil {
		taken, err := r.index.Reserved(path)
		if err != nil {
			return false, services.Wrap(services.ErrTransient, "naming", "resolve", "querying ledger", err)
		}
		return taken, nil
	}
	return false, nil
}

func (r *Resolver) nameParts(req Request) (string, string) {
	base := filepath.Base(req.SourcePath)
	origExt := filepath.Ext(base)
	origStem := strings.TrimSuffix(base, origExt)

	ext := strings.ToLower(origExt)
	if req.Extension != "" {
		ext = "." + strings.ToLower(strings.TrimPrefix(req.Extension, "."))
	}

	var stem string
	switch {
	case req.KeepName:
		stem = textutil.SanitizeFileName(origStem)
	case req.Title != "":
		stem = textutil.SanitizeFileName(req.Title)
	}
	if stem == "" {
		stem = textutil.SanitizeFileName(origStem)
	}
	if stem == "" {
		stem = fallbackStem
	}
	return stem, ext
}

func bucketPath(year, month int) string {
	if year <= 0 {
		return BucketUnknownYear
	}
	if month < 1 || month > 12 {
		return filepath.Join(fmt.Sprintf("%04d", year), BucketUnknownMonth)
	}
	return filepath.Join(fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
}
