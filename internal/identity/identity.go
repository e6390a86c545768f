// Package identity derives stable keys for recovered files. The key is the
// join point between the extraction cache and the operation ledger: two
// files with the same identity are interchangeable for caching purposes
// even if their paths differ across runs.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Mode selects how identities are derived.
type Mode string

const (
	// ModeStat keys on basename, size, and modification time. Cheap, and
	// stable as long as the carved files are not rewritten in place.
	ModeStat Mode = "stat"
	// ModeContent keys on a SHA256 of the file content. Stronger: survives
	// renames and re-carving into different paths.
	ModeContent Mode = "content"
)

// ParseMode converts a config string into a known Mode.
func ParseMode(value string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeStat, "":
		return ModeStat, true
	case ModeContent:
		return ModeContent, true
	default:
		return "", false
	}
}

// Identity describes a single recovered file.
type Identity struct {
	Path    string
	Size    int64
	ModTime time.Time
	key     string
}

// Key returns the deterministic cache and ledger key for this identity.
func (id Identity) Key() string {
	return id.key
}

// FromFile derives an identity for path using the given mode.
func FromFile(path string, mode Mode) (Identity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Identity{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Identity{}, fmt.Errorf("%s is a directory", path)
	}

	id := Identity{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}

	switch mode {
	case ModeContent:
		f, err := os.Open(path)
		if err != nil {
			return Identity{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return Identity{}, fmt.Errorf("hash %s: %w", path, err)
		}
		id.key = hex.EncodeToString(h.Sum(nil))[:32]
	default:
		h := sha256.New()
		fmt.Fprintf(h, "%s|%d|%d", filepath.Base(path), info.Size(), info.ModTime().UTC().Unix())
		id.key = hex.EncodeToString(h.Sum(nil))[:32]
	}

	return id, nil
}
