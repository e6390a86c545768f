// Package textcache persists extraction results on disk so repeated runs
// over the same recovered files skip the external tools entirely. Each entry
// is a plain text artifact named after the file identity key, readable with
// any pager when debugging inference.
package textcache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"reclaim/internal/extraction"
	"reclaim/internal/services"
)

const (
	entryExtension = ".txt"
	headerVersion  = "reclaim-cache/1"
)

// Cache is a directory of extraction artifacts.
type Cache struct {
	dir string
}

// Stats summarizes cache contents for the cache CLI command.
type Stats struct {
	Entries    int
	TotalBytes int64
}

func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "textcache", "init",
			fmt.Sprintf("creating cache directory %s", dir), err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+entryExtension)
}

// Get returns the cached result for key, or nil when absent. A corrupted or
// unreadable entry counts as absent so the file is simply re-extracted.
func (c *Cache) Get(key string) *extraction.Result {
	f, err := os.Open(c.entryPath(key))
	if err != nil {
		return nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() || scanner.Text() != headerVersion {
		return nil
	}

	result := &extraction.Result{Metadata: map[string]string{}}
	inHeader := true
	for scanner.Scan() {
		line := scanner.Text()
		if inHeader {
			if line == "" {
				inHeader = false
				continue
			}
			field, value, ok := strings.Cut(line, ": ")
			if !ok {
				return nil
			}
			switch {
			case field == "format":
				result.Format = extraction.Kind(value)
			case field == "success":
				b, err := strconv.ParseBool(value)
				if err != nil {
					return nil
				}
				result.Success = b
			case field == "error":
				result.ErrorDetail = value
			case strings.HasPrefix(field, "meta "):
				result.Metadata[strings.TrimPrefix(field, "meta ")] = value
			default:
				return nil
			}
			continue
		}
		result.Lines = append(result.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil
	}
	if inHeader {
		return nil
	}
	return result
}

// Put stores result under key. The artifact is written to a temp file first
// so a crash never leaves a truncated entry behind.
func (c *Cache) Put(key string, result *extraction.Result) error {
	var sb strings.Builder
	sb.WriteString(headerVersion + "\n")
	fmt.Fprintf(&sb, "format: %s\n", result.Format)
	fmt.Fprintf(&sb, "success: %t\n", result.Success)
	if result.ErrorDetail != "" {
		fmt.Fprintf(&sb, "error: %s\n", sanitizeHeaderValue(result.ErrorDetail))
	}
	keys := make([]string, 0, len(result.Metadata))
	for k := range result.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "meta %s: %s\n", k, sanitizeHeaderValue(result.Metadata[k]))
	}
	sb.WriteString("\n")
	for _, line := range result.Lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return services.Wrap(services.ErrTransient, "textcache", "put", "creating temp entry", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return services.Wrap(services.ErrTransient, "textcache", "put", "writing entry", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrTransient, "textcache", "put", "closing entry", err)
	}
	if err := os.Rename(tmpName, c.entryPath(key)); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrTransient, "textcache", "put", "placing entry", err)
	}
	return nil
}

// Clear removes every cache entry.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "textcache", "clear", "listing cache", err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entryExtension) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return removed, services.Wrap(services.ErrTransient, "textcache", "clear",
				fmt.Sprintf("removing %s", entry.Name()), err)
		}
		removed++
	}
	return removed, nil
}

// Stats reports entry count and total size.
func (c *Cache) Stats() (Stats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrTransient, "textcache", "stats", "listing cache", err)
	}
	var stats Stats
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entryExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

func sanitizeHeaderValue(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "\r", " ")
}
