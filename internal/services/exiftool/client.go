// Package exiftool wraps the exiftool binary for metadata reads. It is the
// only metadata source reclaim uses: embedded titles, authors, and the
// various creation/modification date tags carried by each format.
package exiftool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reclaim/internal/services"
)

// DateTags lists the metadata fields scanned for dates, in priority order.
// FileModifyDate is deliberately absent: carving tools reset it.
var DateTags = []string{
	"PDF:ModifyDate",
	"ModifyDate",
	"CreateDate",
	"ZipModifyDate",
	"Date",
	"Creation-date",
}

// DescriptiveTags lists the fields scanned for title material.
var DescriptiveTags = []string{"Title", "Author", "Creator"}

// Client wraps exiftool CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    services.Executor
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// New constructs an exiftool client.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("exiftool binary required")
	}
	client := &Client{binary: binary, timeout: timeout, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Tags reads the requested metadata tags from path. Absent tags are simply
// missing from the result; the returned map keys drop any group prefix.
func (c *Client) Tags(ctx context.Context, path string, tags ...string) (map[string]string, error) {
	if len(tags) == 0 {
		return map[string]string{}, nil
	}
	args := make([]string, 0, len(tags)+4)
	args = append(args, "-j", "-d", "%Y:%m:%d")
	for _, tag := range tags {
		args = append(args, "-"+tag)
	}
	args = append(args, path)

	out, _, err := services.RunWithTimeout(ctx, c.exec, c.timeout, c.binary, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "metadata", "exiftool", "read tags", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "metadata", "exiftool", "decode output", err)
	}
	if len(records) == 0 {
		return map[string]string{}, nil
	}

	result := make(map[string]string, len(records[0]))
	for key, value := range records[0] {
		if key == "SourceFile" {
			continue
		}
		if idx := strings.LastIndex(key, ":"); idx >= 0 {
			key = key[idx+1:]
		}
		result[key] = stringify(value)
	}
	return result, nil
}

// FileTypeExtension returns exiftool's normalized extension for path
// (e.g. "pdf", "docx"), or "" when exiftool cannot classify the file.
func (c *Client) FileTypeExtension(ctx context.Context, path string) (string, error) {
	tags, err := c.Tags(ctx, path, "FileTypeExtension")
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(tags["FileTypeExtension"])), nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
