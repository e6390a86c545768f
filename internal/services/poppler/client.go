// Package poppler wraps the poppler-utils binaries: pdftotext for direct
// text extraction and pdftoppm for rendering the first page to an image
// when a PDF carries no text layer and must go through OCR.
package poppler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reclaim/internal/services"
)

// Client wraps poppler-utils CLI interactions.
type Client struct {
	pdftotext string
	pdftoppm  string
	dpi       int
	timeout   time.Duration
	exec      services.Executor
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

// New constructs a poppler client.
func New(pdftotext, pdftoppm string, dpi int, timeout time.Duration, opts ...Option) (*Client, error) {
	pdftotext = strings.TrimSpace(pdftotext)
	pdftoppm = strings.TrimSpace(pdftoppm)
	if pdftotext == "" || pdftoppm == "" {
		return nil, errors.New("pdftotext and pdftoppm binaries required")
	}
	if dpi <= 0 {
		dpi = 300
	}
	client := &Client{pdftotext: pdftotext, pdftoppm: pdftoppm, dpi: dpi, timeout: timeout, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Text extracts the text layer of the first page of a PDF.
// Dates and titles live on page one; later pages only add noise.
func (c *Client) Text(ctx context.Context, path string) (string, error) {
	args := []string{"-l", "1", "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}
	out, _, err := services.RunWithTimeout(ctx, c.exec, c.timeout, c.pdftotext, args...)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "pdftotext", "extract text layer", err)
	}
	return string(out), nil
}

// RenderFirstPage rasterizes page one of a PDF into destDir and returns the
// generated PNG path, for feeding into OCR.
func (c *Client) RenderFirstPage(ctx context.Context, path, destDir string) (string, error) {
	prefix := filepath.Join(destDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", c.dpi), "-png", "-f", "1", "-l", "1", path, prefix}
	if _, _, err := services.RunWithTimeout(ctx, c.exec, c.timeout, c.pdftoppm, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "pdftoppm", "render first page", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "pdftoppm", "no page rendered", nil)
	}
	return matches[0], nil
}
