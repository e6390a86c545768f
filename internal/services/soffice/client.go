// Package soffice wraps headless LibreOffice for converting legacy binary
// office documents (doc, xls, ppt and their OpenDocument cousins) into
// plain text or CSV intermediates the pipeline can scan.
package soffice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reclaim/internal/services"
)

// Filters passed to --convert-to. Spreadsheets go through CSV so cell
// contents survive; everything else goes straight to encoded text.
const (
	textFilter = "txt:Text (encoded):UTF8"
	csvFilter  = "csv:Text - txt - csv (StarCalc):32,ANSI,76"
)

// Client wraps LibreOffice CLI interactions.
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

// New constructs a LibreOffice client.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("soffice binary required")
	}
	client := &Client{binary: binary, timeout: timeout, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ToText converts a document into a UTF-8 text file under destDir and
// returns the produced path.
func (c *Client) ToText(ctx context.Context, path, destDir string) (string, error) {
	return c.convert(ctx, path, destDir, textFilter, ".txt")
}

// ToCSV converts a spreadsheet into a CSV file under destDir and returns
// the produced path.
func (c *Client) ToCSV(ctx context.Context, path, destDir string) (string, error) {
	return c.convert(ctx, path, destDir, csvFilter, ".csv")
}

// ToImage renders the first slide or page of a document as a PNG under
// destDir. Presentations carry their text as layout, so they go through
// OCR like scans do.
func (c *Client) ToImage(ctx context.Context, path, destDir string) (string, error) {
	return c.convert(ctx, path, destDir, "png", ".png")
}

func (c *Client) convert(ctx context.Context, path, destDir, filter, wantExt string) (string, error) {
	args := []string{"--headless", "--convert-to", filter, "--outdir", destDir, path}
	if _, _, err := services.RunWithTimeout(ctx, c.exec, c.timeout, c.binary, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "soffice", "convert document", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	produced := filepath.Join(destDir, stem+wantExt)
	if _, err := os.Stat(produced); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "soffice", "converted file missing", err)
	}
	return produced, nil
}
