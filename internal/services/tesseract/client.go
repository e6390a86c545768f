// Package tesseract wraps the tesseract OCR binary. OCR is the slowest
// extraction path and the primary reason the text cache exists.
package tesseract

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"reclaim/internal/services"
)

// reBoxNoise strips the stray pipe/box characters tesseract emits around
// table borders and scan edges.
var reBoxNoise = regexp.MustCompile(`(?m)^[|_\\~=]{1,4}\s*$`)

// Client wraps tesseract CLI interactions.
type Client struct {
	binary  string
	langs   string
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

// New constructs a tesseract client. langs is the -l argument ("fra+eng").
func New(binary, langs string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("tesseract binary required")
	}
	if strings.TrimSpace(langs) == "" {
		langs = "eng"
	}
	client := &Client{binary: binary, langs: langs, timeout: timeout, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// OCR runs tesseract on an image and returns the recognized text.
func (c *Client) OCR(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", c.langs, "-c", "tessedit_page_number=0"}
	out, _, err := services.RunWithTimeout(ctx, c.exec, c.timeout, c.binary, args...)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ocr", "tesseract", "recognize image", err)
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
