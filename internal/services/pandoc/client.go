// Package pandoc wraps the pandoc universal document converter, used for
// modern markup-bearing formats: docx, rtf, odt, and html.
package pandoc

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"reclaim/internal/services"
)

// Client wraps pandoc CLI interactions.
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

// New constructs a pandoc client.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("pandoc binary required")
	}
	client := &Client{binary: binary, timeout: timeout, exec: services.CommandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ToText converts a document to plain text at destPath and returns the
// produced text.
func (c *Client) ToText(ctx context.Context, path, destPath string) (string, error) {
	args := []string{"-o", destPath, "-t", "plain", path}
	if _, _, err := services.RunWithTimeout(ctx, c.exec, c.timeout, c.binary, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "pandoc", "convert document", err)
	}
	data, err := os.ReadFile(destPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "extraction", "pandoc", "converted file missing", err)
	}
	return string(data), nil
}
