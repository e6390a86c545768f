package services

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Executor abstracts command execution so tool clients can be stubbed in tests.
type Executor interface {
	Run(ctx context.Context, binary string, args ...string) (stdout, stderr []byte, err error)
}

// CommandExecutor runs binaries through os/exec.
type CommandExecutor struct{}

func (CommandExecutor) Run(ctx context.Context, binary string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			err = Wrap(ErrTimeout, "", binary, "tool did not finish within the configured timeout", ctxErr)
		} else {
			err = Wrap(ErrExternalTool, "", binary, Truncate(errb.String(), 8<<10), err)
		}
	}
	return out.Bytes(), errb.Bytes(), err
}

// RunWithTimeout runs a binary with a bounded deadline layered over ctx.
// A zero timeout runs without an additional deadline.
func RunWithTimeout(ctx context.Context, exec Executor, timeout time.Duration, binary string, args ...string) ([]byte, []byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return exec.Run(ctx, binary, args...)
}

// Truncate caps a string for inclusion in error messages and logs.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
