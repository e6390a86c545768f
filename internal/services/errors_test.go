package services_test

import (
	"errors"
	"strings"
	"testing"

	"reclaim/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "extraction", "pdftotext", "conversion failed", cause)

	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected wrapped error to match ErrExternalTool")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to match the cause")
	}
	msg := err.Error()
	for _, fragment := range []string{"extraction", "pdftotext", "conversion failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected message to contain %q, got %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "something odd", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatal("expected nil marker to default to ErrTransient")
	}
}

func TestIsToolFailure(t *testing.T) {
	if !services.IsToolFailure(services.Wrap(services.ErrTimeout, "x", "y", "", nil)) {
		t.Fatal("timeout should count as tool failure")
	}
	if services.IsToolFailure(services.Wrap(services.ErrValidation, "x", "y", "", nil)) {
		t.Fatal("validation error should not count as tool failure")
	}
}

func TestTruncate(t *testing.T) {
	if got := services.Truncate("  short  ", 100); got != "short" {
		t.Fatalf("expected trim only, got %q", got)
	}
	long := strings.Repeat("a", 50)
	got := services.Truncate(long, 10)
	if !strings.HasSuffix(got, "...(truncated)") || len(got) != 10+len("...(truncated)") {
		t.Fatalf("unexpected truncation result %q", got)
	}
}
