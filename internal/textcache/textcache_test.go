package textcache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"reclaim/internal/extraction"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := newCache(t)
	want := &extraction.Result{
		Lines:    []string{"Compte rendu de la reunion", "", "fait le 15 mars 2019"},
		Metadata: map[string]string{"ModifyDate": "2019:03:15", "Title": "Compte rendu"},
		Format:   extraction.KindPDF,
		Success:  true,
	}
	if err := c.Put("abc123", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got := c.Get("abc123")
	if got == nil {
		t.Fatal("Get returned nil after Put")
	}
	if got.Format != want.Format || got.Success != want.Success {
		t.Errorf("got format=%s success=%t", got.Format, got.Success)
	}
	if !reflect.DeepEqual(got.Lines, want.Lines) {
		t.Errorf("Lines = %v, want %v", got.Lines, want.Lines)
	}
	if !reflect.DeepEqual(got.Metadata, want.Metadata) {
		t.Errorf("Metadata = %v, want %v", got.Metadata, want.Metadata)
	}
}

func TestPutFailedResult(t *testing.T) {
	c := newCache(t)
	want := &extraction.Result{
		Metadata:    map[string]string{"CreateDate": "2017:06:01"},
		Format:      extraction.KindLegacyOffice,
		ErrorDetail: "conversion aborted",
	}
	if err := c.Put("deadbeef", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got := c.Get("deadbeef")
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.Success {
		t.Error("Success should be false")
	}
	if got.ErrorDetail != "conversion aborted" {
		t.Errorf("ErrorDetail = %q", got.ErrorDetail)
	}
	if got.Metadata["CreateDate"] != "2017:06:01" {
		t.Errorf("Metadata = %v", got.Metadata)
	}
}

func TestGetMissing(t *testing.T) {
	c := newCache(t)
	if got := c.Get("nothing"); got != nil {
		t.Errorf("Get(missing) = %+v, want nil", got)
	}
}

func TestGetCorruptedEntry(t *testing.T) {
	c := newCache(t)
	path := filepath.Join(c.Dir(), "bad.txt")
	if err := os.WriteFile(path, []byte("garbage without header\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := c.Get("bad"); got != nil {
		t.Errorf("Get(corrupted) = %+v, want nil", got)
	}
}

func TestClearAndStats(t *testing.T) {
	c := newCache(t)
	for _, key := range []string{"one", "two", "three"} {
		if err := c.Put(key, &extraction.Result{Format: extraction.KindText, Success: true, Lines: []string{"x"}}); err != nil {
			t.Fatalf("Put(%s): %v", key, err)
		}
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 3 {
		t.Errorf("Entries = %d, want 3", stats.Entries)
	}
	if stats.TotalBytes == 0 {
		t.Error("TotalBytes = 0")
	}

	removed, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	stats, err = c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries after Clear = %d", stats.Entries)
	}
}
