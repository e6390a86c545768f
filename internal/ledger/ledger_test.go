package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndQuery(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	record := &Record{
		RunID:       "run-1",
		SourcePath:  "/rec/f001.pdf",
		DestPath:    "/out/2019/03/Compte_rendu.pdf",
		IdentityKey: "abc123",
		Year:        2019,
		Month:       3,
		Title:       "Compte rendu",
		Outcome:     OutcomeCopied,
	}
	if err := store.Append(ctx, record); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if record.ID == 0 {
		t.Error("ID not assigned")
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned")
	}

	records, err := store.Records(ctx, 10)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	got := records[0]
	if got.RunID != "run-1" || got.Outcome != OutcomeCopied || got.Year != 2019 || got.Month != 3 {
		t.Errorf("got %+v", got)
	}

	latest, err := store.LatestByIdentity(ctx, "abc123")
	if err != nil {
		t.Fatalf("LatestByIdentity: %v", err)
	}
	if latest == nil || latest.ID != record.ID {
		t.Errorf("LatestByIdentity = %+v", latest)
	}

	missing, err := store.LatestByIdentity(ctx, "nope")
	if err != nil {
		t.Fatalf("LatestByIdentity(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("LatestByIdentity(missing) = %+v", missing)
	}
}

func TestDestinationTaken(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, &Record{
		RunID: "run-1", SourcePath: "/rec/a", DestPath: "/out/x.pdf",
		IdentityKey: "k1", Outcome: OutcomeCopied,
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, &Record{
		RunID: "run-1", SourcePath: "/rec/b", DestPath: "/out/y.pdf",
		IdentityKey: "k2", Outcome: OutcomeFailed,
	}); err != nil {
		t.Fatal(err)
	}

	taken, err := store.DestinationTaken(ctx, "/out/x.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if !taken {
		t.Error("copied destination not reported taken")
	}
	taken, err = store.DestinationTaken(ctx, "/out/y.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if taken {
		t.Error("failed destination reported taken")
	}
}

func TestSummarizeAndLatestRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	outcomes := []string{OutcomeCopied, OutcomeCopied, OutcomeSkipped, OutcomeSkippedDry, OutcomeFailed}
	for i, outcome := range outcomes {
		if err := store.Append(ctx, &Record{
			RunID: "run-2", SourcePath: "/rec/f", DestPath: filepath.Join("/out", string(rune('a'+i))),
			IdentityKey: string(rune('a' + i)), Outcome: outcome,
		}); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := store.Summarize(ctx, "run-2")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Copied != 2 || summary.Skipped != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}

	runID, err := store.LatestRunID(ctx)
	if err != nil {
		t.Fatalf("LatestRunID: %v", err)
	}
	if runID != "run-2" {
		t.Errorf("LatestRunID = %q", runID)
	}
}

func TestRollbackIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	out := t.TempDir()

	dest := filepath.Join(out, "2019", "03", "doc.pdf")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, &Record{
		RunID: "run-3", SourcePath: "/rec/f", DestPath: dest,
		IdentityKey: "k", Year: 2019, Month: 3, Outcome: OutcomeCopied,
	}); err != nil {
		t.Fatal(err)
	}

	result, err := store.Rollback(ctx, "run-3", nil)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if result.Removed != 1 {
		t.Errorf("Removed = %d, want 1", result.Removed)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination still present")
	}
	if _, err := os.Stat(filepath.Dir(dest)); !os.IsNotExist(err) {
		t.Error("empty month directory not pruned")
	}

	// second rollback is a no-op, not an error
	result, err = store.Rollback(ctx, "run-3", nil)
	if err != nil {
		t.Fatalf("second Rollback: %v", err)
	}
	if result.Removed != 0 || result.AlreadyAbsent != 0 {
		t.Errorf("second rollback = %+v, want all zero", result)
	}

	// the copied record is untouched; the rollback is its own event
	records, err := store.RecordsForRun(ctx, "run-3")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Outcome != OutcomeCopied || records[1].Outcome != OutcomeRolledBack {
		t.Errorf("outcomes = %s, %s", records[0].Outcome, records[1].Outcome)
	}
	if records[1].DestPath != dest || records[1].IdentityKey != "k" {
		t.Errorf("rollback event = %+v", records[1])
	}
}

func TestRollbackFreesDestination(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	out := t.TempDir()

	dest := filepath.Join(out, "2019", "03", "doc.pdf")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, &Record{
		RunID: "run-5", SourcePath: "/rec/f", DestPath: dest,
		IdentityKey: "k", Year: 2019, Month: 3, Outcome: OutcomeCopied,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Rollback(ctx, "run-5", nil); err != nil {
		t.Fatal(err)
	}
	taken, err := store.DestinationTaken(ctx, dest)
	if err != nil {
		t.Fatal(err)
	}
	if taken {
		t.Error("rolled-back destination still reported taken")
	}

	// copying there again appends a fresh record and reclaims the path
	if err := store.Append(ctx, &Record{
		RunID: "run-6", SourcePath: "/rec/f", DestPath: dest,
		IdentityKey: "k", Year: 2019, Month: 3, Outcome: OutcomeCopied,
	}); err != nil {
		t.Fatalf("re-copy append: %v", err)
	}
	taken, err = store.DestinationTaken(ctx, dest)
	if err != nil {
		t.Fatal(err)
	}
	if !taken {
		t.Error("re-copied destination not reported taken")
	}
}

func TestRollbackSkipsMissingFiles(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, &Record{
		RunID: "run-4", SourcePath: "/rec/f",
		DestPath:    filepath.Join(t.TempDir(), "never-created.pdf"),
		IdentityKey: "k", Outcome: OutcomeCopied,
	}); err != nil {
		t.Fatal(err)
	}

	result, err := store.Rollback(ctx, "run-4", nil)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if result.AlreadyAbsent != 1 || result.Removed != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")
	ctx := context.Background()

	store, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.ExecContext(ctx,
		"INSERT INTO schema_version (version) VALUES (99)"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if _, err := Open(ctx, dbPath); err == nil {
		t.Error("newer schema accepted")
	}
}
