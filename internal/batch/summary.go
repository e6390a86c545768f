package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeSummaryLog renders a run's ledger records into a plain text file
// under the state directory, one line per file. The ledger stays the
// authority; this is the version you can read over someone's shoulder.
func (o *Orchestrator) writeSummaryLog(ctx context.Context, runID string) error {
	records, err := o.store.RecordsForRun(ctx, runID)
	if err != nil {
		return err
	}

	dir := filepath.Join(o.opts.StateDir, "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create runs directory: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s\n\n", runID)
	for _, record := range records {
		fmt.Fprintf(&sb, "%-15s %s", record.Outcome, record.SourcePath)
		if record.DestPath != "" {
			fmt.Fprintf(&sb, " -> %s", record.DestPath)
		}
		if record.ErrorMessage != "" {
			fmt.Fprintf(&sb, " (%s)", record.ErrorMessage)
		}
		sb.WriteByte('\n')
	}

	path := filepath.Join(dir, runID+".log")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write summary log: %w", err)
	}
	return nil
}
