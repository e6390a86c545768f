package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"reclaim/internal/logging"
)

// RollbackResult reports what a rollback did.
type RollbackResult struct {
	Removed       int
	AlreadyAbsent int
	DirsRemoved   int
}

// Rollback undoes a run: every file the run copied is removed, newest
// first, and a rolled_back event is appended for it. The copied records
// themselves are never touched, so the ledger stays a faithful history.
// Files already gone are fine, and copies that already carry a rolled_back
// event are skipped, so running rollback twice is harmless. Directories
// left empty by the removals are pruned.
func (s *Store) Rollback(ctx context.Context, runID string, logger *slog.Logger) (RollbackResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	records, err := s.RecordsForRun(ctx, runID)
	if err != nil {
		return RollbackResult{}, err
	}

	// Newest copied/rolled_back event per destination within this run.
	state := make(map[string]string)
	for _, record := range records {
		if record.Outcome == OutcomeCopied || record.Outcome == OutcomeRolledBack {
			state[record.DestPath] = record.Outcome
		}
	}

	var result RollbackResult
	dirs := make(map[string]bool)
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		if record.Outcome != OutcomeCopied || state[record.DestPath] != OutcomeCopied {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := os.Remove(record.DestPath)
		switch {
		case err == nil:
			result.Removed++
			logger.Info("removed", logging.String("path", record.DestPath))
		case errors.Is(err, fs.ErrNotExist):
			result.AlreadyAbsent++
		default:
			return result, fmt.Errorf("remove %s: %w", record.DestPath, err)
		}
		event := &Record{
			RunID:       record.RunID,
			SourcePath:  record.SourcePath,
			DestPath:    record.DestPath,
			IdentityKey: record.IdentityKey,
			Year:        record.Year,
			Month:       record.Month,
			Title:       record.Title,
			Outcome:     OutcomeRolledBack,
		}
		if err := s.Append(ctx, event); err != nil {
			return result, err
		}
		state[record.DestPath] = OutcomeRolledBack
		dirs[filepath.Dir(record.DestPath)] = true
	}

	result.DirsRemoved = pruneEmptyDirs(dirs)
	return result, nil
}

// pruneEmptyDirs removes directories emptied by the rollback, walking up
// one level at a time. os.Remove refuses non-empty directories, which is
// exactly the guard needed.
func pruneEmptyDirs(dirs map[string]bool) int {
	removed := 0
	for dir := range dirs {
		for {
			if err := os.Remove(dir); err != nil {
				break
			}
			removed++
			dir = filepath.Dir(dir)
		}
	}
	return removed
}
