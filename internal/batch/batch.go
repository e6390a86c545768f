// Package batch drives a run: every recovered file goes through identity,
// extraction, inference, and placement, with one ledger record per file.
// Extraction fans out across workers; resolution and the ledger stay
// serialized so collision handling and dedupe remain deterministic.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"reclaim/internal/dateinfer"
	"reclaim/internal/extraction"
	"reclaim/internal/fileutil"
	"reclaim/internal/identity"
	"reclaim/internal/ledger"
	"reclaim/internal/logging"
	"reclaim/internal/naming"
	"reclaim/internal/services"
	"reclaim/internal/titleinfer"
)

// Extractor is the extraction stage contract.
type Extractor interface {
	Extract(ctx context.Context, path string) *extraction.Result
}

// Cache stores extraction results between runs.
type Cache interface {
	Get(key string) *extraction.Result
	Put(key string, result *extraction.Result) error
}

// Options configures an Orchestrator.
type Options struct {
	OutputDir    string
	StateDir     string
	IdentityMode identity.Mode
	Workers      int
	DryRun       bool
	KeepNames    bool
}

// FileFailure records one file that could not be processed.
type FileFailure struct {
	Path  string
	Error string
}

// Summary is the outcome of a run.
type Summary struct {
	RunID    string
	Total    int
	Copied   int
	Skipped  int
	Failed   int
	Failures []FileFailure
}

// Orchestrator coordinates a batch run.
type Orchestrator struct {
	extractor Extractor
	cache     Cache
	dates     *dateinfer.Inferencer
	titles    *titleinfer.Inferencer
	store     *ledger.Store
	logger    *slog.Logger
	opts      Options
}

func New(extractor Extractor, cache Cache, dates *dateinfer.Inferencer, titles *titleinfer.Inferencer, store *ledger.Store, logger *slog.Logger, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		extractor: extractor,
		cache:     cache,
		dates:     dates,
		titles:    titles,
		store:     store,
		logger:    logger,
		opts:      opts,
	}
}

// item carries one file through the pipeline.
type item struct {
	path     string
	identity identity.Identity
	result   *extraction.Result
	err      error
}

// Run processes files and returns a summary. Per-file errors are recorded
// and skipped over; only ledger write failures and cancellation abort the
// run, since a ledger that stops reflecting reality is worse than a short
// batch.
func (o *Orchestrator) Run(ctx context.Context, files []string) (Summary, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := o.logger.With(logging.String(logging.FieldRunID, runID))

	summary := Summary{RunID: runID, Total: len(files)}
	logger.Info("run started",
		logging.Int("files", len(files)),
		logging.Bool("dry_run", o.opts.DryRun))

	items := o.extractAll(ctx, files)

	resolver := naming.New(o.opts.OutputDir, &destIndex{ctx: ctx, store: o.store})
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome, err := o.place(ctx, resolver, it, runID)
		if err != nil {
			return summary, err
		}
		switch outcome.Outcome {
		case ledger.OutcomeCopied:
			summary.Copied++
		case ledger.OutcomeSkipped, ledger.OutcomeSkippedDry:
			summary.Skipped++
		case ledger.OutcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, FileFailure{
				Path:  it.path,
				Error: outcome.ErrorMessage,
			})
		}
	}

	if err := o.writeSummaryLog(ctx, runID); err != nil {
		logger.Warn("summary log not written", logging.Error(err))
	}

	logger.Info("run finished",
		logging.Int("copied", summary.Copied),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// extractAll runs identity and extraction across the worker pool, keeping
// input order so later collision suffixes stay stable between runs.
func (o *Orchestrator) extractAll(ctx context.Context, files []string) []item {
	items := make([]item, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				items[idx] = o.extractOne(ctx, files[idx])
			}
		}()
	}

feed:
	for idx := range files {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return items
}

func (o *Orchestrator) extractOne(ctx context.Context, path string) item {
	it := item{path: path}
	if err := ctx.Err(); err != nil {
		it.err = err
		return it
	}

	id, err := identity.FromFile(path, o.opts.IdentityMode)
	if err != nil {
		it.err = fmt.Errorf("derive identity: %w", err)
		return it
	}
	it.identity = id

	if o.cache != nil {
		if cached := o.cache.Get(id.Key()); cached != nil {
			it.result = cached
			return it
		}
	}

	ctx = services.WithSourcePath(ctx, path)
	it.result = o.extractor.Extract(ctx, path)
	if o.cache != nil {
		if err := o.cache.Put(id.Key(), it.result); err != nil {
			o.logger.Warn("cache write failed",
				logging.String(logging.FieldSourcePath, path),
				logging.Error(err))
		}
	}
	return it
}

// place resolves and executes the placement for one file. The returned
// record is what was appended to the ledger; a non-nil error aborts the run.
func (o *Orchestrator) place(ctx context.Context, resolver *naming.Resolver, it item, runID string) (*ledger.Record, error) {
	record := &ledger.Record{
		RunID:      runID,
		SourcePath: it.path,
	}

	fail := func(message string) (*ledger.Record, error) {
		record.Outcome = ledger.OutcomeFailed
		record.ErrorMessage = message
		o.logger.Warn("file failed",
			logging.String(logging.FieldSourcePath, it.path),
			logging.String("reason", message))
		return record, o.store.Append(ctx, record)
	}

	if it.err != nil {
		return fail(it.err.Error())
	}
	record.IdentityKey = it.identity.Key()

	// a file already placed by an earlier run is skipped, which is what
	// makes reruns over the same source tree safe
	previous, err := o.store.LatestByIdentity(ctx, record.IdentityKey)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.Outcome == ledger.OutcomeCopied {
		if _, statErr := os.Stat(previous.DestPath); statErr == nil {
			record.DestPath = previous.DestPath
			record.Outcome = ledger.OutcomeSkipped
			return record, o.store.Append(ctx, record)
		}
	}

	result := it.result
	if !result.Success && len(result.Metadata) == 0 {
		return fail(result.ErrorDetail)
	}

	date := o.dates.Infer(result, it.identity.ModTime)
	var title titleinfer.Title
	if !o.opts.KeepNames {
		title = o.titles.Infer(result, stem(it.path))
	}
	record.Year = date.Year
	record.Month = date.Month
	record.Title = title.Text

	placement, err := resolver.Resolve(naming.Request{
		SourcePath: it.path,
		Title:      title.Text,
		Extension:  detectedExtension(it.path, result.Format),
		Year:       date.Year,
		Month:      date.Month,
		KeepName:   o.opts.KeepNames,
	})
	if err != nil {
		return fail(err.Error())
	}
	record.DestPath = placement.Path

	if o.opts.DryRun {
		record.Outcome = ledger.OutcomeSkippedDry
		o.logger.Info("would copy",
			logging.String(logging.FieldSourcePath, it.path),
			logging.String("dest", placement.Path),
			logging.String("date", date.String()))
		return record, o.store.Append(ctx, record)
	}

	if err := resolver.EnsureDir(placement); err != nil {
		resolver.Release(placement.Path)
		return fail(err.Error())
	}
	if err := fileutil.CopyFileVerified(it.path, placement.Path); err != nil {
		resolver.Release(placement.Path)
		return fail(err.Error())
	}
	if err := fileutil.PreserveTimes(it.path, placement.Path); err != nil {
		o.logger.Warn("timestamps not preserved",
			logging.String("dest", placement.Path),
			logging.Error(err))
	}

	record.Outcome = ledger.OutcomeCopied
	o.logger.Info("copied",
		logging.String(logging.FieldSourcePath, it.path),
		logging.String("dest", placement.Path),
		logging.String("date", date.String()),
		logging.String("title_source", title.Source))
	return record, o.store.Append(ctx, record)
}

// destIndex exposes the ledger's claimed destinations to the resolver.
type destIndex struct {
	ctx   context.Context
	store *ledger.Store
}

func (d *destIndex) Reserved(path string) (bool, error) {
	return d.store.DestinationTaken(d.ctx, path)
}

// kindExtensions supplies an extension for extensionless carved files when
// the format leaves no doubt.
var kindExtensions = map[extraction.Kind]string{
	extraction.KindPDF:  "pdf",
	extraction.KindText: "txt",
	extraction.KindMbox: "mbox",
	extraction.KindZip:  "zip",
	extraction.KindTar:  "tar",
}

func detectedExtension(path string, kind extraction.Kind) string {
	if filepath.Ext(path) != "" {
		return ""
	}
	return kindExtensions[kind]
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
