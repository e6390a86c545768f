package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"reclaim/internal/batch"
	"reclaim/internal/config"
	"reclaim/internal/dateinfer"
	"reclaim/internal/deps"
	"reclaim/internal/extraction"
	"reclaim/internal/identity"
	"reclaim/internal/ledger"
	"reclaim/internal/services/exiftool"
	"reclaim/internal/services/pandoc"
	"reclaim/internal/services/poppler"
	"reclaim/internal/services/soffice"
	"reclaim/internal/services/tesseract"
	"reclaim/internal/textcache"
	"reclaim/internal/titleinfer"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var keepNames bool
	var assumeYes bool
	var workers int
	var outputDir string
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "run <path>...",
		Short: "Infer identities and file recovered files into the output tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyPathOverrides(cfg, outputDir, cacheDir); err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			statuses := deps.Check(deps.Requirements(cfg))
			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("required tools missing: %v (run 'reclaim deps' for details)", missing)
			}

			files, err := collectFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files to process.")
				return nil
			}

			if !dryRun && !assumeYes {
				if !confirmRun(cmd, len(files), cfg.Paths.OutputDir) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			lock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dbPath, err := ctx.ledgerPath()
			if err != nil {
				return err
			}
			store, err := ledger.Open(runCtx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			orchestrator, err := buildOrchestrator(cfg, store, logger, batchOptions(cfg, dryRun, keepNames, workers))
			if err != nil {
				return err
			}

			summary, err := orchestrator.Run(runCtx, files)
			if err != nil {
				return err
			}
			printSummary(cmd, summary, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Resolve and record placements without copying anything")
	cmd.Flags().BoolVar(&keepNames, "keep-names", false, "Keep original filenames instead of inferred titles")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent extractions (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Place copies under this directory instead of the configured one")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Store extracted text under this directory instead of the configured one")
	return cmd
}

func applyPathOverrides(cfg *config.Config, outputDir, cacheDir string) error {
	if outputDir != "" {
		expanded, err := config.ExpandPath(outputDir)
		if err != nil {
			return err
		}
		cfg.Paths.OutputDir = expanded
	}
	if cacheDir != "" {
		expanded, err := config.ExpandPath(cacheDir)
		if err != nil {
			return err
		}
		cfg.Paths.CacheDir = expanded
	}
	return nil
}

func confirmRun(cmd *cobra.Command, fileCount int, outputDir string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "Copy %d file(s) into %s? [y/N] ", fileCount, outputDir)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func batchOptions(cfg *config.Config, dryRun, keepNames bool, workers int) batch.Options {
	mode, ok := identity.ParseMode(cfg.Inference.Identity)
	if !ok {
		mode = identity.ModeStat
	}
	if workers <= 0 {
		workers = cfg.Workflow.Workers
	}
	return batch.Options{
		OutputDir:    cfg.Paths.OutputDir,
		StateDir:     cfg.Paths.StateDir,
		IdentityMode: mode,
		Workers:      workers,
		DryRun:       dryRun,
		KeepNames:    keepNames,
	}
}

func buildOrchestrator(cfg *config.Config, store *ledger.Store, logger *slog.Logger, opts batch.Options) (*batch.Orchestrator, error) {
	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}
	cache, err := textcache.New(cfg.Paths.CacheDir)
	if err != nil {
		return nil, err
	}
	dates, titles, err := newInferencers(cfg)
	if err != nil {
		return nil, err
	}
	return batch.New(extractor, cache, dates, titles, store, logger, opts), nil
}

func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		expanded, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, expanded)
			continue
		}
		err = filepath.WalkDir(expanded, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func printSummary(cmd *cobra.Command, summary batch.Summary, dryRun bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", summary.RunID)
	rows := [][]string{
		{"Total", fmt.Sprintf("%d", summary.Total)},
		{"Copied", fmt.Sprintf("%d", summary.Copied)},
		{"Skipped", fmt.Sprintf("%d", summary.Skipped)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
	}
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing was copied.")
	}
	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "failed: %s (%s)\n", failure.Path, failure.Error)
	}
}

func newExtractor(cfg *config.Config, logger *slog.Logger) (*extraction.Extractor, error) {
	timeout := cfg.ToolTimeout()

	metadata, err := exiftool.New(cfg.Tools.Exiftool, timeout)
	if err != nil {
		return nil, err
	}
	ocr, err := tesseract.New(cfg.Tools.Tesseract, cfg.Tools.TesseractLangs, timeout)
	if err != nil {
		return nil, err
	}
	pdf, err := poppler.New(cfg.Tools.Pdftotext, cfg.Tools.Pdftoppm, cfg.Tools.DPI, timeout)
	if err != nil {
		return nil, err
	}
	office, err := soffice.New(cfg.Tools.Soffice, timeout)
	if err != nil {
		return nil, err
	}
	document, err := pandoc.New(cfg.Tools.Pandoc, timeout)
	if err != nil {
		return nil, err
	}

	return extraction.New(metadata, ocr, pdf, office, document, extraction.Options{
		ScanLines:   cfg.Inference.ScanLines,
		ForcePDFOCR: cfg.Tools.ForcePDFOCR,
	}, logger), nil
}

func newInferencers(cfg *config.Config) (*dateinfer.Inferencer, *titleinfer.Inferencer, error) {
	dates, err := dateinfer.New(dateinfer.Options{
		Locales:        cfg.Inference.Locales,
		MonthOverrides: cfg.Inference.MonthNames,
		MinYear:        cfg.Inference.MinYear,
		MaxDate:        cfg.MaxInferredDate(),
	})
	if err != nil {
		return nil, nil, err
	}
	titles := titleinfer.New(titleinfer.Options{ScanWindow: 0})
	return dates, titles, nil
}
