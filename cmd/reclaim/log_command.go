package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"reclaim/internal/ledger"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := ctx.ledgerPath()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var records []*ledger.Record
			if runID != "" {
				records, err = store.RecordsForRun(cmd.Context(), runID)
			} else {
				records, err = store.Records(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ledger entries.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				date := ""
				if record.Year > 0 {
					date = fmt.Sprintf("%04d", record.Year)
					if record.Month > 0 {
						date = fmt.Sprintf("%04d-%02d", record.Year, record.Month)
					}
				}
				detail := record.DestPath
				if record.Outcome == ledger.OutcomeFailed {
					detail = record.ErrorMessage
				}
				rows = append(rows, []string{
					record.CreatedAt.Local().Format("2006-01-02 15:04"),
					record.Outcome,
					date,
					filepath.Base(record.SourcePath),
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Time", "Outcome", "Date", "Source", "Destination"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show all entries for one run")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")
	return cmd
}
