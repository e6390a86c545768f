package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reclaim/internal/ledger"
)

func newRollbackCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback [run-id]",
		Short: "Remove the files a run copied and mark its records rolled back",
		Long:  "Undoes a run by deleting the copies it placed, newest first. Originals are never touched. Without an argument the most recent run is rolled back. Running it again on the same run is a no-op.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			lock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			dbPath, err := ctx.ledgerPath()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runID := ""
			if len(args) == 1 {
				runID = args[0]
			} else {
				runID, err = store.LatestRunID(cmd.Context())
				if err != nil {
					return err
				}
				if runID == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty, nothing to roll back.")
					return nil
				}
			}

			result, err := store.Rollback(cmd.Context(), runID, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Rolled back run %s: %d removed, %d already absent, %d directories pruned\n",
				runID, result.Removed, result.AlreadyAbsent, result.DirsRemoved)
			return nil
		},
	}
	return cmd
}
