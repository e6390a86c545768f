package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reclaim/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that the external extraction tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.Check(deps.Requirements(cfg))

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				location := status.Path
				if !status.Found {
					location = "not found"
				}
				rows = append(rows, []string{
					status.Name,
					yesNo(status.Found),
					yesNo(!status.Optional),
					location,
					status.Purpose,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Found", "Required", "Path", "Purpose"},
				rows, nil))

			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("required tools missing: %v", missing)
			}
			return nil
		},
	}
}
