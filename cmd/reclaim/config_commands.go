package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reclaim/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit output_dir before the first run; everything else has workable defaults.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"output_dir", cfg.Paths.OutputDir},
				{"cache_dir", cfg.Paths.CacheDir},
				{"state_dir", cfg.Paths.StateDir},
				{"locales", strings.Join(cfg.Inference.Locales, ", ")},
				{"min_year", fmt.Sprintf("%d", cfg.Inference.MinYear)},
				{"max_date", cfg.MaxInferredDate().Format("2006-01-02")},
				{"scan_lines", fmt.Sprintf("%d", cfg.Inference.ScanLines)},
				{"identity", cfg.Inference.Identity},
				{"workers", fmt.Sprintf("%d", cfg.Workflow.Workers)},
				{"tool_timeout", cfg.ToolTimeout().String()},
				{"force_pdf_ocr", yesNo(cfg.Tools.ForcePDFOCR)},
				{"log_format", cfg.Logging.Format},
				{"log_level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}
