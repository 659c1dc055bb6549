package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"orflow/internal/analytics"
	"orflow/internal/orcase"
)

var analyzeInput string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute dashboard KPIs for a batch file",
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := orcase.LoadBatch(analyzeInput)
		if err != nil {
			return err
		}

		kpis := analytics.ComputeDashboard(*batch)
		log.Info().Int("cases", len(batch.Cases)).Msg("Dashboard computed")

		return printJSON(kpis)
	},
}

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Evaluate flag rules and the anomaly detector for a batch file",
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := orcase.LoadBatch(analyzeInput)
		if err != nil {
			return err
		}

		result, err := analytics.EvaluateBatch(cmd.Context(), *batch, cfg.Workers)
		if err != nil {
			return err
		}

		return printJSON(result.Flags)
	},
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{analyzeCmd, flagsCmd} {
		cmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "path to the batch JSON file")
		_ = cmd.MarkFlagRequired("input")
		rootCmd.AddCommand(cmd)
	}
}
