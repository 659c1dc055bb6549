package commands

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"orflow/internal/analytics"
	"orflow/internal/export"
	"orflow/internal/orcase"
)

var (
	exportInput string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the KPI and flag report as an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := orcase.LoadBatch(exportInput)
		if err != nil {
			return err
		}

		result, err := analytics.EvaluateBatch(cmd.Context(), *batch, cfg.Workers)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = filepath.Join(cfg.ReportDir, "orflow-report.xlsx")
		}

		if err := export.WriteReport(out, result); err != nil {
			return err
		}

		log.Info().Str("path", out).Int("flags", len(result.Flags)).Msg("Report written")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "path to the batch JSON file")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output workbook path (default: report dir)")
	_ = exportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd)
}
