package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"orflow/internal/config"
	"orflow/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "orflow",
	Short: "orflow computes OR timeline KPIs and case anomaly flags",
	Long: `Turns timestamped surgical milestone events into operational KPIs
(on-time starts, turnovers, utilization, idle time) and case-level anomaly
flags evaluated against historical baselines.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("orflow starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
