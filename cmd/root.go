package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "sbsmap",
	Short: "SBS catalog mapper and SSCF coverage scorer for Salesforce findings",
	Long: `sbsmap normalizes the Salesforce Baseline Standard (SBS) benchmark,
maps collector findings onto it, and scores the result against the
CSA SSCF framework domains. All transforms are deterministic; the run
either completes or fails with the offending id in the error.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.Setup(logFormat, debugMode)
	},
}

var (
	debugMode bool
	logFormat string
	log       zerolog.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console or json)")
}
