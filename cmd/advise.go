package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/adk"
	"github.com/user/sbsmap/pkg/backlog"
	"github.com/user/sbsmap/pkg/benchmark"
	"github.com/user/sbsmap/pkg/config"
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Generate a remediation narrative for a gap backlog",
	Long: `Sends the aggregated backlog (and scorecard, if given) to the
configured LLM provider and prints a prioritized remediation plan.
Advisory only: nothing in the backlog or scorecard is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backlogPath, _ := cmd.Flags().GetString("backlog")
		scorecardPath, _ := cmd.Flags().GetString("scorecard")

		bl, err := backlog.Load(backlogPath)
		if err != nil {
			return err
		}
		var card *benchmark.Scorecard
		if scorecardPath != "" {
			card, err = benchmark.LoadScorecard(scorecardPath)
			if err != nil {
				return err
			}
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		providerName := cfg.SelectedProvider
		if providerName == "" {
			providerName = "gemini"
		}
		apiKey := cfg.GetAPIKey(providerName)
		if apiKey == "" && providerName == "gemini" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return fmt.Errorf("no API key for provider %s; run 'sbsmap config set-key'", providerName)
		}

		ctx := context.Background()
		provider, err := adk.NewProvider(ctx, providerName, apiKey, cfg.SelectedModel)
		if err != nil {
			return err
		}
		if closer, ok := provider.(interface{ Close() }); ok {
			defer closer.Close()
		}

		log.Info().
			Str("provider", providerName).
			Str("model", cfg.SelectedModel).
			Msg("requesting remediation advice")

		narrative, err := adk.NewAdvisor(provider).Advise(ctx, bl, card)
		if err != nil {
			return err
		}
		fmt.Println(narrative)
		return nil
	},
}

func init() {
	adviseCmd.Flags().String("backlog", "sbs_gap_backlog.json", "Gap backlog JSON from gapmap")
	adviseCmd.Flags().String("scorecard", "", "Optional SSCF scorecard JSON from benchmark")
	rootCmd.AddCommand(adviseCmd)
}
