package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/backlog"
	"github.com/user/sbsmap/pkg/benchmark"
	"github.com/user/sbsmap/pkg/report"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Score a gap backlog against the SSCF domain index",
	RunE: func(cmd *cobra.Command, args []string) error {
		backlogPath, _ := cmd.Flags().GetString("backlog")
		indexPath, _ := cmd.Flags().GetString("index")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		outPath, _ := cmd.Flags().GetString("out")
		outMD, _ := cmd.Flags().GetString("out-md")

		bl, err := backlog.Load(backlogPath)
		if err != nil {
			return err
		}
		idx, err := benchmark.LoadIndex(indexPath)
		if err != nil {
			return err
		}

		card := benchmark.Run(idx, bl.MappedItems, threshold, bl.AssessmentID, time.Now().UTC())

		log.Info().
			Int("covered", card.Summary.DomainsCovered).
			Int("partial", card.Summary.DomainsPartial).
			Int("gap", card.Summary.DomainsGap).
			Int("not_evaluated", card.Summary.DomainsNotEvaluated).
			Int("unmatched", card.Summary.UnmatchedFindings).
			Msg("scorecard built")

		if err := card.Write(outPath); err != nil {
			return err
		}
		if outMD != "" {
			if err := writeRendered(outMD, report.Scorecard(card)); err != nil {
				return err
			}
			log.Info().Str("path", outMD).Msg("scorecard markdown written")
		}
		return nil
	},
}

func init() {
	benchmarkCmd.Flags().String("backlog", "sbs_gap_backlog.json", "Gap backlog JSON from gapmap")
	benchmarkCmd.Flags().String("index", "config/sscf_control_index.yaml", "SSCF control index")
	benchmarkCmd.Flags().Float64("threshold", benchmark.DefaultThresholdPct, "Covered threshold percentage")
	benchmarkCmd.Flags().String("out", "sscf_scorecard.json", "Scorecard JSON output path")
	benchmarkCmd.Flags().String("out-md", "", "Also render the scorecard markdown here")
	rootCmd.AddCommand(benchmarkCmd)
}
