package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/backlog"
	"github.com/user/sbsmap/pkg/report"
)

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Compare two gap backlogs and report status transitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		priorPath, _ := cmd.Flags().GetString("prior")
		currentPath, _ := cmd.Flags().GetString("current")
		outPath, _ := cmd.Flags().GetString("out")
		outMD, _ := cmd.Flags().GetString("out-md")

		prior, err := backlog.Load(priorPath)
		if err != nil {
			return err
		}
		current, err := backlog.Load(currentPath)
		if err != nil {
			return err
		}

		diff := backlog.Compare(prior, current)

		log.Info().
			Int("new", len(diff.New)).
			Int("resolved", len(diff.Resolved)).
			Int("regressed", len(diff.Regressed)).
			Int("improved", len(diff.Improved)).
			Msg("drift computed")

		data, err := json.MarshalIndent(diff, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if outMD != "" {
			if err := writeRendered(outMD, report.DriftDiff(diff)); err != nil {
				return err
			}
		}
		if outPath == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(outPath, data, 0644)
	},
}

func init() {
	driftCmd.Flags().String("prior", "", "Prior gap backlog JSON")
	driftCmd.Flags().String("current", "", "Current gap backlog JSON")
	driftCmd.Flags().String("out", "", "Diff JSON output path (default stdout)")
	driftCmd.Flags().String("out-md", "", "Also render the drift report markdown here")
	driftCmd.MarkFlagRequired("prior")
	driftCmd.MarkFlagRequired("current")
	rootCmd.AddCommand(driftCmd)
}
