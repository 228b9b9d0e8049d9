package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/assess"
	"github.com/user/sbsmap/pkg/catalog"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess a collected org snapshot against the SBS catalog",
	Long: `Runs the deterministic rule registry over an already-collected org
snapshot and emits one finding per catalog control. With --dry-run no
snapshot is read; the stubbed weak-org values stand in for collection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pinPath, _ := cmd.Flags().GetString("source")
		snapPath, _ := cmd.Flags().GetString("collector-output")
		org, _ := cmd.Flags().GetString("org")
		env, _ := cmd.Flags().GetString("env")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		outPath, _ := cmd.Flags().GetString("out")

		cat, err := catalog.Load(pinPath)
		if err != nil {
			return err
		}

		var snap *assess.Snapshot
		if !dryRun {
			if snapPath == "" {
				return fmt.Errorf("--collector-output is required unless --dry-run is set")
			}
			snap, err = assess.LoadSnapshot(snapPath)
			if err != nil {
				return err
			}
			if org == "" {
				org = snap.Org
			}
		}

		set, err := assess.Run(cat, snap, assess.Options{Org: org, Env: env, DryRun: dryRun}, time.Now().UTC())
		if err != nil {
			return err
		}

		log.Info().
			Str("assessment_id", set.AssessmentID).
			Int("findings", len(set.Findings)).
			Bool("dry_run", dryRun).
			Msg("assessment complete")

		data, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if outPath == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(outPath, data, 0644)
	},
}

func init() {
	assessCmd.Flags().String("source", "config/sbs_source.yaml", "Source pin file for the SBS catalog")
	assessCmd.Flags().String("collector-output", "", "Collected org snapshot JSON")
	assessCmd.Flags().String("org", "", "Org identifier (defaults to the snapshot's org)")
	assessCmd.Flags().String("env", "production", "Environment label")
	assessCmd.Flags().Bool("dry-run", false, "Use the stubbed weak-org values instead of a snapshot")
	assessCmd.Flags().String("out", "", "Write the finding set JSON here (default stdout)")
	rootCmd.AddCommand(assessCmd)
}
