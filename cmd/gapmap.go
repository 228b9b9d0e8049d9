package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/backlog"
	"github.com/user/sbsmap/pkg/catalog"
	"github.com/user/sbsmap/pkg/findings"
	"github.com/user/sbsmap/pkg/mapping"
	"github.com/user/sbsmap/pkg/report"
)

var gapmapCmd = &cobra.Command{
	Use:   "gapmap",
	Short: "Map collector findings onto the SBS catalog and build the gap backlog",
	RunE: func(cmd *cobra.Command, args []string) error {
		pinPath, _ := cmd.Flags().GetString("source")
		findingsPath, _ := cmd.Flags().GetString("findings")
		aliasPath, _ := cmd.Flags().GetString("aliases")
		frameworkPath, _ := cmd.Flags().GetString("framework-map")
		outPath, _ := cmd.Flags().GetString("out")
		outMD, _ := cmd.Flags().GetString("out-md")

		cat, err := catalog.Load(pinPath)
		if err != nil {
			return err
		}
		aliases, err := mapping.LoadAliasMap(aliasPath)
		if err != nil {
			return err
		}
		framework, err := mapping.LoadFrameworkMapping(frameworkPath)
		if err != nil {
			return err
		}
		set, err := findings.LoadSet(findingsPath)
		if err != nil {
			return err
		}

		resolver := mapping.NewResolver(cat, aliases, framework)
		res := resolver.Resolve(set.Findings)

		bl := backlog.Build(set.AssessmentID, cat.Version, cat.Len(), res, time.Now().UTC())

		log.Info().
			Str("assessment_id", bl.AssessmentID).
			Int("mapped", bl.Summary.MappedFindings).
			Int("unmapped", bl.Summary.UnmappedFindings).
			Int("invalid", bl.Summary.InvalidMappingEntries).
			Msg("gap map resolved")

		if err := bl.Write(outPath); err != nil {
			return err
		}
		if outMD != "" {
			if err := writeRendered(outMD, report.GapMatrix(bl)); err != nil {
				return err
			}
			log.Info().Str("path", outMD).Msg("gap matrix written")
		}
		return nil
	},
}

func init() {
	gapmapCmd.Flags().String("source", "config/sbs_source.yaml", "Source pin file for the SBS catalog")
	gapmapCmd.Flags().String("findings", "", "Finding set JSON from the assessor or collector")
	gapmapCmd.Flags().String("aliases", "config/control_mapping.yaml", "Legacy-to-SBS alias map")
	gapmapCmd.Flags().String("framework-map", "config/sbs_to_sscf_mapping.yaml", "SBS-to-SSCF overrides and category defaults")
	gapmapCmd.Flags().String("out", "sbs_gap_backlog.json", "Backlog JSON output path")
	gapmapCmd.Flags().String("out-md", "", "Also render the gap matrix markdown here")
	gapmapCmd.MarkFlagRequired("findings")
	rootCmd.AddCommand(gapmapCmd)
}
