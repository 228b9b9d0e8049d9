package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Normalize the pinned SBS benchmark into a catalog document",
	RunE: func(cmd *cobra.Command, args []string) error {
		pinPath, _ := cmd.Flags().GetString("source")
		outPath, _ := cmd.Flags().GetString("out")

		cat, err := catalog.Load(pinPath)
		if err != nil {
			return err
		}

		log.Info().
			Str("version", cat.Version).
			Int("controls", cat.Len()).
			Msg("catalog imported")

		doc := struct {
			Title    string                  `json:"benchmark_title"`
			Version  string                  `json:"benchmark_version"`
			IDPrefix string                  `json:"id_prefix"`
			Controls []catalog.ControlRecord `json:"controls"`
		}{cat.Title, cat.Version, cat.IDPrefix, cat.Controls()}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if outPath == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("writing catalog: %w", err)
		}
		log.Info().Str("path", outPath).Msg("catalog written")
		return nil
	},
}

func init() {
	importCmd.Flags().String("source", "config/sbs_source.yaml", "Source pin file (benchmark name, version pin, XML path)")
	importCmd.Flags().String("out", "", "Write the normalized catalog JSON here (default stdout)")
	rootCmd.AddCommand(importCmd)
}
