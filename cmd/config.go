package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/sbsmap/pkg/adk"
	"github.com/user/sbsmap/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (providers, models, keys)",
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the API key for a provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		key, _ := cmd.Flags().GetString("key")

		if provider == "" || key == "" {
			return fmt.Errorf("--provider and --key are required")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		cfg.SetAPIKey(strings.ToLower(provider), key)
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("API key saved for provider: %s\n", provider)
		return nil
	},
}

var setModelCmd = &cobra.Command{
	Use:   "set-model",
	Short: "Set the active provider and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		model, _ := cmd.Flags().GetString("model")

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		if provider != "" {
			cfg.SelectedProvider = strings.ToLower(provider)
		}
		if model != "" {
			cfg.SelectedModel = model
		}

		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("Active configuration updated: Provider=%s, Model=%s\n", cfg.SelectedProvider, cfg.SelectedModel)
		return nil
	},
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List available models from the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		provider := cfg.SelectedProvider
		if provider == "" {
			provider = "gemini"
		}
		apiKey := cfg.GetAPIKey(provider)
		if apiKey == "" {
			return fmt.Errorf("no API key found for %s", provider)
		}

		fmt.Printf("Fetching models for %s...\n", provider)
		ctx := context.Background()
		p, err := adk.NewProvider(ctx, provider, apiKey, "")
		if err != nil {
			return err
		}

		models, err := p.ListModels(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("\nAvailable Models (%s):\n", provider)
		for _, m := range models {
			mark := " "
			if m == cfg.SelectedModel {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, m)
		}
		return nil
	},
}

func init() {
	setKeyCmd.Flags().StringP("provider", "p", "", "Provider (gemini)")
	setKeyCmd.Flags().StringP("key", "k", "", "API Key")

	setModelCmd.Flags().StringP("provider", "p", "", "Provider (gemini)")
	setModelCmd.Flags().StringP("model", "m", "", "Model name")

	configCmd.AddCommand(setKeyCmd)
	configCmd.AddCommand(setModelCmd)
	configCmd.AddCommand(listModelsCmd)
	rootCmd.AddCommand(configCmd)
}
