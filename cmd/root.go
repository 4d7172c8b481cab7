package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "seomentor",
	Short: "AI SEO audit and roadmap generator",
	Long:  "Scrapes a site's homepage, runs a Claude model cascade to produce a scored SEO audit with a day-by-day roadmap, and serves results over HTTP.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
