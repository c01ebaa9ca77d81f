package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "forkcast",
	Short: "Nearby restaurant recommendations",
	Long:  "Searches for restaurants near a location, scores and filters them, optionally reranks with an AI model, and returns a bounded, explained recommendation set.",
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
