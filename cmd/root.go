package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hartfield-labs/factfind/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "factfind",
	Short: "Synthetic fact-find dialogue benchmark",
	Long:  "Generates synthetic client fact-find forms, turns them into advisor dialogues, re-extracts the facts with Claude models, and scores extraction accuracy.",
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
