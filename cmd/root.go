package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goldencrust/interview-agent/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "interview-agent",
	Short: "Voice-driven Arabic job interview agent",
	Long:  "Runs automated voice interviews for Golden Crust hiring: fact-anchored question generation, live hallucination correction, Jordanian-dialect persona, post-interview credibility scoring.",
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
