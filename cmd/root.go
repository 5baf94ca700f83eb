package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/climateledger/disclosure-export/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "disclosure-export",
	Short: "Corporate climate disclosure workbook exporter",
	Long:  "Assembles a company's multi-year disclosure history into a wide spreadsheet workbook, reconciling schema evolution, restatements, and null-state semantics.",
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
