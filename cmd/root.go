package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parcelworks/sitescreen/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sitescreen",
	Short: "Batch site screening for affordable-housing development",
	Long:  "Scores candidate sites against designated-area polygons, opportunity-area tables, amenity and transit layers, and the competing-project registry, and ranks them per credit program.",
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
