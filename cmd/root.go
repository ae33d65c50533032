package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "impact-engine",
	Short: "Geographic event assignment and impact-decay engine",
	Long:  "Resolves market events to the correct geographic tier (pin-drop, area, metro) and scores their weighted decay impact on every nearby trade area.",
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
