package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show assignment progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, &db.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return err
		}
		defer pool.Close()

		events := store.NewEventStore(pool)

		counts, err := events.CountByTier(ctx)
		if err != nil {
			return err
		}
		impacts, err := events.CountImpacts(ctx)
		if err != nil {
			return err
		}

		tiers := make([]string, 0, len(counts))
		for t := range counts {
			tiers = append(tiers, t)
		}
		sort.Strings(tiers)

		fmt.Println("events by tier:")
		for _, t := range tiers {
			fmt.Printf("  %-12s %d\n", t, counts[t])
		}
		fmt.Printf("trade-area impacts: %d\n", impacts)
		return nil
	},
}

func init() { rootCmd.AddCommand(statusCmd) }
