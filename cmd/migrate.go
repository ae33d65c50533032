package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the market.* schema",
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

		return store.Migrate(ctx, pool)
	},
}

func init() { rootCmd.AddCommand(migrateCmd) }
