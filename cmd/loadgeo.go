package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/shapeload"
)

var loadgeoKind string

var loadgeoCmd = &cobra.Command{
	Use:   "loadgeo <shapefile>",
	Short: "Load boundary polygons from a shapefile",
	Long:  "Loads MSA, submarket, or trade-area polygons from a shapefile into the market schema. Re-running a load updates existing rows in place and recomputes centroids.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kind := shapeload.Kind(loadgeoKind)
		switch kind {
		case shapeload.KindMSA, shapeload.KindSubmarket, shapeload.KindTradeArea:
		default:
			return eris.Errorf("unknown --kind %q (want msa, submarket, or trade_area)", loadgeoKind)
		}

		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, &db.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := shapeload.Load(ctx, pool, kind, args[0])
		if err != nil {
			return err
		}

		zap.L().Info("load complete", zap.Int64("rows", n))
		return nil
	},
}

func init() {
	loadgeoCmd.Flags().StringVar(&loadgeoKind, "kind", "", "boundary kind: msa, submarket, or trade_area")
	_ = loadgeoCmd.MarkFlagRequired("kind")
	rootCmd.AddCommand(loadgeoCmd)
}
