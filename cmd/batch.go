package main

import (
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchConcurrency int
	batchLimit       int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Assign all unassigned events from the store",
	Long:  "Fetches events without a geographic tier and runs the assignment engine over them with bounded concurrency. Events are independent, so a single failure is logged and skipped rather than aborting the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		limit := batchLimit
		if limit == 0 {
			limit = cfg.Batch.Limit
		}
		events, err := e.Events.ListUnassigned(ctx, limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			zap.L().Info("no unassigned events")
			return nil
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentEvents
		}

		var assigned, failed atomic.Int64

		eg, gCtx := errgroup.WithContext(ctx)
		eg.SetLimit(concurrency)
		for _, ev := range events {
			eg.Go(func() error {
				if _, err := e.Engine.AssignEvent(gCtx, ev); err != nil {
					failed.Add(1)
					zap.L().Error("event assignment failed",
						zap.String("event_id", ev.ID.String()),
						zap.Error(err),
					)
					return nil //nolint:nilerr // individual failures don't fail the batch
				}
				assigned.Add(1)
				return nil
			})
		}
		_ = eg.Wait()

		zap.L().Info("batch complete",
			zap.Int("events", len(events)),
			zap.Int64("assigned", assigned.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent events (default from config)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max events to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}
