// Package sink persists geographic assignments: the event's geographic
// columns and the per-trade-area impact rows, in one transaction.
package sink

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/model"
)

// PostgresSink implements engine.ResultSink over the market.* schema.
type PostgresSink struct {
	pool db.Pool
}

// NewPostgresSink creates a PostgresSink.
func NewPostgresSink(pool db.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// SaveAssignment writes the assignment in a single transaction: the event's
// msa_id/submarket_id/geographic_tier columns, then an upsert of each
// impact keyed by (trade_area_id, event_id). Re-running for the same event
// overwrites prior values; a failure rolls everything back so no partial
// impact rows survive.
func (s *PostgresSink) SaveAssignment(ctx context.Context, eventID string, a *model.GeographicAssignment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "sink: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		UPDATE market.events
		SET msa_id = $1, submarket_id = $2, geographic_tier = $3, updated_at = now()
		WHERE id = $4
	`, a.MSAID, a.SubmarketID, string(a.Tier), eventID)
	if err != nil {
		return eris.Wrapf(err, "sink: update event %s", eventID)
	}

	for _, imp := range a.Impacts {
		_, err = tx.Exec(ctx, impactUpsertSQL(),
			imp.TradeAreaID, eventID, string(imp.ImpactType), imp.DistanceMiles,
			imp.DecayScore, imp.ImpactScore,
			imp.Factors.Proximity, imp.Factors.Sector, imp.Factors.Absorption, imp.Factors.Temporal,
		)
		if err != nil {
			return eris.Wrapf(err, "sink: upsert impact for trade area %d", imp.TradeAreaID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "sink: commit assignment")
	}

	zap.L().Debug("assignment persisted",
		zap.String("event_id", eventID),
		zap.String("tier", string(a.Tier)),
		zap.Int("impacts", len(a.Impacts)),
	)
	return nil
}

// impactUpsertSQL returns the idempotent per-impact upsert. The conflict
// target matches the table's primary key.
func impactUpsertSQL() string {
	return `
		INSERT INTO market.trade_area_impacts
			(trade_area_id, event_id, impact_type, distance_miles,
			 decay_score, impact_score,
			 proximity_score, sector_score, absorption_score, temporal_score,
			 scored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (trade_area_id, event_id) DO UPDATE SET
			impact_type = EXCLUDED.impact_type,
			distance_miles = EXCLUDED.distance_miles,
			decay_score = EXCLUDED.decay_score,
			impact_score = EXCLUDED.impact_score,
			proximity_score = EXCLUDED.proximity_score,
			sector_score = EXCLUDED.sector_score,
			absorption_score = EXCLUDED.absorption_score,
			temporal_score = EXCLUDED.temporal_score,
			scored_at = now()
	`
}
