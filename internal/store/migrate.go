package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/db"
)

// migrations holds the market.* schema DDL. Statements are idempotent so
// migrate can run on every deploy.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,

	`CREATE SCHEMA IF NOT EXISTS market`,

	`CREATE TABLE IF NOT EXISTS market.msas (
		id bigserial PRIMARY KEY,
		code text NOT NULL UNIQUE,
		name text NOT NULL,
		centroid geometry(Point, 4326),
		geom geometry(Geometry, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS market.submarkets (
		id bigserial PRIMARY KEY,
		name text NOT NULL UNIQUE,
		msa_id bigint REFERENCES market.msas(id),
		centroid geometry(Point, 4326),
		geom geometry(Geometry, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS market.trade_areas (
		id bigserial PRIMARY KEY,
		name text NOT NULL UNIQUE,
		centroid geometry(Point, 4326),
		geom geometry(Geometry, 4326) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS market.submarket_trade_areas (
		submarket_id bigint NOT NULL REFERENCES market.submarkets(id),
		trade_area_id bigint NOT NULL REFERENCES market.trade_areas(id),
		PRIMARY KEY (submarket_id, trade_area_id)
	)`,

	`CREATE TABLE IF NOT EXISTS market.trade_area_stats (
		trade_area_id bigint NOT NULL REFERENCES market.trade_areas(id),
		existing_units int,
		pipeline_units int,
		occupancy double precision,
		as_of timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (trade_area_id, as_of)
	)`,

	`CREATE TABLE IF NOT EXISTS market.events (
		id uuid PRIMARY KEY,
		category text NOT NULL,
		type text NOT NULL DEFAULT '',
		magnitude double precision NOT NULL CHECK (magnitude >= 0 AND magnitude <= 100),
		sector text,
		unit_count int,
		employee_count int,
		sqft int,
		address text,
		raw_location text,
		latitude double precision,
		longitude double precision,
		location_specificity text,
		published_at timestamptz,
		msa_id bigint REFERENCES market.msas(id),
		submarket_id bigint REFERENCES market.submarkets(id),
		geographic_tier text,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS market.trade_area_impacts (
		trade_area_id bigint NOT NULL REFERENCES market.trade_areas(id),
		event_id uuid NOT NULL REFERENCES market.events(id),
		impact_type text NOT NULL,
		distance_miles double precision NOT NULL,
		decay_score double precision NOT NULL,
		impact_score double precision NOT NULL,
		proximity_score double precision NOT NULL,
		sector_score double precision NOT NULL,
		absorption_score double precision NOT NULL,
		temporal_score double precision NOT NULL,
		scored_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (trade_area_id, event_id)
	)`,

	`CREATE TABLE IF NOT EXISTS market.geocode_cache (
		query_hash text PRIMARY KEY,
		matched boolean NOT NULL,
		latitude double precision NOT NULL DEFAULT 0,
		longitude double precision NOT NULL DEFAULT 0,
		display_name text NOT NULL DEFAULT '',
		city text NOT NULL DEFAULT '',
		state text NOT NULL DEFAULT '',
		zip text NOT NULL DEFAULT '',
		county text NOT NULL DEFAULT '',
		country text NOT NULL DEFAULT '',
		confidence double precision NOT NULL DEFAULT 0,
		place_type text NOT NULL DEFAULT '',
		cached_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_msas_geom ON market.msas USING gist (geom)`,
	`CREATE INDEX IF NOT EXISTS idx_submarkets_geom ON market.submarkets USING gist (geom)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_areas_geom ON market.trade_areas USING gist (geom)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_areas_centroid ON market.trade_areas USING gist (centroid)`,
	`CREATE INDEX IF NOT EXISTS idx_events_unassigned ON market.events (created_at) WHERE geographic_tier IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_impacts_event ON market.trade_area_impacts (event_id)`,
}

// Migrate applies the market.* schema.
func Migrate(ctx context.Context, pool db.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return eris.Wrapf(err, "store: migration %d", i)
		}
	}
	zap.L().Info("schema migrated", zap.Int("statements", len(migrations)))
	return nil
}
