package spatial

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/model"
)

// metersPerMile converts PostGIS geography distances to statute miles.
const metersPerMile = 1609.344

// PostgresIndex implements Index using a Postgres connection pool with PostGIS.
type PostgresIndex struct {
	pool db.Pool
}

// NewPostgresIndex creates a new PostgresIndex.
func NewPostgresIndex(pool db.Pool) *PostgresIndex {
	return &PostgresIndex{pool: pool}
}

// SubmarketForPoint implements Index.
func (s *PostgresIndex) SubmarketForPoint(ctx context.Context, lat, lng float64) (*model.SubmarketRef, error) {
	sql := `
		SELECT id, name
		FROM market.submarkets
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		LIMIT 1
	`
	var ref model.SubmarketRef
	err := s.pool.QueryRow(ctx, sql, lng, lat).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "spatial: submarket for point")
	}
	return &ref, nil
}

// MSAForPoint implements Index.
func (s *PostgresIndex) MSAForPoint(ctx context.Context, lat, lng float64) (*model.MSARef, error) {
	sql := `
		SELECT id, name
		FROM market.msas
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		LIMIT 1
	`
	var ref model.MSARef
	err := s.pool.QueryRow(ctx, sql, lng, lat).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "spatial: msa for point")
	}
	return &ref, nil
}

// TradeAreasForPoint implements Index. Containment means distance 0; the
// rows are still ordered by centroid proximity so callers see the tightest
// polygon first.
func (s *PostgresIndex) TradeAreasForPoint(ctx context.Context, lat, lng float64) ([]model.TradeAreaRef, error) {
	sql := `
		SELECT id, name, 0::float8 AS distance_miles
		FROM market.trade_areas
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		ORDER BY centroid <-> ST_SetSRID(ST_MakePoint($1, $2), 4326)
	`
	rows, err := s.pool.Query(ctx, sql, lng, lat)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: trade areas for point")
	}
	defer rows.Close()
	return scanTradeAreaRefs(rows)
}

// SubmarketByName implements Index using the bidirectional substring rule:
// the raw text contains the submarket name, or the submarket name contains
// the raw text. First match wins.
func (s *PostgresIndex) SubmarketByName(ctx context.Context, raw string) (*model.SubmarketRef, error) {
	sql := `
		SELECT id, name
		FROM market.submarkets
		WHERE lower($1) LIKE '%' || lower(name) || '%'
		   OR lower(name) LIKE '%' || lower($1) || '%'
		ORDER BY id
		LIMIT 1
	`
	var ref model.SubmarketRef
	err := s.pool.QueryRow(ctx, sql, raw).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "spatial: submarket by name")
	}
	return &ref, nil
}

// MSAByName implements Index with the same bidirectional substring rule.
func (s *PostgresIndex) MSAByName(ctx context.Context, raw string) (*model.MSARef, error) {
	sql := `
		SELECT id, name
		FROM market.msas
		WHERE lower($1) LIKE '%' || lower(name) || '%'
		   OR lower(name) LIKE '%' || lower($1) || '%'
		ORDER BY id
		LIMIT 1
	`
	var ref model.MSARef
	err := s.pool.QueryRow(ctx, sql, raw).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "spatial: msa by name")
	}
	return &ref, nil
}

// MSAForSubmarket implements Index.
func (s *PostgresIndex) MSAForSubmarket(ctx context.Context, submarketID int64) (*model.MSARef, error) {
	sql := `
		SELECT m.id, m.name
		FROM market.msas m
		JOIN market.submarkets sm ON sm.msa_id = m.id
		WHERE sm.id = $1
	`
	var ref model.MSARef
	err := s.pool.QueryRow(ctx, sql, submarketID).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "spatial: msa for submarket")
	}
	return &ref, nil
}

// TradeAreasForSubmarket implements Index via the many-to-many
// geographic-relationship join, ordered by centroid distance.
func (s *PostgresIndex) TradeAreasForSubmarket(ctx context.Context, submarketID int64) ([]model.TradeAreaRef, error) {
	sql := `
		SELECT ta.id, ta.name,
		       ST_Distance(ta.centroid::geography, sm.centroid::geography) / $2 AS distance_miles
		FROM market.trade_areas ta
		JOIN market.submarket_trade_areas sta ON sta.trade_area_id = ta.id
		JOIN market.submarkets sm ON sm.id = sta.submarket_id
		WHERE sm.id = $1
		ORDER BY distance_miles ASC
	`
	rows, err := s.pool.Query(ctx, sql, submarketID, metersPerMile)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: trade areas for submarket")
	}
	defer rows.Close()
	return scanTradeAreaRefs(rows)
}

// TradeAreasForMSA implements Index. Membership is centroid containment in
// the MSA polygon.
func (s *PostgresIndex) TradeAreasForMSA(ctx context.Context, msaID int64, limit int) ([]model.TradeAreaRef, error) {
	sql := `
		SELECT ta.id, ta.name,
		       ST_Distance(ta.centroid::geography, m.centroid::geography) / $3 AS distance_miles
		FROM market.trade_areas ta
		JOIN market.msas m ON ST_Contains(m.geom, ta.centroid)
		WHERE m.id = $1
		ORDER BY distance_miles ASC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, sql, msaID, limit, metersPerMile)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: trade areas for msa")
	}
	defer rows.Close()
	return scanTradeAreaRefs(rows)
}

// StatsForTradeArea implements Index, returning the most recent snapshot.
func (s *PostgresIndex) StatsForTradeArea(ctx context.Context, tradeAreaID int64) (*model.TradeAreaStats, error) {
	sql := `
		SELECT existing_units, pipeline_units, occupancy, as_of
		FROM market.trade_area_stats
		WHERE trade_area_id = $1
		ORDER BY as_of DESC
		LIMIT 1
	`
	var st model.TradeAreaStats
	err := s.pool.QueryRow(ctx, sql, tradeAreaID).Scan(&st.ExistingUnits, &st.PipelineUnits, &st.Occupancy, &st.AsOf)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "spatial: stats for trade area")
	}
	return &st, nil
}

// scanTradeAreaRefs scans id/name/distance rows into refs.
func scanTradeAreaRefs(rows pgx.Rows) ([]model.TradeAreaRef, error) {
	var refs []model.TradeAreaRef
	for rows.Next() {
		var r model.TradeAreaRef
		if err := rows.Scan(&r.ID, &r.Name, &r.DistanceMiles); err != nil {
			return nil, eris.Wrap(err, "spatial: scan trade area row")
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "spatial: iterate trade area rows")
	}
	return refs, nil
}
