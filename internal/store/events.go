// Package store persists market events and reports assignment progress.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/model"
)

// EventStore reads and writes market.events rows.
type EventStore struct {
	pool db.Pool
}

// NewEventStore creates an EventStore.
func NewEventStore(pool db.Pool) *EventStore {
	return &EventStore{pool: pool}
}

const eventColumns = `
	id, category, type, magnitude, sector, unit_count, employee_count, sqft,
	address, raw_location, latitude, longitude, location_specificity,
	published_at, msa_id, submarket_id, geographic_tier, created_at, updated_at
`

// Insert stores a new event. The ID is generated when absent.
func (s *EventStore) Insert(ctx context.Context, ev *model.Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO market.events
			(id, category, type, magnitude, sector, unit_count, employee_count,
			 sqft, address, raw_location, latitude, longitude,
			 location_specificity, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, ev.ID, string(ev.Magnitude.Category), ev.Magnitude.Type, ev.Magnitude.Magnitude,
		nilIfEmpty(ev.Magnitude.Sector), ev.Magnitude.UnitCount, ev.Magnitude.EmployeeCount,
		ev.Magnitude.SquareFeet, nilIfEmpty(ev.Location.Address), nilIfEmpty(ev.Location.RawLocation),
		ev.Location.Latitude, ev.Location.Longitude, nilIfEmpty(string(ev.Location.Specificity)),
		ev.PublishedAt,
	)
	return eris.Wrap(err, "store: insert event")
}

// Get retrieves an event by ID.
func (s *EventStore) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM market.events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("store: event %s not found", id)
		}
		return nil, eris.Wrap(err, "store: get event")
	}
	return ev, nil
}

// ListUnassigned returns events that have no geographic tier yet, oldest
// first. limit <= 0 means no limit.
func (s *EventStore) ListUnassigned(ctx context.Context, limit int) ([]model.Event, error) {
	sql := `SELECT ` + eventColumns + ` FROM market.events WHERE geographic_tier IS NULL ORDER BY created_at ASC`
	var rows pgx.Rows
	var err error
	if limit > 0 {
		rows, err = s.pool.Query(ctx, sql+` LIMIT $1`, limit)
	} else {
		rows, err = s.pool.Query(ctx, sql)
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: list unassigned events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan event row")
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate event rows")
	}
	return events, nil
}

// CountByTier returns the number of assigned events per tier.
func (s *EventStore) CountByTier(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(geographic_tier, 'unassigned'), count(*)
		FROM market.events
		GROUP BY 1
		ORDER BY 1
	`)
	if err != nil {
		return nil, eris.Wrap(err, "store: count by tier")
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var tier string
		var n int64
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, eris.Wrap(err, "store: scan tier count")
		}
		counts[tier] = n
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate tier counts")
	}
	return counts, nil
}

// CountImpacts returns the total number of trade-area impact rows.
func (s *EventStore) CountImpacts(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM market.trade_area_impacts`).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "store: count impacts")
	}
	return n, nil
}

// scanEvent scans one event row from either a Row or Rows.
func scanEvent(row pgx.Row) (*model.Event, error) {
	var ev model.Event
	var category string
	var sector, address, rawLocation, specificity *string
	var tier *string

	err := row.Scan(
		&ev.ID, &category, &ev.Magnitude.Type, &ev.Magnitude.Magnitude,
		&sector, &ev.Magnitude.UnitCount, &ev.Magnitude.EmployeeCount, &ev.Magnitude.SquareFeet,
		&address, &rawLocation, &ev.Location.Latitude, &ev.Location.Longitude,
		&specificity, &ev.PublishedAt, &ev.MSAID, &ev.SubmarketID, &tier,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ev.Magnitude.Category = model.EventCategory(category)
	if sector != nil {
		ev.Magnitude.Sector = *sector
	}
	if address != nil {
		ev.Location.Address = *address
	}
	if rawLocation != nil {
		ev.Location.RawLocation = *rawLocation
	}
	if specificity != nil {
		ev.Location.Specificity = model.LocationSpecificity(*specificity)
	}
	if tier != nil {
		t := model.Tier(*tier)
		ev.Tier = &t
	}
	return &ev, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
