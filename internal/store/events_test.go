package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var eventCols = []string{
	"id", "category", "type", "magnitude", "sector", "unit_count", "employee_count", "sqft",
	"address", "raw_location", "latitude", "longitude", "location_specificity",
	"published_at", "msa_id", "submarket_id", "geographic_tier", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*EventStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewEventStore(mock), mock
}

func eventRow(id uuid.UUID, tier *string) *pgxmock.Rows {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(eventCols).AddRow(
		id, "development", "construction_start", 80.0, strPtr("multifamily"),
		intPtr(300), (*int)(nil), (*int)(nil),
		strPtr("123 Peachtree St NE"), (*string)(nil), (*float64)(nil), (*float64)(nil), (*string)(nil),
		(*time.Time)(nil), (*int64)(nil), (*int64)(nil), tier, now, now,
	)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestInsert_GeneratesID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO market.events").
		WithArgs(pgxmock.AnyArg(), "employment", "", 60.0, (*string)(nil), (*int)(nil),
			(*int)(nil), (*int)(nil), (*string)(nil), strPtr("Atlanta"), (*float64)(nil),
			(*float64)(nil), (*string)(nil), (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ev := &model.Event{
		Location:  model.EventLocation{RawLocation: "Atlanta"},
		Magnitude: model.EventMagnitude{Category: model.CategoryEmployment, Magnitude: 60},
	}
	require.NoError(t, s.Insert(context.Background(), ev))
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_Found(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("FROM market.events").
		WithArgs(id).
		WillReturnRows(eventRow(id, nil))

	ev, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, ev.ID)
	assert.Equal(t, model.CategoryDevelopment, ev.Magnitude.Category)
	assert.Equal(t, "multifamily", ev.Magnitude.Sector)
	assert.Equal(t, 300, *ev.Magnitude.UnitCount)
	assert.Nil(t, ev.Tier)
}

func TestGet_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("FROM market.events").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(eventCols))

	_, err := s.Get(context.Background(), id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGet_ParsesTier(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("FROM market.events").
		WithArgs(id).
		WillReturnRows(eventRow(id, strPtr("pin_drop")))

	ev, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, ev.Tier)
	assert.Equal(t, model.TierPinDrop, *ev.Tier)
}

func TestListUnassigned_WithLimit(t *testing.T) {
	s, mock := newMockStore(t)
	id1, id2 := uuid.New(), uuid.New()

	rows := eventRow(id1, nil)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows.AddRow(
		id2, "employment", "", 60.0, (*string)(nil),
		(*int)(nil), intPtr(500), (*int)(nil),
		(*string)(nil), strPtr("Midtown"), (*float64)(nil), (*float64)(nil), (*string)(nil),
		(*time.Time)(nil), (*int64)(nil), (*int64)(nil), (*string)(nil), now, now,
	)

	mock.ExpectQuery("WHERE geographic_tier IS NULL").
		WithArgs(100).
		WillReturnRows(rows)

	events, err := s.ListUnassigned(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, id1, events[0].ID)
	assert.Equal(t, model.CategoryEmployment, events[1].Magnitude.Category)
}

func TestListUnassigned_NoLimit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("WHERE geographic_tier IS NULL").
		WillReturnRows(pgxmock.NewRows(eventCols))

	events, err := s.ListUnassigned(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCountByTier(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("GROUP BY 1").
		WillReturnRows(pgxmock.NewRows([]string{"tier", "count"}).
			AddRow("area", int64(12)).
			AddRow("metro", int64(5)).
			AddRow("pin_drop", int64(40)).
			AddRow("unassigned", int64(3)))

	counts, err := s.CountByTier(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(40), counts["pin_drop"])
	assert.Equal(t, int64(3), counts["unassigned"])
	assert.Len(t, counts, 4)
}

func TestCountImpacts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("count").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(214)))

	n, err := s.CountImpacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(214), n)
}
