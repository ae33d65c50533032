package spatial

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newMockIndex(t *testing.T) (*PostgresIndex, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresIndex(mock), mock
}

func TestSubmarketForPoint_Found(t *testing.T) {
	idx, mock := newMockIndex(t)

	// Point args are lng, lat: ST_MakePoint takes x (longitude) first.
	mock.ExpectQuery("SELECT id, name").
		WithArgs(-84.38, 33.78).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(11), "Midtown"))

	ref, err := idx.SubmarketForPoint(context.Background(), 33.78, -84.38)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, int64(11), ref.ID)
	assert.Equal(t, "Midtown", ref.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmarketForPoint_NotFound(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("SELECT id, name").
		WithArgs(-120.0, 45.0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

	ref, err := idx.SubmarketForPoint(context.Background(), 45.0, -120.0)
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestMSAForPoint_Found(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.msas").
		WithArgs(-84.38, 33.78).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "Atlanta-Sandy Springs-Roswell, GA"))

	ref, err := idx.MSAForPoint(context.Background(), 33.78, -84.38)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, int64(3), ref.ID)
}

func TestTradeAreasForPoint(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.trade_areas").
		WithArgs(-84.38, 33.78).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "distance_miles"}).
			AddRow(int64(101), "Midtown Core", 0.0).
			AddRow(int64(102), "Arts District", 0.0))

	refs, err := idx.TradeAreasForPoint(context.Background(), 33.78, -84.38)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "Midtown Core", refs[0].Name)
	assert.Zero(t, refs[0].DistanceMiles)
}

func TestSubmarketByName_Found(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.submarkets").
		WithArgs("new tower in Midtown Atlanta").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(11), "Midtown"))

	ref, err := idx.SubmarketByName(context.Background(), "new tower in Midtown Atlanta")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "Midtown", ref.Name)
}

func TestSubmarketByName_NoMatch(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.submarkets").
		WithArgs("nowhere").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

	ref, err := idx.SubmarketByName(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestMSAByName_Found(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.msas").
		WithArgs("Atlanta").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "Atlanta-Sandy Springs-Roswell, GA"))

	ref, err := idx.MSAByName(context.Background(), "Atlanta")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, int64(3), ref.ID)
}

func TestMSAForSubmarket(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("JOIN market.submarkets").
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(3), "Atlanta-Sandy Springs-Roswell, GA"))

	ref, err := idx.MSAForSubmarket(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, int64(3), ref.ID)
}

func TestTradeAreasForSubmarket(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("JOIN market.submarket_trade_areas").
		WithArgs(int64(11), metersPerMile).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "distance_miles"}).
			AddRow(int64(101), "Midtown Core", 0.4).
			AddRow(int64(103), "East Side", 4.0))

	refs, err := idx.TradeAreasForSubmarket(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, 4.0, refs[1].DistanceMiles)
}

func TestTradeAreasForMSA_PassesLimit(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.trade_areas").
		WithArgs(int64(3), 50, metersPerMile).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "distance_miles"}).
			AddRow(int64(101), "Midtown Core", 1.2))

	refs, err := idx.TradeAreasForMSA(context.Background(), 3, 50)
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestStatsForTradeArea_Found(t *testing.T) {
	idx, mock := newMockIndex(t)

	existing := 2500
	pipeline := 400
	occ := 96.0
	asOf := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM market.trade_area_stats").
		WithArgs(int64(101)).
		WillReturnRows(pgxmock.NewRows([]string{"existing_units", "pipeline_units", "occupancy", "as_of"}).
			AddRow(&existing, &pipeline, &occ, &asOf))

	st, err := idx.StatsForTradeArea(context.Background(), 101)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 2500, *st.ExistingUnits)
	assert.Equal(t, 96.0, *st.Occupancy)
}

func TestStatsForTradeArea_NoSnapshot(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.trade_area_stats").
		WithArgs(int64(999)).
		WillReturnRows(pgxmock.NewRows([]string{"existing_units", "pipeline_units", "occupancy", "as_of"}))

	st, err := idx.StatsForTradeArea(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestQueryError(t *testing.T) {
	idx, mock := newMockIndex(t)

	mock.ExpectQuery("FROM market.trade_areas").
		WithArgs(-84.38, 33.78).
		WillReturnError(assert.AnError)

	_, err := idx.TradeAreasForPoint(context.Background(), 33.78, -84.38)
	require.Error(t, err)
}
