// Package spatial provides the spatial index over the market.* schema:
// point-in-polygon lookups, fuzzy name matching, and the geographic
// relationship joins consumed by the assignment engine.
package spatial

import (
	"context"

	"github.com/sells-group/impact-engine/internal/model"
)

// Index is the spatial lookup capability consumed by the resolvers. All
// point arguments are WGS84 lat/lng; all distances are statute miles.
type Index interface {
	// SubmarketForPoint returns the submarket whose polygon contains the
	// point, or nil when the point falls outside every submarket.
	SubmarketForPoint(ctx context.Context, lat, lng float64) (*model.SubmarketRef, error)

	// MSAForPoint returns the MSA whose polygon contains the point, or nil.
	MSAForPoint(ctx context.Context, lat, lng float64) (*model.MSARef, error)

	// TradeAreasForPoint returns every trade area whose polygon contains the
	// point. Distance is 0 for true containment.
	TradeAreasForPoint(ctx context.Context, lat, lng float64) ([]model.TradeAreaRef, error)

	// SubmarketByName fuzzy-matches raw text against submarket names using a
	// bidirectional case-insensitive substring rule and returns the first
	// match, or nil.
	SubmarketByName(ctx context.Context, raw string) (*model.SubmarketRef, error)

	// MSAByName fuzzy-matches raw text against MSA names with the same
	// bidirectional substring rule, or nil.
	MSAByName(ctx context.Context, raw string) (*model.MSARef, error)

	// MSAForSubmarket resolves the owning MSA of a submarket, or nil.
	MSAForSubmarket(ctx context.Context, submarketID int64) (*model.MSARef, error)

	// TradeAreasForSubmarket returns the trade areas related to a submarket
	// via the geographic-relationship join, ordered by ascending distance
	// from the submarket centroid.
	TradeAreasForSubmarket(ctx context.Context, submarketID int64) ([]model.TradeAreaRef, error)

	// TradeAreasForMSA returns up to limit trade areas belonging to an MSA,
	// ordered by ascending distance from the MSA centroid.
	TradeAreasForMSA(ctx context.Context, msaID int64, limit int) ([]model.TradeAreaRef, error)

	// StatsForTradeArea returns the latest stats snapshot for a trade area,
	// or nil when none exists (scoring defaults then apply).
	StatsForTradeArea(ctx context.Context, tradeAreaID int64) (*model.TradeAreaStats, error)
}
