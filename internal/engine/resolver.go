package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/config"
	"github.com/sells-group/impact-engine/internal/model"
	"github.com/sells-group/impact-engine/internal/spatial"
)

// ResolveInput carries everything a resolver strategy needs for one event.
type ResolveInput struct {
	Location    model.EventLocation
	Magnitude   model.EventMagnitude
	PublishedAt *time.Time
	Geocode     *model.GeocodingResult
}

// point returns the best coordinates available: explicit coordinates first,
// then the geocoded point.
func (in ResolveInput) point() (lat, lng float64, ok bool) {
	if in.Location.HasPoint() {
		return *in.Location.Latitude, *in.Location.Longitude, true
	}
	if in.Geocode != nil {
		return in.Geocode.Latitude, in.Geocode.Longitude, true
	}
	return 0, 0, false
}

// Resolver turns a classified event into a geographic assignment by running
// the strategy for its tier. The only escalation path in the system is
// Area -> Metro; it is reported through the second return value so callers
// and traces see it rather than it being buried in control flow.
type Resolver struct {
	index  spatial.Index
	scorer *Scorer
	cfg    config.EngineConfig
}

// NewResolver creates a Resolver over a spatial index.
func NewResolver(index spatial.Index, scorer *Scorer, cfg config.EngineConfig) *Resolver {
	return &Resolver{index: index, scorer: scorer, cfg: cfg}
}

// Resolve runs the strategy for tier. The returned escalatedTo is non-nil
// only when the Area strategy delegated to Metro.
func (r *Resolver) Resolve(ctx context.Context, tier model.Tier, in ResolveInput) (*model.GeographicAssignment, *model.Tier, error) {
	switch tier {
	case model.TierPinDrop:
		a, err := r.resolvePinDrop(ctx, in)
		return a, nil, err
	case model.TierArea:
		return r.resolveArea(ctx, in)
	default:
		a, err := r.resolveMetro(ctx, in)
		return a, nil, err
	}
}

// resolvePinDrop looks up the containing submarket, MSA, and trade areas
// for an exact point. An exact point is definitive: zero containing trade
// areas is a valid result, and pin-drop never escalates to a coarser tier.
func (r *Resolver) resolvePinDrop(ctx context.Context, in ResolveInput) (*model.GeographicAssignment, error) {
	a := &model.GeographicAssignment{Tier: model.TierPinDrop}

	lat, lng, ok := in.point()
	if !ok {
		// Classified pin_drop off a specificity hint but no coordinates ever
		// materialized. Nothing to look up; the empty assignment is terminal.
		zap.L().Warn("pin-drop resolution without coordinates", zap.String("raw_location", in.Location.RawLocation))
		return a, nil
	}

	sub, err := r.index.SubmarketForPoint(ctx, lat, lng)
	if err != nil {
		return nil, eris.Wrap(err, "resolve pin-drop: submarket lookup")
	}
	if sub != nil {
		a.SubmarketID = &sub.ID
		a.SubmarketName = &sub.Name
	}

	msa, err := r.index.MSAForPoint(ctx, lat, lng)
	if err != nil {
		return nil, eris.Wrap(err, "resolve pin-drop: msa lookup")
	}
	if msa != nil {
		a.MSAID = &msa.ID
		a.MSAName = &msa.Name
	}

	areas, err := r.index.TradeAreasForPoint(ctx, lat, lng)
	if err != nil {
		return nil, eris.Wrap(err, "resolve pin-drop: trade area lookup")
	}

	if err := r.scoreAll(ctx, a, areas, in, model.TierPinDrop); err != nil {
		return nil, err
	}
	return a, nil
}

// resolveArea matches the raw location text against known submarket names,
// falling back to a point lookup, then scores every trade area related to
// the submarket. When no submarket can be resolved by either method it
// escalates to the Metro strategy with the same inputs.
func (r *Resolver) resolveArea(ctx context.Context, in ResolveInput) (*model.GeographicAssignment, *model.Tier, error) {
	text := in.Location.Text()

	sub, err := r.index.SubmarketByName(ctx, text)
	if err != nil {
		return nil, nil, eris.Wrap(err, "resolve area: name match")
	}

	if sub == nil {
		if lat, lng, ok := in.point(); ok {
			sub, err = r.index.SubmarketForPoint(ctx, lat, lng)
			if err != nil {
				return nil, nil, eris.Wrap(err, "resolve area: point fallback")
			}
		}
	}

	if sub == nil {
		metro := model.TierMetro
		a, err := r.resolveMetro(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return a, &metro, nil
	}

	a := &model.GeographicAssignment{
		Tier:          model.TierArea,
		SubmarketID:   &sub.ID,
		SubmarketName: &sub.Name,
	}

	msa, err := r.index.MSAForSubmarket(ctx, sub.ID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "resolve area: owning msa")
	}
	if msa != nil {
		a.MSAID = &msa.ID
		a.MSAName = &msa.Name
	}

	areas, err := r.index.TradeAreasForSubmarket(ctx, sub.ID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "resolve area: related trade areas")
	}

	if err := r.scoreAll(ctx, a, areas, in, model.TierArea); err != nil {
		return nil, nil, err
	}
	return a, nil, nil
}

// resolveMetro matches the raw location text against MSA names, falling back
// to a point lookup, then scores up to the configured cap of trade areas,
// dropping negligible impacts. Total failure produces the terminal
// unassigned state, not an error.
func (r *Resolver) resolveMetro(ctx context.Context, in ResolveInput) (*model.GeographicAssignment, error) {
	text := in.Location.Text()

	msa, err := r.index.MSAByName(ctx, text)
	if err != nil {
		return nil, eris.Wrap(err, "resolve metro: name match")
	}

	if msa == nil {
		if lat, lng, ok := in.point(); ok {
			msa, err = r.index.MSAForPoint(ctx, lat, lng)
			if err != nil {
				return nil, eris.Wrap(err, "resolve metro: point fallback")
			}
		}
	}

	a := &model.GeographicAssignment{Tier: model.TierMetro}
	if msa == nil {
		// Terminal "could not localize event" state.
		return a, nil
	}

	a.MSAID = &msa.ID
	a.MSAName = &msa.Name

	areas, err := r.index.TradeAreasForMSA(ctx, msa.ID, r.cfg.MetroTradeAreaCap)
	if err != nil {
		return nil, eris.Wrap(err, "resolve metro: trade areas")
	}

	if err := r.scoreAll(ctx, a, areas, in, model.TierMetro); err != nil {
		return nil, err
	}
	return a, nil
}

// scoreAll scores every candidate trade area and appends the results to the
// assignment. Metro-tier impacts at or below the configured floor are
// dropped: metro events are too diffuse to record negligible impacts.
func (r *Resolver) scoreAll(ctx context.Context, a *model.GeographicAssignment, areas []model.TradeAreaRef, in ResolveInput, tier model.Tier) error {
	for _, ta := range areas {
		stats, err := r.index.StatsForTradeArea(ctx, ta.ID)
		if err != nil {
			return eris.Wrapf(err, "resolve: stats for trade area %d", ta.ID)
		}

		impact := r.scorer.Score(ta, stats, in.Magnitude, in.PublishedAt, tier)
		if tier == model.TierMetro && impact.ImpactScore <= r.cfg.MetroMinImpactScore {
			continue
		}

		a.Impacts = append(a.Impacts, impact)
		a.TradeAreaIDs = append(a.TradeAreaIDs, ta.ID)
	}
	return nil
}
