package engine

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sells-group/impact-engine/internal/config"
	"github.com/sells-group/impact-engine/internal/model"
)

// Scorer computes the four-factor weighted decay score for a trade area and
// the final impact score from an event's magnitude.
type Scorer struct {
	cfg   config.EngineConfig
	clock clockwork.Clock
}

// NewScorer creates a Scorer. The clock drives the temporal decay factor;
// pass a fake clock in tests for deterministic recency scoring.
func NewScorer(cfg config.EngineConfig, clock clockwork.Clock) *Scorer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scorer{cfg: cfg, clock: clock}
}

// Score computes the impact of an event on one trade area. stats may be nil,
// in which case the absorption defaults apply. The tier selects the
// persisted impact type: pin_drop records direct, area records proximity,
// metro records metro.
func (s *Scorer) Score(
	ta model.TradeAreaRef,
	stats *model.TradeAreaStats,
	mag model.EventMagnitude,
	publishedAt *time.Time,
	tier model.Tier,
) model.TradeAreaImpact {
	impactType := tier.ImpactType()

	factors := model.DecayFactors{
		Proximity:  s.proximityScore(ta.DistanceMiles, impactType),
		Sector:     s.sectorScore(mag),
		Absorption: s.absorptionScore(mag, stats),
		Temporal:   s.temporalScore(publishedAt),
	}

	decay := round2(factors.Proximity*s.cfg.ProximityWeight +
		factors.Sector*s.cfg.SectorWeight +
		factors.Absorption*s.cfg.AbsorptionWeight +
		factors.Temporal*s.cfg.TemporalWeight)

	return model.TradeAreaImpact{
		TradeAreaID:   ta.ID,
		TradeAreaName: ta.Name,
		ImpactType:    impactType,
		DistanceMiles: ta.DistanceMiles,
		DecayScore:    decay,
		ImpactScore:   round2(mag.Magnitude / 100 * decay),
		Factors:       factors,
	}
}

// proximityScore applies the piecewise-linear distance decay. Direct impacts
// always score 100: containment makes distance meaningless. The breakpoints
// are exact; downstream fixtures depend on them.
func (s *Scorer) proximityScore(distanceMiles float64, impactType model.ImpactType) float64 {
	if impactType == model.ImpactDirect {
		return 100
	}

	d := distanceMiles
	switch {
	case d <= 1:
		return 90
	case d <= 3:
		return 70 - (d-1)*10
	case d <= 5:
		return 50 - (d-3)*10
	case d <= 10:
		return 30 - (d-5)*4
	default:
		return math.Max(0, 10-d)
	}
}

// sectorScore measures category alignment between the event and the
// multifamily market the trade areas track.
func (s *Scorer) sectorScore(mag model.EventMagnitude) float64 {
	switch mag.Category {
	case model.CategoryEmployment:
		return 80
	case model.CategoryDevelopment:
		if mag.Sector == "multifamily" {
			return 100
		}
		return 40
	case model.CategoryTransactions:
		return 70
	case model.CategoryAmenities:
		return 60
	default:
		return 50
	}
}

// absorptionScore measures how much new supply the trade area can absorb.
// Without a unit count the factor stays neutral at 50.
func (s *Scorer) absorptionScore(mag model.EventMagnitude, stats *model.TradeAreaStats) float64 {
	if mag.UnitCount == nil {
		return 50
	}

	existing := s.cfg.DefaultExistingUnits
	if stats != nil && stats.ExistingUnits != nil && *stats.ExistingUnits > 0 {
		existing = *stats.ExistingUnits
	}

	supplyPressure := float64(*mag.UnitCount) / float64(existing) * 100

	var score float64
	switch {
	case supplyPressure > 10:
		score = 90
	case supplyPressure > 5:
		score = 70
	case supplyPressure > 2:
		score = 50
	default:
		score = 30
	}

	if stats != nil && stats.Occupancy != nil {
		if *stats.Occupancy > s.cfg.TightMarketOccupancy {
			score *= 1.2
		} else if *stats.Occupancy < s.cfg.SoftMarketOccupancy {
			score *= 0.8
		}
	}

	return clamp(score, 0, 100)
}

// temporalScore weights the event by recency. No timestamp means the event
// is treated as current.
func (s *Scorer) temporalScore(publishedAt *time.Time) float64 {
	if publishedAt == nil {
		return 100
	}

	days := s.clock.Now().Sub(*publishedAt).Hours() / 24
	switch {
	case days <= 7:
		return 100
	case days <= 30:
		return 90
	case days <= 90:
		return 70
	case days <= 180:
		return 50
	case days <= 365:
		return 30
	default:
		return 10
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
