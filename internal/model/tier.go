package model

// Tier is the resolution granularity at which an event's location was
// determined. It is caller-facing: resolvers are selected by Tier.
type Tier string

const (
	// TierPinDrop means the event resolved to an exact coordinate.
	TierPinDrop Tier = "pin_drop"
	// TierArea means the event resolved to a named submarket.
	TierArea Tier = "area"
	// TierMetro means the event resolved (at best) to a metro area.
	TierMetro Tier = "metro"
)

// ImpactType is the persisted classification of a trade-area impact. It is
// distinct from Tier: an area-tier resolution records "proximity" impacts.
type ImpactType string

const (
	ImpactDirect    ImpactType = "direct"
	ImpactProximity ImpactType = "proximity"
	ImpactSector    ImpactType = "sector"
	ImpactMetro     ImpactType = "metro"
)

// ImpactType returns the persisted impact classification for a resolution
// tier. The mapping is total: every tier has exactly one impact type.
func (t Tier) ImpactType() ImpactType {
	switch t {
	case TierPinDrop:
		return ImpactDirect
	case TierArea:
		return ImpactProximity
	default:
		return ImpactMetro
	}
}

// Valid reports whether t is one of the enumerated tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierPinDrop, TierArea, TierMetro:
		return true
	}
	return false
}
