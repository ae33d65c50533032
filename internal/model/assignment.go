package model

import "time"

// GeocodingResult is the transient output of the geocoder. It is attached to
// the final assignment for audit but never persisted as its own entity.
type GeocodingResult struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
	Address     string  `json:"address,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Zip         string  `json:"zip,omitempty"`
	County      string  `json:"county,omitempty"`
	Country     string  `json:"country,omitempty"`
	Confidence  float64 `json:"confidence"`
	PlaceType   string  `json:"place_type"`
}

// TradeAreaRef identifies a trade area returned by a spatial lookup,
// annotated with its distance from the event's resolution point or centroid.
type TradeAreaRef struct {
	ID            int64   `json:"trade_area_id"`
	Name          string  `json:"trade_area_name"`
	DistanceMiles float64 `json:"distance_miles"`
}

// SubmarketRef identifies a submarket returned by a spatial lookup.
type SubmarketRef struct {
	ID   int64  `json:"submarket_id"`
	Name string `json:"submarket_name"`
}

// MSARef identifies a metropolitan statistical area.
type MSARef struct {
	ID   int64  `json:"msa_id"`
	Name string `json:"msa_name"`
}

// TradeAreaStats is the latest market snapshot for a trade area. Absent
// fields mean the scoring defaults apply; defaults are resolved once at the
// stats-provider boundary, never inside the scoring formula.
type TradeAreaStats struct {
	ExistingUnits *int       `json:"existing_units,omitempty"`
	PipelineUnits *int       `json:"pipeline_units,omitempty"`
	Occupancy     *float64   `json:"occupancy,omitempty"`
	AsOf          *time.Time `json:"as_of,omitempty"`
}

// DecayFactors holds the four independent 0-100 sub-scores behind a decay
// score. They are persisted only embedded in a TradeAreaImpact row.
type DecayFactors struct {
	Proximity  float64 `json:"proximity_score"`
	Sector     float64 `json:"sector_score"`
	Absorption float64 `json:"absorption_score"`
	Temporal   float64 `json:"temporal_score"`
}

// TradeAreaImpact is the scored effect of one event on one trade area.
// Rows are upserted keyed by (trade_area_id, event_id), so re-running the
// engine for an event overwrites prior values.
type TradeAreaImpact struct {
	TradeAreaID   int64        `json:"trade_area_id"`
	TradeAreaName string       `json:"trade_area_name"`
	ImpactType    ImpactType   `json:"impact_type"`
	DistanceMiles float64      `json:"distance_miles"`
	DecayScore    float64      `json:"decay_score"`
	ImpactScore   float64      `json:"impact_score"`
	Factors       DecayFactors `json:"decay_factors"`
}

// GeographicAssignment is the engine's output for one event: where it
// landed and how strongly each nearby trade area should weight it.
//
// A metro-tier assignment with a nil MSA and no impacts is the valid
// terminal "could not localize event" state, not an error.
type GeographicAssignment struct {
	Tier          Tier              `json:"tier"`
	MSAID         *int64            `json:"msa_id"`
	MSAName       *string           `json:"msa_name"`
	SubmarketID   *int64            `json:"submarket_id"`
	SubmarketName *string           `json:"submarket_name"`
	TradeAreaIDs  []int64           `json:"trade_area_ids"`
	Impacts       []TradeAreaImpact `json:"trade_area_impacts"`
	Geocode       *GeocodingResult  `json:"geocoding_result,omitempty"`
}

// Unassigned reports whether the assignment is the terminal state with no
// geographic anchor.
func (a *GeographicAssignment) Unassigned() bool {
	return a.MSAID == nil && a.SubmarketID == nil && len(a.Impacts) == 0
}
