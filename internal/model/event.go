package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// LocationSpecificity is an optional caller-supplied hint about how precise
// an event's location description is.
type LocationSpecificity string

const (
	SpecificityAddress      LocationSpecificity = "address"
	SpecificityNeighborhood LocationSpecificity = "neighborhood"
	SpecificityCity         LocationSpecificity = "city"
	SpecificityMetro        LocationSpecificity = "metro"
	SpecificityState        LocationSpecificity = "state"
)

// EventLocation describes where an event happened, as well as it is known.
// At least one of Address or RawLocation must be present. Explicit
// coordinates take priority over geocoding.
type EventLocation struct {
	Address     string              `json:"address,omitempty"`
	RawLocation string              `json:"raw_location,omitempty"`
	Latitude    *float64            `json:"latitude,omitempty"`
	Longitude   *float64            `json:"longitude,omitempty"`
	Specificity LocationSpecificity `json:"location_specificity,omitempty"`
}

// HasPoint reports whether explicit coordinates are present.
func (l EventLocation) HasPoint() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Text returns the best free-text description available for geocoding and
// name matching: the address when present, otherwise the raw location.
func (l EventLocation) Text() string {
	if strings.TrimSpace(l.Address) != "" {
		return l.Address
	}
	return l.RawLocation
}

// Validate checks the location at the boundary: at least one of address or
// raw location must be present, and coordinates must be a complete pair.
func (l EventLocation) Validate() error {
	if strings.TrimSpace(l.Address) == "" && strings.TrimSpace(l.RawLocation) == "" {
		return eris.New("location: address or raw_location is required")
	}
	if (l.Latitude == nil) != (l.Longitude == nil) {
		return eris.New("location: latitude and longitude must be provided together")
	}
	return nil
}

// EventCategory classifies the market force behind an event.
type EventCategory string

const (
	CategoryEmployment   EventCategory = "employment"
	CategoryDevelopment  EventCategory = "development"
	CategoryTransactions EventCategory = "transactions"
	CategoryAmenities    EventCategory = "amenities"
	CategoryGovernment   EventCategory = "government"
)

// EventMagnitude describes how big an event is. Magnitude is the 0-100 base
// severity; the optional quantities refine the absorption factor.
type EventMagnitude struct {
	Category      EventCategory `json:"category"`
	Type          string        `json:"type,omitempty"`
	Magnitude     float64       `json:"magnitude"`
	Sector        string        `json:"sector,omitempty"`
	UnitCount     *int          `json:"unit_count,omitempty"`
	EmployeeCount *int          `json:"employee_count,omitempty"`
	SquareFeet    *int          `json:"sqft,omitempty"`
}

// Validate enforces magnitude ∈ [0,100] at the boundary. The engine assumes
// valid input and does not re-check.
func (m EventMagnitude) Validate() error {
	if m.Magnitude < 0 || m.Magnitude > 100 {
		return eris.Errorf("magnitude: %.2f outside [0,100]", m.Magnitude)
	}
	if m.Category == "" {
		return eris.New("magnitude: category is required")
	}
	return nil
}

// Event is a stored market event awaiting or holding a geographic assignment.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Location    EventLocation  `json:"location"`
	Magnitude   EventMagnitude `json:"magnitude"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`

	// Assignment columns, populated after the engine runs.
	MSAID       *int64  `json:"msa_id,omitempty"`
	SubmarketID *int64  `json:"submarket_id,omitempty"`
	Tier        *Tier   `json:"geographic_tier,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the event at the boundary before it enters the engine.
func (e Event) Validate() error {
	if err := e.Location.Validate(); err != nil {
		return err
	}
	return e.Magnitude.Validate()
}
