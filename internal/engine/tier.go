package engine

import (
	"strings"

	"github.com/sells-group/impact-engine/internal/model"
)

// Geocoder place types that pin an event to an exact coordinate.
var pinDropPlaceTypes = map[string]bool{
	"address":  true,
	"poi":      true,
	"postcode": true,
}

// Geocoder place types that localize an event to a named area.
var areaPlaceTypes = map[string]bool{
	"neighborhood": true,
	"place":        true,
}

// TierClassifier decides the resolution granularity for an event. It is a
// pure function of its inputs plus the configured named-area keyword list.
type TierClassifier struct {
	areaKeywords []string
}

// NewTierClassifier creates a classifier with the given named-area keywords.
func NewTierClassifier(areaKeywords []string) *TierClassifier {
	return &TierClassifier{areaKeywords: areaKeywords}
}

// Classify returns the tier for a location and its (possibly nil) geocode
// result. First matching rule wins:
//
//  1. explicit coordinates            -> pin_drop
//  2. geocode place type address-like -> pin_drop
//  3. geocode place type area-like    -> area
//  4. caller specificity hint         -> mapped tier
//  5. named-area keyword in raw text  -> area
//  6. otherwise                       -> metro (safe default)
func (c *TierClassifier) Classify(loc model.EventLocation, geo *model.GeocodingResult) model.Tier {
	if loc.HasPoint() {
		return model.TierPinDrop
	}

	if geo != nil {
		if pinDropPlaceTypes[geo.PlaceType] {
			return model.TierPinDrop
		}
		if areaPlaceTypes[geo.PlaceType] {
			return model.TierArea
		}
	}

	if loc.Specificity != "" {
		switch loc.Specificity {
		case model.SpecificityAddress:
			return model.TierPinDrop
		case model.SpecificityNeighborhood, model.SpecificityCity:
			return model.TierArea
		default:
			return model.TierMetro
		}
	}

	raw := strings.ToLower(loc.RawLocation)
	for _, kw := range c.areaKeywords {
		if strings.Contains(raw, strings.ToLower(kw)) {
			return model.TierArea
		}
	}

	return model.TierMetro
}
