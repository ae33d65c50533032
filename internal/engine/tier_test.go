package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/impact-engine/internal/config"
	"github.com/sells-group/impact-engine/internal/model"
)

func TestClassify(t *testing.T) {
	c := NewTierClassifier(config.DefaultEngineConfig().AreaKeywords)

	lat, lng := 33.7490, -84.3880

	tests := []struct {
		name     string
		loc      model.EventLocation
		geo      *model.GeocodingResult
		expected model.Tier
	}{
		{
			name:     "explicit coordinates win",
			loc:      model.EventLocation{RawLocation: "somewhere in Atlanta", Latitude: &lat, Longitude: &lng},
			geo:      &model.GeocodingResult{PlaceType: "place"},
			expected: model.TierPinDrop,
		},
		{
			name:     "geocoded address",
			loc:      model.EventLocation{Address: "123 Peachtree St NE"},
			geo:      &model.GeocodingResult{PlaceType: "address"},
			expected: model.TierPinDrop,
		},
		{
			name:     "geocoded poi",
			loc:      model.EventLocation{RawLocation: "Mercedes-Benz Stadium"},
			geo:      &model.GeocodingResult{PlaceType: "poi"},
			expected: model.TierPinDrop,
		},
		{
			name:     "geocoded postcode",
			loc:      model.EventLocation{RawLocation: "30309"},
			geo:      &model.GeocodingResult{PlaceType: "postcode"},
			expected: model.TierPinDrop,
		},
		{
			name:     "geocoded neighborhood",
			loc:      model.EventLocation{RawLocation: "Virginia-Highland"},
			geo:      &model.GeocodingResult{PlaceType: "neighborhood"},
			expected: model.TierArea,
		},
		{
			name:     "geocoded place",
			loc:      model.EventLocation{RawLocation: "Decatur, GA"},
			geo:      &model.GeocodingResult{PlaceType: "place"},
			expected: model.TierArea,
		},
		{
			name:     "unknown geocode place type falls through to keywords",
			loc:      model.EventLocation{RawLocation: "Midtown Atlanta"},
			geo:      &model.GeocodingResult{PlaceType: "region"},
			expected: model.TierArea,
		},
		{
			name:     "specificity hint address",
			loc:      model.EventLocation{RawLocation: "corner lot on 5th", Specificity: model.SpecificityAddress},
			expected: model.TierPinDrop,
		},
		{
			name:     "specificity hint neighborhood",
			loc:      model.EventLocation{RawLocation: "the east side", Specificity: model.SpecificityNeighborhood},
			expected: model.TierArea,
		},
		{
			name:     "specificity hint city",
			loc:      model.EventLocation{RawLocation: "Marietta", Specificity: model.SpecificityCity},
			expected: model.TierArea,
		},
		{
			name:     "specificity hint metro",
			loc:      model.EventLocation{RawLocation: "Atlanta metro", Specificity: model.SpecificityMetro},
			expected: model.TierMetro,
		},
		{
			name:     "specificity hint state",
			loc:      model.EventLocation{RawLocation: "Georgia", Specificity: model.SpecificityState},
			expected: model.TierMetro,
		},
		{
			name:     "area keyword in raw text",
			loc:      model.EventLocation{RawLocation: "new tower planned for Midtown"},
			expected: model.TierArea,
		},
		{
			name:     "area keyword is case-insensitive",
			loc:      model.EventLocation{RawLocation: "WEST END DISTRICT expansion"},
			expected: model.TierArea,
		},
		{
			name:     "no signal defaults to metro",
			loc:      model.EventLocation{RawLocation: "Atlanta, GA"},
			expected: model.TierMetro,
		},
		{
			name:     "specificity beats keyword",
			loc:      model.EventLocation{RawLocation: "downtown somewhere", Specificity: model.SpecificityMetro},
			expected: model.TierMetro,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.loc, tt.geo))
		})
	}
}

func TestTierImpactType(t *testing.T) {
	assert.Equal(t, model.ImpactDirect, model.TierPinDrop.ImpactType())
	assert.Equal(t, model.ImpactProximity, model.TierArea.ImpactType())
	assert.Equal(t, model.ImpactMetro, model.TierMetro.ImpactType())
}
