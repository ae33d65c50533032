package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-engine/internal/model"
	"github.com/sells-group/impact-engine/internal/resilience"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleProvider geocodes via the Google Geocoding API, used as a fallback
// when the primary provider finds no match.
type GoogleProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleProvider creates a GoogleProvider. An empty key disables it.
func NewGoogleProvider(apiKey string, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{
		apiKey:     apiKey,
		baseURL:    googleGeocodeURL,
		httpClient: newHTTPClient(timeout),
	}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

// Available implements Provider.
func (p *GoogleProvider) Available() bool { return p.apiKey != "" }

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// Geocode implements Provider.
func (p *GoogleProvider) Geocode(ctx context.Context, text string) (*model.GeocodingResult, error) {
	q := url.Values{}
	q.Set("address", text)
	q.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: geocode request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("google: geocode returned %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var gr googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, eris.Wrap(err, "google: decode response")
	}

	switch gr.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return nil, resilience.NewTransientError(eris.Errorf("google: status %s", gr.Status), 0)
	default:
		return nil, eris.Errorf("google: status %s", gr.Status)
	}
	if len(gr.Results) == 0 {
		return nil, nil
	}

	r := gr.Results[0]
	out := &model.GeocodingResult{
		Latitude:    r.Geometry.Location.Lat,
		Longitude:   r.Geometry.Location.Lng,
		DisplayName: r.FormattedAddress,
		Confidence:  googleConfidence(r.Geometry.LocationType),
		PlaceType:   googlePlaceType(r.Types),
	}
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "locality":
				out.City = c.LongName
			case "administrative_area_level_1":
				out.State = c.ShortName
			case "administrative_area_level_2":
				out.County = c.LongName
			case "postal_code":
				out.Zip = c.LongName
			case "country":
				out.Country = c.LongName
			case "route":
				out.Address = c.LongName
			}
		}
	}
	return out, nil
}

// googleConfidence maps Google's location_type to a 0-1 confidence.
func googleConfidence(locationType string) float64 {
	switch locationType {
	case "ROOFTOP":
		return 0.95
	case "RANGE_INTERPOLATED":
		return 0.8
	case "GEOMETRIC_CENTER":
		return 0.6
	default:
		return 0.4
	}
}

// googlePlaceType maps Google result types onto the engine's taxonomy.
func googlePlaceType(types []string) string {
	for _, t := range types {
		switch t {
		case "street_address", "premise", "subpremise":
			return "address"
		case "point_of_interest", "establishment":
			return "poi"
		case "postal_code":
			return "postcode"
		case "neighborhood", "sublocality":
			return "neighborhood"
		case "locality":
			return "place"
		}
	}
	if len(types) > 0 {
		return types[0]
	}
	return "unknown"
}
