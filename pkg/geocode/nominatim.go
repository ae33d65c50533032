package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-engine/internal/model"
	"github.com/sells-group/impact-engine/internal/resilience"
)

// NominatimProvider geocodes via a Nominatim-compatible search API. It is
// the primary provider because its responses carry the place-type
// classification the tier classifier depends on.
type NominatimProvider struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimProvider creates a NominatimProvider. userAgent is required by
// the public Nominatim usage policy.
func NewNominatimProvider(baseURL, userAgent string, timeout time.Duration) *NominatimProvider {
	return &NominatimProvider{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: newHTTPClient(timeout),
	}
}

// Name implements Provider.
func (p *NominatimProvider) Name() string { return "nominatim" }

// Available implements Provider.
func (p *NominatimProvider) Available() bool { return p.baseURL != "" }

// nominatimResult is the jsonv2 response shape.
type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	AddressType string  `json:"addresstype"`
	Importance  float64 `json:"importance"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		County      string `json:"county"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
		Country     string `json:"country"`
	} `json:"address"`
}

// Geocode implements Provider.
func (p *NominatimProvider) Geocode(ctx context.Context, text string) (*model.GeocodingResult, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: search request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("nominatim: search returned %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, eris.Wrap(err, "nominatim: decode response")
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse latitude")
	}
	lng, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse longitude")
	}

	city := r.Address.City
	if city == "" {
		city = r.Address.Town
	}
	if city == "" {
		city = r.Address.Village
	}

	out := &model.GeocodingResult{
		Latitude:    lat,
		Longitude:   lng,
		DisplayName: r.DisplayName,
		City:        city,
		State:       r.Address.State,
		Zip:         r.Address.Postcode,
		County:      r.Address.County,
		Country:     r.Address.Country,
		Confidence:  clampConfidence(r.Importance),
		PlaceType:   classifyPlaceType(r),
	}
	if r.Address.Road != "" {
		out.Address = r.Address.Road
		if r.Address.HouseNumber != "" {
			out.Address = fmt.Sprintf("%s %s", r.Address.HouseNumber, r.Address.Road)
		}
	}
	return out, nil
}

// classifyPlaceType folds Nominatim's category/type/addresstype triple into
// the engine's place-type taxonomy.
func classifyPlaceType(r nominatimResult) string {
	if r.Address.HouseNumber != "" || r.AddressType == "building" || r.Category == "building" {
		return "address"
	}
	if r.AddressType == "postcode" || r.Type == "postcode" {
		return "postcode"
	}
	switch r.Category {
	case "amenity", "shop", "tourism", "leisure", "office":
		return "poi"
	}
	switch r.AddressType {
	case "neighbourhood", "suburb", "quarter", "residential":
		return "neighborhood"
	case "city", "town", "village", "hamlet":
		return "place"
	}
	if r.AddressType != "" {
		return r.AddressType
	}
	return r.Type
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
