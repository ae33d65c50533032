package geocode

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/model"
)

// Cache is a Postgres-backed geocode result cache. Negative results are
// cached too: repeated ingestion of the same unresolvable text should not
// re-query the providers.
type Cache struct {
	pool    db.Pool
	ttlDays int
}

// NewCache creates a Cache. ttlDays <= 0 means entries never expire.
func NewCache(pool db.Pool, ttlDays int) *Cache {
	return &Cache{pool: pool, ttlDays: ttlDays}
}

// cacheKey normalizes and hashes the query text.
func cacheKey(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(normalized)))
}

// Get returns the cached result for text. found is true for both positive
// and negative cache hits; a negative hit returns a nil result.
func (c *Cache) Get(ctx context.Context, text string) (*model.GeocodingResult, bool) {
	query := `
		SELECT matched, latitude, longitude, display_name, city, state, zip,
		       county, country, confidence, place_type
		FROM market.geocode_cache
		WHERE query_hash = $1
	`
	args := []any{cacheKey(text)}
	if c.ttlDays > 0 {
		query += fmt.Sprintf(" AND cached_at > now() - interval '%d days'", c.ttlDays)
	}

	var matched bool
	var r model.GeocodingResult
	err := c.pool.QueryRow(ctx, query, args...).Scan(
		&matched, &r.Latitude, &r.Longitude, &r.DisplayName, &r.City, &r.State,
		&r.Zip, &r.County, &r.Country, &r.Confidence, &r.PlaceType,
	)
	if err != nil {
		return nil, false
	}
	if !matched {
		return nil, true
	}
	return &r, true
}

// Put stores a result for text. A nil result records a negative entry.
// Cache failures are logged and swallowed: the cache is an optimization,
// never a dependency.
func (c *Cache) Put(ctx context.Context, text string, r *model.GeocodingResult) {
	stored := r
	if stored == nil {
		stored = &model.GeocodingResult{}
	}

	_, err := c.pool.Exec(ctx, `
		INSERT INTO market.geocode_cache
			(query_hash, matched, latitude, longitude, display_name, city,
			 state, zip, county, country, confidence, place_type, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (query_hash) DO UPDATE SET
			matched = EXCLUDED.matched,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			display_name = EXCLUDED.display_name,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			county = EXCLUDED.county,
			country = EXCLUDED.country,
			confidence = EXCLUDED.confidence,
			place_type = EXCLUDED.place_type,
			cached_at = now()
	`, cacheKey(text), r != nil, stored.Latitude, stored.Longitude,
		stored.DisplayName, stored.City, stored.State, stored.Zip,
		stored.County, stored.Country, stored.Confidence, stored.PlaceType,
	)
	if err != nil {
		zap.L().Debug("geocode cache store failed", zap.Error(eris.Wrap(err, "geocode: store cache")))
	}
}
