// Package geocode resolves free-text event locations to coordinates with a
// confidence score and place-type classification, via a provider cascade
// with caching, rate limiting, and retry.
package geocode

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/impact-engine/internal/model"
	"github.com/sells-group/impact-engine/internal/observability"
	"github.com/sells-group/impact-engine/internal/resilience"
)

// Client geocodes free-text location descriptions. A nil result with a nil
// error means no provider matched; transient provider failures are retried
// with backoff and, once exhausted, also surface as "no match" so callers
// degrade gracefully.
type Client interface {
	Geocode(ctx context.Context, text string) (*model.GeocodingResult, error)
}

// Provider represents a single geocoding backend.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, text string) (*model.GeocodingResult, error)
	Available() bool
}

// CascadeClient tries providers in order until one matches.
type CascadeClient struct {
	providers []Provider
	cache     *Cache
	limiter   *rate.Limiter
	retryCfg  resilience.RetryConfig
	metrics   *observability.Metrics
	minConf   float64
}

// Option configures the CascadeClient.
type Option func(*CascadeClient)

// WithCache attaches a Postgres-backed result cache.
func WithCache(c *Cache) Option {
	return func(cc *CascadeClient) { cc.cache = c }
}

// WithRateLimit sets the requests-per-second limit applied across all
// providers. Nominatim's usage policy requires at most 1 req/s.
func WithRateLimit(rps float64) Option {
	return func(cc *CascadeClient) {
		if rps > 0 {
			cc.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetry overrides the retry configuration for provider calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(cc *CascadeClient) { cc.retryCfg = cfg }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(cc *CascadeClient) { cc.metrics = m }
}

// WithMinConfidence discards matches below the given confidence.
func WithMinConfidence(c float64) Option {
	return func(cc *CascadeClient) { cc.minConf = c }
}

// NewCascadeClient creates a client that tries providers in order.
func NewCascadeClient(providers []Provider, opts ...Option) *CascadeClient {
	cc := &CascadeClient{
		providers: providers,
		limiter:   rate.NewLimiter(1, 1),
		retryCfg:  resilience.DefaultRetryConfig(),
	}
	cc.retryCfg.OnRetry = resilience.RetryLogger("geocode", "search")
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// Geocode implements Client.
func (c *CascadeClient) Geocode(ctx context.Context, text string) (*model.GeocodingResult, error) {
	if text == "" {
		return nil, nil
	}

	if c.cache != nil {
		if hit, found := c.cache.Get(ctx, text); found {
			c.countCache("hit")
			return hit, nil
		}
		c.countCache("miss")
	}

	for _, p := range c.providers {
		if !p.Available() {
			continue
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := resilience.DoVal(ctx, c.retryCfg, func(ctx context.Context) (*model.GeocodingResult, error) {
			return p.Geocode(ctx, text)
		})
		if err != nil {
			c.countRequest("error")
			zap.L().Warn("geocode provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		if result == nil || result.Confidence < c.minConf {
			continue
		}

		c.countRequest("match")
		if c.cache != nil {
			c.cache.Put(ctx, text, result)
		}
		return result, nil
	}

	// All providers missed. Cache the negative result so repeated ingestion
	// of the same unresolvable text does not hammer the providers.
	c.countRequest("no_match")
	if c.cache != nil {
		c.cache.Put(ctx, text, nil)
	}
	return nil, nil
}

func (c *CascadeClient) countRequest(outcome string) {
	if c.metrics != nil {
		c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	}
}

func (c *CascadeClient) countCache(result string) {
	if c.metrics != nil {
		c.metrics.GeocodeCache.WithLabelValues(result).Inc()
	}
}

// newHTTPClient returns the default HTTP client for providers.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
