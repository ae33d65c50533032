package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-engine/internal/db"
	"github.com/sells-group/impact-engine/internal/engine"
	"github.com/sells-group/impact-engine/internal/observability"
	"github.com/sells-group/impact-engine/internal/resilience"
	"github.com/sells-group/impact-engine/internal/sink"
	"github.com/sells-group/impact-engine/internal/spatial"
	"github.com/sells-group/impact-engine/internal/store"
	"github.com/sells-group/impact-engine/pkg/geocode"
)

// env wires the connection pool, engine, and stores for a command run.
type env struct {
	Pool    *pgxpool.Pool
	Engine  *engine.Engine
	Events  *store.EventStore
	Metrics *observability.Metrics
}

// initEnv connects to the store and assembles the engine with its
// collaborators: spatial index, geocoder cascade, and result sink.
func initEnv(ctx context.Context, withMetrics bool) (*env, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("store.database_url is required")
	}

	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, &db.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, err
	}

	var metrics *observability.Metrics
	if withMetrics {
		metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
	}

	timeout := time.Duration(cfg.Geocoder.TimeoutSecs) * time.Second
	providers := []geocode.Provider{
		geocode.NewNominatimProvider(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, timeout),
		geocode.NewGoogleProvider(cfg.Geocoder.GoogleAPIKey, timeout),
	}

	opts := []geocode.Option{
		geocode.WithRateLimit(cfg.Geocoder.RateLimitRPS),
		geocode.WithRetry(resilience.RetryConfig{
			MaxAttempts: cfg.Geocoder.MaxAttempts,
			OnRetry:     resilience.RetryLogger("geocode", "search"),
		}),
		geocode.WithMinConfidence(cfg.Geocoder.MinConfidence),
	}
	if cfg.Geocoder.CacheEnabled {
		opts = append(opts, geocode.WithCache(geocode.NewCache(pool, cfg.Geocoder.CacheTTLDays)))
	}
	if metrics != nil {
		opts = append(opts, geocode.WithMetrics(metrics))
	}
	geocoder := geocode.NewCascadeClient(providers, opts...)

	engineOpts := []engine.Option{
		engine.WithGeocoder(geocoder),
		engine.WithSink(sink.NewPostgresSink(pool)),
	}
	if metrics != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(metrics))
	}

	return &env{
		Pool:    pool,
		Engine:  engine.New(spatial.NewPostgresIndex(pool), cfg.Engine, engineOpts...),
		Events:  store.NewEventStore(pool),
		Metrics: metrics,
	}, nil
}

// Close releases the connection pool.
func (e *env) Close() {
	e.Pool.Close()
}
