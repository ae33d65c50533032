// Package engine implements the geographic event assignment and
// impact-decay core: tier classification, tiered resolution with fallback,
// and per-trade-area impact scoring.
package engine

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/config"
	"github.com/sells-group/impact-engine/internal/model"
	"github.com/sells-group/impact-engine/internal/observability"
	"github.com/sells-group/impact-engine/internal/spatial"
)

// Geocoder resolves free text to coordinates with a confidence and place
// type. A nil result with a nil error means "no match", which is not a
// failure: the engine degrades to whatever coordinates it already has.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*model.GeocodingResult, error)
}

// ResultSink persists one assignment per invocation: the event's geographic
// columns plus an idempotent upsert of every trade-area impact keyed by
// (trade_area_id, event_id).
type ResultSink interface {
	SaveAssignment(ctx context.Context, eventID string, a *model.GeographicAssignment) error
}

// Engine orchestrates one event end to end: geocode, classify, resolve,
// score, persist. It holds no mutable state between runs, so independent
// events may be assigned concurrently.
type Engine struct {
	classifier *TierClassifier
	resolver   *Resolver
	geocoder   Geocoder
	sink       ResultSink
	metrics    *observability.Metrics
}

// Option configures the Engine.
type Option func(*Engine)

// WithGeocoder attaches a geocoder. Without one, events rely on explicit
// coordinates and name matching only.
func WithGeocoder(g Geocoder) Option {
	return func(e *Engine) { e.geocoder = g }
}

// WithSink attaches a result sink. Without one the engine only returns
// assignments to the caller.
func WithSink(s ResultSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the scoring clock (tests).
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		e.resolver.scorer.clock = c
	}
}

// New creates an Engine over a spatial index with the given tuning.
func New(index spatial.Index, cfg config.EngineConfig, opts ...Option) *Engine {
	scorer := NewScorer(cfg, clockwork.NewRealClock())
	e := &Engine{
		classifier: NewTierClassifier(cfg.AreaKeywords),
		resolver:   NewResolver(index, scorer, cfg),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AssignEvent processes one event end to end and returns its assignment.
// Geocoding failures degrade to a coarser tier; spatial index or sink
// failures abort the whole event with a single error and nothing persisted.
func (e *Engine) AssignEvent(ctx context.Context, ev model.Event) (*model.GeographicAssignment, error) {
	start := time.Now()
	log := zap.L().With(zap.String("event_id", ev.ID.String()))

	geo := e.maybeGeocode(ctx, ev.Location, log)

	tier := e.classifier.Classify(ev.Location, geo)

	assignment, escalatedTo, err := e.resolver.Resolve(ctx, tier, ResolveInput{
		Location:    ev.Location,
		Magnitude:   ev.Magnitude,
		PublishedAt: ev.PublishedAt,
		Geocode:     geo,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "engine: assign event %s", ev.ID)
	}
	assignment.Geocode = geo

	if escalatedTo != nil {
		log.Info("tier escalated",
			zap.String("from", string(tier)),
			zap.String("to", string(*escalatedTo)),
		)
	}
	if assignment.Unassigned() {
		log.Warn("event could not be localized",
			zap.String("raw_location", ev.Location.RawLocation),
			zap.String("address", ev.Location.Address),
		)
	}

	if e.sink != nil {
		if err := e.sink.SaveAssignment(ctx, ev.ID.String(), assignment); err != nil {
			return nil, eris.Wrapf(err, "engine: persist assignment for event %s", ev.ID)
		}
	}

	if e.metrics != nil {
		e.metrics.EventsAssigned.WithLabelValues(string(assignment.Tier)).Inc()
		e.metrics.ImpactsScored.Add(float64(len(assignment.Impacts)))
		e.metrics.AssignmentDuration.Observe(time.Since(start).Seconds())
	}

	log.Info("event assigned",
		zap.String("tier", string(assignment.Tier)),
		zap.Int("trade_areas", len(assignment.Impacts)),
		zap.Duration("took", time.Since(start)),
	)

	return assignment, nil
}

// maybeGeocode attempts geocoding when the event lacks explicit coordinates.
// Any failure is logged and swallowed: a missing geocode narrows the tier
// options but never fails the event.
func (e *Engine) maybeGeocode(ctx context.Context, loc model.EventLocation, log *zap.Logger) *model.GeocodingResult {
	if e.geocoder == nil || loc.HasPoint() {
		return nil
	}

	text := loc.Text()
	if text == "" {
		return nil
	}

	geo, err := e.geocoder.Geocode(ctx, text)
	if err != nil {
		log.Warn("geocoding failed, degrading to name matching",
			zap.String("text", text),
			zap.Error(err),
		)
		return nil
	}
	return geo
}
