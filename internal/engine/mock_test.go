package engine

import (
	"context"
	"strings"

	"github.com/sells-group/impact-engine/internal/model"
)

// fakeIndex is an in-memory spatial.Index. Lookups match against the fixture
// fields; nil slices and refs model "not found".
type fakeIndex struct {
	submarket      *model.SubmarketRef
	msa            *model.MSARef
	pointAreas     []model.TradeAreaRef
	submarketAreas []model.TradeAreaRef
	msaAreas       []model.TradeAreaRef
	stats          map[int64]*model.TradeAreaStats

	// When set, name lookups only match text containing the fragment.
	submarketNameFragment string
	msaNameFragment       string

	err error

	calls []string
}

func (f *fakeIndex) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeIndex) SubmarketForPoint(_ context.Context, _, _ float64) (*model.SubmarketRef, error) {
	f.record("SubmarketForPoint")
	return f.submarket, f.err
}

func (f *fakeIndex) MSAForPoint(_ context.Context, _, _ float64) (*model.MSARef, error) {
	f.record("MSAForPoint")
	return f.msa, f.err
}

func (f *fakeIndex) TradeAreasForPoint(_ context.Context, _, _ float64) ([]model.TradeAreaRef, error) {
	f.record("TradeAreasForPoint")
	return f.pointAreas, f.err
}

func (f *fakeIndex) SubmarketByName(_ context.Context, raw string) (*model.SubmarketRef, error) {
	f.record("SubmarketByName")
	if f.err != nil {
		return nil, f.err
	}
	if f.submarketNameFragment != "" && !strings.Contains(strings.ToLower(raw), f.submarketNameFragment) {
		return nil, nil
	}
	return f.submarket, nil
}

func (f *fakeIndex) MSAByName(_ context.Context, raw string) (*model.MSARef, error) {
	f.record("MSAByName")
	if f.err != nil {
		return nil, f.err
	}
	if f.msaNameFragment != "" && !strings.Contains(strings.ToLower(raw), f.msaNameFragment) {
		return nil, nil
	}
	return f.msa, nil
}

func (f *fakeIndex) MSAForSubmarket(_ context.Context, _ int64) (*model.MSARef, error) {
	f.record("MSAForSubmarket")
	return f.msa, f.err
}

func (f *fakeIndex) TradeAreasForSubmarket(_ context.Context, _ int64) ([]model.TradeAreaRef, error) {
	f.record("TradeAreasForSubmarket")
	return f.submarketAreas, f.err
}

func (f *fakeIndex) TradeAreasForMSA(_ context.Context, _ int64, limit int) ([]model.TradeAreaRef, error) {
	f.record("TradeAreasForMSA")
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.msaAreas) > limit {
		return f.msaAreas[:limit], nil
	}
	return f.msaAreas, nil
}

func (f *fakeIndex) StatsForTradeArea(_ context.Context, id int64) (*model.TradeAreaStats, error) {
	f.record("StatsForTradeArea")
	if f.err != nil {
		return nil, f.err
	}
	return f.stats[id], nil
}

// fakeGeocoder returns a canned result or error.
type fakeGeocoder struct {
	result *model.GeocodingResult
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (*model.GeocodingResult, error) {
	f.calls++
	return f.result, f.err
}

// fakeSink captures saved assignments.
type fakeSink struct {
	saved map[string]*model.GeographicAssignment
	err   error
}

func (f *fakeSink) SaveAssignment(_ context.Context, eventID string, a *model.GeographicAssignment) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string]*model.GeographicAssignment)
	}
	f.saved[eventID] = a
	return nil
}
