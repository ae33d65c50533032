package main

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/impact-engine/internal/model"
)

func TestReadEventFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"location": {"address": "123 Peachtree St NE", "latitude": 33.78, "longitude": -84.38},
		"magnitude": {"category": "development", "sector": "multifamily", "magnitude": 80, "unit_count": 300},
		"published_at": "2025-06-13T00:00:00Z"
	}`), 0644))

	ev, err := readEventFile(path)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, "123 Peachtree St NE", ev.Location.Address)
	require.NotNil(t, ev.Location.Latitude)
	assert.Equal(t, 33.78, *ev.Location.Latitude)
	assert.Equal(t, model.CategoryDevelopment, ev.Magnitude.Category)
	require.NotNil(t, ev.Magnitude.UnitCount)
	assert.Equal(t, 300, *ev.Magnitude.UnitCount)
	require.NotNil(t, ev.PublishedAt)
	assert.NoError(t, ev.Validate())
}

func TestReadEventFile_KeepsExplicitID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json")
	id := uuid.New()
	require.NoError(t, os.WriteFile(path, []byte(`{
		"id": "`+id.String()+`",
		"location": {"raw_location": "Midtown Atlanta"},
		"magnitude": {"category": "employment", "magnitude": 60}
	}`), 0644))

	ev, err := readEventFile(path)
	require.NoError(t, err)
	assert.Equal(t, id, ev.ID)
}

func TestReadEventFile_Missing(t *testing.T) {
	_, err := readEventFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestReadEventFile_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := readEventFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse event file")
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, 418, map[string]string{"status": "teapot"})

	assert.Equal(t, 418, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": "teapot"}`, rec.Body.String())
}
