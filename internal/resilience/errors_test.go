package resilience

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"transient error", NewTransientError(errors.New("boom"), 503), true},
		{"wrapped transient", fmt.Errorf("outer: %w", NewTransientError(errors.New("boom"), 429)), true},
		{"eris-wrapped transient", eris.Wrap(NewTransientError(errors.New("boom"), 502), "outer"), true},
		{"connection reset text", errors.New("read tcp: connection reset by peer"), true},
		{"dns failure text", errors.New("dial tcp: lookup api.example.com: no such host"), true},
		{"io timeout text", errors.New("read tcp: i/o timeout"), true},
		{"unrelated text", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	te := NewTransientError(inner, 503)
	assert.True(t, errors.Is(te, inner))
	assert.Equal(t, "boom", te.Error())
	assert.Equal(t, 503, te.StatusCode)
}
