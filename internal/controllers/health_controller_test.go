package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_ReturnsOK(t *testing.T) {
	env := newTestEnv(at("2024-01-15T07:00"))
	require.NoError(t, env.fasting.Start(at("2024-01-15T06:00")))

	rr := do(env.hc.Health, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	resp := decode[map[string]interface{}](t, rr)
	assert.Equal(t, "ok", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
	assert.Equal(t, float64(0), resp["days"])
	assert.Equal(t, true, resp["fasting"])
	assert.Equal(t, float64(1), resp["revision"])
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(at("2024-01-15T07:00"))
	rr := do(env.hc.Health, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0h0m0s"},
		{90 * time.Second, "0h1m30s"},
		{26*time.Hour + 5*time.Minute + 7*time.Second, "26h5m7s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
