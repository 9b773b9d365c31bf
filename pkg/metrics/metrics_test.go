package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	require.NotNil(t, m)
	assert.Contains(t, m.counters, "weather_requests_total")
	assert.Contains(t, m.counters, "cache_operations_total")
	assert.Contains(t, m.counters, "geolocation_requests_total")
	assert.Contains(t, m.counters, "connectivity_transitions_total")
	assert.Contains(t, m.counters, "http_requests_total")
	assert.Contains(t, m.histograms, "weather_api_duration_seconds")
	assert.Contains(t, m.histograms, "http_request_duration_seconds")
	assert.Contains(t, m.gauges, "connectivity_online")
	assert.Contains(t, m.gauges, "cache_hit_rate")
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration
	assert.NotPanics(t, func() {
		a, b := New(), New()
		a.IncrementCounter("weather_requests_total", "current", "ok")
		assert.Equal(t, 0.0, b.CounterValue("weather_requests_total", "current", "ok"))
	})
}

func TestMetrics_IncrementCounter(t *testing.T) {
	m := New()

	m.IncrementCounter("weather_requests_total", "forecast", "error")
	m.IncrementCounter("weather_requests_total", "forecast", "error")

	assert.Equal(t, 2.0, m.CounterValue("weather_requests_total", "forecast", "error"))
	assert.Equal(t, 0.0, m.CounterValue("weather_requests_total", "forecast", "ok"))

	t.Run("unknown counter is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() { m.IncrementCounter("nonexistent_counter", "x") })
		assert.Equal(t, 0.0, m.CounterValue("nonexistent_counter", "x"))
	})

	t.Run("wrong label arity reads as zero", func(t *testing.T) {
		assert.Equal(t, 0.0, m.CounterValue("weather_requests_total", "current"))
	})
}

func TestMetrics_GetCacheHitRate(t *testing.T) {
	m := New()

	assert.Equal(t, 0.0, m.GetCacheHitRate("weather"))

	m.SetGauge("cache_hit_rate", 75, "weather")
	m.SetGauge("cache_hit_rate", 10, "preferences")

	assert.Equal(t, 75.0, m.GetCacheHitRate("weather"))
	assert.Equal(t, 10.0, m.GetCacheHitRate("preferences"))
}

func TestMetrics_GetAverageWeatherLatency(t *testing.T) {
	m := New()

	assert.Equal(t, 0.0, m.GetAverageWeatherLatency())

	m.ObserveHistogram("weather_api_duration_seconds", 0.1, "current")
	m.ObserveHistogram("weather_api_duration_seconds", 0.3, "forecast")

	assert.InDelta(t, 200.0, m.GetAverageWeatherLatency(), 1e-9)
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncrementCounter("weather_requests_total", "current", "ok")
		m.ObserveHistogram("weather_api_duration_seconds", 1, "current")
		m.SetGauge("connectivity_online", 1)
	})
	assert.Equal(t, 0.0, m.CounterValue("weather_requests_total", "current", "ok"))
	assert.Equal(t, 0.0, m.GetCacheHitRate("weather"))
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncrementCounter("connectivity_transitions_total", "offline")
	m.SetGauge("connectivity_online", 0)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `connectivity_transitions_total{state="offline"} 1`)
	assert.Contains(t, string(body), "connectivity_online 0")
}
