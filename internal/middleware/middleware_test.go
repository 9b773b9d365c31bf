package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/valpere/nebo/pkg/metrics"
	"github.com/valpere/nebo/tests/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewClientRateLimiter(t *testing.T) {
	rateLimit := rate.Limit(10) // 10 requests per second
	burst := 20

	limiter := NewClientRateLimiter(rateLimit, burst)
	defer limiter.Stop()

	assert.NotNil(t, limiter)
	assert.NotNil(t, limiter.limiters)
	assert.Equal(t, rateLimit, limiter.rate)
	assert.Equal(t, burst, limiter.burst)
	assert.Empty(t, limiter.limiters) // Initially no limiters
}

func TestClientRateLimiter_Allow(t *testing.T) {
	t.Run("allows first request", func(t *testing.T) {
		limiter := NewClientRateLimiter(rate.Limit(10), 5)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.1"))
	})

	t.Run("creates limiter for new client", func(t *testing.T) {
		limiter := NewClientRateLimiter(rate.Limit(10), 5)
		defer limiter.Stop()

		limiter.Allow("10.0.0.2")

		limiter.mu.RLock()
		_, exists := limiter.limiters["10.0.0.2"]
		limiter.mu.RUnlock()

		assert.True(t, exists)
	})

	t.Run("denies after exceeding burst limit", func(t *testing.T) {
		limiter := NewClientRateLimiter(rate.Limit(1), 2) // 1 req/s, burst of 2
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.False(t, limiter.Allow("10.0.0.3"))
	})

	t.Run("allows after waiting for rate limit recovery", func(t *testing.T) {
		limiter := NewClientRateLimiter(rate.Limit(10), 1) // 10 req/s, burst of 1
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.4"))
		assert.False(t, limiter.Allow("10.0.0.4"))

		// Wait for token to refill (100ms = 1/10 second)
		time.Sleep(150 * time.Millisecond)

		assert.True(t, limiter.Allow("10.0.0.4"))
	})

	t.Run("independent limiters per client", func(t *testing.T) {
		limiter := NewClientRateLimiter(rate.Limit(1), 1)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("10.0.0.5"))
		assert.False(t, limiter.Allow("10.0.0.5"))
		assert.True(t, limiter.Allow("10.0.0.6"))
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter := NewClientRateLimiter(rate.Limit(100), 50)
		defer limiter.Stop()

		done := make(chan bool)
		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 10; j++ {
					limiter.Allow("10.0.0.7")
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewClientRateLimiter(rate.Limit(10), 5)
		limiter.Stop()
		assert.NotPanics(t, limiter.Stop)

		select {
		case <-limiter.done:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("done channel was not closed")
		}
	})
}

func TestClientRateLimiter_Cleanup(t *testing.T) {
	limiter := NewClientRateLimiter(rate.Limit(10), 5)
	defer limiter.Stop()

	limiter.Allow("stale")
	limiter.mu.Lock()
	limiter.limiters["stale"].lastAccess = time.Now().Add(-2 * time.Hour)
	limiter.mu.Unlock()
	limiter.Allow("fresh")

	limiter.cleanup(time.Now().Add(-1 * time.Hour))

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	assert.NotContains(t, limiter.limiters, "stale")
	assert.Contains(t, limiter.limiters, "fresh")
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestLogging(t *testing.T) {
	testLogger := helpers.NewTestLogger()
	m := metrics.New()

	router := gin.New()
	router.Use(RequestID(), Logging(*testLogger.Logger, m))
	router.GET("/api/v1/weather", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/weather", nil))
	require.Equal(t, http.StatusOK, w.Code)

	testLogger.AssertLogContains(t, "Request processed")
	testLogger.AssertLogContains(t, `"route":"/api/v1/weather"`)
	assert.Equal(t, 1.0, m.CounterValue("http_requests_total", "/api/v1/weather", "200"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	testLogger.AssertLogLevel(t, "error")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, 1.0, m.CounterValue("http_requests_total", "unmatched", "404"))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewClientRateLimiter(rate.Limit(1), 1)
	defer limiter.Stop()

	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}
