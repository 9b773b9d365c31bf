package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/nebo/pkg/metrics"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// ClientRateLimiter manages rate limits per client address
type ClientRateLimiter struct {
	limiters map[string]*rateLimiterEntry
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	done     chan struct{}
	stopOnce sync.Once
}

// rateLimiterEntry holds a limiter with its last access time for cleanup
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	rl := &ClientRateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     r,
		burst:    b,
		done:     make(chan struct{}),
	}

	// Start periodic cleanup goroutine (every 15 minutes)
	go rl.cleanupLoop()

	return rl
}

func (rl *ClientRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[client]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[client] = entry
	}
	entry.lastAccess = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// Stop terminates the cleanup goroutine
func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanupLoop periodically removes inactive rate limiters to prevent memory leaks
func (rl *ClientRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-1 * time.Hour))
		}
	}
}

// cleanup removes rate limiters that haven't been accessed since cutoff
func (rl *ClientRateLimiter) cleanup(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for client, entry := range rl.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.limiters, client)
		}
	}
}

// RequestID tags each request with an id, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or an empty string
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logging logs every request and records it in the HTTP metrics
func Logging(logger zerolog.Logger, metricsCollector *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metricsCollector.IncrementCounter("http_requests_total", route, strconv.Itoa(status))
		metricsCollector.ObserveHistogram("http_request_duration_seconds", duration.Seconds(), route)

		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else if status >= http.StatusBadRequest {
			event = logger.Warn()
		}
		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Str("client_ip", c.ClientIP()).
			Dur("duration", duration).
			Msg("Request processed")
	}
}

// RateLimit rejects clients that exceed their allowance
func RateLimit(rateLimiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
