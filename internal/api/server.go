// Package api exposes the weather view and its controls over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/nebo/internal/config"
	"github.com/valpere/nebo/internal/middleware"
	"github.com/valpere/nebo/internal/models"
	"github.com/valpere/nebo/internal/services"
	"github.com/valpere/nebo/internal/version"
	"github.com/valpere/nebo/pkg/metrics"
)

// ConnectivityToggle is a manually controlled connectivity signal
type ConnectivityToggle interface {
	Set(online bool) bool
}

type Server struct {
	config   *config.Config
	services *services.Services
	toggle   ConnectivityToggle // nil unless connectivity.mode is manual
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	limiter  *middleware.ClientRateLimiter
	router   *gin.Engine
	server   *http.Server
}

type searchRequest struct {
	City string `json:"city"`
}

type preferencesRequest struct {
	Unit                 *string `json:"unit"`
	Theme                *string `json:"theme"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

type connectivityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// viewResponse is returned by every endpoint that may change what is displayed
type viewResponse struct {
	View  models.View `json:"view"`
	Error string      `json:"error,omitempty"`
}

func New(cfg *config.Config, svcs *services.Services, toggle ConnectivityToggle, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   cfg,
		services: svcs,
		toggle:   toggle,
		logger:   logger.With().Str("component", "api").Logger(),
		metrics:  metricsCollector,
		limiter:  middleware.NewClientRateLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateBurst),
	}
	s.setupRouter()

	s.server = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging(s.logger, s.metrics))

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(s.limiter))
	{
		v1.GET("/weather", s.getWeather)
		v1.POST("/search", s.search)
		v1.POST("/location", s.useLocation)
		v1.POST("/refresh", s.refresh)
		v1.GET("/preferences", s.getPreferences)
		v1.PUT("/preferences", s.updatePreferences)
		v1.GET("/connectivity", s.getConnectivity)
		v1.PUT("/connectivity", s.setConnectivity)
	}

	s.router = router
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server started")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.server.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                 "healthy",
		"version":                version.GetInfo(),
		"online":                 s.services.Controller.Online(),
		"uptime":                 time.Since(s.services.StartTime()).Round(time.Second).String(),
		"cache_hit_rate":         s.metrics.GetCacheHitRate("weather"),
		"avg_weather_latency_ms": s.metrics.GetAverageWeatherLatency(),
		"time":                   time.Now().Unix(),
	})
}

func (s *Server) getWeather(c *gin.Context) {
	c.JSON(http.StatusOK, viewResponse{View: s.services.Controller.View()})
}

func (s *Server) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respond(c, s.services.Controller.SearchCity(c.Request.Context(), req.City))
}

func (s *Server) useLocation(c *gin.Context) {
	s.respond(c, s.services.Controller.UseCurrentLocation(c.Request.Context()))
}

func (s *Server) refresh(c *gin.Context) {
	s.respond(c, s.services.Controller.Refresh(c.Request.Context()))
}

func (s *Server) getPreferences(c *gin.Context) {
	prefs, err := s.services.Preferences.Preferences(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read preferences")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (s *Server) updatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate everything before storing anything
	var (
		unit  models.UnitSystem
		theme models.Theme
		err   error
	)
	if req.Unit != nil {
		if unit, err = models.ParseUnitSystem(*req.Unit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Theme != nil {
		if theme, err = models.ParseTheme(*req.Theme); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	prefs := s.services.Preferences

	if req.Theme != nil {
		if err := prefs.SetTheme(ctx, theme); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.NotificationsEnabled != nil {
		if err := prefs.SetNotificationsEnabled(ctx, *req.NotificationsEnabled); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Unit != nil {
		// The controller stores the unit and re-fetches while online
		s.respond(c, s.services.Controller.SetUnit(ctx, unit))
		return
	}

	s.getPreferences(c)
}

func (s *Server) getConnectivity(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online": s.services.Controller.Online(),
		"mode":   s.config.Connectivity.Mode,
		"manual": s.toggle != nil,
	})
}

func (s *Server) setConnectivity(c *gin.Context) {
	if s.toggle == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "connectivity is probed; set connectivity.mode to manual to toggle it"})
		return
	}

	var req connectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changed := s.toggle.Set(*req.Online)
	s.logger.Info().Bool("online", *req.Online).Bool("changed", changed).Msg("Connectivity toggled")

	// The controller handles the transition asynchronously
	c.JSON(http.StatusAccepted, gin.H{"online": *req.Online, "changed": changed})
}

// respond writes the current view with a status derived from err
func (s *Server) respond(c *gin.Context, err error) {
	view := s.services.Controller.View()
	status := statusFor(err, view)
	if err != nil {
		s.logger.Warn().Err(err).Int("status", status).Str("request_id", middleware.GetRequestID(c)).Msg("Operation finished with errors")
	}

	resp := viewResponse{View: view}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

func statusFor(err error, view models.View) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, services.ErrSearchRequiresConnectivity):
		return http.StatusServiceUnavailable
	case view.HasData():
		// Partial or fallback data is being shown
		return http.StatusOK
	case errors.Is(err, services.ErrNoLocation):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
