// Package services implements weather acquisition and cache reconciliation.
// Each component is an explicit service object constructed once in New and
// passed by reference; nothing reaches the key-value store through globals.
package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/valpere/nebo/internal/config"
	"github.com/valpere/nebo/internal/interfaces"
	"github.com/valpere/nebo/pkg/metrics"
)

// Dependencies are the external collaborators the services are built on
type Dependencies struct {
	Store       interfaces.KeyValueStore
	Weather     interfaces.WeatherSource
	Geolocation interfaces.GeolocationProvider
	Signal      interfaces.ConnectivitySignal
	Clock       clockwork.Clock // nil uses real time
}

// Services is the central container for all business logic services.
//
// Usage:
//
//	svcs := services.New(cfg, deps, logger, metrics)
//	svcs.Start(ctx)
//	defer svcs.Stop()
//
//	view := svcs.Controller.View()
type Services struct {
	Preferences *PreferenceService      // Unit, notifications and theme settings
	Cache       *CacheService           // Offline snapshot, forecast and coordinates
	Location    *LocationService        // Device position and active query mode
	Weather     *WeatherService         // Concurrent current + forecast fetch pairs
	Controller  *ConnectivityController // Online/offline state machine
	Scheduler   *SchedulerService       // Periodic refresh while online
	startTime   time.Time
}

func New(cfg *config.Config, deps Dependencies, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *Services {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	preferenceService := NewPreferenceService(deps.Store, logger)
	cacheService := NewCacheService(deps.Store, logger, metricsCollector)
	locationService := NewLocationService(deps.Geolocation, cacheService, cfg.Geolocation.Timeout, logger, metricsCollector)
	weatherService := NewWeatherService(&cfg.Weather, deps.Weather, cacheService, clock, logger, metricsCollector)
	controller := NewConnectivityController(
		deps.Signal,
		locationService,
		weatherService,
		cacheService,
		preferenceService,
		clock,
		logger,
		metricsCollector,
	)
	schedulerService := NewSchedulerService(controller, cfg.Refresh.Interval, logger)

	return &Services{
		Preferences: preferenceService,
		Cache:       cacheService,
		Location:    locationService,
		Weather:     weatherService,
		Controller:  controller,
		Scheduler:   schedulerService,
		startTime:   clock.Now(),
	}
}

// Start runs the controller until ctx is done and schedules periodic refresh
func (s *Services) Start(ctx context.Context) error {
	go s.Controller.Run(ctx)
	return s.Scheduler.Start()
}

// Stop halts background jobs. The controller stops with its context.
func (s *Services) Stop() {
	s.Scheduler.Stop()
}

// StartTime is when the services were constructed
func (s *Services) StartTime() time.Time {
	return s.startTime
}
