// Package app wires configuration, storage, providers, services and the HTTP API into one process.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/nebo/internal/api"
	"github.com/valpere/nebo/internal/config"
	"github.com/valpere/nebo/internal/database"
	"github.com/valpere/nebo/internal/interfaces"
	"github.com/valpere/nebo/internal/services"
	"github.com/valpere/nebo/internal/storage"
	"github.com/valpere/nebo/internal/version"
	"github.com/valpere/nebo/pkg/connectivity"
	"github.com/valpere/nebo/pkg/geolocation"
	"github.com/valpere/nebo/pkg/metrics"
	"github.com/valpere/nebo/pkg/weather"
)

type App struct {
	config   *config.Config
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	services *services.Services
	server   *api.Server
	prober   *connectivity.Prober // nil in manual mode
	closers  []func() error
}

func New(cfg *config.Config) (*App, error) {
	logger := NewLogger(&cfg.Logging, os.Stdout)
	return newApp(cfg, logger)
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	metricsCollector := metrics.New()

	app := &App{
		config:  cfg,
		logger:  logger,
		metrics: metricsCollector,
	}

	store, err := app.openStore()
	if err != nil {
		return nil, err
	}

	weatherClient := weather.NewClient(cfg.Weather.OpenWeatherAPIKey, weather.Options{
		BaseURL:           cfg.Weather.BaseURL,
		Timeout:           cfg.Weather.Timeout,
		RequestsPerMinute: cfg.Weather.RequestsPerMinute,
		UserAgent:         version.UserAgent(),
	})
	if cfg.Weather.OpenWeatherAPIKey == "" {
		logger.Warn().Msg("No OpenWeatherMap API key configured, live fetches will fail")
	}

	signal, toggle := app.newSignal()

	app.services = services.New(cfg, services.Dependencies{
		Store:       store,
		Weather:     weatherClient,
		Geolocation: newGeolocationProvider(&cfg.Geolocation),
		Signal:      signal,
	}, &app.logger, metricsCollector)

	app.server = api.New(cfg, app.services, toggle, &app.logger, metricsCollector)

	logger.Info().
		Str("storage", cfg.Storage.Backend).
		Str("geolocation", cfg.Geolocation.Provider).
		Str("connectivity", cfg.Connectivity.Mode).
		Msg("Application initialized")

	return app, nil
}

// NewLogger builds the process logger from the logging configuration
func NewLogger(cfg *config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = out
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", "nebo").
		Logger()
}

// openStore connects the configured key-value backend
func (a *App) openStore() (interfaces.KeyValueStore, error) {
	cfg := a.config
	prefix := cfg.Storage.KeyPrefix

	switch cfg.Storage.Backend {
	case "memory":
		a.logger.Warn().Msg("Using in-memory storage, nothing survives a restart")
		return storage.NewMemoryStore(), nil

	case "redis":
		rdb, err := database.ConnectRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		return storage.NewRedisStore(rdb, prefix), nil

	case "sqlite", "postgres":
		db, err := database.Connect(&cfg.Storage, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		return storage.NewGormStore(db, prefix), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newSignal returns the connectivity signal and, in manual mode, the switch that drives it
func (a *App) newSignal() (interfaces.ConnectivitySignal, api.ConnectivityToggle) {
	cfg := a.config.Connectivity
	if cfg.Mode == "manual" {
		sw := connectivity.NewSwitch(true)
		return sw, sw
	}

	a.prober = connectivity.NewProber(cfg.ProbeURL, cfg.Interval, cfg.Timeout, nil)
	return a.prober, nil
}

func newGeolocationProvider(cfg *config.GeolocationConfig) interfaces.GeolocationProvider {
	switch cfg.Provider {
	case "static":
		if cfg.Latitude == nil || cfg.Longitude == nil {
			return geolocation.NewDeniedProvider()
		}
		return geolocation.NewStaticProvider(*cfg.Latitude, *cfg.Longitude)
	default:
		return geolocation.NewIPProvider(cfg.IPAPIURL, cfg.Timeout).WithUserAgent(version.UserAgent())
	}
}

// Start runs the background components and the HTTP server until ctx is done
func (a *App) Start(ctx context.Context) error {
	a.logger.Info().Str("version", version.GetInfo().Short()).Msg("Starting Nebo...")

	if a.prober != nil {
		go a.prober.Run(ctx)
	}

	if err := a.services.Start(ctx); err != nil {
		return fmt.Errorf("failed to start services: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start()
	}()

	a.logger.Info().Int("port", a.config.Server.Port).Msg("Nebo started successfully")

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	}
}

func (a *App) Stop() error {
	a.logger.Info().Msg("Stopping Nebo...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	a.services.Stop()

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Error().Err(err).Msg("Storage close error")
		}
	}

	a.logger.Info().Msg("Nebo stopped")
	return nil
}
