package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/valpere/nebo/internal/config"
	"github.com/valpere/nebo/internal/interfaces"
	"github.com/valpere/nebo/internal/models"
	"github.com/valpere/nebo/pkg/metrics"
	"github.com/valpere/nebo/pkg/weather"
)

// FetchResult is the outcome of one fetch pair. Either leg may be missing while the other succeeded.
type FetchResult struct {
	RequestID    string
	Unit         models.UnitSystem
	Snapshot     *models.CurrentWeatherSnapshot
	Forecast     models.ForecastList
	Coordinates  *models.Coordinates // reported by the provider for the current leg
	ForecastCity string              // place name reported with the forecast leg

	CurrentErr  error // *NetworkError
	ForecastErr error // *NetworkError
	CacheErr    error // wraps ErrStoreUnavailable
}

// Err joins the leg failures; nil when both legs succeeded
func (r *FetchResult) Err() error {
	return errors.Join(r.CurrentErr, r.ForecastErr)
}

// Succeeded reports whether at least one leg returned data
func (r *FetchResult) Succeeded() bool {
	return r.Snapshot != nil || r.Forecast != nil
}

// WeatherService issues the current and forecast legs of a fetch concurrently,
// normalizes the provider answers and writes every successful leg to the cache
// before returning it.
type WeatherService struct {
	source  interfaces.WeatherSource
	cache   *CacheService
	config  *config.WeatherConfig
	clock   clockwork.Clock
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func NewWeatherService(cfg *config.WeatherConfig, source interfaces.WeatherSource, cache *CacheService, clock clockwork.Clock, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *WeatherService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WeatherService{
		source:  source,
		cache:   cache,
		config:  cfg,
		clock:   clock,
		logger:  logger,
		metrics: metricsCollector,
	}
}

func (s *WeatherService) countryHint() string {
	if s.config == nil {
		return ""
	}
	return s.config.CountryHint
}

// FetchByCoordinates fetches both legs for a position under unit
func (s *WeatherService) FetchByCoordinates(ctx context.Context, coords models.Coordinates, unit models.UnitSystem) *FetchResult {
	units := string(unit)
	return s.fetchPair(ctx, unit,
		func(ctx context.Context) (*weather.CurrentWeatherResponse, error) {
			return s.source.CurrentByCoords(ctx, coords.Latitude, coords.Longitude, units)
		},
		func(ctx context.Context) (*weather.ForecastResponse, error) {
			return s.source.ForecastByCoords(ctx, coords.Latitude, coords.Longitude, units)
		},
		s.logger.With().Str("query", coords.String()).Logger(),
	)
}

// FetchByCity fetches both legs for a typed city name, adding the configured country hint
func (s *WeatherService) FetchByCity(ctx context.Context, city string, unit models.UnitSystem) *FetchResult {
	units := string(unit)
	city = strings.TrimSpace(city)
	country := s.countryHint()
	return s.fetchPair(ctx, unit,
		func(ctx context.Context) (*weather.CurrentWeatherResponse, error) {
			return s.source.CurrentByCity(ctx, city, country, units)
		},
		func(ctx context.Context) (*weather.ForecastResponse, error) {
			return s.source.ForecastByCity(ctx, city, country, units)
		},
		s.logger.With().Str("query", city).Logger(),
	)
}

func (s *WeatherService) fetchPair(
	ctx context.Context,
	unit models.UnitSystem,
	current func(context.Context) (*weather.CurrentWeatherResponse, error),
	forecast func(context.Context) (*weather.ForecastResponse, error),
	logger zerolog.Logger,
) *FetchResult {
	result := &FetchResult{RequestID: uuid.NewString(), Unit: unit}
	logger = logger.With().Str("request_id", result.RequestID).Str("unit", string(unit)).Logger()

	var (
		wg                      sync.WaitGroup
		currentCache, fcstCache error
	)
	wg.Add(2)

	go func() {
		defer wg.Done()

		start := s.clock.Now()
		resp, err := current(ctx)
		s.metrics.ObserveHistogram("weather_api_duration_seconds", s.clock.Since(start).Seconds(), string(LegCurrent))
		if err != nil {
			s.metrics.IncrementCounter("weather_requests_total", string(LegCurrent), "error")
			result.CurrentErr = &NetworkError{Leg: LegCurrent, Err: err}
			logger.Warn().Err(err).Str("leg", string(LegCurrent)).Msg("Weather leg failed")
			return
		}
		s.metrics.IncrementCounter("weather_requests_total", string(LegCurrent), "ok")

		snapshot := normalizeCurrent(resp, unit)
		currentCache = s.cache.WriteSnapshot(ctx, snapshot)
		result.Snapshot = &snapshot
		if resp.Coord.Lat != 0 || resp.Coord.Lon != 0 {
			result.Coordinates = &models.Coordinates{Latitude: resp.Coord.Lat, Longitude: resp.Coord.Lon}
		}
	}()

	go func() {
		defer wg.Done()

		start := s.clock.Now()
		resp, err := forecast(ctx)
		s.metrics.ObserveHistogram("weather_api_duration_seconds", s.clock.Since(start).Seconds(), string(LegForecast))
		if err != nil {
			s.metrics.IncrementCounter("weather_requests_total", string(LegForecast), "error")
			result.ForecastErr = &NetworkError{Leg: LegForecast, Err: err}
			logger.Warn().Err(err).Str("leg", string(LegForecast)).Msg("Weather leg failed")
			return
		}
		s.metrics.IncrementCounter("weather_requests_total", string(LegForecast), "ok")

		list := s.normalizeForecast(resp, logger)
		fcstCache = s.cache.WriteForecast(ctx, list)
		result.Forecast = list
		result.ForecastCity = resp.City.Name
	}()

	wg.Wait()

	result.CacheErr = errors.Join(currentCache, fcstCache)
	if result.CacheErr != nil {
		logger.Error().Err(result.CacheErr).Msg("Failed to cache weather data")
	}

	logger.Debug().
		Bool("current", result.Snapshot != nil).
		Bool("forecast", result.Forecast != nil).
		Msg("Weather fetch finished")

	return result
}

func normalizeCurrent(resp *weather.CurrentWeatherResponse, unit models.UnitSystem) models.CurrentWeatherSnapshot {
	condition := weather.PrimaryCondition(resp.Weather)
	return models.CurrentWeatherSnapshot{
		City:        resp.Name,
		Temperature: resp.Main.Temp,
		Description: condition.Description,
		Icon:        condition.Icon,
		Unit:        unit,
	}
}

func (s *WeatherService) normalizeForecast(resp *weather.ForecastResponse, logger zerolog.Logger) models.ForecastList {
	list := make(models.ForecastList, 0, len(resp.List))
	for _, item := range resp.List {
		ts, err := item.Time()
		if err != nil {
			logger.Warn().Err(err).Msg("Skipping forecast entry without timestamp")
			continue
		}
		condition := weather.PrimaryCondition(item.Weather)
		list = append(list, models.ForecastEntry{
			Timestamp:   ts,
			Temperature: item.Main.Temp,
			Description: condition.Description,
			Icon:        condition.Icon,
		})
	}
	return list.Sorted()
}
