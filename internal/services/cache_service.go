package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/valpere/nebo/internal/interfaces"
	"github.com/valpere/nebo/internal/models"
	"github.com/valpere/nebo/pkg/metrics"
)

// Persisted cache slots
const (
	KeyCachedWeather  = "cachedWeatherData"
	KeyCachedForecast = "cachedForecastData"
	KeyLastLatitude   = "lastLatitude"
	KeyLastLongitude  = "lastLongitude"
)

// CacheService persists the last successful snapshot, forecast and coordinates.
// Each slot is overwritten unconditionally; nothing is ever deleted.
type CacheService struct {
	store   interfaces.KeyValueStore
	logger  *zerolog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	hits   int
	misses int
}

func NewCacheService(store interfaces.KeyValueStore, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *CacheService {
	return &CacheService{
		store:   store,
		logger:  logger,
		metrics: metricsCollector,
	}
}

func (s *CacheService) WriteSnapshot(ctx context.Context, snapshot models.CurrentWeatherSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.write(ctx, KeyCachedWeather, string(data))
}

func (s *CacheService) WriteForecast(ctx context.Context, forecast models.ForecastList) error {
	if forecast == nil {
		forecast = models.ForecastList{}
	}
	data, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	return s.write(ctx, KeyCachedForecast, string(data))
}

func (s *CacheService) WriteLastCoordinates(ctx context.Context, coords models.Coordinates) error {
	if err := s.write(ctx, KeyLastLatitude, strconv.FormatFloat(coords.Latitude, 'f', -1, 64)); err != nil {
		return err
	}
	return s.write(ctx, KeyLastLongitude, strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
}

// ReconstructFromCache reads every slot independently. Absent or malformed slots are left nil.
// When a slot cannot be read because the store failed, the slots that could be read are
// still returned together with an error wrapping ErrStoreUnavailable.
func (s *CacheService) ReconstructFromCache(ctx context.Context) (*models.CachedState, error) {
	state := &models.CachedState{}
	var errs []error

	snapshot, err := s.readSnapshot(ctx)
	switch {
	case err == nil:
		state.Snapshot = snapshot
	case !errors.Is(err, ErrCacheMiss):
		errs = append(errs, err)
	}

	forecast, err := s.readForecast(ctx)
	switch {
	case err == nil:
		state.Forecast = forecast
	case !errors.Is(err, ErrCacheMiss):
		errs = append(errs, err)
	}

	coords, err := s.readCoordinates(ctx)
	switch {
	case err == nil:
		state.Coordinates = coords
	case !errors.Is(err, ErrCacheMiss):
		errs = append(errs, err)
	}

	s.logger.Debug().
		Bool("snapshot", state.Snapshot != nil).
		Bool("forecast", state.Forecast != nil).
		Bool("coordinates", state.Coordinates != nil).
		Msg("Reconstructed state from cache")

	return state, errors.Join(errs...)
}

// LastCoordinates reads only the coordinate slots
func (s *CacheService) LastCoordinates(ctx context.Context) (*models.Coordinates, error) {
	return s.readCoordinates(ctx)
}

func (s *CacheService) readSnapshot(ctx context.Context) (*models.CurrentWeatherSnapshot, error) {
	raw, err := s.read(ctx, KeyCachedWeather)
	if err != nil {
		return nil, err
	}

	var snapshot models.CurrentWeatherSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		s.logger.Warn().Err(err).Str("key", KeyCachedWeather).Msg("Discarding malformed cache slot")
		return nil, ErrCacheMiss
	}
	return &snapshot, nil
}

func (s *CacheService) readForecast(ctx context.Context) (models.ForecastList, error) {
	raw, err := s.read(ctx, KeyCachedForecast)
	if err != nil {
		return nil, err
	}

	var forecast models.ForecastList
	if err := json.Unmarshal([]byte(raw), &forecast); err != nil || forecast == nil {
		s.logger.Warn().Err(err).Str("key", KeyCachedForecast).Msg("Discarding malformed cache slot")
		return nil, ErrCacheMiss
	}
	return forecast.Sorted(), nil
}

func (s *CacheService) readCoordinates(ctx context.Context) (*models.Coordinates, error) {
	rawLat, err := s.read(ctx, KeyLastLatitude)
	if err != nil {
		return nil, err
	}
	rawLon, err := s.read(ctx, KeyLastLongitude)
	if err != nil {
		return nil, err
	}

	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)
	if latErr != nil || lonErr != nil {
		s.logger.Warn().Str("latitude", rawLat).Str("longitude", rawLon).Msg("Discarding malformed coordinates")
		return nil, ErrCacheMiss
	}
	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

func (s *CacheService) read(ctx context.Context, key string) (string, error) {
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.metrics.IncrementCounter("cache_operations_total", "read", "error")
		return "", storeUnavailable("read "+key, err)
	}
	if !found {
		s.metrics.IncrementCounter("cache_operations_total", "read", "miss")
		s.recordLookup(false)
		return "", ErrCacheMiss
	}
	s.metrics.IncrementCounter("cache_operations_total", "read", "hit")
	s.recordLookup(true)
	return raw, nil
}

func (s *CacheService) write(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.metrics.IncrementCounter("cache_operations_total", "write", "error")
		return storeUnavailable("write "+key, err)
	}
	s.metrics.IncrementCounter("cache_operations_total", "write", "ok")
	return nil
}

func (s *CacheService) recordLookup(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hit {
		s.hits++
	} else {
		s.misses++
	}
	s.metrics.SetGauge("cache_hit_rate", float64(s.hits)*100/float64(s.hits+s.misses), "weather")
}
