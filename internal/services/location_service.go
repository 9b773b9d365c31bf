package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/valpere/nebo/internal/interfaces"
	"github.com/valpere/nebo/internal/models"
	"github.com/valpere/nebo/pkg/metrics"
)

const defaultGeolocationTimeout = 10 * time.Second

// LocationService resolves the device position and tracks which query drives fetching:
// the device coordinates or a typed city name.
type LocationService struct {
	provider interfaces.GeolocationProvider
	cache    *CacheService
	timeout  time.Duration
	logger   *zerolog.Logger
	metrics  *metrics.Metrics

	mu     sync.RWMutex
	mode   models.LocationMode
	city   string
	coords *models.Coordinates
}

func NewLocationService(provider interfaces.GeolocationProvider, cache *CacheService, timeout time.Duration, logger *zerolog.Logger, metricsCollector *metrics.Metrics) *LocationService {
	if timeout <= 0 {
		timeout = defaultGeolocationTimeout
	}
	return &LocationService{
		provider: provider,
		cache:    cache,
		timeout:  timeout,
		logger:   logger,
		metrics:  metricsCollector,
		mode:     models.ModeCurrentLocation,
	}
}

// ResolveCurrentLocation asks the provider for the device position within the configured timeout.
// On success the position is persisted as last known and becomes the active query.
// On failure the persisted coordinates are left untouched.
func (s *LocationService) ResolveCurrentLocation(ctx context.Context) (models.Coordinates, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pos, err := s.provider.CurrentPosition(lookupCtx)
	if err != nil {
		s.metrics.IncrementCounter("geolocation_requests_total", "unavailable")
		s.logger.Warn().Err(err).Msg("Device position unavailable")
		if errors.Is(err, ErrPositionUnavailable) {
			return models.Coordinates{}, err
		}
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	if pos == nil {
		s.metrics.IncrementCounter("geolocation_requests_total", "unavailable")
		return models.Coordinates{}, fmt.Errorf("%w: provider returned no position", ErrPositionUnavailable)
	}

	s.metrics.IncrementCounter("geolocation_requests_total", "ok")
	coords := models.Coordinates{Latitude: pos.Latitude, Longitude: pos.Longitude}

	if err := s.cache.WriteLastCoordinates(ctx, coords); err != nil {
		// The fix is still usable for this fetch even if it could not be persisted
		s.logger.Error().Err(err).Str("coordinates", coords.String()).Msg("Failed to persist last known coordinates")
	}

	s.UseCoordinates(coords)
	s.logger.Debug().Str("coordinates", coords.String()).Str("source", pos.Source).Msg("Resolved device position")
	return coords, nil
}

// LastKnownCoordinates returns the persisted pair. It never fails: unreadable data reads as absent.
func (s *LocationService) LastKnownCoordinates(ctx context.Context) (*models.Coordinates, bool) {
	coords, err := s.cache.LastCoordinates(ctx)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("Could not read last known coordinates")
		}
		return nil, false
	}
	return coords, true
}

// UseCoordinates makes the given position the active query
func (s *LocationService) UseCoordinates(coords models.Coordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = models.ModeCurrentLocation
	s.city = ""
	s.coords = &coords
}

// UseDeviceLocation returns to device-location mode without a new fix, keeping any known coordinates
func (s *LocationService) UseDeviceLocation() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = models.ModeCurrentLocation
	s.city = ""
}

// UseNamedCity makes a typed city the active query
func (s *LocationService) UseNamedCity(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = models.ModeNamedCity
	s.city = city
}

func (s *LocationService) Mode() models.LocationMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *LocationService) ActiveCity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.city
}

// ActiveCoordinates returns the coordinates of the last accepted position, nil if none yet
func (s *LocationService) ActiveCoordinates() *models.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.coords == nil {
		return nil
	}
	c := *s.coords
	return &c
}
