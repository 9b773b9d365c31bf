package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/valpere/nebo/internal/interfaces"
	"github.com/valpere/nebo/internal/models"
	"github.com/valpere/nebo/pkg/metrics"
)

// ConnectivityController is the online/offline state machine that decides when weather is
// fetched live and when the cache is presented instead.
//
// Handlers are serialized: a transition arriving while a fetch is in flight waits for it
// instead of cancelling it. The view may be read at any time and only ever changes when
// data actually arrives.
type ConnectivityController struct {
	signal   interfaces.ConnectivitySignal
	location *LocationService
	weather  *WeatherService
	cache    *CacheService
	prefs    *PreferenceService
	clock    clockwork.Clock
	logger   *zerolog.Logger
	metrics  *metrics.Metrics

	flow   sync.Mutex
	online bool
	// searchCached is set while the cache slots may hold a searched city rather than the device position
	searchCached bool

	viewMu sync.RWMutex
	view   models.View
}

func NewConnectivityController(
	signal interfaces.ConnectivitySignal,
	location *LocationService,
	weather *WeatherService,
	cache *CacheService,
	prefs *PreferenceService,
	clock clockwork.Clock,
	logger *zerolog.Logger,
	metricsCollector *metrics.Metrics,
) *ConnectivityController {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ConnectivityController{
		signal:   signal,
		location: location,
		weather:  weather,
		cache:    cache,
		prefs:    prefs,
		clock:    clock,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// Run polls the signal once, then handles transitions until ctx is done
func (c *ConnectivityController) Run(ctx context.Context) {
	c.logger.Info().Msg("Starting connectivity controller")

	if err := c.HandleTransition(ctx, c.signal.Online(ctx)); err != nil {
		c.logger.Warn().Err(err).Msg("Initial state is incomplete")
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Connectivity controller stopped")
			return
		case online, ok := <-c.signal.Transitions():
			if !ok {
				c.logger.Info().Msg("Connectivity signal closed")
				return
			}
			if err := c.HandleTransition(ctx, online); err != nil {
				c.logger.Warn().Err(err).Bool("online", online).Msg("Transition handled with errors")
			}
		}
	}
}

// Online reports the state the controller last acted on
func (c *ConnectivityController) Online() bool {
	c.flow.Lock()
	defer c.flow.Unlock()
	return c.online
}

// View returns a copy of the current display state
func (c *ConnectivityController) View() models.View {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view.Clone()
}

// HandleTransition enters the given state. Entering online resolves the location and fetches;
// entering offline presents whatever the cache holds without touching the network.
func (c *ConnectivityController) HandleTransition(ctx context.Context, online bool) error {
	c.flow.Lock()
	defer c.flow.Unlock()

	c.setOnline(online)
	if online {
		return c.enterOnline(ctx)
	}
	return c.enterOffline(ctx)
}

// SearchCity switches to the named city. While offline the search is rejected and the cache is
// not consulted, since it may hold a different place. Empty text returns to the device location.
func (c *ConnectivityController) SearchCity(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return c.UseCurrentLocation(ctx)
	}

	c.flow.Lock()
	defer c.flow.Unlock()

	c.location.UseNamedCity(city)

	if !c.online {
		c.logger.Info().Str("city", city).Msg("Rejected city search while offline")
		c.updateView(func(v *models.View) { v.LastError = ErrSearchRequiresConnectivity.Error() })
		return ErrSearchRequiresConnectivity
	}

	unit, err := c.prefs.Unit(ctx)
	if err != nil {
		c.recordError(err)
		return err
	}
	return c.fetchCity(ctx, city, unit)
}

// UseCurrentLocation returns to device-location mode
func (c *ConnectivityController) UseCurrentLocation(ctx context.Context) error {
	c.flow.Lock()
	defer c.flow.Unlock()

	if !c.online {
		if coords, ok := c.location.LastKnownCoordinates(ctx); ok {
			c.location.UseCoordinates(*coords)
		}
		return c.enterOffline(ctx)
	}
	return c.enterOnline(ctx)
}

// SetUnit stores the unit preference. Online, the active query is re-issued under the new unit
// without re-resolving the device position. Offline, displayed values keep their original unit
// and are flagged as stale.
func (c *ConnectivityController) SetUnit(ctx context.Context, unit models.UnitSystem) error {
	c.flow.Lock()
	defer c.flow.Unlock()

	if err := c.prefs.SetUnit(ctx, unit); err != nil {
		c.recordError(err)
		return err
	}
	c.logger.Info().Str("unit", string(unit)).Bool("online", c.online).Msg("Unit preference changed")

	if !c.online {
		c.updateView(func(v *models.View) { v.StaleUnit = staleUnit(v, unit) })
		return nil
	}

	return c.reissue(ctx, unit)
}

// Refresh repeats the active query while online, or reloads the cache while offline
func (c *ConnectivityController) Refresh(ctx context.Context) error {
	c.flow.Lock()
	defer c.flow.Unlock()

	if !c.online {
		return c.enterOffline(ctx)
	}

	if c.location.Mode() == models.ModeNamedCity {
		unit, err := c.prefs.Unit(ctx)
		if err != nil {
			c.recordError(err)
			return err
		}
		return c.fetchCity(ctx, c.location.ActiveCity(), unit)
	}
	return c.enterOnline(ctx)
}

func (c *ConnectivityController) setOnline(online bool) {
	if c.online != online {
		state := "offline"
		if online {
			state = "online"
		}
		c.metrics.IncrementCounter("connectivity_transitions_total", state)
	}
	c.online = online

	gauge := 0.0
	if online {
		gauge = 1
	}
	c.metrics.SetGauge("connectivity_online", gauge)
	c.updateView(func(v *models.View) { v.Online = online })
	c.logger.Info().Bool("online", online).Msg("Connectivity state")
}

func (c *ConnectivityController) enterOnline(ctx context.Context) error {
	unit, err := c.prefs.Unit(ctx)
	if err != nil {
		c.recordError(err)
		return err
	}

	coords, err := c.location.ResolveCurrentLocation(ctx)
	if err != nil {
		last, ok := c.location.LastKnownCoordinates(ctx)
		if !ok {
			return c.noLocation(ctx, err)
		}
		c.logger.Info().Str("coordinates", last.String()).Msg("Falling back to last known coordinates")
		coords = *last
		c.location.UseCoordinates(coords)
	}

	return c.fetchCoordinates(ctx, coords, unit)
}

// noLocation surfaces the missing location instead of failing silently, showing cached
// weather when nothing is displayed yet.
func (c *ConnectivityController) noLocation(ctx context.Context, cause error) error {
	c.logger.Warn().Err(cause).Msg("No location available")

	// The device location was asked for; a city search must not linger as the active query
	c.location.UseDeviceLocation()

	var cacheErr error
	if !c.View().HasData() {
		cacheErr = c.presentCache(ctx)
	}

	c.updateView(func(v *models.View) {
		v.NoLocation = true
		v.LastError = ErrNoLocation.Error()
	})
	return errors.Join(fmt.Errorf("%w: %v", ErrNoLocation, cause), cacheErr)
}

func (c *ConnectivityController) enterOffline(ctx context.Context) error {
	return c.presentCache(ctx)
}

// presentCache merges whatever slots the cache holds into the view
func (c *ConnectivityController) presentCache(ctx context.Context) error {
	state, err := c.cache.ReconstructFromCache(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Cache could not be fully read")
	}

	unit, unitErr := c.prefs.Unit(ctx)
	now := c.clock.Now()

	c.updateView(func(v *models.View) {
		if state != nil {
			if state.Snapshot != nil {
				v.Current = state.Snapshot
				v.City = state.Snapshot.City
				v.Source = models.SourceCache
			}
			if state.Forecast != nil {
				v.Forecast = state.Forecast
				v.Hourly = state.Forecast.HourlyWindow(now)
				v.Source = models.SourceCache
			}
			if state.Coordinates != nil && v.Mode == models.ModeCurrentLocation {
				v.Coordinates = state.Coordinates
			}
		}
		if unitErr == nil {
			v.StaleUnit = staleUnit(v, unit)
		}
		if err != nil {
			v.LastError = err.Error()
		}
		v.UpdatedAt = now
	})

	return errors.Join(err, unitErr)
}

// reissue repeats the active query under unit
func (c *ConnectivityController) reissue(ctx context.Context, unit models.UnitSystem) error {
	if c.location.Mode() == models.ModeNamedCity {
		return c.fetchCity(ctx, c.location.ActiveCity(), unit)
	}

	coords := c.location.ActiveCoordinates()
	if coords == nil {
		last, ok := c.location.LastKnownCoordinates(ctx)
		if !ok {
			c.updateView(func(v *models.View) { v.StaleUnit = staleUnit(v, unit) })
			return c.noLocation(ctx, errors.New("no coordinates to re-fetch"))
		}
		coords = last
	}
	return c.fetchCoordinates(ctx, *coords, unit)
}

// fetchCoordinates runs a coordinate fetch; a failed leg is filled from the cache when the
// cached data can be attributed to the same place.
func (c *ConnectivityController) fetchCoordinates(ctx context.Context, coords models.Coordinates, unit models.UnitSystem) error {
	result := c.weather.FetchByCoordinates(ctx, coords, unit)

	var cachedSnapshot *models.CurrentWeatherSnapshot
	var cachedForecast models.ForecastList
	if result.CurrentErr != nil || result.ForecastErr != nil {
		state, err := c.cache.ReconstructFromCache(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Cache fallback incomplete")
		}
		if state != nil {
			if result.Snapshot == nil && c.samePlace(state.Snapshot, result) {
				cachedSnapshot = state.Snapshot
			}
			if result.Forecast == nil && !c.searchCached {
				cachedForecast = state.Forecast
			}
		}
	}
	if result.Snapshot != nil && result.Forecast != nil {
		c.searchCached = false
	}

	now := c.clock.Now()
	fromCache := false

	c.updateView(func(v *models.View) {
		// Data still shown from a city search belongs to another place
		if v.Mode == models.ModeNamedCity {
			v.Current = nil
			v.Forecast = nil
			v.Hourly = nil
			v.City = ""
		}

		v.Mode = models.ModeCurrentLocation
		v.NoLocation = false
		coordsCopy := coords
		v.Coordinates = &coordsCopy

		switch {
		case result.Snapshot != nil:
			v.Current = result.Snapshot
		case cachedSnapshot != nil:
			v.Current = cachedSnapshot
			fromCache = true
		}
		if v.Current != nil {
			v.City = v.Current.City
		} else if result.ForecastCity != "" {
			v.City = result.ForecastCity
		}

		switch {
		case result.Forecast != nil:
			v.Forecast = result.Forecast
			v.Hourly = result.Forecast.HourlyWindow(now)
		case cachedForecast != nil:
			v.Forecast = cachedForecast
			v.Hourly = cachedForecast.HourlyWindow(now)
			fromCache = true
		}

		switch {
		case fromCache:
			v.Source = models.SourceCache
			v.UpdatedAt = now
		case result.Succeeded():
			v.Source = models.SourceLive
			v.UpdatedAt = now
		}
		v.StaleUnit = staleUnit(v, unit)
		v.LastError = errorText(result.Err())
	})

	return result.Err()
}

// samePlace reports whether a cached snapshot may stand in for the failed current leg
func (c *ConnectivityController) samePlace(cached *models.CurrentWeatherSnapshot, result *FetchResult) bool {
	if cached == nil {
		return false
	}
	if result.ForecastCity != "" {
		return strings.EqualFold(cached.City, result.ForecastCity)
	}
	return !c.searchCached
}

// fetchCity runs a city fetch; the cache is never consulted in this mode
func (c *ConnectivityController) fetchCity(ctx context.Context, city string, unit models.UnitSystem) error {
	result := c.weather.FetchByCity(ctx, city, unit)
	now := c.clock.Now()
	if result.Succeeded() {
		c.searchCached = true
	}

	c.updateView(func(v *models.View) {
		if result.Succeeded() {
			v.Mode = models.ModeNamedCity
			v.City = city
			v.NoLocation = false
			v.Coordinates = result.Coordinates
			v.Source = models.SourceLive
			v.UpdatedAt = now
		}
		if result.Snapshot != nil {
			v.Current = result.Snapshot
			v.City = result.Snapshot.City
		}
		if result.Forecast != nil {
			v.Forecast = result.Forecast
			v.Hourly = result.Forecast.HourlyWindow(now)
		}
		v.StaleUnit = staleUnit(v, unit)
		v.LastError = errorText(result.Err())
	})

	return result.Err()
}

func (c *ConnectivityController) updateView(fn func(v *models.View)) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	fn(&c.view)
}

func (c *ConnectivityController) recordError(err error) {
	c.updateView(func(v *models.View) { v.LastError = err.Error() })
}

func staleUnit(v *models.View, unit models.UnitSystem) bool {
	return v.Current != nil && v.Current.Unit != unit
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
