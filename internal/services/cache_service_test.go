package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/nebo/internal/models"
	"github.com/valpere/nebo/internal/storage"
	"github.com/valpere/nebo/pkg/metrics"
	"github.com/valpere/nebo/tests/helpers"
)

func TestCacheService_ReconstructEmpty(t *testing.T) {
	service := NewCacheService(storage.NewMemoryStore(), helpers.NewSilentTestLogger(), nil)

	state, err := service.ReconstructFromCache(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.Empty())
}

func TestCacheService_SnapshotOnly(t *testing.T) {
	service := NewCacheService(storage.NewMemoryStore(), helpers.NewSilentTestLogger(), nil)
	ctx := context.Background()

	snapshot := models.CurrentWeatherSnapshot{City: "Cebu", Temperature: 29.5, Description: "clear", Icon: "01d", Unit: models.UnitMetric}
	require.NoError(t, service.WriteSnapshot(ctx, snapshot))

	state, err := service.ReconstructFromCache(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.Snapshot)
	assert.Equal(t, snapshot, *state.Snapshot)
	assert.Nil(t, state.Forecast)
	assert.Nil(t, state.Coordinates)
}

func TestCacheService_PersistedShape(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewCacheService(store, helpers.NewSilentTestLogger(), nil)
	ctx := context.Background()

	require.NoError(t, service.WriteSnapshot(ctx, models.CurrentWeatherSnapshot{
		City: "Cebu", Temperature: 29.5, Description: "clear", Icon: "01d", Unit: models.UnitMetric,
	}))
	require.NoError(t, service.WriteForecast(ctx, models.ForecastList{
		{Timestamp: testNow.Add(3 * time.Hour), Temperature: 28, Description: "light rain", Icon: "10d"},
	}))
	require.NoError(t, service.WriteLastCoordinates(ctx, models.Coordinates{Latitude: 10.3, Longitude: 123.9}))

	raw, _, err := store.Get(ctx, KeyCachedWeather)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Cebu","temp":29.5,"description":"clear","icon":"01d","unit":"metric"}`, raw)

	raw, _, err = store.Get(ctx, KeyCachedForecast)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"timestamp":"2024-06-01T15:00:00Z","temp":28,"description":"light rain","icon":"10d"}]`, raw)

	lat, _, err := store.Get(ctx, KeyLastLatitude)
	require.NoError(t, err)
	lon, _, err := store.Get(ctx, KeyLastLongitude)
	require.NoError(t, err)
	assert.Equal(t, "10.3", lat)
	assert.Equal(t, "123.9", lon)
}

func TestCacheService_LastWriteWins(t *testing.T) {
	service := NewCacheService(storage.NewMemoryStore(), helpers.NewSilentTestLogger(), nil)
	ctx := context.Background()

	require.NoError(t, service.WriteLastCoordinates(ctx, models.Coordinates{Latitude: 10.3, Longitude: 123.9}))
	require.NoError(t, service.WriteLastCoordinates(ctx, models.Coordinates{Latitude: 14.5995, Longitude: 120.9842}))

	coords, err := service.LastCoordinates(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: 14.5995, Longitude: 120.9842}, *coords)
}

func TestCacheService_ForecastIsSortedOnLoad(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewCacheService(store, helpers.NewSilentTestLogger(), nil)
	ctx := context.Background()

	unsorted := models.ForecastList{
		{Timestamp: testNow.Add(6 * time.Hour), Temperature: 3},
		{Timestamp: testNow.Add(3 * time.Hour), Temperature: 2},
		{Timestamp: testNow.Add(-time.Hour), Temperature: 1},
	}
	data, err := json.Marshal(unsorted)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyCachedForecast, string(data)))

	state, err := service.ReconstructFromCache(ctx)
	require.NoError(t, err)
	require.Len(t, state.Forecast, 3)
	assert.Equal(t, 1.0, state.Forecast[0].Temperature)
	assert.Equal(t, 3.0, state.Forecast[2].Temperature)

	hourly := state.Forecast.HourlyWindow(testNow)
	require.Len(t, hourly, 2)
	assert.Equal(t, 2.0, hourly[0].Temperature)
}

func TestCacheService_MalformedSlotsReadAsAbsent(t *testing.T) {
	store := storage.NewMemoryStore()
	logger := helpers.NewTestLogger()
	service := NewCacheService(store, logger.Logger, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyCachedWeather, "{not json"))
	require.NoError(t, store.Set(ctx, KeyCachedForecast, "null"))
	require.NoError(t, store.Set(ctx, KeyLastLatitude, "north"))
	require.NoError(t, store.Set(ctx, KeyLastLongitude, "123.9"))

	state, err := service.ReconstructFromCache(ctx)
	require.NoError(t, err)
	assert.True(t, state.Empty())
	logger.AssertLogContains(t, "Discarding malformed cache slot")
	logger.AssertLogContains(t, "Discarding malformed coordinates")
	logger.AssertLogLevel(t, "warn")
}

func TestCacheService_HalfCoordinatesAreAbsent(t *testing.T) {
	store := storage.NewMemoryStore()
	service := NewCacheService(store, helpers.NewSilentTestLogger(), nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyLastLatitude, "10.3"))

	state, err := service.ReconstructFromCache(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.Coordinates)
}

func TestCacheService_StoreUnavailable(t *testing.T) {
	store := helpers.NewFailingStore()
	service := NewCacheService(store, helpers.NewSilentTestLogger(), nil)
	ctx := context.Background()

	require.NoError(t, service.WriteSnapshot(ctx, models.CurrentWeatherSnapshot{City: "Cebu", Unit: models.UnitMetric}))

	t.Run("a failing slot keeps the readable ones", func(t *testing.T) {
		store.FailKey(KeyCachedForecast)

		state, err := service.ReconstructFromCache(ctx)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		require.NotNil(t, state)
		require.NotNil(t, state.Snapshot)
		assert.Equal(t, "Cebu", state.Snapshot.City)
		assert.Nil(t, state.Forecast)
	})

	t.Run("writes surface store failures", func(t *testing.T) {
		store.FailWrites(true)
		defer store.FailWrites(false)

		assert.ErrorIs(t, service.WriteForecast(ctx, nil), ErrStoreUnavailable)
		assert.ErrorIs(t, service.WriteLastCoordinates(ctx, models.Coordinates{}), ErrStoreUnavailable)
	})
}

func TestCacheService_Metrics(t *testing.T) {
	m := metrics.New()
	service := NewCacheService(storage.NewMemoryStore(), helpers.NewSilentTestLogger(), m)
	ctx := context.Background()

	require.NoError(t, service.WriteSnapshot(ctx, models.CurrentWeatherSnapshot{City: "Cebu"}))
	_, err := service.ReconstructFromCache(ctx)
	require.NoError(t, err)

	// snapshot hit; forecast and latitude miss (longitude is not read once latitude is absent)
	assert.Equal(t, 1.0, m.CounterValue("cache_operations_total", "write", "ok"))
	assert.Equal(t, 1.0, m.CounterValue("cache_operations_total", "read", "hit"))
	assert.Equal(t, 2.0, m.CounterValue("cache_operations_total", "read", "miss"))
	assert.InDelta(t, 100.0/3.0, m.GetCacheHitRate("weather"), 1e-9)
}
