package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no stray nebo.yaml or .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	originalDir, _ := os.Getwd()
	tmpDir := t.TempDir()
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	return tmpDir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no config file exists", func(t *testing.T) {
		viper.Reset()
		chdirTemp(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "sqlite", cfg.Storage.Backend)
		assert.Equal(t, "nebo.db", cfg.Storage.SQLitePath)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, "localhost", cfg.Redis.Host)
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.Equal(t, "PH", cfg.Weather.CountryHint)
		assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
		assert.Equal(t, 60, cfg.Weather.RequestsPerMinute)
		assert.Equal(t, "ip", cfg.Geolocation.Provider)
		assert.Equal(t, 10*time.Second, cfg.Geolocation.Timeout)
		assert.Nil(t, cfg.Geolocation.Latitude)
		assert.Equal(t, "probe", cfg.Connectivity.Mode)
		assert.Equal(t, 15*time.Second, cfg.Connectivity.Interval)
		assert.Equal(t, 3*time.Second, cfg.Connectivity.Timeout)
		assert.Equal(t, 10*time.Minute, cfg.Refresh.Interval)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("loads from environment variables", func(t *testing.T) {
		viper.Reset()
		chdirTemp(t)

		t.Setenv("OPENWEATHER_API_KEY", "weather_key_123")
		t.Setenv("NEBO_PORT", "9090")
		t.Setenv("NEBO_STORAGE", "redis")
		t.Setenv("REDIS_HOST", "redis.example.com")
		t.Setenv("REDIS_PORT", "6380")
		t.Setenv("WEATHER_COUNTRY_HINT", "JP")
		t.Setenv("CONNECTIVITY_MODE", "manual")
		t.Setenv("REFRESH_INTERVAL", "0s")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "weather_key_123", cfg.Weather.OpenWeatherAPIKey)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "redis", cfg.Storage.Backend)
		assert.Equal(t, "redis.example.com", cfg.Redis.Host)
		assert.Equal(t, 6380, cfg.Redis.Port)
		assert.Equal(t, "JP", cfg.Weather.CountryHint)
		assert.Equal(t, "manual", cfg.Connectivity.Mode)
		assert.Equal(t, time.Duration(0), cfg.Refresh.Interval)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("loads from yaml config file", func(t *testing.T) {
		viper.Reset()
		dir := chdirTemp(t)

		content := `
storage:
  backend: memory
geolocation:
  provider: static
  latitude: 10.3157
  longitude: 123.8854
weather:
  country_hint: ""
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "nebo.yaml"), []byte(content), 0o600))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "memory", cfg.Storage.Backend)
		assert.Equal(t, "static", cfg.Geolocation.Provider)
		require.NotNil(t, cfg.Geolocation.Latitude)
		require.NotNil(t, cfg.Geolocation.Longitude)
		assert.InDelta(t, 10.3157, *cfg.Geolocation.Latitude, 1e-9)
		assert.InDelta(t, 123.8854, *cfg.Geolocation.Longitude, 1e-9)
		assert.Equal(t, "", cfg.Weather.CountryHint)
	})

	t.Run("rejects unknown storage backend", func(t *testing.T) {
		viper.Reset()
		chdirTemp(t)
		t.Setenv("NEBO_STORAGE", "cassandra")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage backend")
	})

	t.Run("reads .env file", func(t *testing.T) {
		viper.Reset()
		dir := chdirTemp(t)
		t.Setenv("LOG_FORMAT", "")
		require.NoError(t, os.Unsetenv("LOG_FORMAT"))

		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_FORMAT=console\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("LOG_FORMAT") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "console", cfg.Logging.Format)
	})
}

func TestConfig_Validate(t *testing.T) {
	lat, lon := 10.0, 120.0

	valid := func() Config {
		return Config{
			Storage:      StorageConfig{Backend: "sqlite"},
			Geolocation:  GeolocationConfig{Provider: "ip", Timeout: time.Second},
			Connectivity: ConnectivityConfig{Mode: "probe"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "static with coordinates", mutate: func(c *Config) {
			c.Geolocation.Provider = "static"
			c.Geolocation.Latitude, c.Geolocation.Longitude = &lat, &lon
		}},
		{name: "static without coordinates denies location", mutate: func(c *Config) {
			c.Geolocation.Provider = "static"
		}},
		{name: "static with only latitude", mutate: func(c *Config) {
			c.Geolocation.Provider = "static"
			c.Geolocation.Latitude = &lat
		}, wantErr: "set together"},
		{name: "unknown provider", mutate: func(c *Config) { c.Geolocation.Provider = "gps" }, wantErr: "unknown geolocation provider"},
		{name: "unknown connectivity mode", mutate: func(c *Config) { c.Connectivity.Mode = "psychic" }, wantErr: "unknown connectivity mode"},
		{name: "zero geolocation timeout", mutate: func(c *Config) { c.Geolocation.Timeout = 0 }, wantErr: "timeout must be positive"},
		{name: "negative refresh", mutate: func(c *Config) { c.Refresh.Interval = -time.Second }, wantErr: "cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	assert.Equal(t, 8080, viper.GetInt("server.port"))
	assert.Equal(t, "sqlite", viper.GetString("storage.backend"))
	assert.Equal(t, "PH", viper.GetString("weather.country_hint"))
	assert.Equal(t, 10*time.Minute, viper.GetDuration("refresh.interval"))
	assert.Equal(t, "probe", viper.GetString("connectivity.mode"))
}
