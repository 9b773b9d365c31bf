package helpers

import (
	"os"
	"time"

	"github.com/valpere/nebo/internal/config"
)

// GetTestConfig returns a configuration suitable for testing
func GetTestConfig() *config.Config {
	lat, lon := 10.3157, 123.8854

	return &config.Config{
		Server: config.ServerConfig{
			Port:         8081,
			RateLimitRPS: 100,
			RateBurst:    100,
		},
		Storage: config.StorageConfig{
			Backend:   "memory",
			KeyPrefix: "test:",
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "test_user",
			Password: "test_password",
			Name:     "test_db",
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			Host: "localhost",
			Port: 6379,
			DB:   1, // Use different DB for tests
		},
		Weather: config.WeatherConfig{
			OpenWeatherAPIKey: "test_weather_api_key",
			CountryHint:       "PH",
			Timeout:           2 * time.Second,
			RequestsPerMinute: 600,
		},
		Geolocation: config.GeolocationConfig{
			Provider:  "static",
			Timeout:   time.Second,
			Latitude:  &lat,
			Longitude: &lon,
		},
		Connectivity: config.ConnectivityConfig{
			Mode: "manual",
		},
		Logging: config.LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
	}
}

// GetTestConfigFromEnv returns test config with environment overrides
func GetTestConfigFromEnv() *config.Config {
	cfg := GetTestConfig()

	if apiKey := os.Getenv("TEST_OPENWEATHER_API_KEY"); apiKey != "" {
		cfg.Weather.OpenWeatherAPIKey = apiKey
	}

	if dbHost := os.Getenv("TEST_DB_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}

	if redisHost := os.Getenv("TEST_REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}

	return cfg
}
