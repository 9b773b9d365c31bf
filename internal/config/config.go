package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Weather      WeatherConfig      `mapstructure:"weather"`
	Geolocation  GeolocationConfig  `mapstructure:"geolocation"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Refresh      RefreshConfig      `mapstructure:"refresh"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int     `mapstructure:"port"`
	RateLimitRPS float64 `mapstructure:"rate_limit_rps"`
	RateBurst    int     `mapstructure:"rate_burst"`
}

// StorageConfig selects the durable key-value backend
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // sqlite, postgres, redis, memory
	SQLitePath string `mapstructure:"sqlite_path"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WeatherConfig struct {
	OpenWeatherAPIKey string        `mapstructure:"openweather_api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	CountryHint       string        `mapstructure:"country_hint"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type GeolocationConfig struct {
	Provider  string        `mapstructure:"provider"` // ip, static
	Timeout   time.Duration `mapstructure:"timeout"`
	Latitude  *float64      `mapstructure:"latitude"`
	Longitude *float64      `mapstructure:"longitude"`
	IPAPIURL  string        `mapstructure:"ip_api_url"`
}

type ConnectivityConfig struct {
	Mode     string        `mapstructure:"mode"` // probe, manual
	ProbeURL string        `mapstructure:"probe_url"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// Configure YAML config file search
	viper.SetConfigName("nebo")
	viper.SetConfigType("yaml")

	// Add search paths in order of precedence (first found wins)
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath("$HOME/.config")
	viper.AddConfigPath("/etc")

	// Environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Map specific environment variables to config keys
	viper.BindEnv("server.port", "NEBO_PORT")
	viper.BindEnv("server.rate_limit_rps", "NEBO_RATE_LIMIT_RPS")
	viper.BindEnv("server.rate_burst", "NEBO_RATE_BURST")

	viper.BindEnv("storage.backend", "NEBO_STORAGE")
	viper.BindEnv("storage.sqlite_path", "NEBO_SQLITE_PATH")
	viper.BindEnv("storage.key_prefix", "NEBO_KEY_PREFIX")

	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.name", "DB_NAME")
	viper.BindEnv("database.ssl_mode", "DB_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("weather.openweather_api_key", "OPENWEATHER_API_KEY")
	viper.BindEnv("weather.base_url", "OPENWEATHER_BASE_URL")
	viper.BindEnv("weather.country_hint", "WEATHER_COUNTRY_HINT")
	viper.BindEnv("weather.timeout", "WEATHER_TIMEOUT")
	viper.BindEnv("weather.requests_per_minute", "WEATHER_REQUESTS_PER_MINUTE")

	viper.BindEnv("geolocation.provider", "GEOLOCATION_PROVIDER")
	viper.BindEnv("geolocation.timeout", "GEOLOCATION_TIMEOUT")
	viper.BindEnv("geolocation.latitude", "GEOLOCATION_LATITUDE")
	viper.BindEnv("geolocation.longitude", "GEOLOCATION_LONGITUDE")
	viper.BindEnv("geolocation.ip_api_url", "GEOLOCATION_IP_API_URL")

	viper.BindEnv("connectivity.mode", "CONNECTIVITY_MODE")
	viper.BindEnv("connectivity.probe_url", "CONNECTIVITY_PROBE_URL")
	viper.BindEnv("connectivity.interval", "CONNECTIVITY_INTERVAL")
	viper.BindEnv("connectivity.timeout", "CONNECTIVITY_TIMEOUT")

	viper.BindEnv("refresh.interval", "REFRESH_INTERVAL")

	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOG_FORMAT")

	// Set defaults
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks enumerated settings and required combinations
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Geolocation.Provider {
	case "ip":
	case "static":
		// A static provider without coordinates acts as a device that denies location access
		if (c.Geolocation.Latitude == nil) != (c.Geolocation.Longitude == nil) {
			return fmt.Errorf("geolocation latitude and longitude must be set together")
		}
	default:
		return fmt.Errorf("unknown geolocation provider %q", c.Geolocation.Provider)
	}

	switch c.Connectivity.Mode {
	case "probe", "manual":
	default:
		return fmt.Errorf("unknown connectivity mode %q", c.Connectivity.Mode)
	}

	if c.Geolocation.Timeout <= 0 {
		return fmt.Errorf("geolocation timeout must be positive")
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}

	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.rate_limit_rps", 5.0)
	viper.SetDefault("server.rate_burst", 10)

	// Storage defaults
	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.sqlite_path", "nebo.db")
	viper.SetDefault("storage.key_prefix", "")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Weather defaults
	viper.SetDefault("weather.country_hint", "PH")
	viper.SetDefault("weather.timeout", 10*time.Second)
	viper.SetDefault("weather.requests_per_minute", 60)

	// Geolocation defaults
	viper.SetDefault("geolocation.provider", "ip")
	viper.SetDefault("geolocation.timeout", 10*time.Second)

	// Connectivity defaults
	viper.SetDefault("connectivity.mode", "probe")
	viper.SetDefault("connectivity.probe_url", "https://api.openweathermap.org")
	viper.SetDefault("connectivity.interval", 15*time.Second)
	viper.SetDefault("connectivity.timeout", 3*time.Second)

	// Refresh defaults
	viper.SetDefault("refresh.interval", 10*time.Minute)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
