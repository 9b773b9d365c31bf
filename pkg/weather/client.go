package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org"

	currentPath  = "/data/2.5/weather"
	forecastPath = "/data/2.5/forecast"
)

var (
	// ErrCircuitOpen is returned while the breaker refuses calls after repeated failures
	ErrCircuitOpen = errors.New("weather API circuit breaker open")
	// ErrInvalidUnits is returned for a units value the API does not understand
	ErrInvalidUnits = errors.New("invalid units")
)

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API request failed with status: %d", e.StatusCode)
}

// Options tunes a Client; zero values fall back to defaults
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	UserAgent         string
	HTTPClient        *http.Client
	BreakerCooldown   time.Duration // how long the breaker stays open, default 30s
}

// Client represents an OpenWeatherMap API client
type Client struct {
	apiKey     string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

// Condition is one entry of the provider's "weather" array
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainReadings is the provider's "main" block
type MainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

// Coord is the provider's coordinate block
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CurrentWeatherResponse is the provider-shaped answer of /data/2.5/weather
type CurrentWeatherResponse struct {
	Name    string       `json:"name"`
	Dt      int64        `json:"dt"`
	Coord   Coord        `json:"coord"`
	Main    MainReadings `json:"main"`
	Weather []Condition  `json:"weather"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// ForecastItem is one 3-hour step of /data/2.5/forecast
type ForecastItem struct {
	Dt      int64        `json:"dt"`
	DtTxt   string       `json:"dt_txt"`
	Main    MainReadings `json:"main"`
	Weather []Condition  `json:"weather"`
}

// ForecastResponse is the provider-shaped answer of /data/2.5/forecast
type ForecastResponse struct {
	List []ForecastItem `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Coord   Coord  `json:"coord"`
	} `json:"city"`
}

// PrimaryCondition returns the first condition or an empty one
func PrimaryCondition(conditions []Condition) Condition {
	if len(conditions) == 0 {
		return Condition{}
	}
	return conditions[0]
}

// Time returns the item's timestamp in UTC, falling back to dt_txt which the API reports in UTC
func (f ForecastItem) Time() (time.Time, error) {
	if f.Dt > 0 {
		return time.Unix(f.Dt, 0).UTC(), nil
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", f.DtTxt, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid forecast timestamp %q: %w", f.DtTxt, err)
	}
	return ts, nil
}

// NewClient creates a new weather API client
func NewClient(apiKey string, opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	// Free tier allows 60 calls per minute
	perMinute := opts.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "openweathermap",
			// A fetch issues its current and forecast requests together; both must pass while half-open
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: isBreakerSuccess,
		}),
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
	}
}

// CurrentByCity retrieves current weather for a city name with an optional country hint
func (c *Client) CurrentByCity(ctx context.Context, city, country, units string) (*CurrentWeatherResponse, error) {
	params, err := cityParams(city, country, units)
	if err != nil {
		return nil, err
	}

	var resp CurrentWeatherResponse
	if err := c.get(ctx, currentPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentByCoords retrieves current weather for a position
func (c *Client) CurrentByCoords(ctx context.Context, lat, lon float64, units string) (*CurrentWeatherResponse, error) {
	params, err := coordParams(lat, lon, units)
	if err != nil {
		return nil, err
	}

	var resp CurrentWeatherResponse
	if err := c.get(ctx, currentPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ForecastByCity retrieves the 5 day / 3 hour forecast for a city name
func (c *Client) ForecastByCity(ctx context.Context, city, country, units string) (*ForecastResponse, error) {
	params, err := cityParams(city, country, units)
	if err != nil {
		return nil, err
	}

	var resp ForecastResponse
	if err := c.get(ctx, forecastPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ForecastByCoords retrieves the 5 day / 3 hour forecast for a position
func (c *Client) ForecastByCoords(ctx context.Context, lat, lon float64, units string) (*ForecastResponse, error) {
	params, err := coordParams(lat, lon, units)
	if err != nil {
		return nil, err
	}

	var resp ForecastResponse
	if err := c.get(ctx, forecastPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func cityParams(city, country, units string) (url.Values, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("city name cannot be empty")
	}
	if err := validateUnits(units); err != nil {
		return nil, err
	}

	// An explicit "City,CC" from the user wins over the configured hint
	q := city
	if country != "" && !strings.Contains(city, ",") {
		q = city + "," + country
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("units", units)
	return params, nil
}

func coordParams(lat, lon float64, units string) (url.Values, error) {
	if err := validateUnits(units); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	params.Set("units", units)
	return params, nil
}

func validateUnits(units string) error {
	switch units {
	case "metric", "imperial":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidUnits, units)
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	params.Set("appid", c.apiKey)
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req) // nosec G704
		if err != nil {
			return nil, fmt.Errorf("failed to make request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(body)}
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return err
	}

	body, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// isBreakerSuccess treats client errors such as an unknown city as healthy answers.
// Only transport failures, throttling and server errors count towards opening the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// apiMessage extracts {"message": "..."} from an error body when present
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
