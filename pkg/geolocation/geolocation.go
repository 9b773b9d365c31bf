// Package geolocation provides device position sources.
package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrPositionUnavailable is returned when the position was denied, timed out or could not be determined
var ErrPositionUnavailable = errors.New("position unavailable")

const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country"

// Position is a geographic fix
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Source    string  `json:"source"`
}

// StaticProvider reports a fixed, configured device position.
// A provider without a position behaves like a device that denied location access.
type StaticProvider struct {
	position *Position
}

// NewStaticProvider creates a provider for a fixed position
func NewStaticProvider(lat, lon float64) *StaticProvider {
	return &StaticProvider{position: &Position{Latitude: lat, Longitude: lon, Source: "static"}}
}

// NewDeniedProvider creates a provider that never yields a position
func NewDeniedProvider() *StaticProvider {
	return &StaticProvider{}
}

func (p *StaticProvider) CurrentPosition(ctx context.Context) (*Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	if p.position == nil {
		return nil, fmt.Errorf("%w: location access denied", ErrPositionUnavailable)
	}
	pos := *p.position
	return &pos, nil
}

// IPProvider approximates the device position from its public IP address
type IPProvider struct {
	url        string
	userAgent  string
	httpClient *http.Client
}

// NewIPProvider creates an IP geolocation provider; an empty url uses ip-api.com
func NewIPProvider(url string, timeout time.Duration) *IPProvider {
	if url == "" {
		url = DefaultIPAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPProvider{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithUserAgent sets the User-Agent sent with lookups
func (p *IPProvider) WithUserAgent(ua string) *IPProvider {
	p.userAgent = ua
	return p
}

func (p *IPProvider) CurrentPosition(ctx context.Context) (*Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrPositionUnavailable, err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req) // nosec G704
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make request: %v", ErrPositionUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: lookup failed with status: %d", ErrPositionUnavailable, resp.StatusCode)
	}

	var result struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		City    string  `json:"city"`
		Country string  `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrPositionUnavailable, err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("%w: lookup status %q: %s", ErrPositionUnavailable, result.Status, result.Message)
	}

	return &Position{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		City:      result.City,
		Country:   result.Country,
		Source:    "ip",
	}, nil
}
