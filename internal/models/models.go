package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// HourlyWindowSize is the number of upcoming forecast entries shown as the hourly strip.
const HourlyWindowSize = 8

// UnitSystem is the measurement system a fetch is issued under
type UnitSystem string

const (
	UnitMetric   UnitSystem = "metric"
	UnitImperial UnitSystem = "imperial"
)

// ParseUnitSystem converts a stored or user-supplied value into a UnitSystem
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(strings.ToLower(strings.TrimSpace(s))) {
	case UnitMetric:
		return UnitMetric, nil
	case UnitImperial:
		return UnitImperial, nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// TemperatureSymbol returns the display suffix for temperatures in this unit system
func (u UnitSystem) TemperatureSymbol() string {
	if u == UnitImperial {
		return "°F"
	}
	return "°C"
}

// Theme is the dark-mode preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light"/"dark"
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// LocationMode determines which fetch path is used
type LocationMode int

const (
	ModeCurrentLocation LocationMode = iota
	ModeNamedCity
)

func (m LocationMode) String() string {
	switch m {
	case ModeCurrentLocation:
		return "current_location"
	case ModeNamedCity:
		return "named_city"
	default:
		return "unknown"
	}
}

// MarshalText lets the mode appear by name in JSON responses
func (m LocationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *LocationMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "current_location":
		*m = ModeCurrentLocation
	case "named_city":
		*m = ModeNamedCity
	default:
		return fmt.Errorf("unknown location mode %q", text)
	}
	return nil
}

// Coordinates represents a device position
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Latitude, c.Longitude)
}

// CurrentWeatherSnapshot is the normalized current-weather record persisted for offline use.
// Unit always equals the unit system the snapshot was fetched under.
type CurrentWeatherSnapshot struct {
	City        string     `json:"name"`
	Temperature float64    `json:"temp"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Unit        UnitSystem `json:"unit"`
}

// ForecastEntry is a single forecast point
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"` // Always UTC
	Temperature float64   `json:"temp"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
}

// ForecastList is ordered chronologically, ascending
type ForecastList []ForecastEntry

// Sorted returns a copy ordered by timestamp
func (l ForecastList) Sorted() ForecastList {
	out := make(ForecastList, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// HourlyWindow returns the first HourlyWindowSize entries whose timestamp is strictly after now.
// It is never cached: callers recompute it on every fetch or cache load.
func (l ForecastList) HourlyWindow(now time.Time) []ForecastEntry {
	window := make([]ForecastEntry, 0, HourlyWindowSize)
	for _, entry := range l {
		if len(window) == HourlyWindowSize {
			break
		}
		if entry.Timestamp.After(now) {
			window = append(window, entry)
		}
	}
	return window
}

// CachedState is whatever subset of the persisted slots could be read back
type CachedState struct {
	Snapshot    *CurrentWeatherSnapshot `json:"snapshot,omitempty"`
	Forecast    ForecastList            `json:"forecast,omitempty"`
	Coordinates *Coordinates            `json:"coordinates,omitempty"`
}

// Empty reports whether no slot was present
func (s *CachedState) Empty() bool {
	return s == nil || (s.Snapshot == nil && s.Forecast == nil && s.Coordinates == nil)
}

// Preferences groups the user-facing settings
type Preferences struct {
	Unit                 UnitSystem `json:"unit"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	Theme                Theme      `json:"theme"`
}
