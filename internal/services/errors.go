package services

import (
	"errors"
	"fmt"

	"github.com/valpere/nebo/pkg/geolocation"
)

// Leg names one of the two requests of a fetch pair
type Leg string

const (
	LegCurrent  Leg = "current"
	LegForecast Leg = "forecast"
)

var (
	// ErrPositionUnavailable means geolocation was denied, timed out or failed
	ErrPositionUnavailable = geolocation.ErrPositionUnavailable

	// ErrNetwork classifies every failure to reach the weather provider
	ErrNetwork = errors.New("network unavailable")

	// ErrCacheMiss marks an absent cache slot; it is handled internally and never surfaced
	ErrCacheMiss = errors.New("cache slot absent")

	// ErrStoreUnavailable is fatal to the enclosing operation and is not retried
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoLocation means neither the device position nor last known coordinates are available
	ErrNoLocation = errors.New("no location available")

	// ErrSearchRequiresConnectivity rejects a city search while offline
	ErrSearchRequiresConnectivity = fmt.Errorf("search requires connectivity: %w", ErrNetwork)
)

// NetworkError reports which leg of a fetch failed
type NetworkError struct {
	Leg Leg
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s weather request failed: %v", e.Leg, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is makes every NetworkError match ErrNetwork
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
