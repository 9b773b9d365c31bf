package interfaces

import (
	"context"

	"github.com/valpere/nebo/pkg/geolocation"
)

//go:generate mockgen -source=providers.go -destination=../mocks/providers_mock.go -package=mocks

// GeolocationProvider yields the device position or fails with geolocation.ErrPositionUnavailable
type GeolocationProvider interface {
	CurrentPosition(ctx context.Context) (*geolocation.Position, error)
}

// KeyValueStore is durable string storage; a missing key is reported by found == false, not by an error
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ConnectivitySignal is readable on demand and observable for transitions
type ConnectivitySignal interface {
	Online(ctx context.Context) bool
	Transitions() <-chan bool
}
