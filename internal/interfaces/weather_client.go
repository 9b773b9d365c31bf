package interfaces

import (
	"context"

	"github.com/valpere/nebo/pkg/weather"
)

//go:generate mockgen -source=weather_client.go -destination=../mocks/weather_client_mock.go -package=mocks

// WeatherSource defines the four read operations of the upstream weather API
type WeatherSource interface {
	CurrentByCity(ctx context.Context, city, country, units string) (*weather.CurrentWeatherResponse, error)
	CurrentByCoords(ctx context.Context, lat, lon float64, units string) (*weather.CurrentWeatherResponse, error)
	ForecastByCity(ctx context.Context, city, country, units string) (*weather.ForecastResponse, error)
	ForecastByCoords(ctx context.Context, lat, lon float64, units string) (*weather.ForecastResponse, error)
}
