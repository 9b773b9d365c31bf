//go:generate mockgen -source=internal/interfaces/weather_client.go -destination=internal/mocks/weather_client_mock.go -package=mocks
//go:generate mockgen -source=internal/interfaces/providers.go -destination=internal/mocks/providers_mock.go -package=mocks

package main

func main() {
	// This file is only used for generating mocks via go:generate comments
}
