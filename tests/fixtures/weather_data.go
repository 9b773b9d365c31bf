package fixtures

import (
	"encoding/json"
	"time"

	"github.com/valpere/nebo/pkg/weather"
)

// Coordinates of the cities used across tests
const (
	CebuLat   = 10.3157
	CebuLon   = 123.8854
	ManilaLat = 14.5995
	ManilaLon = 120.9842
)

// CurrentWeather builds a provider-shaped current weather answer
func CurrentWeather(city string, temp float64, description, icon string) *weather.CurrentWeatherResponse {
	resp := &weather.CurrentWeatherResponse{
		Name: city,
		Dt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Unix(),
		Main: weather.MainReadings{
			Temp:      temp,
			FeelsLike: temp + 1.5,
			Pressure:  1010,
			Humidity:  78,
		},
		Weather: []weather.Condition{
			{Main: "Clouds", Description: description, Icon: icon},
		},
	}
	resp.Sys.Country = "PH"
	return resp
}

// CebuCurrent is the current weather used by the restart scenario
func CebuCurrent() *weather.CurrentWeatherResponse {
	resp := CurrentWeather("Cebu", 30, "scattered clouds", "03d")
	resp.Coord = weather.Coord{Lat: CebuLat, Lon: CebuLon}
	return resp
}

// Forecast builds a forecast of n three-hour steps starting at start
func Forecast(city string, start time.Time, n int) *weather.ForecastResponse {
	resp := &weather.ForecastResponse{}
	resp.City.Name = city
	resp.City.Country = "PH"

	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i*3) * time.Hour).UTC()
		resp.List = append(resp.List, weather.ForecastItem{
			Dt:    ts.Unix(),
			DtTxt: ts.Format("2006-01-02 15:04:05"),
			Main:  weather.MainReadings{Temp: 26 + float64(i%4)},
			Weather: []weather.Condition{
				{Main: "Rain", Description: "light rain", Icon: "10d"},
			},
		})
	}
	return resp
}

// JSON marshals a fixture for use as an httptest response body
func JSON(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}

// GetInvalidJSONResponse returns an invalid JSON response for error testing
func GetInvalidJSONResponse() string {
	return `{"invalid": json}`
}

// GetErrorResponse returns an error response from the API
func GetErrorResponse() string {
	return `{"cod": "404", "message": "city not found"}`
}
