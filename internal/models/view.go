package models

import "time"

// DataSource tells where the displayed data came from
type DataSource string

const (
	SourceNone  DataSource = ""
	SourceLive  DataSource = "live"
	SourceCache DataSource = "cache"
)

// View is the display state maintained by the connectivity controller.
// Fields are only ever replaced by data that actually arrived; nothing is cleared speculatively.
type View struct {
	Online      bool                    `json:"online"`
	Mode        LocationMode            `json:"mode"`
	City        string                  `json:"city,omitempty"`
	Coordinates *Coordinates            `json:"coordinates,omitempty"`
	Current     *CurrentWeatherSnapshot `json:"current,omitempty"`
	Forecast    ForecastList            `json:"forecast,omitempty"`
	Hourly      []ForecastEntry         `json:"hourly,omitempty"`
	Source      DataSource              `json:"source,omitempty"`
	StaleUnit   bool                    `json:"stale_unit"`
	NoLocation  bool                    `json:"no_location"`
	LastError   string                  `json:"last_error,omitempty"`
	UpdatedAt   time.Time               `json:"updated_at,omitempty"`
}

// HasData reports whether anything displayable is present
func (v View) HasData() bool {
	return v.Current != nil || len(v.Forecast) > 0
}

// Clone returns a deep copy safe to hand out to readers
func (v View) Clone() View {
	out := v
	if v.Coordinates != nil {
		c := *v.Coordinates
		out.Coordinates = &c
	}
	if v.Current != nil {
		s := *v.Current
		out.Current = &s
	}
	if v.Forecast != nil {
		out.Forecast = append(ForecastList(nil), v.Forecast...)
	}
	if v.Hourly != nil {
		out.Hourly = append([]ForecastEntry(nil), v.Hourly...)
	}
	return out
}
