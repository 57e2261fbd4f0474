package domain

import "time"

// Snapshot is one normalized Aare.guru reading. Every field is optional: nil
// pointers and empty strings mean the payload did not carry the value.
type Snapshot struct {
	WaterTemperatureC     *float64 `json:"water_temperature_c,omitempty"`
	WaterTemperatureLabel string   `json:"water_temperature_label,omitempty"`

	WaterForecast2hC     *float64 `json:"water_forecast_2h_c,omitempty"`
	WaterForecast2hLabel string   `json:"water_forecast_2h_label,omitempty"`

	FlowCubicMetersPerSecond *float64 `json:"flow_m3s,omitempty"`
	FlowLabel                string   `json:"flow_label,omitempty"`

	// ChannelOpen reports whether the swim channel (Bueber) is open.
	ChannelOpen *bool `json:"channel_open,omitempty"`

	AirTemperatureC *float64     `json:"air_temperature_c,omitempty"`
	DayForecast     *DayForecast `json:"day_forecast,omitempty"`

	LocationLabel string    `json:"location,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// DayForecast holds today's forecast split into day-parts.
type DayForecast struct {
	Morning   *ForecastPoint `json:"morning,omitempty"`
	Afternoon *ForecastPoint `json:"afternoon,omitempty"`
	Evening   *ForecastPoint `json:"evening,omitempty"`
}

// ForecastPoint is a single day-part forecast. Rendering needs TemperatureC;
// the other fields are decoration.
type ForecastPoint struct {
	Description     string   `json:"description,omitempty"`
	TemperatureC    *float64 `json:"temperature_c,omitempty"`
	WeatherCode     *int     `json:"weather_code,omitempty"`
	RainRiskPercent *int     `json:"rain_risk_pct,omitempty"`
}

// PollConfig is the settings view the scheduler works from.
type PollConfig struct {
	LocationID   string
	PollInterval time.Duration
	Visible      SectionSet
}
