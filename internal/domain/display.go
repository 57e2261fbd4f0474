package domain

import "sort"

// Placeholders shared by every renderer.
const (
	// NoData replaces any value the payload did not carry.
	NoData = "--"
	// ErrorMarker replaces every field while the last fetch failed.
	ErrorMarker = "error"
	// PanelError is the panel summary after a failed fetch.
	PanelError = "ERR"
	// StatusOK is the status field after a successful fetch.
	StatusOK = "ok"

	ChannelOpen   = "open"
	ChannelClosed = "closed"
)

// Section groups display fields that can be hidden together.
type Section string

const (
	SectionWater   Section = "water"
	SectionFlow    Section = "flow"
	SectionChannel Section = "channel"
	SectionWeather Section = "weather"
)

// AllSections lists sections in display order.
var AllSections = []Section{SectionWater, SectionFlow, SectionChannel, SectionWeather}

// SectionSet is the set of visible sections.
type SectionSet map[Section]bool

// NewSectionSet returns a set holding the given sections.
func NewSectionSet(sections ...Section) SectionSet {
	s := make(SectionSet, len(sections))
	for _, sec := range sections {
		s[sec] = true
	}
	return s
}

// AllVisible returns a set with every section enabled.
func AllVisible() SectionSet {
	return NewSectionSet(AllSections...)
}

// Has reports whether sec is visible.
func (s SectionSet) Has(sec Section) bool {
	return s[sec]
}

// Clone returns an independent copy.
func (s SectionSet) Clone() SectionSet {
	out := make(SectionSet, len(s))
	for k, v := range s {
		if v {
			out[k] = true
		}
	}
	return out
}

// Equal reports whether both sets enable the same sections.
func (s SectionSet) Equal(other SectionSet) bool {
	for _, sec := range AllSections {
		if s.Has(sec) != other.Has(sec) {
			return false
		}
	}
	return true
}

// FieldID names one entry of a DisplayState.
type FieldID string

// Fields outside any section; always present.
const (
	FieldPanel       FieldID = "panel"
	FieldPanelBand   FieldID = "panel_band"
	FieldStatus      FieldID = "status"
	FieldLocation    FieldID = "location"
	FieldLastUpdated FieldID = "last_updated"
)

const (
	FieldWaterTemperature     FieldID = "water_temperature"
	FieldWaterTemperatureBand FieldID = "water_temperature_band"
	FieldWaterTemperatureText FieldID = "water_temperature_text"
	FieldWaterForecast2h      FieldID = "water_forecast_2h"
	FieldWaterForecast2hBand  FieldID = "water_forecast_2h_band"
	FieldWaterForecast2hText  FieldID = "water_forecast_2h_text"

	FieldFlow     FieldID = "flow"
	FieldFlowBand FieldID = "flow_band"
	FieldFlowText FieldID = "flow_text"

	FieldSwimChannel FieldID = "swim_channel"

	FieldAirTemperature     FieldID = "air_temperature"
	FieldAirTemperatureBand FieldID = "air_temperature_band"
	FieldForecastMorning    FieldID = "forecast_morning"
	FieldForecastAfternoon  FieldID = "forecast_afternoon"
	FieldForecastEvening    FieldID = "forecast_evening"
)

// SectionFields lists the fields owned by each section.
var SectionFields = map[Section][]FieldID{
	SectionWater: {
		FieldWaterTemperature, FieldWaterTemperatureBand, FieldWaterTemperatureText,
		FieldWaterForecast2h, FieldWaterForecast2hBand, FieldWaterForecast2hText,
	},
	SectionFlow:    {FieldFlow, FieldFlowBand, FieldFlowText},
	SectionChannel: {FieldSwimChannel},
	SectionWeather: {
		FieldAirTemperature, FieldAirTemperatureBand,
		FieldForecastMorning, FieldForecastAfternoon, FieldForecastEvening,
	},
}

// CoreFields are rendered regardless of section visibility.
var CoreFields = []FieldID{FieldPanel, FieldPanelBand, FieldStatus, FieldLocation, FieldLastUpdated}

// DisplayState maps field IDs to rendered text. A projection always builds a
// new map; holders must not modify one they did not build.
type DisplayState map[FieldID]string

// Clone returns an independent copy.
func (d DisplayState) Clone() DisplayState {
	out := make(DisplayState, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Keys returns the field IDs in lexical order.
func (d DisplayState) Keys() []FieldID {
	keys := make([]FieldID, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// IsError reports whether d is the projection of a failed fetch.
func (d DisplayState) IsError() bool {
	return d[FieldPanel] == PanelError
}
