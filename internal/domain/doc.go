// Package domain models Aare.guru river and weather telemetry and its
// projection into display text.
//
// # Data Source
//
// Readings come from the Aare.guru API (https://aareguru.existenz.ch/), which
// aggregates BAFU hydrology stations and MeteoSwiss forecasts for a set of
// towns along the Aare. The "current" endpoint returns one JSON object per
// town; this package only reads the groups below and ignores the rest.
//
// # Payload Conventions
//
//	aare.temperature        water temperature in °C (number)
//	aare.temperature_text   free-text comment on the temperature
//	aare.forecast2h         water temperature forecast in two hours, °C
//	aare.forecast2h_text    free-text comment on the forecast
//	aare.flow               discharge in m³/s
//	aare.flow_text          free-text comment on the discharge
//	aare.location_long      display name, falling back to aare.location
//	bueber.state_open_flag  swim channel (Bueber) open flag, bool or 0/1
//	weather.current.tt      air temperature in °C
//	weather.today.{v,n,a}   morning / afternoon / evening forecast with
//	                        tt (°C), sy (symbol code), syt (symbol text),
//	                        rrisk (rain risk in %)
//
// Any of these may be missing or null depending on the station. Absence is
// normal and renders as [NoData]; it is never an error.
//
// # Banding
//
// Numeric values are classified through ordered tables ([TemperatureBands],
// [FlowBands], [RainRiskBands]) and a single lookup, [Banding.Lookup]:
//
//	Temperature: <5 freezing | <12 cold | <19 cool | <23 warm | <27 hot | ≥27 very hot
//	Flow (m³/s): <100 low | <200 normal | <300 high | <430 very high | ≥430 flood
//	Rain risk:   <30 low | <60 moderate | ≥60 high
//
// A value on a threshold belongs to the upper band. How a band is shown is up
// to the [Decorator].
//
// # Display State
//
// [Projector.Project] produces a flat [DisplayState]. Fields belong to a
// [Section] and disappear when the section is hidden; the core fields (panel,
// panel_band, status, location, last_updated) are always present. A failed
// fetch renders every field as [ErrorMarker], the panel as [PanelError] and the
// error message in the status field only.
package domain
