package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Projector renders snapshots and fetch errors into a DisplayState.
type Projector struct {
	decorator Decorator
}

// NewProjector creates a Projector. A nil decorator means PlainDecorator.
func NewProjector(decorator Decorator) *Projector {
	if decorator == nil {
		decorator = PlainDecorator{}
	}
	return &Projector{decorator: decorator}
}

// Project renders snap, or err when it is non-nil, keeping only the fields of
// visible sections plus the core fields. Apart from last_updated the result
// depends only on the arguments.
func (p *Projector) Project(snap Snapshot, err error, visible SectionSet) DisplayState {
	if err != nil {
		return p.projectError(err, visible)
	}

	out := DisplayState{
		FieldStatus:      StatusOK,
		FieldLocation:    labelOrNoData(snap.LocationLabel),
		FieldLastUpdated: Now().Format("15:04:05"),
	}
	out[FieldPanel], out[FieldPanelBand] = p.temperature(snap.WaterTemperatureC)

	if visible.Has(SectionWater) {
		out[FieldWaterTemperature], out[FieldWaterTemperatureBand] = p.temperature(snap.WaterTemperatureC)
		out[FieldWaterTemperatureText] = labelOrNoData(snap.WaterTemperatureLabel)
		out[FieldWaterForecast2h], out[FieldWaterForecast2hBand] = p.temperature(snap.WaterForecast2hC)
		out[FieldWaterForecast2hText] = labelOrNoData(snap.WaterForecast2hLabel)
	}

	if visible.Has(SectionFlow) {
		out[FieldFlow], out[FieldFlowBand] = p.flow(snap.FlowCubicMetersPerSecond)
		out[FieldFlowText] = labelOrNoData(snap.FlowLabel)
	}

	if visible.Has(SectionChannel) {
		out[FieldSwimChannel] = p.channel(snap.ChannelOpen)
	}

	if visible.Has(SectionWeather) {
		out[FieldAirTemperature], out[FieldAirTemperatureBand] = p.temperature(snap.AirTemperatureC)
		var morning, afternoon, evening *ForecastPoint
		if snap.DayForecast != nil {
			morning = snap.DayForecast.Morning
			afternoon = snap.DayForecast.Afternoon
			evening = snap.DayForecast.Evening
		}
		out[FieldForecastMorning] = p.forecast(morning)
		out[FieldForecastAfternoon] = p.forecast(afternoon)
		out[FieldForecastEvening] = p.forecast(evening)
	}

	return out
}

// projectError forces every field to its error form. Only the status field
// carries the error message, so the rest of the state is identical for every
// failure.
func (p *Projector) projectError(err error, visible SectionSet) DisplayState {
	msg := err.Error()
	var fe *FetchError
	if errors.As(err, &fe) {
		msg = fe.Error()
	}

	out := DisplayState{
		FieldPanel:       PanelError,
		FieldPanelBand:   ErrorMarker,
		FieldStatus:      "error: " + msg,
		FieldLocation:    ErrorMarker,
		FieldLastUpdated: ErrorMarker,
	}
	for _, sec := range AllSections {
		if !visible.Has(sec) {
			continue
		}
		for _, f := range SectionFields[sec] {
			out[f] = ErrorMarker
		}
	}
	return out
}

func (p *Projector) temperature(v *float64) (value, band string) {
	if v == nil {
		return NoData, NoData
	}
	_, id := TemperatureBands.Lookup(*v)
	return formatNumber(*v) + "°C", p.decorator.Band(BandTemperature, id)
}

func (p *Projector) flow(v *float64) (value, band string) {
	if v == nil {
		return NoData, NoData
	}
	_, id := FlowBands.Lookup(*v)
	return formatNumber(*v) + " m³/s", p.decorator.Band(BandFlow, id)
}

func (p *Projector) channel(open *bool) string {
	switch {
	case open == nil:
		return NoData
	case *open:
		return p.decorator.Band(BandChannel, ChannelOpen)
	default:
		return p.decorator.Band(BandChannel, ChannelClosed)
	}
}

// forecast renders "<symbol> <description>, <t>°C (<n>% rain, <band>)" from
// whatever parts the point carries. Without a temperature the point is NoData.
func (p *Projector) forecast(fp *ForecastPoint) string {
	if fp == nil || fp.TemperatureC == nil {
		return NoData
	}

	var head []string
	if fp.WeatherCode != nil {
		if sym := p.decorator.WeatherSymbol(*fp.WeatherCode); sym != "" {
			head = append(head, sym)
		}
	}
	if fp.Description != "" {
		head = append(head, fp.Description)
	}

	var b strings.Builder
	if len(head) > 0 {
		b.WriteString(strings.Join(head, " "))
		b.WriteString(", ")
	}
	b.WriteString(formatNumber(*fp.TemperatureC))
	b.WriteString("°C")

	if fp.RainRiskPercent != nil && *fp.RainRiskPercent > 0 {
		_, id := RainRiskBands.Lookup(float64(*fp.RainRiskPercent))
		fmt.Fprintf(&b, " (%d%% rain, %s)", *fp.RainRiskPercent, p.decorator.Band(BandRainRisk, id))
	}
	return b.String()
}

func labelOrNoData(s string) string {
	if s == "" {
		return NoData
	}
	return s
}

// formatNumber prints the shortest decimal that round-trips, e.g. 18.4 or 20.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
