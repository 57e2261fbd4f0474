package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func mustParse(t *testing.T, body string) Snapshot {
	t.Helper()
	snap, err := ParsePayload([]byte(body))
	require.NoError(t, err)
	return snap
}

func without(d DisplayState, field FieldID) DisplayState {
	out := d.Clone()
	delete(out, field)
	return out
}

func TestProject_WaterAndAirOnly(t *testing.T) {
	freezeClock(t)
	snap := mustParse(t, `{"aare":{"temperature":18.4}, "weather":{"current":{"tt":20}}}`)

	state := NewProjector(PlainDecorator{}).Project(snap, nil, AllVisible())

	assert.Equal(t, "18.4°C", state[FieldWaterTemperature])
	assert.Equal(t, "cool", state[FieldWaterTemperatureBand])
	assert.Equal(t, "18.4°C", state[FieldPanel])
	assert.Equal(t, "cool", state[FieldPanelBand])
	assert.Equal(t, "20°C", state[FieldAirTemperature])
	assert.Equal(t, "warm", state[FieldAirTemperatureBand])

	for _, f := range []FieldID{
		FieldFlow, FieldFlowBand, FieldFlowText,
		FieldWaterForecast2h, FieldWaterForecast2hBand, FieldWaterForecast2hText,
		FieldForecastMorning, FieldForecastAfternoon, FieldForecastEvening,
		FieldSwimChannel, FieldLocation,
	} {
		assert.Equal(t, NoData, state[f], "field %s", f)
	}
	assert.Equal(t, StatusOK, state[FieldStatus])
	assert.Equal(t, "12:30:15", state[FieldLastUpdated])
}

func TestProject_FullPayload(t *testing.T) {
	freezeClock(t)
	snap := mustParse(t, fullPayload)

	state := NewProjector(nil).Project(snap, nil, AllVisible())

	expected := DisplayState{
		FieldPanel:                "18.4°C",
		FieldPanelBand:            "cool",
		FieldStatus:               StatusOK,
		FieldLocation:             "Bern, Schönau",
		FieldLastUpdated:          "12:30:15",
		FieldWaterTemperature:     "18.4°C",
		FieldWaterTemperatureBand: "cool",
		FieldWaterTemperatureText: "geit scho",
		FieldWaterForecast2h:      "18.9°C",
		FieldWaterForecast2hBand:  "cool",
		FieldWaterForecast2hText:  "wärmer",
		FieldFlow:                 "142 m³/s",
		FieldFlowBand:             "normal",
		FieldFlowText:             "gäbig",
		FieldSwimChannel:          ChannelOpen,
		FieldAirTemperature:       "20°C",
		FieldAirTemperatureBand:   "warm",
		FieldForecastMorning:      "sonnig, 17°C",
		FieldForecastAfternoon:    "Regenschauer, 22.5°C (45% rain, moderate)",
		FieldForecastEvening:      "bewölkt, 19°C",
	}
	if diff := cmp.Diff(expected, state); diff != "" {
		t.Fatalf("display state mismatch (-want +got):\n%s", diff)
	}
}

func TestProject_EmojiDecorator(t *testing.T) {
	freezeClock(t)
	snap := mustParse(t, fullPayload)

	state := NewProjector(NewDecorator("emoji")).Project(snap, nil, AllVisible())

	assert.Equal(t, "18.4°C", state[FieldWaterTemperature])
	assert.Equal(t, "🌊 cool", state[FieldWaterTemperatureBand])
	assert.Equal(t, "🏊‍♀️ open", state[FieldSwimChannel])
	assert.Equal(t, "☀️ sonnig, 17°C", state[FieldForecastMorning])
	assert.Equal(t, "🌦️ Regenschauer, 22.5°C (45% rain, ☂️ moderate)", state[FieldForecastAfternoon])
	assert.Equal(t, "bewölkt, 19°C", state[FieldForecastEvening])
}

func TestProject_Forecast(t *testing.T) {
	p := NewProjector(PlainDecorator{})

	tests := []struct {
		name     string
		point    *ForecastPoint
		expected string
	}{
		{"nil point", nil, NoData},
		{"no temperature", &ForecastPoint{Description: "sonnig", WeatherCode: ptr(1)}, NoData},
		{"temperature only", &ForecastPoint{TemperatureC: ptr(14.0)}, "14°C"},
		{"code without symbol", &ForecastPoint{TemperatureC: ptr(14.0), WeatherCode: ptr(3)}, "14°C"},
		{"zero rain risk omitted", &ForecastPoint{Description: "heiter", TemperatureC: ptr(21.0), RainRiskPercent: ptr(0)}, "heiter, 21°C"},
		{"negative rain risk omitted", &ForecastPoint{TemperatureC: ptr(21.0), RainRiskPercent: ptr(-5)}, "21°C"},
		{"low rain risk", &ForecastPoint{TemperatureC: ptr(21.0), RainRiskPercent: ptr(10)}, "21°C (10% rain, low)"},
		{"high rain risk", &ForecastPoint{Description: "Gewitter", TemperatureC: ptr(25.5), RainRiskPercent: ptr(80)}, "Gewitter, 25.5°C (80% rain, high)"},
		{"below zero", &ForecastPoint{TemperatureC: ptr(-2.5)}, "-2.5°C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.forecast(tt.point))
		})
	}
}

func TestProject_Channel(t *testing.T) {
	p := NewProjector(PlainDecorator{})
	assert.Equal(t, ChannelOpen, p.channel(ptr(true)))
	assert.Equal(t, ChannelClosed, p.channel(ptr(false)))
	assert.Equal(t, NoData, p.channel(nil))
}

func TestProject_FlowBandDecoration(t *testing.T) {
	p := NewProjector(PlainDecorator{})
	value, band := p.flow(ptr(455.5))
	assert.Equal(t, "455.5 m³/s", value)
	assert.Equal(t, "flood", band)

	value, band = p.flow(nil)
	assert.Equal(t, NoData, value)
	assert.Equal(t, NoData, band)
}

// Every combination of removed payload groups must still render a sentinel or
// a value in every field.
func TestProject_MissingFieldSubsets(t *testing.T) {
	freezeClock(t)

	removable := [][]string{
		{"aare", "temperature"},
		{"aare", "temperature_text"},
		{"aare", "forecast2h"},
		{"aare", "forecast2h_text"},
		{"aare", "flow"},
		{"aare", "location_long"},
		{"aare", "location"},
		{"bueber"},
		{"weather", "current"},
		{"weather", "today", "v"},
		{"weather", "today", "n", "tt"},
		{"weather", "today"},
	}

	p := NewProjector(PlainDecorator{})
	for mask := 0; mask < 1<<len(removable); mask++ {
		var root map[string]any
		require.NoError(t, json.Unmarshal([]byte(fullPayload), &root))
		for i, path := range removable {
			if mask&(1<<i) != 0 {
				deletePath(root, path)
			}
		}
		body, err := json.Marshal(root)
		require.NoError(t, err)

		snap, err := ParsePayload(body)
		require.NoError(t, err, "mask %b", mask)

		state := p.Project(snap, nil, AllVisible())
		require.Len(t, state, len(CoreFields)+countSectionFields(AllSections), "mask %b", mask)
		for field, value := range state {
			if value == "" || strings.Contains(value, "<nil>") || strings.Contains(value, "null") || strings.Contains(value, "%!") {
				t.Fatalf("mask %b: field %s rendered %q", mask, field, value)
			}
		}
	}
}

func TestProject_Idempotent(t *testing.T) {
	fc := freezeClock(t)
	snap := mustParse(t, fullPayload)
	p := NewProjector(NewDecorator("emoji"))

	first := p.Project(snap, nil, AllVisible())
	fc.Advance(90 * time.Second)
	second := p.Project(snap, nil, AllVisible())

	assert.NotEqual(t, first[FieldLastUpdated], second[FieldLastUpdated])
	if diff := cmp.Diff(without(first, FieldLastUpdated), without(second, FieldLastUpdated)); diff != "" {
		t.Fatalf("projection not idempotent (-first +second):\n%s", diff)
	}
}

func TestProject_SectionGating(t *testing.T) {
	freezeClock(t)
	snap := mustParse(t, fullPayload)
	p := NewProjector(PlainDecorator{})
	full := p.Project(snap, nil, AllVisible())

	for mask := 0; mask < 1<<len(AllSections); mask++ {
		visible := SectionSet{}
		var hidden []Section
		for i, sec := range AllSections {
			if mask&(1<<i) != 0 {
				visible[sec] = true
			} else {
				hidden = append(hidden, sec)
			}
		}

		expected := full.Clone()
		for _, sec := range hidden {
			for _, f := range SectionFields[sec] {
				delete(expected, f)
			}
		}

		got := p.Project(snap, nil, visible)
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Fatalf("hidden %v (-want +got):\n%s", hidden, diff)
		}
	}
}

func TestProject_ErrorVariants(t *testing.T) {
	freezeClock(t)
	p := NewProjector(PlainDecorator{})

	errs := []error{
		NewNetworkError("current request", errors.New("dial tcp: lookup aareguru.existenz.ch: no such host")),
		NewHTTPStatusError(503, "Service Unavailable"),
		NewHTTPStatusError(404, ""),
		NewParseError("decode response", errors.New("invalid character '<'")),
		NewConfigError("no location configured"),
		errors.New("something else entirely"),
	}

	var reference DisplayState
	for _, err := range errs {
		state := p.Project(Snapshot{}, err, AllVisible())

		assert.Equal(t, PanelError, state[FieldPanel])
		assert.True(t, state.IsError())
		assert.NotEqual(t, StatusOK, state[FieldStatus])
		assert.Contains(t, state[FieldStatus], err.Error())

		for field, value := range state {
			if field == FieldPanel || field == FieldStatus {
				continue
			}
			assert.Equal(t, ErrorMarker, value, "field %s for %v", field, err)
		}

		if reference == nil {
			reference = state
			continue
		}
		if diff := cmp.Diff(without(reference, FieldStatus), without(state, FieldStatus)); diff != "" {
			t.Fatalf("error projection depends on error detail (-want +got):\n%s", diff)
		}
	}
}

func TestProject_HTTPStatusErrorReplacesSuccess(t *testing.T) {
	freezeClock(t)
	p := NewProjector(PlainDecorator{})
	success := p.Project(mustParse(t, fullPayload), nil, AllVisible())

	state := p.Project(Snapshot{}, NewHTTPStatusError(503, ""), AllVisible())

	assert.NotEmpty(t, state[FieldStatus])
	assert.NotEqual(t, success[FieldStatus], state[FieldStatus])
	assert.NotEqual(t, success[FieldPanel], state[FieldPanel])
	for _, sec := range AllSections {
		for _, f := range SectionFields[sec] {
			assert.Equal(t, ErrorMarker, state[f], "field %s", f)
		}
	}
}

func TestProject_ErrorRespectsGating(t *testing.T) {
	state := NewProjector(nil).Project(Snapshot{}, NewConfigError("no location configured"), NewSectionSet(SectionFlow))

	assert.Len(t, state, len(CoreFields)+len(SectionFields[SectionFlow]))
	assert.Equal(t, ErrorMarker, state[FieldFlow])
	_, ok := state[FieldWaterTemperature]
	assert.False(t, ok)
}

func deletePath(root map[string]any, path []string) {
	obj := root
	for _, key := range path[:len(path)-1] {
		next, ok := obj[key].(map[string]any)
		if !ok {
			return
		}
		obj = next
	}
	delete(obj, path[len(path)-1])
}

func countSectionFields(sections []Section) int {
	n := 0
	for _, sec := range sections {
		n += len(SectionFields[sec])
	}
	return n
}
