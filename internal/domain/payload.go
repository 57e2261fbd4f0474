package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
)

// ParsePayload normalizes an Aare.guru "current" response body into a Snapshot.
//
// The body must be a single JSON object; anything else is a KindParse error.
// Inside the object every field is looked up with a total accessor, so missing
// groups, nulls and values of the wrong type all come back as absent fields
// and a Snapshot is always produced.
func ParsePayload(body []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return Snapshot{}, NewParseError("decode response", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Snapshot{}, NewParseError("decode response", errors.New("trailing data after JSON object"))
	}
	if _, ok := root.(map[string]any); !ok {
		return Snapshot{}, NewParseError("decode response", errors.New("top-level value is not an object"))
	}

	return Snapshot{
		WaterTemperatureC:        floatAt(root, "aare", "temperature"),
		WaterTemperatureLabel:    stringAt(root, "aare", "temperature_text"),
		WaterForecast2hC:         floatAt(root, "aare", "forecast2h"),
		WaterForecast2hLabel:     stringAt(root, "aare", "forecast2h_text"),
		FlowCubicMetersPerSecond: floatAt(root, "aare", "flow"),
		FlowLabel:                stringAt(root, "aare", "flow_text"),
		ChannelOpen:              boolAt(root, "bueber", "state_open_flag"),
		AirTemperatureC:          floatAt(root, "weather", "current", "tt"),
		DayForecast:              dayForecastAt(root, "weather", "today"),
		LocationLabel:            firstNonEmpty(stringAt(root, "aare", "location_long"), stringAt(root, "aare", "location")),
		FetchedAt:                Now(),
	}, nil
}

// dayForecastAt reads today's forecast. The API keys day-parts as v (Vormittag),
// n (Nachmittag) and a (Abend).
func dayForecastAt(root any, path ...string) *DayForecast {
	today, ok := lookup(root, path...)
	if !ok {
		return nil
	}
	if _, isObj := today.(map[string]any); !isObj {
		return nil
	}
	return &DayForecast{
		Morning:   forecastPointAt(today, "v"),
		Afternoon: forecastPointAt(today, "n"),
		Evening:   forecastPointAt(today, "a"),
	}
}

func forecastPointAt(v any, path ...string) *ForecastPoint {
	raw, ok := lookup(v, path...)
	if !ok {
		return nil
	}
	if _, isObj := raw.(map[string]any); !isObj {
		return nil
	}
	return &ForecastPoint{
		Description:     stringAt(raw, "syt"),
		TemperatureC:    floatAt(raw, "tt"),
		WeatherCode:     intAt(raw, "sy"),
		RainRiskPercent: intAt(raw, "rrisk"),
	}
}

// lookup walks path through nested objects. It reports false for a missing
// key, an explicit null, or a non-object along the way.
func lookup(v any, path ...string) (any, bool) {
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

func floatAt(v any, path ...string) *float64 {
	raw, ok := lookup(v, path...)
	if !ok {
		return nil
	}
	n, ok := raw.(json.Number)
	if !ok {
		return nil
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// intAt rounds to the nearest integer. Values outside the int32 range are
// treated as absent.
func intAt(v any, path ...string) *int {
	f := floatAt(v, path...)
	if f == nil {
		return nil
	}
	r := math.Round(*f)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return nil
	}
	i := int(r)
	return &i
}

func stringAt(v any, path ...string) string {
	raw, ok := lookup(v, path...)
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// boolAt accepts JSON booleans and the numeric 0/1 flags some endpoints emit.
func boolAt(v any, path ...string) *bool {
	raw, ok := lookup(v, path...)
	if !ok {
		return nil
	}
	switch b := raw.(type) {
	case bool:
		return &b
	case json.Number:
		f, err := b.Float64()
		if err != nil {
			return nil
		}
		switch f {
		case 0:
			open := false
			return &open
		case 1:
			open := true
			return &open
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
