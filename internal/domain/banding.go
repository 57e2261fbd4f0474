package domain

import "math"

// Band is one tier of a Banding: values at or above Threshold, up to the next
// band's threshold, belong to it.
type Band struct {
	Threshold float64
	ID        string
}

// Banding is an ascending table of bands. The first band is unbounded below
// and the last unbounded above; a value exactly on a threshold belongs to the
// band that starts there.
type Banding []Band

// BandKind names which banding a band ID came from so decorators can pick
// symbols per scale.
type BandKind string

const (
	BandTemperature BandKind = "temperature"
	BandFlow        BandKind = "flow"
	BandRainRisk    BandKind = "rain_risk"
	BandChannel     BandKind = "channel"
)

// Temperature bands, shared by water, 2h forecast and air temperature.
var TemperatureBands = Banding{
	{math.Inf(-1), "freezing"},
	{5, "cold"},
	{12, "cool"},
	{19, "warm"},
	{23, "hot"},
	{27, "very hot"},
}

// FlowBands are in m³/s. 430 is roughly where the Aare in Bern reaches flood
// warning level 3.
var FlowBands = Banding{
	{math.Inf(-1), "low"},
	{100, "normal"},
	{200, "high"},
	{300, "very high"},
	{430, "flood"},
}

// RainRiskBands are in percent.
var RainRiskBands = Banding{
	{math.Inf(-1), "low"},
	{30, "moderate"},
	{60, "high"},
}

// Lookup returns the index and ID of the band containing v. Indexes are
// ordered, so v1 < v2 implies Lookup(v1) index <= Lookup(v2) index.
// NaN falls into the lowest band.
func (b Banding) Lookup(v float64) (int, string) {
	if len(b) == 0 {
		return -1, ""
	}
	if math.IsNaN(v) {
		return 0, b[0].ID
	}
	idx := 0
	for i := 1; i < len(b); i++ {
		if v < b[i].Threshold {
			break
		}
		idx = i
	}
	return idx, b[idx].ID
}
