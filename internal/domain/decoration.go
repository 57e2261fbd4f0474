package domain

import "strings"

// Decorator turns band IDs and weather codes into display text. It is the
// presentation hook of the projector; the core only decides which band a
// value belongs to.
type Decorator interface {
	// Band renders a band ID of the given kind.
	Band(kind BandKind, id string) string
	// WeatherSymbol renders a weather code, or "" if there is nothing to show.
	WeatherSymbol(code int) string
}

// NewDecorator returns the decorator registered under name. Unknown names fall
// back to PlainDecorator.
func NewDecorator(name string) Decorator {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "emoji":
		return EmojiDecorator{}
	default:
		return PlainDecorator{}
	}
}

// PlainDecorator renders band IDs verbatim and no weather symbols.
type PlainDecorator struct{}

func (PlainDecorator) Band(_ BandKind, id string) string { return id }

func (PlainDecorator) WeatherSymbol(int) string { return "" }

// EmojiDecorator prefixes bands with an emoji.
type EmojiDecorator struct{}

var bandEmoji = map[BandKind]map[string]string{
	BandTemperature: {
		"freezing": "🧊",
		"cold":     "🥶",
		"cool":     "🌊",
		"warm":     "🏊",
		"hot":      "☀️",
		"very hot": "🔥",
	},
	BandFlow: {
		"low":       "💧",
		"normal":    "🌊",
		"high":      "⚠️",
		"very high": "🚨",
		"flood":     "🚨",
	},
	BandRainRisk: {
		"low":      "🌂",
		"moderate": "☂️",
		"high":     "🌧️",
	},
	BandChannel: {
		ChannelOpen:   "🏊‍♀️",
		ChannelClosed: "🚫",
	},
}

func (EmojiDecorator) Band(kind BandKind, id string) string {
	if e, ok := bandEmoji[kind][id]; ok {
		return e + " " + id
	}
	return id
}

// WeatherSymbol maps the API's symbol codes to a coarse emoji. Night codes are
// offset by 100. Unknown codes render nothing.
func (EmojiDecorator) WeatherSymbol(code int) string {
	if code > 100 {
		code -= 100
	}
	switch {
	case code == 1:
		return "☀️"
	case code >= 2 && code <= 4:
		return "🌤️"
	case code == 5:
		return "☁️"
	case code >= 6 && code <= 7, code >= 12 && code <= 13, code >= 23 && code <= 25:
		return "⛈️"
	case code >= 8 && code <= 11, code >= 14 && code <= 16:
		return "🌦️"
	case code >= 17 && code <= 22, code >= 29 && code <= 35:
		return "🌧️"
	case code >= 26 && code <= 28:
		return "🌫️"
	default:
		return ""
	}
}
