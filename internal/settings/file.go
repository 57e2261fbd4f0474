package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/aareguru-monitor/internal/domain"
)

// Values is the settings file document. Absent keys leave the current value
// untouched.
type Values struct {
	City           *string `yaml:"city"`
	UpdateInterval *int    `yaml:"update-interval"`
	ShowWater      *bool   `yaml:"show-water"`
	ShowFlow       *bool   `yaml:"show-flow"`
	ShowChannel    *bool   `yaml:"show-channel"`
	ShowWeather    *bool   `yaml:"show-weather"`
}

type sectionValue struct {
	section domain.Section
	visible bool
}

// visibility lists the show-* values that are set, in display order.
func (v Values) visibility() []sectionValue {
	flags := map[domain.Section]*bool{
		domain.SectionWater:   v.ShowWater,
		domain.SectionFlow:    v.ShowFlow,
		domain.SectionChannel: v.ShowChannel,
		domain.SectionWeather: v.ShowWeather,
	}
	var out []sectionValue
	for _, sec := range domain.AllSections {
		if f := flags[sec]; f != nil {
			out = append(out, sectionValue{section: sec, visible: *f})
		}
	}
	return out
}

// LoadFile reads a YAML settings file.
func LoadFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Values{}, fmt.Errorf("read settings file: %w", err)
	}
	var v Values
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Values{}, fmt.Errorf("parse settings file: %w", err)
	}
	return v, nil
}

// Reload reads path and applies it to s.
func Reload(s *MemoryStore, path string) error {
	v, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := s.Apply(v); err != nil {
		return fmt.Errorf("apply settings file: %w", err)
	}
	return nil
}
