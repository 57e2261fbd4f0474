// Package settings holds the indicator settings and notifies subscribers when
// they change.
package settings

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/aareguru-monitor/internal/domain"
)

// Interval bounds in minutes.
const (
	MinIntervalMinutes = 1
	MaxIntervalMinutes = 300
)

// Key names a single setting.
type Key string

const (
	KeyCity           Key = "city"
	KeyUpdateInterval Key = "update-interval"
	KeyShowWater      Key = "show-water"
	KeyShowFlow       Key = "show-flow"
	KeyShowChannel    Key = "show-channel"
	KeyShowWeather    Key = "show-weather"
)

// SectionKey returns the visibility key for sec.
func SectionKey(sec domain.Section) Key {
	return Key("show-" + string(sec))
}

// Section returns the section a show-* key controls.
func (k Key) Section() (domain.Section, bool) {
	name, ok := strings.CutPrefix(string(k), "show-")
	if !ok {
		return "", false
	}
	sec := domain.Section(name)
	return sec, slices.Contains(domain.AllSections, sec)
}

// KnownLocations are the stations offered by the Aare.guru API.
var KnownLocations = []string{
	"bern", "thun", "brienz", "interlaken", "hagneck", "biel", "aarau",
	"olten", "brugg", "untersiggenthal", "koblenz", "rekingen", "rheinfelden",
}

// IsKnownLocation reports whether id is one of KnownLocations.
func IsKnownLocation(id string) bool {
	return slices.Contains(KnownLocations, id)
}

// Change describes one effective settings change.
type Change struct {
	Key    Key
	Config domain.PollConfig
}

// Store provides the current settings and change notifications.
type Store interface {
	Current() domain.PollConfig
	// Subscribe registers fn for every effective change. The returned
	// function removes the subscription.
	Subscribe(fn func(Change)) (unsubscribe func())
}

// MemoryStore is an in-process Store. Subscribers are called synchronously
// on the goroutine that made the change.
type MemoryStore struct {
	mu     sync.Mutex
	cfg    domain.PollConfig
	subs   map[int]func(Change)
	nextID int
	logger *slog.Logger
}

// NewMemoryStore returns a store seeded with initial.
func NewMemoryStore(initial domain.PollConfig, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	initial.Visible = initial.Visible.Clone()
	s := &MemoryStore{
		cfg:    initial,
		subs:   make(map[int]func(Change)),
		logger: logger,
	}
	s.warnUnknown(initial.LocationID)
	return s
}

// Current returns a copy of the current settings.
func (s *MemoryStore) Current() domain.PollConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe implements Store.
func (s *MemoryStore) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// SetLocation changes the location id. Surrounding whitespace is dropped.
func (s *MemoryStore) SetLocation(id string) {
	id = strings.TrimSpace(id)
	s.update(func(cfg *domain.PollConfig) []Key {
		if cfg.LocationID == id {
			return nil
		}
		cfg.LocationID = id
		return []Key{KeyCity}
	})
	s.warnUnknown(id)
}

// SetIntervalMinutes changes the poll interval.
func (s *MemoryStore) SetIntervalMinutes(minutes int) error {
	if err := validateInterval(minutes); err != nil {
		return err
	}
	s.update(func(cfg *domain.PollConfig) []Key {
		d := time.Duration(minutes) * time.Minute
		if cfg.PollInterval == d {
			return nil
		}
		cfg.PollInterval = d
		return []Key{KeyUpdateInterval}
	})
	return nil
}

// SetSectionVisible shows or hides sec.
func (s *MemoryStore) SetSectionVisible(sec domain.Section, visible bool) {
	s.update(func(cfg *domain.PollConfig) []Key {
		if cfg.Visible.Has(sec) == visible {
			return nil
		}
		setVisible(cfg, sec, visible)
		return []Key{SectionKey(sec)}
	})
}

// Apply sets every value present in v. Nothing is changed when v is invalid.
// Subscribers see one Change per changed key, in key order.
func (s *MemoryStore) Apply(v Values) error {
	if v.UpdateInterval != nil {
		if err := validateInterval(*v.UpdateInterval); err != nil {
			return err
		}
	}

	var location string
	s.update(func(cfg *domain.PollConfig) []Key {
		var changed []Key
		if v.City != nil {
			location = strings.TrimSpace(*v.City)
			if cfg.LocationID != location {
				cfg.LocationID = location
				changed = append(changed, KeyCity)
			}
		}
		if v.UpdateInterval != nil {
			d := time.Duration(*v.UpdateInterval) * time.Minute
			if cfg.PollInterval != d {
				cfg.PollInterval = d
				changed = append(changed, KeyUpdateInterval)
			}
		}
		for _, sv := range v.visibility() {
			if cfg.Visible.Has(sv.section) != sv.visible {
				setVisible(cfg, sv.section, sv.visible)
				changed = append(changed, SectionKey(sv.section))
			}
		}
		return changed
	})
	if v.City != nil {
		s.warnUnknown(location)
	}
	return nil
}

// update applies fn under the lock and notifies subscribers of each key it
// reports, after releasing the lock.
func (s *MemoryStore) update(fn func(cfg *domain.PollConfig) []Key) {
	s.mu.Lock()
	next := s.snapshot()
	keys := fn(&next)
	if len(keys) == 0 {
		s.mu.Unlock()
		return
	}
	s.cfg = next
	cfg := s.snapshot()
	subs := make([]func(Change), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.logger.Info("setting changed", "key", string(key), "location", cfg.LocationID)
		for _, fn := range subs {
			fn(Change{Key: key, Config: clonePollConfig(cfg)})
		}
	}
}

func (s *MemoryStore) snapshot() domain.PollConfig {
	return clonePollConfig(s.cfg)
}

func (s *MemoryStore) warnUnknown(id string) {
	if id != "" && !IsKnownLocation(id) {
		s.logger.Warn("unknown location id", "location", id)
	}
}

func clonePollConfig(cfg domain.PollConfig) domain.PollConfig {
	cfg.Visible = cfg.Visible.Clone()
	return cfg
}

func setVisible(cfg *domain.PollConfig, sec domain.Section, visible bool) {
	if cfg.Visible == nil {
		cfg.Visible = domain.SectionSet{}
	}
	if visible {
		cfg.Visible[sec] = true
	} else {
		delete(cfg.Visible, sec)
	}
}

func validateInterval(minutes int) error {
	if minutes < MinIntervalMinutes || minutes > MaxIntervalMinutes {
		return fmt.Errorf("update interval %d out of range %d-%d minutes", minutes, MinIntervalMinutes, MaxIntervalMinutes)
	}
	return nil
}
