package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the package-level time source behind FetchedAt and the last-updated
// field. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current local time from the package clock.
func Now() time.Time {
	return clock.Now().Local()
}
