// Package system adapts the wall clock to the notify.Clock interface.
package system

import "time"

// Clock reads the wall clock, normalized to UTC so schedule checks
// convert from one known zone.
type Clock struct{}

// New returns a wall clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
