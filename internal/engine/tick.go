// Package engine drives the market day by day: forecast, capacity roll,
// allocation, production, damage, purchase, observation.
package engine

import (
	"log/slog"
)

// DaysPerWeek sets the weekly callback cadence.
const DaysPerWeek = 7

// Clock steps a fixed horizon of days. It runs to completion in the
// calling goroutine; there is no pacing and no pause.
type Clock struct {
	Day     int // Last completed day (0 before the first)
	Horizon int // Final day

	// Callbacks, populated during setup.
	OnDay   func(day int) // Every day
	OnWeek  func(day int) // Every DaysPerWeek days
	OnFinal func(day int) // Once, after OnDay of the final day
}

// NewClock creates a clock for horizon days.
func NewClock(horizon int) *Clock {
	return &Clock{Horizon: horizon}
}

// Done reports whether the horizon has been reached.
func (c *Clock) Done() bool {
	return c.Day >= c.Horizon
}

// Run steps until the horizon.
func (c *Clock) Run() {
	slog.Info("clock started", "day", c.Day, "horizon", c.Horizon)
	for !c.Done() {
		c.Step()
	}
	slog.Info("clock stopped", "day", c.Day)
}

// Step advances one day. It is a no-op once the horizon is reached.
func (c *Clock) Step() {
	if c.Done() {
		return
	}
	c.Day++

	if c.OnDay != nil {
		c.OnDay(c.Day)
	}

	if c.Day%DaysPerWeek == 0 && c.OnWeek != nil {
		c.OnWeek(c.Day)
	}

	if c.Day == c.Horizon && c.OnFinal != nil {
		c.OnFinal(c.Day)
	}
}
