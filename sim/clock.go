package sim

// Clock tracks virtual simulation time in seconds.
// Trials simulate hours of traffic in milliseconds of wall time, so every
// component reads time from here instead of the system clock.
type Clock struct {
	current float64
}

// NewClock returns a clock starting at time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current simulation time in seconds.
func (c *Clock) Now() float64 {
	return c.current
}

// Advance moves time forward by d seconds. Negative deltas are ignored;
// simulation time never runs backwards.
func (c *Clock) Advance(d float64) {
	if d > 0 {
		c.current += d
	}
}

// Set jumps the clock to t. Used by the event loop, which processes events
// in timestamp order and therefore never moves time backwards.
func (c *Clock) Set(t float64) {
	if t > c.current {
		c.current = t
	}
}
