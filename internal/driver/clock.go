package driver

// Clock tracks the physics step count and simulated time for one run.
// Time is recomputed as Step*dt on every advance rather than accumulated,
// so it cannot drift from the step count over long runs.
type Clock struct {
	Step int
	Time float64
	dt   float64
}

func NewClock(dt float64) *Clock {
	return &Clock{dt: dt}
}

func (c *Clock) Dt() float64 { return c.dt }

// Advance moves the clock by exactly one physics step. It is called once
// per step and never rewinds.
func (c *Clock) Advance() {
	c.Step++
	c.Time = float64(c.Step) * c.dt
}
