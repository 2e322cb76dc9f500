package simulation

import "time"

// Stepper turns caller-supplied elapsed time into whole fixed steps.
// Leftover time carries over to the next Advance; elapsed time beyond
// maxFrame is dropped so a stalled caller cannot trigger a burst.
type Stepper struct {
	step     time.Duration
	dt       float64
	maxFrame time.Duration

	accumulator time.Duration
	now         time.Duration
	steps       uint64
}

func NewStepper(step, maxFrame time.Duration) *Stepper {
	return &Stepper{
		step:     step,
		dt:       step.Seconds(),
		maxFrame: maxFrame,
	}
}

// Advance runs fn once per whole step contained in elapsed plus the carried
// remainder. fn receives the race time at the start of the step and dt in
// seconds; returning false stops stepping and discards the remainder.
// It returns the number of steps run.
func (s *Stepper) Advance(elapsed time.Duration, fn func(now time.Duration, dt float64) bool) int {
	if elapsed > s.maxFrame {
		elapsed = s.maxFrame
	}
	s.accumulator += elapsed

	n := 0
	for s.accumulator >= s.step {
		s.accumulator -= s.step
		start := s.now
		s.now += s.step
		s.steps++
		n++
		if !fn(start, s.dt) {
			s.accumulator = 0
			break
		}
	}
	return n
}

// Now is the race clock: the sum of all steps taken.
func (s *Stepper) Now() time.Duration {
	return s.now
}

func (s *Stepper) Steps() uint64 {
	return s.steps
}

// Reset rewinds the race clock to zero.
func (s *Stepper) Reset() {
	s.accumulator = 0
	s.now = 0
	s.steps = 0
}
