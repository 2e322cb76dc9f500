package simulation

import (
	"testing"
	"time"
)

func TestStepperCarriesRemainder(t *testing.T) {
	s := NewStepper(10*time.Millisecond, time.Second)
	count := func(time.Duration, float64) bool { return true }

	if n := s.Advance(25*time.Millisecond, count); n != 2 {
		t.Fatalf("expected 2 steps, got=%d", n)
	}
	if n := s.Advance(5*time.Millisecond, count); n != 1 {
		t.Fatalf("expected remainder to complete a step, got=%d", n)
	}
	if s.Now() != 30*time.Millisecond || s.Steps() != 3 {
		t.Fatalf("unexpected clock: now=%v steps=%d", s.Now(), s.Steps())
	}
}

func TestStepperSameStepsRegardlessOfCallerRate(t *testing.T) {
	coarse := NewStepper(defaultStep(), time.Second)
	fine := NewStepper(defaultStep(), time.Second)
	noop := func(time.Duration, float64) bool { return true }

	for range 10 {
		coarse.Advance(100*time.Millisecond, noop)
	}
	for range 125 {
		fine.Advance(8*time.Millisecond, noop)
	}
	if coarse.Steps() != fine.Steps() {
		t.Fatalf("expected equal step counts, coarse=%d fine=%d", coarse.Steps(), fine.Steps())
	}
}

func TestStepperCapsLongFrames(t *testing.T) {
	s := NewStepper(10*time.Millisecond, 50*time.Millisecond)
	n := s.Advance(10*time.Second, func(time.Duration, float64) bool { return true })
	if n != 5 {
		t.Fatalf("expected frame capped to 5 steps, got=%d", n)
	}
}

func TestStepperStopDiscardsRemainder(t *testing.T) {
	s := NewStepper(10*time.Millisecond, time.Second)
	calls := 0
	n := s.Advance(100*time.Millisecond, func(time.Duration, float64) bool {
		calls++
		return calls < 3
	})
	if n != 3 {
		t.Fatalf("expected stepping to stop after 3, got=%d", n)
	}
	if n := s.Advance(5*time.Millisecond, func(time.Duration, float64) bool { return true }); n != 0 {
		t.Fatalf("expected remainder discarded, got=%d steps", n)
	}
}

func TestStepperPassesStepStartAndDT(t *testing.T) {
	s := NewStepper(20*time.Millisecond, time.Second)
	var starts []time.Duration
	s.Advance(60*time.Millisecond, func(now time.Duration, dt float64) bool {
		if dt != 0.02 {
			t.Fatalf("expected dt=0.02, got=%v", dt)
		}
		starts = append(starts, now)
		return true
	})
	want := []time.Duration{0, 20 * time.Millisecond, 40 * time.Millisecond}
	if len(starts) != len(want) {
		t.Fatalf("expected %d steps, got=%d", len(want), len(starts))
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Fatalf("step %d: expected start %v, got=%v", i, want[i], starts[i])
		}
	}
}

func defaultStep() time.Duration {
	return DefaultTuning().StepDuration()
}
