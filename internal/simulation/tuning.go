package simulation

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	FinishLine = 100.0 // meters
	LaneWidth  = 100.0 // lateral units, 0 is the left wall
	TickRate   = 60    // fixed steps per second
	MaxFrame   = 250 * time.Millisecond

	TireMass    = 22.7 // a 50 lb tire
	LinearDrag  = 0.02 // fraction of velocity removed per step
	Restitution = 0.3  // lateral wall bounce

	ForwardForce  = 800.0
	BackwardForce = 480.0
	SteerForce    = 1800.0
	PushDuration  = 100 * time.Millisecond
	SteerDuration = 150 * time.Millisecond
)

var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning holds the physical constants of a race. Forces are in
// mass-units * meters / s^2.
type Tuning struct {
	FinishLine    float64       `yaml:"finish_line"`
	LaneWidth     float64       `yaml:"lane_width"`
	TickRate      int           `yaml:"tick_rate"`
	MaxFrame      time.Duration `yaml:"max_frame"`
	Mass          float64       `yaml:"mass"`
	LinearDrag    float64       `yaml:"linear_drag"`
	Restitution   float64       `yaml:"restitution"`
	ForwardForce  float64       `yaml:"forward_force"`
	BackwardForce float64       `yaml:"backward_force"`
	SteerForce    float64       `yaml:"steer_force"`
	PushDuration  time.Duration `yaml:"push_duration"`
	SteerDuration time.Duration `yaml:"steer_duration"`
}

// DefaultTuning returns constants tuned so one push carries a tire about
// three meters of a hundred meter track.
func DefaultTuning() Tuning {
	return Tuning{
		FinishLine:    FinishLine,
		LaneWidth:     LaneWidth,
		TickRate:      TickRate,
		MaxFrame:      MaxFrame,
		Mass:          TireMass,
		LinearDrag:    LinearDrag,
		Restitution:   Restitution,
		ForwardForce:  ForwardForce,
		BackwardForce: BackwardForce,
		SteerForce:    SteerForce,
		PushDuration:  PushDuration,
		SteerDuration: SteerDuration,
	}
}

// LaneCenter is the lateral rest position.
func (t Tuning) LaneCenter() float64 {
	return t.LaneWidth / 2
}

// StepDuration is the fixed simulation timestep.
func (t Tuning) StepDuration() time.Duration {
	return time.Second / time.Duration(t.TickRate)
}

func (t Tuning) Validate() error {
	switch {
	case !positive(t.FinishLine):
		return fmt.Errorf("%w: finish_line must be positive", ErrInvalidTuning)
	case !positive(t.LaneWidth):
		return fmt.Errorf("%w: lane_width must be positive", ErrInvalidTuning)
	case t.TickRate <= 0 || t.TickRate > 1000:
		return fmt.Errorf("%w: tick_rate must be in 1..1000", ErrInvalidTuning)
	case t.MaxFrame < t.StepDuration():
		return fmt.Errorf("%w: max_frame must cover at least one step", ErrInvalidTuning)
	case !positive(t.Mass):
		return fmt.Errorf("%w: mass must be positive", ErrInvalidTuning)
	case !finite(t.LinearDrag) || t.LinearDrag < 0 || t.LinearDrag >= 1:
		return fmt.Errorf("%w: linear_drag must be in [0, 1)", ErrInvalidTuning)
	case !finite(t.Restitution) || t.Restitution < 0 || t.Restitution > 1:
		return fmt.Errorf("%w: restitution must be in [0, 1]", ErrInvalidTuning)
	case !positive(t.ForwardForce) || !positive(t.BackwardForce) || !positive(t.SteerForce):
		return fmt.Errorf("%w: forces must be positive", ErrInvalidTuning)
	case t.PushDuration <= 0 || t.SteerDuration <= 0:
		return fmt.Errorf("%w: force durations must be positive", ErrInvalidTuning)
	}
	return nil
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
