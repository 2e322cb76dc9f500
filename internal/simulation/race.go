package simulation

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
	"github.com/selvatuple/thumb-race-rally/internal/viewport"
)

var (
	ErrUnknownLane      = errors.New("unknown lane")
	ErrInvalidElapsed   = errors.New("elapsed time must be finite and non-negative")
	ErrInvalidMagnitude = errors.New("force magnitude must be finite")
	ErrInvalidDirection = errors.New("unknown steer direction")
	ErrInvalidDistance  = errors.New("distance must be finite")
)

// EventSink receives race events as they happen. Record is called with the
// race lock held and must not call back into the Race.
type EventSink interface {
	Record(ev types.RaceEvent)
}

type lane struct {
	id     types.LaneID
	body   *Body
	forces ForceChannel
}

// Race is the authoritative two-lane race: it owns both bodies, their force
// channels, the race clock and the phase machine. All mutation goes
// through its methods.
type Race struct {
	mu      sync.Mutex
	tuning  Tuning
	mapper  viewport.Mapper
	stepper *Stepper
	lanes   [2]*lane
	phase   types.PhaseState
	raceID  string
	sink    EventSink
}

// NewRace creates an idle race. The tuning is expected to be validated.
func NewRace(t Tuning, vs viewport.Settings) *Race {
	r := &Race{
		tuning:  t,
		mapper:  viewport.New(t.FinishLine, vs),
		stepper: NewStepper(t.StepDuration(), t.MaxFrame),
		phase:   types.PhaseState{Phase: types.PhaseIdle},
	}
	for i, id := range types.Lanes {
		r.lanes[i] = &lane{id: id, body: NewBody(t)}
	}
	return r
}

// SetEventSink installs the receiver of race events; nil disables them.
func (r *Race) SetEventSink(sink EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink = sink
}

// Tuning returns the constants the race was built with.
func (r *Race) Tuning() Tuning {
	return r.tuning
}

// Start enters Racing from Idle. In any other phase it does nothing.
func (r *Race) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Phase != types.PhaseIdle {
		return
	}
	r.begin()
}

// Restart resets both lanes and enters Racing from any phase.
func (r *Race) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.begin()
}

// ResetToIdle resets both lanes and returns to Idle from any phase.
func (r *Race) ResetToIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Phase != types.PhaseIdle {
		r.emit("race_reset", "")
	}
	r.resetLanes()
	r.raceID = ""
	r.phase = types.PhaseState{Phase: types.PhaseIdle}
}

func (r *Race) begin() {
	r.resetLanes()
	r.raceID = ksuid.New().String()
	r.phase = types.PhaseState{Phase: types.PhaseRacing}
	r.emit("race_started", "")
}

func (r *Race) resetLanes() {
	r.stepper.Reset()
	for _, l := range r.lanes {
		l.body.Reset()
		l.forces.Reset()
	}
}

// ApplyForward pushes the lane's tire with the configured forward force.
func (r *Race) ApplyForward(id types.LaneID) error {
	return r.ApplyForwardMagnitude(id, r.tuning.ForwardForce)
}

// ApplyBackward pulls the lane's tire back with the configured force.
func (r *Race) ApplyBackward(id types.LaneID) error {
	return r.ApplyBackwardMagnitude(id, r.tuning.BackwardForce)
}

// ApplySteer nudges the lane's tire sideways with the configured force.
func (r *Race) ApplySteer(id types.LaneID, dir types.SteerDirection) error {
	return r.ApplySteerMagnitude(id, dir, r.tuning.SteerForce)
}

// ApplyForwardMagnitude records a forward force of |magnitude| for the push
// duration and counts a push. Outside Racing it is ignored.
func (r *Race) ApplyForwardMagnitude(id types.LaneID, magnitude float64) error {
	if !finite(magnitude) {
		return ErrInvalidMagnitude
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.lane(id)
	if err != nil {
		return err
	}
	if r.phase.Phase != types.PhaseRacing {
		return nil
	}
	l.forces.Drive(math.Abs(magnitude), r.stepper.Now(), r.tuning.PushDuration)
	l.forces.CountPush()
	r.emit("push", id)
	return nil
}

// ApplyBackwardMagnitude records a backward force of |magnitude|.
func (r *Race) ApplyBackwardMagnitude(id types.LaneID, magnitude float64) error {
	if !finite(magnitude) {
		return ErrInvalidMagnitude
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.lane(id)
	if err != nil {
		return err
	}
	if r.phase.Phase != types.PhaseRacing {
		return nil
	}
	l.forces.Drive(-math.Abs(magnitude), r.stepper.Now(), r.tuning.PushDuration)
	r.emit("pull_back", id)
	return nil
}

// ApplySteerMagnitude records a lateral force of |magnitude| toward dir.
func (r *Race) ApplySteerMagnitude(id types.LaneID, dir types.SteerDirection, magnitude float64) error {
	if !finite(magnitude) {
		return ErrInvalidMagnitude
	}
	var sign float64
	switch dir {
	case types.SteerLeft:
		sign = -1
	case types.SteerRight:
		sign = 1
	default:
		return ErrInvalidDirection
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.lane(id)
	if err != nil {
		return err
	}
	if r.phase.Phase != types.PhaseRacing {
		return nil
	}
	l.forces.Steer(sign*math.Abs(magnitude), r.stepper.Now(), r.tuning.SteerDuration)
	r.emit("steer", id)
	return nil
}

// Tick advances the race by elapsed wall-clock time, split into fixed
// steps. Outside Racing it does nothing.
func (r *Race) Tick(elapsed time.Duration) error {
	if elapsed < 0 {
		return ErrInvalidElapsed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase.Phase != types.PhaseRacing {
		return nil
	}
	r.stepper.Advance(elapsed, r.step)
	return nil
}

// TickMillis is Tick for callers that measure time in float milliseconds,
// such as display refresh callbacks.
func (r *Race) TickMillis(ms float64) error {
	if !finite(ms) || ms < 0 {
		return ErrInvalidElapsed
	}
	if ms >= float64(r.tuning.MaxFrame)/float64(time.Millisecond) {
		return r.Tick(r.tuning.MaxFrame)
	}
	return r.Tick(time.Duration(ms * float64(time.Millisecond)))
}

// step integrates both lanes with the same dt, then checks the finish line
// in lane order.
func (r *Race) step(now time.Duration, dt float64) bool {
	for _, l := range r.lanes {
		l.body.Step(l.forces.Sample(now), dt)
	}
	r.detectFinish()
	return r.phase.Phase == types.PhaseRacing
}

// detectFinish declares the first lane, in lane order, at or past the finish
// line the winner. Lane A wins a same-step arrival.
func (r *Race) detectFinish() {
	for _, l := range r.lanes {
		if l.body.Position.Forward < r.tuning.FinishLine {
			continue
		}
		r.phase = types.PhaseState{Phase: types.PhaseFinished, Winner: l.id}
		for _, other := range r.lanes {
			other.forces.Cancel()
		}
		r.emit("race_finished", l.id)
		return
	}
}

// Phase returns the current phase and winner.
func (r *Race) Phase() types.PhaseState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Lane returns a snapshot of one lane.
func (r *Race) Lane(id types.LaneID) (types.LaneSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, err := r.lane(id)
	if err != nil {
		return types.LaneSnapshot{}, err
	}
	return l.snapshot(), nil
}

// Snapshot returns a copy of the whole race state.
func (r *Race) Snapshot() types.RaceSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := types.RaceSnapshot{
		RaceID:    r.raceID,
		Step:      r.stepper.Steps(),
		ElapsedMS: r.stepper.Now().Milliseconds(),
		Phase:     r.phase,
	}
	for i, l := range r.lanes {
		out.Lanes[i] = l.snapshot()
	}
	return out
}

// MapToViewport projects distance onto the lane's scrolling view. It reads
// no race state beyond the lane id check.
func (r *Race) MapToViewport(id types.LaneID, distance float64) (types.View, error) {
	if _, err := r.laneIndex(id); err != nil {
		return types.View{}, err
	}
	if !finite(distance) {
		return types.View{}, ErrInvalidDistance
	}
	return r.mapper.Map(distance), nil
}

// Views maps both lanes of a snapshot.
func (r *Race) Views(s types.RaceSnapshot) [2]types.View {
	var out [2]types.View
	for i, l := range s.Lanes {
		out[i] = r.mapper.Map(l.Distance)
	}
	return out
}

func (r *Race) lane(id types.LaneID) (*lane, error) {
	i, err := r.laneIndex(id)
	if err != nil {
		return nil, err
	}
	return r.lanes[i], nil
}

func (r *Race) laneIndex(id types.LaneID) (int, error) {
	for i, known := range types.Lanes {
		if known == id {
			return i, nil
		}
	}
	return 0, ErrUnknownLane
}

func (r *Race) emit(typ string, id types.LaneID) {
	if r.sink == nil {
		return
	}
	r.sink.Record(types.RaceEvent{
		Type:      typ,
		RaceID:    r.raceID,
		Lane:      id,
		ElapsedMS: r.stepper.Now().Milliseconds(),
	})
}

func (l *lane) snapshot() types.LaneSnapshot {
	return types.LaneSnapshot{
		Lane:            l.id,
		Distance:        l.body.Position.Forward,
		LateralPosition: l.body.Position.Lateral,
		PushCount:       l.forces.Pushes(),
	}
}
