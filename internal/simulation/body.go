package simulation

import "github.com/selvatuple/thumb-race-rally/internal/shared/types"

// Body is the single point mass simulated in one lane.
type Body struct {
	Position types.Vec2
	Velocity types.Vec2

	Mass        float64
	LinearDrag  float64
	Restitution float64

	laneWidth  float64
	finishLine float64
	finished   bool
}

// NewBody creates a body at the start line, centered in its lane.
func NewBody(t Tuning) *Body {
	b := &Body{
		Mass:        t.Mass,
		LinearDrag:  t.LinearDrag,
		Restitution: t.Restitution,
		laneWidth:   t.LaneWidth,
		finishLine:  t.FinishLine,
	}
	b.Reset()
	return b
}

// Reset puts the body back on the start line at rest.
func (b *Body) Reset() {
	b.Position = types.Vec2{Forward: 0, Lateral: b.laneWidth / 2}
	b.Velocity = types.Vec2{}
	b.finished = false
}

// Finished reports whether the body has reached the finish line.
func (b *Body) Finished() bool {
	return b.finished
}

// Step integrates one fixed timestep of dt seconds under force.
func (b *Body) Step(force types.Vec2, dt float64) {
	if b.finished {
		return
	}

	b.Velocity.Forward += force.Forward / b.Mass * dt
	b.Velocity.Lateral += force.Lateral / b.Mass * dt

	keep := 1 - b.LinearDrag
	b.Velocity.Forward *= keep
	b.Velocity.Lateral *= keep

	b.Position.Forward += b.Velocity.Forward * dt
	b.Position.Lateral += b.Velocity.Lateral * dt

	b.clampBounds()
}

func (b *Body) clampBounds() {
	if b.Position.Lateral < 0 {
		b.Position.Lateral = 0
		if b.Velocity.Lateral < 0 {
			b.Velocity.Lateral *= -b.Restitution
		}
	}
	if b.Position.Lateral > b.laneWidth {
		b.Position.Lateral = b.laneWidth
		if b.Velocity.Lateral > 0 {
			b.Velocity.Lateral *= -b.Restitution
		}
	}

	// No reverse past the start line.
	if b.Position.Forward < 0 {
		b.Position.Forward = 0
		if b.Velocity.Forward < 0 {
			b.Velocity.Forward = 0
		}
	}
	if b.Position.Forward >= b.finishLine {
		b.Position.Forward = b.finishLine
		b.Velocity.Forward = 0
		b.finished = true
	}
}
