package types

import "time"

// Vec2 is a lane-relative vector: Forward is race progress in meters,
// Lateral is the offset across the lane.
type Vec2 struct {
	Forward float64 `json:"forward" msgpack:"forward"`
	Lateral float64 `json:"lateral" msgpack:"lateral"`
}

// LaneID identifies one of the two race lanes.
type LaneID string

const (
	LaneA LaneID = "a"
	LaneB LaneID = "b"
)

// Lanes lists lanes in finish evaluation order.
var Lanes = [2]LaneID{LaneA, LaneB}

// Phase is the race state machine phase.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRacing   Phase = "racing"
	PhaseFinished Phase = "finished"
)

// SteerDirection is the sign of a lateral push.
type SteerDirection string

const (
	SteerLeft  SteerDirection = "left"
	SteerRight SteerDirection = "right"
)

// PhaseState pairs the phase with the winner, set only when Finished.
type PhaseState struct {
	Phase  Phase  `json:"phase" msgpack:"phase"`
	Winner LaneID `json:"winner,omitempty" msgpack:"winner,omitempty"`
}

// LaneSnapshot is the read-only view of one lane.
type LaneSnapshot struct {
	Lane            LaneID  `json:"lane" msgpack:"lane"`
	Distance        float64 `json:"distance" msgpack:"distance"`
	LateralPosition float64 `json:"lateral_position" msgpack:"lateral_position"`
	PushCount       int     `json:"push_count" msgpack:"push_count"`
}

// RaceSnapshot is the full race state handed to presentation layers.
type RaceSnapshot struct {
	RaceID    string          `json:"race_id" msgpack:"race_id"`
	Step      uint64          `json:"step" msgpack:"step"`
	ElapsedMS int64           `json:"elapsed_ms" msgpack:"elapsed_ms"`
	Phase     PhaseState      `json:"phase" msgpack:"phase"`
	Lanes     [2]LaneSnapshot `json:"lanes" msgpack:"lanes"`
}

// View is the render-ready viewport projection of one lane.
type View struct {
	ViewportStart              float64   `json:"viewport_start" msgpack:"viewport_start"`
	ViewportEnd                float64   `json:"viewport_end" msgpack:"viewport_end"`
	RelativePosition           float64   `json:"relative_position" msgpack:"relative_position"`
	Markers                    []float64 `json:"markers" msgpack:"markers"`
	FinishLineVisible          bool      `json:"finish_line_visible" msgpack:"finish_line_visible"`
	FinishLineRelativePosition float64   `json:"finish_line_relative_position" msgpack:"finish_line_relative_position"`
}

// RaceEvent tracks state changes worth UI/audio feedback.
type RaceEvent struct {
	Type      string `json:"type" msgpack:"type"` // race_started|push|pull_back|steer|race_finished|race_reset
	RaceID    string `json:"race_id,omitempty" msgpack:"race_id,omitempty"`
	Lane      LaneID `json:"lane,omitempty" msgpack:"lane,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms" msgpack:"elapsed_ms"`
}

// ClientEnvelope is sent from a presentation client to the race host.
type ClientEnvelope struct {
	Type      string         `json:"type" msgpack:"type"` // start|restart|reset|push|back|steer|ping
	Lane      LaneID         `json:"lane,omitempty" msgpack:"lane,omitempty"`
	Direction SteerDirection `json:"direction,omitempty" msgpack:"direction,omitempty"`
}

// ServerEnvelope is sent from the race host to clients.
type ServerEnvelope struct {
	Type     string        `json:"type" msgpack:"type"` // welcome|state|pong|error
	Role     string        `json:"role,omitempty" msgpack:"role,omitempty"`
	State    *RaceSnapshot `json:"state,omitempty" msgpack:"state,omitempty"`
	Views    []View        `json:"views,omitempty" msgpack:"views,omitempty"`
	ServerMS int64         `json:"server_ms,omitempty" msgpack:"server_ms,omitempty"`
	Message  string        `json:"message,omitempty" msgpack:"message,omitempty"`
}

// TelemetryEvent is a race event as recorded by the telemetry store.
type TelemetryEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	RaceID    string    `json:"race_id,omitempty"`
	Lane      LaneID    `json:"lane,omitempty"`
	RaceMS    int64     `json:"race_ms"`
	Timestamp time.Time `json:"timestamp"`
}
