package server

import (
	"context"
	"errors"
	"time"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
	"github.com/selvatuple/thumb-race-rally/internal/simulation"
)

func (s *Server) handleMessage(c *client, in types.ClientEnvelope) {
	if in.Type == "ping" {
		s.sendEnvelope(c, types.ServerEnvelope{Type: "pong", ServerMS: time.Now().UTC().UnixMilli()})
		return
	}
	if !isControl(in.Type) {
		s.sendError(c, "unsupported_message_type")
		return
	}
	if !s.isController(c) {
		s.sendError(c, "read_only")
		return
	}

	var err error
	switch in.Type {
	case "start":
		s.race.Start()
	case "restart":
		s.race.Restart()
	case "reset":
		s.race.ResetToIdle()
	case "push":
		err = s.race.ApplyForward(in.Lane)
	case "back":
		err = s.race.ApplyBackward(in.Lane)
	case "steer":
		err = s.race.ApplySteer(in.Lane, in.Direction)
	}

	switch {
	case errors.Is(err, simulation.ErrUnknownLane):
		s.sendError(c, "unknown_lane")
	case errors.Is(err, simulation.ErrInvalidDirection):
		s.sendError(c, "invalid_direction")
	case err != nil:
		s.log.Warnw("action rejected", "client", c.id, "type", in.Type, "err", err)
		s.sendError(c, "rejected")
	}
}

func isControl(typ string) bool {
	switch typ {
	case "start", "restart", "reset", "push", "back", "steer":
		return true
	}
	return false
}

// runSimulationLoop feeds measured wall time into the race. The race splits
// it into fixed steps, so the loop rate only affects latency.
func (s *Server) runSimulationLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.LoopRate))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if elapsed < 0 {
				continue
			}
			if err := s.race.Tick(elapsed); err != nil {
				s.log.Errorw("tick failed", "err", err)
			}
			s.logPhaseChange()
		}
	}
}

func (s *Server) logPhaseChange() {
	p := s.race.Phase()
	if p == s.lastPhase {
		return
	}
	s.lastPhase = p
	if p.Phase == types.PhaseFinished {
		s.log.Infow("race finished", "winner", p.Winner)
		return
	}
	s.log.Infow("race phase changed", "phase", p.Phase)
}

func (s *Server) runReplicationLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.ReplicationRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcastState(false)
		}
	}
}

// broadcastState sends the current state to every client. Unless force is
// set, a state identical to the last broadcast is skipped.
func (s *Server) broadcastState(force bool) {
	state := s.race.Snapshot()
	digest := simulation.Digest(state)
	if !force && digest == s.lastDigest {
		return
	}
	s.lastDigest = digest

	views := s.race.Views(state)
	env := types.ServerEnvelope{
		Type:     "state",
		State:    &state,
		Views:    views[:],
		ServerMS: time.Now().UTC().UnixMilli(),
	}

	s.mu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	encoded := make(map[string]outbound, 2)
	for _, c := range targets {
		msg, ok := encoded[c.codec.Name()]
		if !ok {
			payload, err := c.codec.Marshal(env)
			if err != nil {
				s.log.Errorw("marshal state failed", "codec", c.codec.Name(), "err", err)
				continue
			}
			msg = outbound{kind: c.codec.MessageType(), payload: payload}
			encoded[c.codec.Name()] = msg
		}
		s.enqueue(c, msg)
	}
}
