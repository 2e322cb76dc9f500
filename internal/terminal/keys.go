package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
	"github.com/selvatuple/thumb-race-rally/internal/simulation"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionQuit
	// ActionGo starts from the menu or plays again after a finish.
	ActionGo
	ActionMenu
	ActionPush
	ActionBack
	ActionSteer
)

type Action struct {
	Kind      ActionKind
	Lane      types.LaneID
	Direction types.SteerDirection
}

// Translate maps a key press to an action. Lane A uses w/s/a/d, lane B the
// arrow keys.
func Translate(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Action{Kind: ActionQuit}
	case tcell.KeyUp:
		return Action{Kind: ActionPush, Lane: types.LaneB}
	case tcell.KeyDown:
		return Action{Kind: ActionBack, Lane: types.LaneB}
	case tcell.KeyLeft:
		return Action{Kind: ActionSteer, Lane: types.LaneB, Direction: types.SteerLeft}
	case tcell.KeyRight:
		return Action{Kind: ActionSteer, Lane: types.LaneB, Direction: types.SteerRight}
	case tcell.KeyEnter:
		return Action{Kind: ActionGo}
	case tcell.KeyRune:
	default:
		return Action{}
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return Action{Kind: ActionQuit}
	case ' ':
		return Action{Kind: ActionGo}
	case 'm', 'M':
		return Action{Kind: ActionMenu}
	case 'w', 'W':
		return Action{Kind: ActionPush, Lane: types.LaneA}
	case 's', 'S':
		return Action{Kind: ActionBack, Lane: types.LaneA}
	case 'a', 'A':
		return Action{Kind: ActionSteer, Lane: types.LaneA, Direction: types.SteerLeft}
	case 'd', 'D':
		return Action{Kind: ActionSteer, Lane: types.LaneA, Direction: types.SteerRight}
	}
	return Action{}
}

// Dispatch applies a to the race. It reports false when the player quits.
func Dispatch(r *simulation.Race, a Action) (bool, error) {
	switch a.Kind {
	case ActionQuit:
		return false, nil
	case ActionGo:
		switch r.Phase().Phase {
		case types.PhaseIdle:
			r.Start()
		case types.PhaseFinished:
			r.Restart()
		}
	case ActionMenu:
		if r.Phase().Phase != types.PhaseRacing {
			r.ResetToIdle()
		}
	case ActionPush:
		return true, r.ApplyForward(a.Lane)
	case ActionBack:
		return true, r.ApplyBackward(a.Lane)
	case ActionSteer:
		return true, r.ApplySteer(a.Lane, a.Direction)
	}
	return true, nil
}
