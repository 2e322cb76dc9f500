package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/selvatuple/thumb-race-rally/internal/shared/logger"
	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
	"github.com/selvatuple/thumb-race-rally/internal/simulation"
	"github.com/selvatuple/thumb-race-rally/internal/viewport"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)
	return screen
}

func newGame(t *testing.T) (*Game, tcell.SimulationScreen) {
	t.Helper()
	screen := newScreen(t)
	race := simulation.NewRace(simulation.DefaultTuning(), viewport.DefaultSettings())
	return NewGame(screen, race, 16*time.Millisecond, logger.Nop()), screen
}

func rowText(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(ch)
	}
	return b.String()
}

func screenText(screen tcell.Screen) string {
	_, h := screen.Size()
	rows := make([]string, 0, h)
	for y := 0; y < h; y++ {
		rows = append(rows, rowText(screen, y))
	}
	return strings.Join(rows, "\n")
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		ev   *tcell.EventKey
		want Action
	}{
		{key('w'), Action{Kind: ActionPush, Lane: types.LaneA}},
		{key('s'), Action{Kind: ActionBack, Lane: types.LaneA}},
		{key('a'), Action{Kind: ActionSteer, Lane: types.LaneA, Direction: types.SteerLeft}},
		{key('D'), Action{Kind: ActionSteer, Lane: types.LaneA, Direction: types.SteerRight}},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), Action{Kind: ActionPush, Lane: types.LaneB}},
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), Action{Kind: ActionBack, Lane: types.LaneB}},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), Action{Kind: ActionSteer, Lane: types.LaneB, Direction: types.SteerLeft}},
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), Action{Kind: ActionSteer, Lane: types.LaneB, Direction: types.SteerRight}},
		{key(' '), Action{Kind: ActionGo}},
		{key('m'), Action{Kind: ActionMenu}},
		{key('q'), Action{Kind: ActionQuit}},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), Action{Kind: ActionQuit}},
		{key('x'), Action{}},
		{tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), Action{}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Translate(tc.ev), tc.ev.Name())
	}
}

func TestStats(t *testing.T) {
	lane := types.LaneSnapshot{Lane: types.LaneA, Distance: 42.26, PushCount: 14}
	require.Equal(t, "Lane A   42.3 m   42%  pushes 14", Stats("Lane A", lane, 100))
}

// raceLaneB pushes lane B until it wins.
func raceLaneB(t *testing.T, g *Game) {
	t.Helper()
	up := tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	for range 400 {
		g.HandleEvent(up)
		g.Frame(100 * time.Millisecond)
		if g.race.Phase().Phase == types.PhaseFinished {
			return
		}
	}
	t.Fatal("lane b never finished")
}

func TestGame_MenuToRaceToWin(t *testing.T) {
	g, screen := newGame(t)

	g.Frame(0)
	require.Contains(t, screenText(screen), "press space to start")

	require.True(t, g.HandleEvent(key(' ')))
	require.Equal(t, types.PhaseRacing, g.race.Phase().Phase)

	require.True(t, g.HandleEvent(key('w')))
	g.Frame(100 * time.Millisecond)
	text := screenText(screen)
	require.Contains(t, text, "Lane A")
	require.Contains(t, text, "pushes 1")
	require.NotContains(t, text, "press space")

	raceLaneB(t, g)
	require.Equal(t, types.PhaseState{Phase: types.PhaseFinished, Winner: types.LaneB}, g.race.Phase())
	require.Contains(t, screenText(screen), "Lane B wins!")

	require.True(t, g.HandleEvent(key(' ')))
	require.Equal(t, types.PhaseRacing, g.race.Phase().Phase)

	require.False(t, g.HandleEvent(key('q')))
}

func TestGame_MenuKeyOnlyOutsideRace(t *testing.T) {
	g, screen := newGame(t)
	g.HandleEvent(key(' '))
	g.HandleEvent(key('m'))
	require.Equal(t, types.PhaseRacing, g.race.Phase().Phase)

	raceLaneB(t, g)
	g.HandleEvent(key('m'))
	require.Equal(t, types.PhaseIdle, g.race.Phase().Phase)

	g.Frame(0)
	require.Contains(t, screenText(screen), "press space to start")
}

func TestRenderer_TirePlacement(t *testing.T) {
	screen := newScreen(t)
	r := NewRenderer(screen, simulation.FinishLine, simulation.LaneWidth)
	m := viewport.New(simulation.FinishLine, viewport.DefaultSettings())

	s := types.RaceSnapshot{
		Phase: types.PhaseState{Phase: types.PhaseRacing},
		Lanes: [2]types.LaneSnapshot{
			{Lane: types.LaneA, Distance: 100, LateralPosition: 0},
			{Lane: types.LaneB, Distance: 0, LateralPosition: simulation.LaneWidth},
		},
	}
	views := [2]types.View{m.Map(100), m.Map(0)}
	r.Draw(s, views)

	// Lane A sits on the finish line at 70%, against the left wall.
	col := r.column(70)
	ch, _, _, _ := screen.GetContent(col, firstLaneY+3)
	require.Equal(t, tireRune, ch)
	ch, _, _, _ = screen.GetContent(col, firstLaneY+4)
	require.Equal(t, finishRune, ch)

	// Lane B is at the start, against the right wall.
	ch, _, _, _ = screen.GetContent(r.column(0), firstLaneY+laneHeight+3+trackRows-1)
	require.Equal(t, tireRune, ch)

	// No finish line in lane B's window yet.
	require.NotContains(t, rowText(screen, firstLaneY+laneHeight+3), string(finishRune))
	require.Contains(t, rowText(screen, firstLaneY+laneHeight+1), "50")
}
