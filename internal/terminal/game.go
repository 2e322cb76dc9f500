package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/selvatuple/thumb-race-rally/internal/shared/logger"
	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
	"github.com/selvatuple/thumb-race-rally/internal/simulation"
)

// Game runs a race on a local screen.
type Game struct {
	screen   tcell.Screen
	race     *simulation.Race
	renderer *Renderer
	log      *logger.Logger
	frame    time.Duration
}

func NewGame(screen tcell.Screen, race *simulation.Race, frame time.Duration, log *logger.Logger) *Game {
	t := race.Tuning()
	race.SetEventSink(LogSink{Log: log})
	return &Game{
		screen:   screen,
		race:     race,
		renderer: NewRenderer(screen, t.FinishLine, t.LaneWidth),
		log:      log,
		frame:    frame,
	}
}

// Run draws frames until the player quits or ctx is cancelled.
func (g *Game) Run(ctx context.Context) {
	ticker := time.NewTicker(g.frame)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	g.Frame(0)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eventChan:
			if !g.HandleEvent(ev) {
				return
			}
		case now := <-ticker.C:
			g.Frame(now.Sub(last))
			last = now
		}
	}
}

// HandleEvent reacts to one terminal event and reports false on quit.
func (g *Game) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		ok, err := Dispatch(g.race, Translate(ev))
		if err != nil {
			g.log.Warnw("action rejected", "key", ev.Name(), "err", err)
		}
		return ok
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// Frame advances the race by elapsed and redraws.
func (g *Game) Frame(elapsed time.Duration) {
	if elapsed > 0 {
		if err := g.race.Tick(elapsed); err != nil {
			g.log.Errorw("tick failed", "err", err)
		}
	}
	s := g.race.Snapshot()
	g.renderer.Draw(s, g.race.Views(s))
	g.screen.Show()
}

// LogSink writes race events to a logger.
type LogSink struct {
	Log *logger.Logger
}

func (s LogSink) Record(ev types.RaceEvent) {
	if ev.Type == "race_finished" {
		s.Log.Infow("race finished", "race_id", ev.RaceID, "winner", ev.Lane, "race_ms", ev.ElapsedMS)
		return
	}
	s.Log.Debugw("race event", "type", ev.Type, "race_id", ev.RaceID, "lane", ev.Lane, "race_ms", ev.ElapsedMS)
}
