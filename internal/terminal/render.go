// Package terminal is the local two-player front end: one keyboard, two
// lanes, drawn with tcell.
package terminal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
)

const (
	trackRows   = 5
	laneHeight  = trackRows + 4
	firstLaneY  = 2
	marginX     = 1
	minTrackLen = 10

	tireRune   = 'O'
	finishRune = '#'
	markerRune = '.'
)

var laneNames = map[types.LaneID]string{
	types.LaneA: "Lane A",
	types.LaneB: "Lane B",
}

type Renderer struct {
	screen     tcell.Screen
	finishLine float64
	laneWidth  float64

	title    tcell.Style
	text     tcell.Style
	dim      tcell.Style
	border   tcell.Style
	finish   tcell.Style
	tire     tcell.Style
	laneHues [2]tcell.Style
}

func NewRenderer(screen tcell.Screen, finishLine, laneWidth float64) *Renderer {
	base := tcell.StyleDefault
	return &Renderer{
		screen:     screen,
		finishLine: finishLine,
		laneWidth:  laneWidth,
		title:      base.Foreground(tcell.ColorYellow).Bold(true),
		text:       base,
		dim:        base.Foreground(tcell.ColorGray),
		border:     base.Foreground(tcell.ColorGray),
		finish:     base.Foreground(tcell.ColorWhite).Reverse(true),
		tire:       base.Foreground(tcell.ColorOrange).Bold(true),
		laneHues: [2]tcell.Style{
			base.Foreground(tcell.ColorAqua).Bold(true),
			base.Foreground(tcell.ColorFuchsia).Bold(true),
		},
	}
}

// Draw paints one frame. The caller shows the screen.
func (r *Renderer) Draw(s types.RaceSnapshot, views [2]types.View) {
	r.screen.Clear()
	r.drawText(marginX, 0, "THUMB RACE RALLY", r.title)

	if s.Phase.Phase == types.PhaseIdle {
		r.drawMenu()
		return
	}

	for i := range s.Lanes {
		r.drawLane(firstLaneY+i*laneHeight, i, s.Lanes[i], views[i])
	}

	y := firstLaneY + 2*laneHeight
	if s.Phase.Phase == types.PhaseFinished {
		r.drawText(marginX, y, fmt.Sprintf("%s wins!", laneNames[s.Phase.Winner]), r.title)
		r.drawText(marginX, y+1, "space: play again   m: menu   q: quit", r.dim)
		return
	}
	r.drawText(marginX, y, fmt.Sprintf("time %.1fs", float64(s.ElapsedMS)/1000), r.dim)
	r.drawText(marginX, y+1, "A: w push  s back  a/d steer    B: arrows    q: quit", r.dim)
}

func (r *Renderer) drawMenu() {
	lines := []string{
		fmt.Sprintf("Push your tire down a %g meter lane before the other player does.", r.finishLine),
		"",
		"Lane A   w push   s pull back   a/d steer",
		"Lane B   up push  down pull back  left/right steer",
		"",
		"press space to start, q to quit",
	}
	for i, line := range lines {
		r.drawText(marginX, firstLaneY+i, line, r.text)
	}
}

func (r *Renderer) drawLane(y, idx int, lane types.LaneSnapshot, view types.View) {
	r.drawText(marginX, y, Stats(laneNames[lane.Lane], lane, r.finishLine), r.laneHues[idx])

	width := r.trackLen()
	for x := 0; x < width; x++ {
		r.screen.SetContent(marginX+x, y+2, '-', nil, r.border)
		r.screen.SetContent(marginX+x, y+3+trackRows, '-', nil, r.border)
	}

	span := view.ViewportEnd - view.ViewportStart
	for _, mark := range view.Markers {
		col := r.column((mark - view.ViewportStart) * 100 / span)
		r.drawText(col, y+1, strconv.Itoa(int(mark)), r.dim)
		for row := 0; row < trackRows; row++ {
			r.screen.SetContent(col, y+3+row, markerRune, nil, r.dim)
		}
	}

	if view.FinishLineVisible {
		col := r.column(view.FinishLineRelativePosition)
		for row := 0; row < trackRows; row++ {
			r.screen.SetContent(col, y+3+row, finishRune, nil, r.finish)
		}
	}

	r.screen.SetContent(r.column(view.RelativePosition), y+3+r.lateralRow(lane.LateralPosition), tireRune, nil, r.tire)
}

func (r *Renderer) trackLen() int {
	w, _ := r.screen.Size()
	return max(w-2*marginX, minTrackLen)
}

// column maps a 0..100 viewport percentage to a screen column.
func (r *Renderer) column(pct float64) int {
	pct = math.Min(math.Max(pct, 0), 100)
	return marginX + int(math.Round(pct/100*float64(r.trackLen()-1)))
}

// lateralRow buckets a lateral position into a track row, left wall on top.
func (r *Renderer) lateralRow(lateral float64) int {
	row := int(math.Round(lateral / r.laneWidth * (trackRows - 1)))
	return min(max(row, 0), trackRows-1)
}

func (r *Renderer) drawText(x, y int, s string, style tcell.Style) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// Stats formats the per-lane readout: distance to one decimal, progress in
// whole percent, push count.
func Stats(name string, lane types.LaneSnapshot, finishLine float64) string {
	progress := int(math.Round(lane.Distance / finishLine * 100))
	return fmt.Sprintf("%s  %5.1f m  %3d%%  pushes %d", name, lane.Distance, progress, lane.PushCount)
}
