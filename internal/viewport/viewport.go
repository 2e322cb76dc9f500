// Package viewport projects absolute lane distance onto a scrolling window
// expressed in percent of the visible track. Mapping is pure: identical
// input yields identical output and nothing is fed back into the simulation.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
)

const (
	VisibleLength = 50.0 // meters of track on screen
	Lead          = 0.7  // fraction of the window kept behind the tire
	MarkerSpacing = 10.0 // meters between distance markers
)

var ErrInvalidSettings = errors.New("invalid viewport settings")

// Settings are the configurable parts of a Mapper.
type Settings struct {
	VisibleLength float64 `yaml:"visible_length"`
	Lead          float64 `yaml:"lead"`
	MarkerSpacing float64 `yaml:"marker_spacing"`
}

func DefaultSettings() Settings {
	return Settings{
		VisibleLength: VisibleLength,
		Lead:          Lead,
		MarkerSpacing: MarkerSpacing,
	}
}

func (s Settings) Validate() error {
	if !(s.VisibleLength > 0) || math.IsInf(s.VisibleLength, 0) {
		return fmt.Errorf("%w: visible_length must be positive", ErrInvalidSettings)
	}
	if !(s.Lead >= 0 && s.Lead <= 1) {
		return fmt.Errorf("%w: lead must be in [0, 1]", ErrInvalidSettings)
	}
	if !(s.MarkerSpacing > 0) || math.IsInf(s.MarkerSpacing, 0) {
		return fmt.Errorf("%w: marker_spacing must be positive", ErrInvalidSettings)
	}
	return nil
}

// Mapper maps lane distance to a View for a track of length FinishLine.
type Mapper struct {
	FinishLine float64
	Settings
}

func New(finishLine float64, s Settings) Mapper {
	return Mapper{FinishLine: finishLine, Settings: s}
}

// Map computes the view for a tire at distance. Each lane calls it with
// its own distance, so a leading lane scrolls independently.
func (m Mapper) Map(distance float64) types.View {
	start := math.Max(0, distance-m.VisibleLength*m.Lead)
	end := start + m.VisibleLength

	return types.View{
		ViewportStart:              start,
		ViewportEnd:                end,
		RelativePosition:           m.relative(distance, start),
		Markers:                    m.markers(start, end),
		FinishLineVisible:          end >= m.FinishLine,
		FinishLineRelativePosition: m.relative(m.FinishLine, start),
	}
}

func (m Mapper) relative(distance, start float64) float64 {
	pct := (distance - start) * 100 / m.VisibleLength
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// markers lists the spacing multiples in [start, end] strictly between the
// start line and the finish line.
func (m Mapper) markers(start, end float64) []float64 {
	first := int(math.Ceil(start / m.MarkerSpacing))
	last := int(math.Floor(end / m.MarkerSpacing))
	if first < 1 {
		first = 1
	}

	out := make([]float64, 0, max(0, last-first+1))
	for k := first; k <= last; k++ {
		mark := float64(k) * m.MarkerSpacing
		if mark >= m.FinishLine {
			break
		}
		out = append(out, mark)
	}
	return out
}
