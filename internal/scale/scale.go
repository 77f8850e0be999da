package scale

import (
	"fmt"
	"math"
)

// Bounds of the timeline zoom, in pixels per second.
const (
	MinPixelsPerSecond     = 5.0
	MaxPixelsPerSecond     = 100.0
	DefaultPixelsPerSecond = 20.0
)

// Mapper converts between timeline seconds and screen pixels. The same
// Mapper must be used by the ruler and the drag math so that a pixel
// delta and a time delta always agree.
type Mapper struct {
	pps float64
}

// Tick is one ruler mark. X is relative to the left edge of the viewport.
type Tick struct {
	Time  float64
	X     float64
	Major bool
	Label string
}

func New(pixelsPerSecond float64) *Mapper {
	m := &Mapper{}
	m.SetScale(pixelsPerSecond)
	return m
}

func (m *Mapper) PixelsPerSecond() float64 {
	return m.pps
}

// SetScale clamps pps into [MinPixelsPerSecond, MaxPixelsPerSecond].
func (m *Mapper) SetScale(pps float64) {
	if math.IsNaN(pps) || pps <= 0 {
		pps = DefaultPixelsPerSecond
	}
	m.pps = math.Max(MinPixelsPerSecond, math.Min(MaxPixelsPerSecond, pps))
}

// Zoom multiplies the current scale by factor (clamped).
func (m *Mapper) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	m.SetScale(m.pps * factor)
}

func (m *Mapper) ToPixels(seconds float64) float64 {
	return seconds * m.pps
}

func (m *Mapper) ToSeconds(pixels float64) float64 {
	return pixels / m.pps
}

// TickStep returns the spacing of major ruler ticks in seconds.
func (m *Mapper) TickStep() float64 {
	return TickStepFor(m.pps)
}

// TickStepFor is TickStep for an arbitrary scale. Values below the
// mapper's lower bound are accepted so callers can preview steps.
func TickStepFor(pps float64) float64 {
	switch {
	case pps >= 10:
		return 1
	case pps >= 5:
		return 5
	default:
		return 10
	}
}

// minorDivisions is how many intervals a major step is cut into.
func minorDivisions(step float64) int {
	if step == 5 {
		return 5
	}
	return 2
}

// Ticks returns the ruler marks visible in a viewport of the given width
// scrolled by scrollX pixels, in increasing time order.
func (m *Mapper) Ticks(scrollX, viewportWidth float64) []Tick {
	if !finite(scrollX) || !finite(viewportWidth) || viewportWidth <= 0 {
		return nil
	}
	if scrollX < 0 {
		scrollX = 0
	}

	step := m.TickStep()
	start := m.ToSeconds(scrollX)
	end := m.ToSeconds(scrollX + viewportWidth)
	first := math.Floor(start/step) * step
	div := minorDivisions(step)
	minor := step / float64(div)

	// one extra major covers the partially visible step at the left edge
	majors := int(math.Ceil(viewportWidth/m.ToPixels(step))) + 1

	var ticks []Tick
	for i := 0; i <= majors; i++ {
		major := first + float64(i)*step
		if major > end {
			break
		}
		ticks = m.appendTick(ticks, major, scrollX, viewportWidth, true)
		for j := 1; j < div; j++ {
			t := major + float64(j)*minor
			if t > end {
				break
			}
			ticks = m.appendTick(ticks, t, scrollX, viewportWidth, false)
		}
	}
	return ticks
}

func (m *Mapper) appendTick(ticks []Tick, t, scrollX, width float64, major bool) []Tick {
	x := m.ToPixels(t) - scrollX
	if x < 0 || x > width {
		return ticks
	}
	tick := Tick{Time: t, X: x, Major: major}
	if major {
		tick.Label = FormatTime(t)
	}
	return append(ticks, tick)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatTime renders seconds as m:ss for ruler labels.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds + 1e-9))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
