package ui

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/vanderheijden86/workbench/pkg/particles"
)

// ParticleAlpha scales particle opacity so they stay behind the text.
const ParticleAlpha = 0.55

// lastGeneration numbers particle fields across every model in the process,
// so a frame tick from a discarded model can never match a live field.
var lastGeneration atomic.Uint64

func nextGeneration() uint64 {
	return lastGeneration.Add(1)
}

// particleGlyph picks a dot by particle size.
func particleGlyph(s particles.Spec) rune {
	size := (s.Width + s.Height) / 2
	switch {
	case size < 2.5:
		return '·'
	case size < 4.5:
		return '•'
	default:
		return '●'
	}
}

// DrawField paints every visible particle of f at now. Positions are
// percentages of the canvas; drift is in logical pixels and converted with
// cellHeightPx.
func DrawField(c *Canvas, f particles.Field, now time.Time, cellHeightPx int, t Theme) {
	if c.width == 0 || c.height == 0 {
		return
	}
	if cellHeightPx <= 0 {
		cellHeightPx = 16
	}
	for i, s := range f.Specs {
		sample := f.Sample(i, now)
		alpha := sample.Opacity * ParticleAlpha
		if alpha < 0.05 {
			continue
		}
		x := int(s.LeftPercent / particles.MaxPercent * float64(c.width-1))
		y := int(math.Round(s.TopPercent/particles.MaxPercent*float64(c.height-1) + sample.OffsetY/float64(cellHeightPx)))
		c.Put(x, y, particleGlyph(s), Style{Color: t.Fade(t.Particle, alpha)})
	}
}
