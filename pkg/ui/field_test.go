package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/workbench/pkg/particles"
)

func TestParticleGlyph(t *testing.T) {
	tests := []struct {
		w, h float64
		want rune
	}{
		{1, 1, '·'},
		{3, 4, '•'},
		{6, 5, '●'},
	}
	for _, tt := range tests {
		if got := particleGlyph(particles.Spec{Width: tt.w, Height: tt.h}); got != tt.want {
			t.Errorf("glyph(%v,%v) = %q, want %q", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestDrawFieldPlacesVisibleParticles(t *testing.T) {
	start := time.Unix(0, 0)
	f := particles.Field{
		Generation: 1,
		Start:      start,
		Specs: []particles.Spec{
			{Width: 1, Height: 1, TopPercent: 0, LeftPercent: 0, DurationSeconds: 10},
			{Width: 6, Height: 6, TopPercent: 100, LeftPercent: 100, DurationSeconds: 10},
		},
	}
	c := NewCanvas(10, 5)

	// Halfway through the loop both particles are fully visible.
	DrawField(c, f, start.Add(5*time.Second), 16, DarkTheme)
	if got := c.Line(0); !strings.HasPrefix(got, "·") {
		t.Errorf("top-left particle missing: %q", got)
	}
	if got := c.Line(4); !strings.HasSuffix(got, "●") {
		t.Errorf("bottom-right particle missing: %q", got)
	}

	// At the start of the loop opacity is zero.
	c = NewCanvas(10, 5)
	DrawField(c, f, start, 16, DarkTheme)
	for y := 0; y < 5; y++ {
		if got := c.Line(y); got != "" {
			t.Errorf("invisible particle drawn on row %d: %q", y, got)
		}
	}
}

func TestDrawFieldDriftMovesRows(t *testing.T) {
	start := time.Unix(0, 0)
	f := particles.Field{
		Start: start,
		Specs: []particles.Spec{{Width: 1, Height: 1, TopPercent: 100, LeftPercent: 0, VerticalDrift: -32, DurationSeconds: 10}},
	}
	c := NewCanvas(4, 5)
	// Half the drift is -16px, one row at 16px per cell.
	DrawField(c, f, start.Add(5*time.Second), 16, DarkTheme)
	if got := c.Line(3); got != "·" {
		t.Errorf("row 3 = %q, want drifted particle", got)
	}
}

func TestNextGenerationIsUnique(t *testing.T) {
	a, b := nextGeneration(), nextGeneration()
	if a == b || b < a {
		t.Errorf("generations %d, %d not increasing", a, b)
	}
}
