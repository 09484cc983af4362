// Package particles generates the decorative drifting dots behind the wizard.
//
// Particles are purely cosmetic: they carry no identity across regenerations
// and never interact with the step controller.
package particles

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/vanderheijden86/workbench/pkg/metrics"
)

// Size-class threshold and counts.
const (
	WideThreshold = 768 // logical pixels
	WideCount     = 50
	NarrowCount   = 25
)

// Value ranges. Every field is drawn independently and uniformly.
const (
	MinSize     = 1.0
	MaxSize     = 6.0
	MaxPercent  = 100.0
	MaxDrift    = 50.0
	MinDuration = 5.0
	MaxDuration = 10.0
)

// Spec describes one particle's placement and motion.
type Spec struct {
	Width           float64
	Height          float64
	TopPercent      float64
	LeftPercent     float64
	VerticalDrift   float64 // logical units, negative drifts up
	DurationSeconds float64
}

// SizeClass buckets a viewport width. Only a class change should regenerate.
type SizeClass int

const (
	Narrow SizeClass = iota
	Wide
)

// ClassOf returns the size class of viewportWidth.
func ClassOf(viewportWidth int) SizeClass {
	if viewportWidth > WideThreshold {
		return Wide
	}
	return Narrow
}

// Count returns how many particles a viewport of this width gets.
func Count(viewportWidth int) int {
	if ClassOf(viewportWidth) == Wide {
		return WideCount
	}
	return NarrowCount
}

// Generator draws particle sets from its random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator over rng. A nil rng uses a randomly
// seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Seeded returns a deterministic generator, used by tests and golden views.
func Seeded(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Generate returns a fresh, independent particle set for viewportWidth.
func (g *Generator) Generate(viewportWidth int) []Spec {
	defer metrics.Timer(metrics.ParticleGenerate)()

	n := Count(viewportWidth)
	specs := make([]Spec, n)
	for i := range specs {
		specs[i] = Spec{
			Width:           g.uniform(MinSize, MaxSize),
			Height:          g.uniform(MinSize, MaxSize),
			TopPercent:      g.uniform(0, MaxPercent),
			LeftPercent:     g.uniform(0, MaxPercent),
			VerticalDrift:   g.uniform(-MaxDrift, MaxDrift),
			DurationSeconds: g.uniform(MinDuration, MaxDuration),
		}
	}
	return specs
}

// Generate draws a particle set from a randomly seeded generator.
func Generate(viewportWidth int) []Spec {
	return NewGenerator(nil).Generate(viewportWidth)
}

// Field is one generation of particles. Generation keys the whole set: the
// animation of every particle is measured from Start, so redrawing the same
// Field does not restart it while a new Field (new Generation) does. A
// particle is addressed by (Generation, index).
type Field struct {
	Generation uint64
	Class      SizeClass
	Start      time.Time
	Specs      []Spec
}

// NewField generates a field for viewportWidth.
func (g *Generator) NewField(generation uint64, viewportWidth int, start time.Time) Field {
	return Field{
		Generation: generation,
		Class:      ClassOf(viewportWidth),
		Start:      start,
		Specs:      g.Generate(viewportWidth),
	}
}

// Sample is the animated state of one particle at a moment.
type Sample struct {
	OffsetY float64 // logical units from the resting position
	Opacity float64 // 0..1
}

// Sample returns particle i's drift offset and opacity at now. Each particle
// loops linearly over its duration: the offset goes 0 -> drift and the
// opacity 0 -> 1 -> 0.
func (f Field) Sample(i int, now time.Time) Sample {
	if i < 0 || i >= len(f.Specs) {
		return Sample{}
	}
	s := f.Specs[i]
	elapsed := now.Sub(f.Start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	phase := math.Mod(elapsed, s.DurationSeconds) / s.DurationSeconds

	opacity := 1 - math.Abs(2*phase-1)
	return Sample{
		OffsetY: s.VerticalDrift * phase,
		Opacity: opacity,
	}
}
