package ui

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// FPS is the frame rate of the animation and particle loop.
const FPS = 30

// Spring parameters: critically damped, settling in roughly half a second.
const (
	springFrequency = 9.0
	springDamping   = 1.0
	settleOffset    = 0.05
	settleOpacity   = 0.01
)

// value is one spring-driven scalar.
type value struct {
	pos, vel, target float64
}

func (v *value) step(s harmonica.Spring, eps float64) {
	v.pos, v.vel = s.Update(v.pos, v.vel, v.target)
	if v.settled(eps) {
		v.pos, v.vel = v.target, 0
	}
}

func (v value) settled(eps float64) bool {
	return math.Abs(v.pos-v.target) < eps && math.Abs(v.vel) < eps
}

// pose animates a Motion.
type pose struct {
	x, y, alpha value
}

func poseAt(m Motion) pose {
	return pose{
		x:     value{pos: m.X, target: m.X},
		y:     value{pos: m.Y, target: m.Y},
		alpha: value{pos: m.Opacity, target: m.Opacity},
	}
}

func (p *pose) retarget(m Motion) {
	p.x.target, p.y.target, p.alpha.target = m.X, m.Y, m.Opacity
}

func (p *pose) step(s harmonica.Spring) {
	p.x.step(s, settleOffset)
	p.y.step(s, settleOffset)
	p.alpha.step(s, settleOpacity)
}

func (p pose) settled() bool {
	return p.x.settled(settleOffset) && p.y.settled(settleOffset) && p.alpha.settled(settleOpacity)
}

func (p *pose) finish() {
	p.x = value{pos: p.x.target, target: p.x.target}
	p.y = value{pos: p.y.target, target: p.y.target}
	p.alpha = value{pos: p.alpha.target, target: p.alpha.target}
}

func (p pose) motion() Motion {
	return Motion{X: p.x.pos, Y: p.y.pos, Opacity: clamp01(p.alpha.pos)}
}

type blockState struct {
	block   Block
	pose    pose
	started bool
}

type mountedScreen struct {
	tree    Tree
	pose    pose
	exiting bool
	blocks  []*blockState
}

// Animator owns the only in-flight screen transition. Exactly one screen is
// mounted at any time: a screen switch exits the mounted screen completely
// before the next one mounts. A new target arriving mid-transition preempts
// the old one; the mounted screen keeps its current pose and heads for the
// new target's leave pose (or back to rest if the new target is itself).
type Animator struct {
	spring  harmonica.Spring
	mounted *mountedScreen
	next    *Tree
}

// NewAnimator returns an animator with no screen mounted.
func NewAnimator() *Animator {
	return &Animator{
		spring: harmonica.NewSpring(harmonica.FPS(FPS), springFrequency, springDamping),
	}
}

// Sync hands the animator the presenter's latest tree.
func (a *Animator) Sync(t Tree) {
	if a.mounted == nil {
		a.mount(t)
		return
	}

	if t.Screen == a.mounted.tree.Screen {
		if a.mounted.exiting {
			a.mounted.exiting = false
			a.mounted.pose.retarget(Rest)
		}
		a.next = nil
		a.mergeBlocks(t)
		return
	}

	// Different screen: exit the mounted one, mount t afterwards.
	a.next = &t
	a.mounted.exiting = true
	a.mounted.pose.retarget(t.Leave)
	for _, b := range a.mounted.blocks {
		b.pose.retarget(b.block.Exit)
	}
}

func (a *Animator) mount(t Tree) {
	m := &mountedScreen{tree: t, pose: poseAt(t.Enter)}
	m.pose.retarget(Rest)
	a.mounted = m
	a.next = nil
	a.mergeBlocks(t)
}

// mergeBlocks adds blocks new to the tree (staged for a staggered entrance),
// refreshes content of known blocks and drops blocks no longer present.
func (a *Animator) mergeBlocks(t Tree) {
	m := a.mounted
	known := make(map[string]*blockState, len(m.blocks))
	for _, b := range m.blocks {
		known[b.block.Key] = b
	}

	blocks := make([]*blockState, 0, len(t.Blocks))
	for _, blk := range t.Blocks {
		if b, ok := known[blk.Key]; ok {
			b.block = blk
			b.pose.retarget(Rest)
			blocks = append(blocks, b)
			continue
		}
		b := &blockState{block: blk, pose: poseAt(blk.Enter)}
		b.pose.retarget(Rest)
		blocks = append(blocks, b)
	}
	m.tree = t
	m.blocks = blocks
}

// Tick advances one frame and reports whether anything is still moving.
func (a *Animator) Tick() bool {
	m := a.mounted
	if m == nil {
		return false
	}

	m.pose.step(a.spring)

	if m.exiting {
		for _, b := range m.blocks {
			if b.started {
				b.pose.step(a.spring)
			}
		}
		if m.pose.settled() {
			next := a.next
			a.mounted = nil
			if next != nil {
				a.mount(*next)
			}
		}
		return true
	}

	// Staggered entrance: a block starts once every block before it has
	// settled.
	prevDone := true
	for _, b := range m.blocks {
		if !b.started {
			if !prevDone {
				break
			}
			b.started = true
		}
		b.pose.step(a.spring)
		prevDone = b.pose.settled()
	}
	return a.Animating()
}

// Animating reports whether any pose is still moving or staged.
func (a *Animator) Animating() bool {
	m := a.mounted
	if m == nil {
		return false
	}
	if m.exiting || !m.pose.settled() {
		return true
	}
	for _, b := range m.blocks {
		if !b.started || !b.pose.settled() {
			return true
		}
	}
	return false
}

// Settle jumps every animation to its end state, completing a pending
// screen switch. Used for reduced motion and tests.
func (a *Animator) Settle() {
	for i := 0; i < 2; i++ {
		m := a.mounted
		if m == nil {
			return
		}
		if m.exiting {
			next := a.next
			a.mounted = nil
			if next != nil {
				a.mount(*next)
			}
			continue
		}
		m.pose.finish()
		for _, b := range m.blocks {
			b.started = true
			b.pose.finish()
		}
		return
	}
}

// BlockFrame is a block and its current pose, relative to its screen.
type BlockFrame struct {
	Block   Block
	Motion  Motion
	Started bool
}

// Frame is what the view draws for the current frame.
type Frame struct {
	Screen  Screen
	Mounted bool
	Exiting bool
	Motion  Motion
	Blocks  []BlockFrame
}

// Frame returns the current frame.
func (a *Animator) Frame() Frame {
	m := a.mounted
	if m == nil {
		return Frame{}
	}
	f := Frame{
		Screen:  m.tree.Screen,
		Mounted: true,
		Exiting: m.exiting,
		Motion:  m.pose.motion(),
		Blocks:  make([]BlockFrame, 0, len(m.blocks)),
	}
	for _, b := range m.blocks {
		f.Blocks = append(f.Blocks, BlockFrame{Block: b.block, Motion: b.pose.motion(), Started: b.started})
	}
	return f
}

// Pending returns the screen waiting to mount after the current exit.
func (a *Animator) Pending() (Screen, bool) {
	if a.next == nil {
		return Screen{}, false
	}
	return a.next.Screen, true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
