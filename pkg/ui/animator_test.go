package ui

import (
	"testing"

	"github.com/vanderheijden86/workbench/pkg/wizard"
)

const maxTicks = 1000

func preRole(step wizard.Step, d wizard.Direction) Tree {
	return Present(wizard.State{Step: step, Direction: d}, testContent())
}

func actions(role wizard.Role) Tree {
	return Present(wizard.State{Step: wizard.StepActions, Role: role, Direction: wizard.Forward}, testContent())
}

func runUntilIdle(t *testing.T, a *Animator) int {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if !a.Tick() {
			return i
		}
	}
	t.Fatalf("animator still moving after %d ticks", maxTicks)
	return maxTicks
}

func TestAnimatorMountsFromEnterPose(t *testing.T) {
	a := NewAnimator()
	if a.Animating() {
		t.Fatal("empty animator reports animating")
	}
	a.Sync(preRole(wizard.StepInit, wizard.Forward))

	f := a.Frame()
	if !f.Mounted || f.Screen.Kind != ScreenPreRole {
		t.Fatalf("frame = %+v, want pre-role mounted", f)
	}
	if f.Motion.X != SlideDistance || f.Motion.Opacity != 0 {
		t.Errorf("initial pose = %+v, want X=%d opacity 0", f.Motion, SlideDistance)
	}

	runUntilIdle(t, a)
	f = a.Frame()
	if f.Motion != Rest {
		t.Errorf("settled pose = %+v, want rest", f.Motion)
	}
	if got := f.Blocks[0].Motion; got != Rest {
		t.Errorf("welcome pose = %+v, want rest", got)
	}
}

func TestAnimatorStaggersBlocks(t *testing.T) {
	a := NewAnimator()
	a.Sync(preRole(wizard.StepIdentity, wizard.Forward))

	sawStarted := make([]bool, 3)
	for i := 0; i < maxTicks && a.Tick(); i++ {
		blocks := a.mounted.blocks
		for j, b := range blocks {
			if b.started {
				sawStarted[j] = true
			}
			if j > 0 && b.started && !blocks[j-1].pose.settled() {
				t.Fatalf("tick %d: block %q started before %q settled", i, b.block.Key, blocks[j-1].block.Key)
			}
		}
	}
	for j, ok := range sawStarted {
		if !ok {
			t.Errorf("block %d never started", j)
		}
	}
}

func TestAnimatorAddsRevealedBlocksWithoutRemount(t *testing.T) {
	a := NewAnimator()
	a.Sync(preRole(wizard.StepInit, wizard.Forward))
	runUntilIdle(t, a)

	a.Sync(preRole(wizard.StepGreeting, wizard.Forward))
	f := a.Frame()
	if f.Exiting {
		t.Fatal("revealing a block must not exit the screen")
	}
	if len(f.Blocks) != 2 || f.Blocks[0].Motion != Rest {
		t.Fatalf("blocks = %+v, want welcome at rest plus prompt", f.Blocks)
	}
	if f.Blocks[1].Started {
		t.Error("new block started before the next tick")
	}
}

func TestAnimatorExitsBeforeEntering(t *testing.T) {
	a := NewAnimator()
	a.Sync(preRole(wizard.StepIdentity, wizard.Forward))
	a.Settle()

	a.Sync(actions(wizard.RoleNormal))
	f := a.Frame()
	if f.Screen.Kind != ScreenPreRole || !f.Exiting {
		t.Fatalf("frame = %+v, want pre-role exiting", f)
	}
	if next, ok := a.Pending(); !ok || next.Kind != ScreenActions {
		t.Fatalf("pending = %v %v, want actions", next, ok)
	}

	switched := false
	for i := 0; i < maxTicks && a.Tick(); i++ {
		f := a.Frame()
		if f.Screen.Kind == ScreenActions {
			switched = true
			break
		}
		if f.Motion.X > 0 {
			t.Fatalf("forward exit moved toward +X: %+v", f.Motion)
		}
	}
	if !switched {
		t.Fatal("actions screen never mounted")
	}
	f = a.Frame()
	if f.Exiting || f.Motion.X != SlideDistance {
		t.Errorf("actions mounted with pose %+v", f.Motion)
	}
	if _, ok := a.Pending(); ok {
		t.Error("pending screen left after mount")
	}
}

func TestAnimatorPreemptBackToMountedScreen(t *testing.T) {
	a := NewAnimator()
	a.Sync(preRole(wizard.StepIdentity, wizard.Forward))
	a.Settle()

	a.Sync(actions(wizard.RoleAdmin))
	for i := 0; i < 3; i++ {
		a.Tick()
	}
	mid := a.Frame().Motion
	if mid.X >= 0 {
		t.Fatalf("exit has not moved: %+v", mid)
	}

	a.Sync(preRole(wizard.StepIdentity, wizard.Backward))
	f := a.Frame()
	if f.Exiting {
		t.Fatal("returning to the mounted screen must cancel its exit")
	}
	if f.Motion != mid {
		t.Errorf("preempt jumped from %+v to %+v", mid, f.Motion)
	}
	if _, ok := a.Pending(); ok {
		t.Error("preempted screen still pending")
	}

	runUntilIdle(t, a)
	f = a.Frame()
	if f.Screen.Kind != ScreenPreRole || f.Motion != Rest {
		t.Errorf("after preempt frame = %+v, want pre-role at rest", f)
	}
}

func TestAnimatorPreemptReplacesPending(t *testing.T) {
	a := NewAnimator()
	a.Sync(preRole(wizard.StepIdentity, wizard.Forward))
	a.Settle()

	a.Sync(actions(wizard.RoleNormal))
	a.Tick()
	a.Sync(actions(wizard.RoleAdmin))

	for i := 0; i < maxTicks && a.Tick(); i++ {
		if s := a.Frame().Screen; s.Kind == ScreenActions && s.Role == wizard.RoleNormal {
			t.Fatal("preempted screen was mounted")
		}
	}
	if s := a.Frame().Screen; s != (Screen{Kind: ScreenActions, Role: wizard.RoleAdmin}) {
		t.Errorf("mounted %v, want actions:admin", s)
	}
}

func TestAnimatorSettleCompletesSwitch(t *testing.T) {
	a := NewAnimator()
	a.Sync(preRole(wizard.StepIdentity, wizard.Forward))
	a.Sync(actions(wizard.RoleNormal))
	a.Settle()

	f := a.Frame()
	if f.Screen.Kind != ScreenActions || f.Exiting {
		t.Fatalf("frame = %+v, want actions mounted", f)
	}
	if a.Animating() {
		t.Error("animating after Settle")
	}
	for _, b := range f.Blocks {
		if !b.Started || b.Motion != Rest {
			t.Errorf("block %s = %+v after Settle", b.Block.Key, b)
		}
	}
}
