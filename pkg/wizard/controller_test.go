package wizard_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vanderheijden86/workbench/pkg/wizard"
)

// memStore is an in-memory Store that records how often it was written.
type memStore struct {
	role   wizard.Role
	saves  int
	clears int
}

func (s *memStore) Load() wizard.Role      { return s.role }
func (s *memStore) Save(r wizard.Role)     { s.role = r; s.saves++ }
func (s *memStore) Clear()                 { s.role = wizard.RoleNone; s.clears++ }
func (s *memStore) persisted() wizard.Role { return s.role }

// advanceTo fires every scheduled reveal due at or before elapsed, in due order.
func advanceTo(c *wizard.Controller, reveals []wizard.Reveal, elapsed time.Duration) {
	for _, r := range reveals {
		if r.After <= elapsed {
			c.Fire(r)
		}
	}
}

func TestInitialize_NoPersistedRoleStartsTimedReveal(t *testing.T) {
	c := wizard.New(&memStore{}, wizard.DefaultOptions())
	reveals := c.Initialize()

	if got := c.State().Step; got != wizard.StepInit {
		t.Fatalf("step at mount = %s, want init", got)
	}
	if len(reveals) != 2 {
		t.Fatalf("expected 2 reveals, got %d", len(reveals))
	}
	if reveals[0].Step != wizard.StepGreeting || reveals[0].After != time.Second {
		t.Errorf("first reveal = %+v, want greeting at 1s", reveals[0])
	}
	if reveals[1].Step != wizard.StepIdentity || reveals[1].After != 2*time.Second {
		t.Errorf("second reveal = %+v, want identity at 2s", reveals[1])
	}
}

func TestInitialize_RevealTimeline(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    wizard.Step
	}{
		{0, wizard.StepInit},
		{999 * time.Millisecond, wizard.StepInit},
		{1000 * time.Millisecond, wizard.StepGreeting},
		{1999 * time.Millisecond, wizard.StepGreeting},
		{2000 * time.Millisecond, wizard.StepIdentity},
		{5 * time.Second, wizard.StepIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			c := wizard.New(&memStore{}, wizard.DefaultOptions())
			advanceTo(c, c.Initialize(), tt.elapsed)
			if got := c.State().Step; got != tt.want {
				t.Errorf("step at %v = %s, want %s", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestInitialize_PersistedAdminSkipsReveal(t *testing.T) {
	c := wizard.New(&memStore{role: wizard.RoleAdmin}, wizard.DefaultOptions())
	reveals := c.Initialize()

	want := wizard.State{Step: wizard.StepActions, Role: wizard.RoleAdmin, Direction: wizard.Forward}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if len(reveals) != 0 || len(c.Pending()) != 0 {
		t.Errorf("expected no timers, got %d returned / %d pending", len(reveals), len(c.Pending()))
	}
}

func TestInitialize_PersistDisabledIgnoresStore(t *testing.T) {
	opts := wizard.DefaultOptions()
	opts.PersistRole = false
	store := &memStore{role: wizard.RoleAdmin}
	c := wizard.New(store, opts)
	advanceTo(c, c.Initialize(), 3*time.Second)

	if c.State().Step != wizard.StepIdentity {
		t.Fatalf("expected identity, got %s", c.State().Step)
	}
	c.SelectRole(wizard.RoleNormal)
	if store.saves != 0 {
		t.Errorf("expected no writes with persistence disabled, got %d", store.saves)
	}
}

func TestInitialize_UntimedStartsAtIdentity(t *testing.T) {
	opts := wizard.DefaultOptions()
	opts.TimedReveal = false
	c := wizard.New(&memStore{}, opts)
	if reveals := c.Initialize(); len(reveals) != 0 {
		t.Fatalf("expected no reveals, got %d", len(reveals))
	}
	if c.State().Step != wizard.StepIdentity {
		t.Errorf("expected identity, got %s", c.State().Step)
	}
}

func TestInitialize_NilStore(t *testing.T) {
	c := wizard.New(nil, wizard.DefaultOptions())
	advanceTo(c, c.Initialize(), 2*time.Second)
	if !c.SelectRole(wizard.RoleAdmin) {
		t.Fatal("select should succeed without a store")
	}
	if !c.GoBack() {
		t.Fatal("back should succeed without a store")
	}
}

func TestInitialize_OnlyOnce(t *testing.T) {
	c := wizard.New(&memStore{}, wizard.DefaultOptions())
	c.Initialize()
	if again := c.Initialize(); again != nil {
		t.Errorf("second Initialize returned %d reveals", len(again))
	}
}

func TestSelectRole_FromIdentity(t *testing.T) {
	store := &memStore{}
	c := wizard.New(store, wizard.DefaultOptions())
	advanceTo(c, c.Initialize(), 2*time.Second)

	if !c.SelectRole(wizard.RoleNormal) {
		t.Fatal("SelectRole returned false at identity")
	}
	want := wizard.State{Step: wizard.StepActions, Role: wizard.RoleNormal, Direction: wizard.Forward}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if store.persisted().String() != "normal" {
		t.Errorf("persisted = %q, want normal", store.persisted())
	}
}

func TestSelectRole_IgnoredOutsideIdentity(t *testing.T) {
	for _, elapsed := range []time.Duration{0, 1500 * time.Millisecond} {
		store := &memStore{}
		c := wizard.New(store, wizard.DefaultOptions())
		advanceTo(c, c.Initialize(), elapsed)
		before := c.State()

		if c.SelectRole(wizard.RoleAdmin) {
			t.Errorf("SelectRole at %s should be ignored", before.Step)
		}
		if diff := cmp.Diff(before, c.State()); diff != "" {
			t.Errorf("state changed (-before +after):\n%s", diff)
		}
		if store.saves != 0 || store.persisted() != wizard.RoleNone {
			t.Errorf("store written at %s", before.Step)
		}
	}

	// Already at actions: a second select is ignored too.
	store := &memStore{role: wizard.RoleNormal}
	c := wizard.New(store, wizard.DefaultOptions())
	c.Initialize()
	if c.SelectRole(wizard.RoleAdmin) {
		t.Error("SelectRole at actions should be ignored")
	}
	if c.State().Role != wizard.RoleNormal || store.persisted() != wizard.RoleNormal {
		t.Errorf("role changed to %s / persisted %s", c.State().Role, store.persisted())
	}
}

func TestSelectRole_RejectsNone(t *testing.T) {
	c := wizard.New(&memStore{}, wizard.DefaultOptions())
	advanceTo(c, c.Initialize(), 2*time.Second)
	if c.SelectRole(wizard.RoleNone) {
		t.Error("RoleNone must not be selectable")
	}
}

func TestGoBack_FromActions(t *testing.T) {
	store := &memStore{role: wizard.RoleAdmin}
	c := wizard.New(store, wizard.DefaultOptions())
	c.Initialize()

	if !c.GoBack() {
		t.Fatal("GoBack returned false at actions")
	}
	want := wizard.State{Step: wizard.StepIdentity, Role: wizard.RoleNone, Direction: wizard.Backward}
	if diff := cmp.Diff(want, c.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if store.persisted() != wizard.RoleNone || store.clears != 1 {
		t.Errorf("persisted selection not cleared: %q (clears=%d)", store.persisted(), store.clears)
	}

	// Back-edge then forward again.
	if !c.SelectRole(wizard.RoleNormal) {
		t.Fatal("SelectRole after back failed")
	}
	if c.State().Direction != wizard.Forward {
		t.Errorf("direction after reselect = %s", c.State().Direction)
	}
}

func TestGoBack_IgnoredOutsideActions(t *testing.T) {
	store := &memStore{}
	c := wizard.New(store, wizard.DefaultOptions())
	advanceTo(c, c.Initialize(), 2*time.Second)
	if c.GoBack() {
		t.Error("GoBack at identity should be ignored")
	}
	if store.clears != 0 {
		t.Errorf("store cleared %d times", store.clears)
	}
}

func TestDispose_CancelsPendingReveals(t *testing.T) {
	for _, at := range []time.Duration{0, 500 * time.Millisecond, 999 * time.Millisecond} {
		c := wizard.New(&memStore{}, wizard.DefaultOptions())
		reveals := c.Initialize()
		advanceTo(c, reveals, at)
		c.Dispose()

		if n := len(c.Pending()); n != 0 {
			t.Fatalf("%d reveals still pending after dispose", n)
		}
		// Late timer callbacks after unmount.
		advanceTo(c, reveals, 10*time.Second)
		if c.State().Step != wizard.StepInit {
			t.Errorf("unmount at %v: step changed to %s after dispose", at, c.State().Step)
		}
		if c.SelectRole(wizard.RoleAdmin) || c.GoBack() {
			t.Error("operations after dispose must be ignored")
		}
	}
}

func TestFire_RejectsForeignAndDuplicateReveals(t *testing.T) {
	a := wizard.New(&memStore{}, wizard.DefaultOptions())
	b := wizard.New(&memStore{}, wizard.DefaultOptions())
	ra := a.Initialize()
	b.Initialize()

	if a.Mount() == b.Mount() {
		t.Fatal("controllers must have distinct mounts")
	}
	if b.Fire(ra[0]) {
		t.Error("reveal from another mount must be ignored")
	}
	if !a.Fire(ra[0]) {
		t.Fatal("own reveal should apply")
	}
	if a.Fire(ra[0]) {
		t.Error("a reveal fires at most once")
	}
}

func TestFire_NeverRegresses(t *testing.T) {
	c := wizard.New(&memStore{}, wizard.DefaultOptions())
	reveals := c.Initialize()
	// Deliver out of order: identity first, greeting late.
	c.Fire(reveals[1])
	if c.Fire(reveals[0]) {
		t.Error("late greeting reveal must not apply after identity")
	}
	if c.State().Step != wizard.StepIdentity {
		t.Errorf("step = %s, want identity", c.State().Step)
	}
}

func TestPending_OrderedByDueTime(t *testing.T) {
	c := wizard.New(&memStore{}, wizard.DefaultOptions())
	c.Initialize()
	p := c.Pending()
	if len(p) != 2 || p[0].Step != wizard.StepGreeting || p[1].Step != wizard.StepIdentity {
		t.Errorf("unexpected pending order: %+v", p)
	}
}

func TestNew_NormalizesDelays(t *testing.T) {
	c := wizard.New(nil, wizard.Options{TimedReveal: true, GreetingDelay: 3 * time.Second})
	o := c.Options()
	if o.IdentityDelay <= o.GreetingDelay {
		t.Errorf("identity delay %v must follow greeting delay %v", o.IdentityDelay, o.GreetingDelay)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want wizard.Role
		ok   bool
	}{
		{"normal", wizard.RoleNormal, true},
		{"admin", wizard.RoleAdmin, true},
		{" Admin ", wizard.RoleAdmin, true},
		{"", wizard.RoleNone, false},
		{"root", wizard.RoleNone, false},
	}
	for _, tt := range tests {
		got, ok := wizard.ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %v,%v; want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
