package wizard

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/vanderheijden86/workbench/pkg/debug"
)

// Default reveal offsets, measured from Initialize.
const (
	DefaultGreetingDelay = 1000 * time.Millisecond
	DefaultIdentityDelay = 2000 * time.Millisecond
)

// Store is the durable home of the last selected role. Implementations must
// treat storage failures as absence and never panic.
type Store interface {
	Load() Role
	Save(Role)
	Clear()
}

// Options selects one of the screen variants.
type Options struct {
	PersistRole   bool // restore and record the selected role
	TimedReveal   bool // reveal greeting and identity on timers; otherwise start at identity
	GreetingDelay time.Duration
	IdentityDelay time.Duration
}

// DefaultOptions returns the persisted, timed variant.
func DefaultOptions() Options {
	return Options{
		PersistRole:   true,
		TimedReveal:   true,
		GreetingDelay: DefaultGreetingDelay,
		IdentityDelay: DefaultIdentityDelay,
	}
}

// Reveal is a deferred transition. The host schedules it After the moment
// Initialize returned and hands it back through Fire; Mount and ID let the
// controller reject reveals that were canceled or belong to another mount.
type Reveal struct {
	Mount int64
	ID    int
	Step  Step
	After time.Duration
}

var lastMount atomic.Int64

func nextMount() int64 {
	return lastMount.Add(1)
}

// Controller owns Step, Role and Direction for the lifetime of one mounted
// screen. It is not safe for concurrent use; the host serializes calls.
type Controller struct {
	mount   int64
	opts    Options
	store   Store
	state   State
	pending map[int]Reveal

	initialized bool
	disposed    bool
}

// New creates a controller. A nil store behaves as empty storage.
func New(store Store, opts Options) *Controller {
	if opts.GreetingDelay <= 0 {
		opts.GreetingDelay = DefaultGreetingDelay
	}
	if opts.IdentityDelay <= opts.GreetingDelay {
		opts.IdentityDelay = opts.GreetingDelay + (DefaultIdentityDelay - DefaultGreetingDelay)
	}
	return &Controller{
		mount:   nextMount(),
		opts:    opts,
		store:   store,
		pending: make(map[int]Reveal),
	}
}

// Mount identifies this controller instance.
func (c *Controller) Mount() int64 { return c.mount }

// Options returns the variant the controller was built with.
func (c *Controller) Options() Options { return c.opts }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Initialize runs once per mount and returns the reveals the host must
// schedule. A second call is a no-op returning nil.
func (c *Controller) Initialize() []Reveal {
	if c.initialized || c.disposed {
		return nil
	}
	c.initialized = true

	if role := c.loadRole(); role.Selectable() {
		c.state = State{Step: StepActions, Role: role, Direction: Forward}
		debug.Log("wizard[%d]: restored role %s", c.mount, role)
		return nil
	}

	if !c.opts.TimedReveal {
		c.state = State{Step: StepIdentity, Direction: Forward}
		return nil
	}

	c.state = State{Step: StepInit, Direction: Forward}
	reveals := []Reveal{
		{Mount: c.mount, ID: 1, Step: StepGreeting, After: c.opts.GreetingDelay},
		{Mount: c.mount, ID: 2, Step: StepIdentity, After: c.opts.IdentityDelay},
	}
	for _, r := range reveals {
		c.pending[r.ID] = r
	}
	debug.Log("wizard[%d]: scheduled %d reveals", c.mount, len(reveals))
	return reveals
}

func (c *Controller) loadRole() Role {
	if !c.opts.PersistRole || c.store == nil {
		return RoleNone
	}
	return c.store.Load()
}

// Pending returns the reveals that have neither fired nor been canceled,
// ordered by due time.
func (c *Controller) Pending() []Reveal {
	out := make([]Reveal, 0, len(c.pending))
	for _, r := range c.pending {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After < out[j].After })
	return out
}

// Fire applies a due reveal. It reports false for reveals that were canceled,
// already fired, or belong to another mount. Step never moves backwards.
func (c *Controller) Fire(r Reveal) bool {
	if c.disposed || r.Mount != c.mount {
		return false
	}
	if _, ok := c.pending[r.ID]; !ok {
		return false
	}
	delete(c.pending, r.ID)
	if r.Step <= c.state.Step || c.state.Step >= StepActions {
		return false
	}
	c.state.Step = r.Step
	c.state.Direction = Forward
	debug.Log("wizard[%d]: revealed %s", c.mount, r.Step)
	return true
}

// SelectRole moves from Identity to Actions with the chosen role and records
// it. Calls outside Identity, or with RoleNone, are ignored.
func (c *Controller) SelectRole(role Role) bool {
	if c.disposed || c.state.Step != StepIdentity || !role.Selectable() {
		debug.Log("wizard[%d]: ignored select %q at %s", c.mount, role, c.state.Step)
		return false
	}
	c.state = State{Step: StepActions, Role: role, Direction: Forward}
	if c.opts.PersistRole && c.store != nil {
		c.store.Save(role)
	}
	return true
}

// GoBack returns from Actions to Identity and forgets the recorded role.
// Calls outside Actions are ignored.
func (c *Controller) GoBack() bool {
	if c.disposed || c.state.Step != StepActions {
		debug.Log("wizard[%d]: ignored back at %s", c.mount, c.state.Step)
		return false
	}
	c.state = State{Step: StepIdentity, Role: RoleNone, Direction: Backward}
	if c.opts.PersistRole && c.store != nil {
		c.store.Clear()
	}
	return true
}

// Dispose cancels every pending reveal. After Dispose no call changes state.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for id := range c.pending {
		delete(c.pending, id)
	}
	debug.Log("wizard[%d]: disposed", c.mount)
}

// Disposed reports whether Dispose has been called.
func (c *Controller) Disposed() bool { return c.disposed }
