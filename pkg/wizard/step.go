// Package wizard implements the step controller behind the role-selection
// screen: which content is visible, in what order, in which transition
// direction, and how the chosen role is persisted and restored.
package wizard

import "strings"

// Step is a stage of the reveal sequence. Steps only move forward except for
// the single Actions -> Identity back-edge.
type Step int

const (
	StepInit     Step = iota // greeting heading only
	StepGreeting             // heading plus the "I am..." prompt
	StepIdentity             // role options visible and interactive
	StepActions              // role-specific action links
)

// String returns a human-readable label for the step.
func (s Step) String() string {
	switch s {
	case StepInit:
		return "init"
	case StepGreeting:
		return "greeting"
	case StepIdentity:
		return "identity"
	case StepActions:
		return "actions"
	default:
		return "unknown"
	}
}

// Role is the category the user picked. RoleNone is only valid before
// StepActions.
type Role int

const (
	RoleNone Role = iota
	RoleNormal
	RoleAdmin
)

// Roles lists the selectable roles in display order.
var Roles = []Role{RoleNormal, RoleAdmin}

// String returns the persisted wire form ("normal", "admin") or "" for none.
func (r Role) String() string {
	switch r {
	case RoleNormal:
		return "normal"
	case RoleAdmin:
		return "admin"
	default:
		return ""
	}
}

// Selectable reports whether r can be chosen by the user.
func (r Role) Selectable() bool {
	return r == RoleNormal || r == RoleAdmin
}

// ParseRole converts the wire form back into a Role. Unknown values yield
// RoleNone and false.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return RoleNormal, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleNone, false
	}
}

// Direction is the sign of the transition animation.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// String returns a human-readable label for the direction.
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Sign returns +1 for Forward and -1 for Backward.
func (d Direction) Sign() int {
	if d == Backward {
		return -1
	}
	return 1
}

// State is the controller's externally visible state.
type State struct {
	Step      Step
	Role      Role
	Direction Direction
}
