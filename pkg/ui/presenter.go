package ui

import (
	"strings"

	"github.com/vanderheijden86/workbench/pkg/config"
	"github.com/vanderheijden86/workbench/pkg/wizard"
)

// Slide distances (in cells) used by entrance and exit motions.
const (
	SlideDistance = 12 // screen-level horizontal slide
	RiseDistance  = 2  // block-level vertical rise
)

// ScreenKind tags the two mutually exclusive screens.
type ScreenKind int

const (
	ScreenPreRole ScreenKind = iota // greeting, prompt and role options
	ScreenActions                   // links for one role
)

// Screen is the tagged union {PreRole, Actions(Role)}. Two screens are the
// same mount only when both Kind and Role match.
type Screen struct {
	Kind ScreenKind
	Role wizard.Role
}

// ScreenFor maps controller state onto the screen that must be mounted.
func ScreenFor(st wizard.State) Screen {
	if st.Step == wizard.StepActions {
		return Screen{Kind: ScreenActions, Role: st.Role}
	}
	return Screen{Kind: ScreenPreRole}
}

// String returns a stable key for the screen.
func (s Screen) String() string {
	if s.Kind == ScreenActions {
		return "actions:" + s.Role.String()
	}
	return "pre-role"
}

// Motion is a pose relative to the resting position: X/Y offsets in cells
// and an opacity in [0,1]. The resting pose is Rest.
type Motion struct {
	X       float64
	Y       float64
	Opacity float64
}

// Rest is the settled pose every entrance animates towards.
var Rest = Motion{Opacity: 1}

// EnterMotion is the pose a screen starts from when navigation moves in d:
// forward content comes in from the trailing edge, backward from the leading.
func EnterMotion(d wizard.Direction) Motion {
	return Motion{X: float64(d.Sign() * SlideDistance), Opacity: 0}
}

// LeaveMotion is the pose the outgoing screen animates to when navigation
// moves in d, the edge opposite to where new content enters.
func LeaveMotion(d wizard.Direction) Motion {
	return Motion{X: float64(-d.Sign() * SlideDistance), Opacity: 0}
}

// BlockKind identifies what a block renders.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockPrompt
	BlockOptions
	BlockLinks
	BlockBack
)

// Item is one selectable row inside an options or links block.
type Item struct {
	Label string
	Hint  string      // key hint shown next to the label
	Role  wizard.Role // options only
	URL   string      // links only
}

// Block is one independently animated piece of a screen.
type Block struct {
	Key   string
	Kind  BlockKind
	Lines []string // heading and prompt text
	Items []Item   // options and links
	Enter Motion   // starting pose of the block entrance
	Exit  Motion   // pose the block fades to when its screen unmounts
}

// Tree is the presenter output: the screen to mount, its blocks, and the
// screen-level motions for the transition that leads to it.
type Tree struct {
	Screen    Screen
	Direction wizard.Direction
	Enter     Motion // pose this screen enters from
	Leave     Motion // pose the previously mounted screen exits to
	Blocks    []Block
}

// RoleContent is the per-role part of Content.
type RoleContent struct {
	Label string
	Links []config.Link
}

// Content is the text and link table the presenter renders. It comes from
// configuration and is never validated here.
type Content struct {
	Greeting  string
	Prompt    string
	BackLabel string
	Roles     map[wizard.Role]RoleContent
}

// ContentFromConfig extracts Content from cfg.
func ContentFromConfig(cfg config.Config) Content {
	c := Content{
		Greeting:  cfg.Greeting,
		Prompt:    cfg.Prompt,
		BackLabel: cfg.BackLabel,
		Roles:     make(map[wizard.Role]RoleContent, len(wizard.Roles)),
	}
	for _, r := range wizard.Roles {
		rc := cfg.Role(r)
		links := make([]config.Link, len(rc.Links))
		copy(links, rc.Links)
		c.Roles[r] = RoleContent{Label: rc.Label, Links: links}
	}
	return c
}

// Present is the pure mapping from controller state to the visual tree.
// Pre-role blocks are additive as the step advances; nothing is removed until
// the actions screen replaces the whole screen.
func Present(st wizard.State, c Content) Tree {
	t := Tree{
		Screen:    ScreenFor(st),
		Direction: st.Direction,
		Enter:     EnterMotion(st.Direction),
		Leave:     LeaveMotion(st.Direction),
	}
	fade := Motion{Opacity: 0}

	if t.Screen.Kind == ScreenActions {
		rc := c.Roles[st.Role]
		items := make([]Item, len(rc.Links))
		for i, l := range rc.Links {
			items[i] = Item{Label: l.Label, URL: l.URL}
		}
		t.Blocks = append(t.Blocks,
			Block{
				Key:   "links",
				Kind:  BlockLinks,
				Lines: []string{rc.Label},
				Items: items,
				Enter: Motion{Y: RiseDistance, Opacity: 0},
				Exit:  fade,
			},
			Block{
				Key:   "back",
				Kind:  BlockBack,
				Items: []Item{{Label: c.BackLabel, Hint: "b"}},
				Enter: Motion{Y: RiseDistance, Opacity: 0},
				Exit:  fade,
			},
		)
		return t
	}

	t.Blocks = append(t.Blocks, Block{
		Key:   "welcome",
		Kind:  BlockHeading,
		Lines: splitLines(c.Greeting),
		Enter: Motion{Y: -RiseDistance, Opacity: 0},
		Exit:  fade,
	})
	if st.Step >= wizard.StepGreeting {
		t.Blocks = append(t.Blocks, Block{
			Key:   "prompt",
			Kind:  BlockPrompt,
			Lines: splitLines(c.Prompt),
			Enter: Motion{Y: RiseDistance, Opacity: 0},
			Exit:  fade,
		})
	}
	if st.Step >= wizard.StepIdentity {
		items := make([]Item, 0, len(wizard.Roles))
		for i, r := range wizard.Roles {
			items = append(items, Item{
				Label: c.Roles[r].Label,
				Hint:  string(rune('1' + i)),
				Role:  r,
			})
		}
		t.Blocks = append(t.Blocks, Block{
			Key:   "options",
			Kind:  BlockOptions,
			Items: items,
			Enter: Motion{Y: RiseDistance, Opacity: 0},
			Exit:  fade,
		})
	}
	return t
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
