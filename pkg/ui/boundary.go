package ui

import (
	"fmt"
	rdebug "runtime/debug"
	"strings"

	"github.com/vanderheijden86/workbench/pkg/debug"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Disposer is implemented by models that hold timers or other resources
// which must be released when the model is discarded.
type Disposer interface {
	Dispose()
}

// Fault is a recovered panic from the wrapped model.
type Fault struct {
	Message string
	Stack   string
}

// Boundary wraps a model and contains panics raised by its Init, Update and
// View. A fault replaces the child's view with an error message and a retry
// key that builds a brand new child from the factory. Panics in the
// boundary itself, or in commands the child returned, are not caught.
type Boundary struct {
	factory func() tea.Model
	child   tea.Model
	fault   *Fault
	size    *tea.WindowSizeMsg
	retry   key.Binding
	quit    key.Binding
	theme   Theme
	resets  int
}

// NewBoundary builds the first child from factory.
func NewBoundary(factory func() tea.Model) *Boundary {
	b := &Boundary{
		factory: factory,
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		theme:   DefaultTheme(),
	}
	b.guard(func() { b.child = factory() })
	return b
}

// Fault returns the current fault, or nil while the child is healthy.
func (b *Boundary) Fault() *Fault { return b.fault }

// Child returns the wrapped model.
func (b *Boundary) Child() tea.Model { return b.child }

// Resets returns how many times the child was rebuilt.
func (b *Boundary) Resets() int { return b.resets }

// Init implements tea.Model.
func (b *Boundary) Init() tea.Cmd {
	if b.fault != nil {
		return nil
	}
	var cmd tea.Cmd
	b.guard(func() { cmd = b.child.Init() })
	return cmd
}

// Update implements tea.Model.
func (b *Boundary) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		b.size = &ws
	}

	if b.fault != nil {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(km, b.quit):
				return b, tea.Quit
			case key.Matches(km, b.retry):
				return b, b.reset()
			}
		}
		return b, nil
	}

	var cmd tea.Cmd
	b.guard(func() {
		next, c := b.child.Update(msg)
		b.child, cmd = next, c
	})
	return b, cmd
}

// View implements tea.Model.
func (b *Boundary) View() string {
	if b.fault == nil {
		var out string
		if b.guard(func() { out = b.child.View() }) {
			return out
		}
	}
	return b.faultView()
}

// reset discards the faulted child and mounts a fresh one.
func (b *Boundary) reset() tea.Cmd {
	defer debug.LogEnterExit("boundary.reset")()
	b.resets++
	b.fault = nil
	debug.Log("boundary: reset #%d", b.resets)

	if !b.guard(func() { b.child = b.factory() }) {
		return nil
	}
	var cmds []tea.Cmd
	b.guard(func() { cmds = append(cmds, b.child.Init()) })
	if b.size != nil && b.fault == nil {
		_, cmd := b.Update(*b.size)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// guard runs fn and converts a panic into a fault.
func (b *Boundary) guard(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(r)
			ok = false
		}
	}()
	fn()
	return true
}

func (b *Boundary) fail(r any) {
	b.fault = &Fault{
		Message: fmt.Sprint(r),
		Stack:   string(rdebug.Stack()),
	}
	debug.Log("boundary: recovered panic: %s\n%s", b.fault.Message, b.fault.Stack)

	if d, ok := b.child.(Disposer); ok {
		func() {
			defer func() { _ = recover() }()
			d.Dispose()
		}()
	}
}

func (b *Boundary) faultView() string {
	t := b.theme
	body := lipgloss.JoinVertical(lipgloss.Center,
		t.DangerStyle().Render("Something went wrong:"),
		"",
		t.TextStyle().Render(strings.TrimSpace(b.fault.Message)),
		"",
		t.MutedStyle().Render("[r] Try again   [q] Quit"),
	)
	if b.size == nil {
		return body
	}
	return lipgloss.Place(b.size.Width, b.size.Height, lipgloss.Center, lipgloss.Center, body)
}
