package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/vanderheijden86/workbench/pkg/config"
	"github.com/vanderheijden86/workbench/pkg/debug"
	"github.com/vanderheijden86/workbench/pkg/metrics"
	"github.com/vanderheijden86/workbench/pkg/particles"
	"github.com/vanderheijden86/workbench/pkg/watcher"
	"github.com/vanderheijden86/workbench/pkg/wizard"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Fallback terminal size when the terminal never reports one.
const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// revealMsg delivers a scheduled reveal back to the controller that issued it.
type revealMsg struct {
	reveal wizard.Reveal
}

// frameMsg drives animation and particles. It carries the particle field
// generation so loops started for a replaced field die out.
type frameMsg struct {
	gen uint64
	t   time.Time
}

// ConfigChangedMsg is sent when the watched config file changes on disk.
type ConfigChangedMsg struct{}

// configLoadedMsg carries the result of re-reading the config file.
type configLoadedMsg struct {
	cfg config.Config
	err error
}

// statusMsg sets the one-line status under the screen.
type statusMsg struct {
	text string
	err  bool
}

// ReadyTimeoutMsg is sent after a short delay to ensure the UI becomes ready
// even if the terminal doesn't send WindowSizeMsg promptly.
type ReadyTimeoutMsg struct{}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd waits for the next change of w's file and sends
// ConfigChangedMsg. Closing done abandons the wait and sends nothing.
func WatchFileCmd(w *watcher.Watcher, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.Changed():
		case <-done:
			return nil
		}
		return ConfigChangedMsg{}
	}
}

func revealCmd(r wizard.Reveal) tea.Cmd {
	return tea.Tick(r.After, func(time.Time) tea.Msg {
		return revealMsg{reveal: r}
	})
}

func frameCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second/FPS, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, t: t}
	})
}

func reloadConfigCmd(path string) tea.Cmd {
	return func() tea.Msg {
		defer metrics.Timer(metrics.ConfigReload)()
		cfg, err := config.LoadFrom(path)
		return configLoadedMsg{cfg: cfg, err: err}
	}
}

// Options carries the collaborators a Model needs beyond its config.
type Options struct {
	Watcher    *watcher.Watcher // nil disables live reload
	ConfigPath string
	Opener     Opener
	Copier     Copier
	Theme      *Theme
	Generator  *particles.Generator
	Now        func() time.Time
}

// Model is the wizard screen: one step controller, its animated
// presentation and the particle background.
type Model struct {
	cfg     config.Config
	content Content
	ctrl    *wizard.Controller
	anim    *Animator
	screen  Screen
	cursor  int

	gen      *particles.Generator
	field    particles.Field
	hasField bool
	lastTick time.Time

	width, height int

	keys  KeyMap
	help  help.Model
	theme Theme

	watcher    *watcher.Watcher
	configPath string
	opener     Opener
	copier     Copier
	now        func() time.Time

	status    string
	statusErr bool
	disposed  bool
	done      chan struct{} // closed by Dispose
}

// NewModel builds a model around a fresh controller. store may be nil.
func NewModel(cfg config.Config, store wizard.Store, opts Options) *Model {
	m := &Model{
		cfg:        cfg,
		content:    ContentFromConfig(cfg),
		ctrl:       wizard.New(store, cfg.WizardOptions()),
		anim:       NewAnimator(),
		gen:        opts.Generator,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		watcher:    opts.Watcher,
		configPath: opts.ConfigPath,
		opener:     opts.Opener,
		copier:     opts.Copier,
		now:        opts.Now,
		done:       make(chan struct{}),
	}
	if m.gen == nil {
		m.gen = particles.NewGenerator(nil)
	}
	if m.opener == nil {
		m.opener = OpenURL
	}
	if m.copier == nil {
		m.copier = CopyText
	}
	if m.now == nil {
		m.now = time.Now
	}
	if opts.Theme != nil {
		m.theme = *opts.Theme
	} else {
		m.theme = DefaultTheme()
	}
	if m.configPath == "" && m.watcher != nil {
		m.configPath = m.watcher.Path()
	}
	return m
}

// Init starts the controller and schedules its reveals.
func (m *Model) Init() tea.Cmd {
	reveals := m.ctrl.Initialize()
	m.sync()

	cmds := make([]tea.Cmd, 0, len(reveals)+2)
	for _, r := range reveals {
		cmds = append(cmds, revealCmd(r))
	}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher, m.done))
	}
	cmds = append(cmds, ReadyTimeoutCmd())
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)

	case ReadyTimeoutMsg:
		if m.width == 0 || m.height == 0 {
			debug.Log("ui: no window size reported, assuming %dx%d", fallbackWidth, fallbackHeight)
			return m, m.resize(fallbackWidth, fallbackHeight)
		}
		return m, nil

	case frameMsg:
		if m.disposed || !m.hasField || msg.gen != m.field.Generation {
			return m, nil
		}
		m.lastTick = msg.t
		m.anim.Tick()
		return m, frameCmd(msg.gen)

	case revealMsg:
		if m.ctrl.Fire(msg.reveal) {
			m.sync()
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case ConfigChangedMsg:
		if m.disposed || m.configPath == "" {
			return m, nil
		}
		cmds := []tea.Cmd{reloadConfigCmd(m.configPath)}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher, m.done))
		}
		return m, tea.Batch(cmds...)

	case configLoadedMsg:
		m.applyConfig(msg.cfg, msg.err)
		return m, nil

	case statusMsg:
		m.status, m.statusErr = msg.text, msg.err
		return m, nil
	}
	return m, nil
}

// resize records the terminal size and regenerates particles only when the
// size class changes.
func (m *Model) resize(width, height int) tea.Cmd {
	m.width, m.height = width, height
	m.help.Width = width

	px := width * m.cellWidth()
	if m.hasField && particles.ClassOf(px) == m.field.Class {
		return nil
	}
	m.field = m.gen.NewField(nextGeneration(), px, m.now())
	m.hasField = true
	debug.Log("ui: particle field %d, %d particles for %dpx", m.field.Generation, len(m.field.Specs), px)
	if m.disposed {
		return nil
	}
	return frameCmd(m.field.Generation)
}

func (m *Model) cellWidth() int {
	if m.cfg.Viewport.CellWidthPx > 0 {
		return m.cfg.Viewport.CellWidthPx
	}
	return 8
}

func (m *Model) applyConfig(cfg config.Config, err error) {
	if err != nil {
		debug.Log("ui: config reload failed, keeping previous: %v", err)
		m.status, m.statusErr = fmt.Sprintf("Config not reloaded: %v", err), true
		return
	}
	m.cfg.Greeting = cfg.Greeting
	m.cfg.Prompt = cfg.Prompt
	m.cfg.BackLabel = cfg.BackLabel
	m.cfg.Roles = cfg.Roles
	m.content = ContentFromConfig(m.cfg)
	m.status, m.statusErr = "Config reloaded", false
	m.sync()
}

// sync presents the controller state and hands it to the animator.
func (m *Model) sync() {
	tree := Present(m.ctrl.State(), m.content)
	if tree.Screen != m.screen {
		m.screen = tree.Screen
		m.cursor = 0
	}
	if n := m.itemCount(); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	m.anim.Sync(tree)
}

func (m *Model) itemCount() int {
	st := m.ctrl.State()
	switch st.Step {
	case wizard.StepIdentity:
		return len(wizard.Roles)
	case wizard.StepActions:
		return len(m.content.Roles[st.Role].Links)
	}
	return 0
}

func (m *Model) moveCursor(delta int) {
	n := m.itemCount()
	if n == 0 {
		return
	}
	m.cursor = (m.cursor + delta + n) % n
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.Dispose()
		return tea.Quit
	}

	st := m.ctrl.State()
	switch st.Step {
	case wizard.StepIdentity:
		switch {
		case key.Matches(msg, m.keys.Role1):
			m.selectRole(wizard.Roles[0])
		case key.Matches(msg, m.keys.Role2):
			m.selectRole(wizard.Roles[1])
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
		case key.Matches(msg, m.keys.Enter):
			m.selectRole(wizard.Roles[m.cursor])
		}

	case wizard.StepActions:
		links := m.content.Roles[st.Role].Links
		switch {
		case key.Matches(msg, m.keys.Back):
			if m.ctrl.GoBack() {
				m.status = ""
				m.sync()
			}
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
		case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Open):
			if m.cursor < len(links) {
				return m.openCmd(links[m.cursor])
			}
		case key.Matches(msg, m.keys.Copy):
			if m.cursor < len(links) {
				return m.copyCmd(links[m.cursor])
			}
		}
	}
	return nil
}

func (m *Model) selectRole(r wizard.Role) {
	if m.ctrl.SelectRole(r) {
		m.status = ""
		m.sync()
	}
}

func (m *Model) openCmd(l config.Link) tea.Cmd {
	open := m.opener
	return func() tea.Msg {
		if err := open(l.URL); err != nil {
			debug.Log("ui: open %s: %v", l.URL, err)
			return statusMsg{text: err.Error(), err: true}
		}
		return statusMsg{text: "Opened " + l.URL}
	}
}

func (m *Model) copyCmd(l config.Link) tea.Cmd {
	cp := m.copier
	return func() tea.Msg {
		if err := cp(l.URL); err != nil {
			debug.Log("ui: copy %s: %v", l.URL, err)
			return statusMsg{text: err.Error(), err: true}
		}
		return statusMsg{text: "Copied " + l.URL}
	}
}

// Dispose cancels pending reveals and stops the frame loop. The model
// ignores timer messages afterwards.
func (m *Model) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	close(m.done)
	m.ctrl.Dispose()
}

// State returns the controller state.
func (m *Model) State() wizard.State { return m.ctrl.State() }

// Controller returns the step controller.
func (m *Model) Controller() *wizard.Controller { return m.ctrl }

// Animator returns the transition animator.
func (m *Model) Animator() *Animator { return m.anim }

// Field returns the current particle field and whether one exists.
func (m *Model) Field() (particles.Field, bool) { return m.field, m.hasField }

// Cursor returns the highlighted item index.
func (m *Model) Cursor() int { return m.cursor }

// Status returns the status line and whether it is an error.
func (m *Model) Status() (string, bool) { return m.status, m.statusErr }

// View implements tea.Model.
func (m *Model) View() string {
	defer metrics.Timer(metrics.ViewRender)()

	if m.disposed {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	bodyHeight := m.height - 1
	c := NewCanvas(m.width, bodyHeight)
	if m.hasField {
		now := m.lastTick
		if now.IsZero() {
			now = m.now()
		}
		DrawField(c, m.field, now, m.cfg.Viewport.CellHeightPx, m.theme)
	}
	m.drawScreen(c, bodyHeight-1)

	if m.status != "" {
		st := m.theme.MutedStyle()
		if m.statusErr {
			st = m.theme.DangerStyle()
		}
		text := truncateRunesHelper(m.status, m.width, "…")
		c.Text(centerX(m.width, text), bodyHeight-1, text, st)
	}

	footer := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.help.View(m.helpKeys()))
	return c.Render() + "\n" + footer
}

func (m *Model) helpKeys() help.KeyMap {
	switch m.ctrl.State().Step {
	case wizard.StepIdentity:
		return identityKeys(m.keys)
	case wizard.StepActions:
		return actionKeys(m.keys)
	}
	return idleKeys(m.keys)
}

// segment is a run of text in one style.
type segment struct {
	text  string
	style Style
}

// line is one row of a block.
type line struct {
	segs     []segment
	centered bool // center on its own instead of aligning with the block
}

func (l line) width() int {
	w := 0
	for _, s := range l.segs {
		w += runeWidth(s.text)
	}
	return w
}

// blockLines lays out the rows of b. The cursor is drawn on options and
// links only while their screen is the mounted, non-exiting one.
func (m *Model) blockLines(b Block, active bool) []line {
	t := m.theme
	var out []line
	switch b.Kind {
	case BlockHeading:
		for _, s := range b.Lines {
			out = append(out, line{segs: []segment{{s, t.HeadingStyle()}}, centered: true})
		}
	case BlockPrompt:
		for _, s := range b.Lines {
			out = append(out, line{segs: []segment{{s, t.TextStyle()}}, centered: true})
		}
	case BlockOptions:
		for i, it := range b.Items {
			cur, st := NoCursorGlyph, t.TextStyle()
			if active && i == m.cursor {
				cur, st = CursorGlyph, t.SelectedStyle()
			}
			out = append(out, line{segs: []segment{
				{cur + " ", st},
				{"[" + it.Hint + "] ", t.MutedStyle()},
				{it.Label, st},
			}})
		}
	case BlockLinks:
		for _, s := range b.Lines {
			out = append(out, line{segs: []segment{{s, t.MutedStyle()}}, centered: true})
		}
		if len(b.Items) == 0 {
			out = append(out, line{segs: []segment{{"(no links)", t.MutedStyle()}}, centered: true})
		}
		for i, it := range b.Items {
			cur, st := NoCursorGlyph, t.TextStyle()
			if active && i == m.cursor {
				cur, st = CursorGlyph, t.SelectedStyle()
			}
			out = append(out, line{segs: []segment{
				{cur + " ", st},
				{it.Label, st},
				{"  " + it.URL, t.MutedStyle()},
			}})
		}
	case BlockBack:
		for _, it := range b.Items {
			out = append(out, line{segs: []segment{
				{"[" + it.Hint + "] ", t.MutedStyle()},
				{it.Label, t.MutedStyle()},
			}, centered: true})
		}
	}
	return out
}

// drawScreen paints the mounted screen centered in the first rows rows.
func (m *Model) drawScreen(c *Canvas, rows int) {
	f := m.anim.Frame()
	if !f.Mounted {
		return
	}
	active := !f.Exiting

	laid := make([][]line, len(f.Blocks))
	total := 0
	for i, bf := range f.Blocks {
		laid[i] = m.blockLines(bf.Block, active)
		if i > 0 {
			total += BlockGap
		}
		total += len(laid[i])
	}

	y := (rows - total) / 2
	if y < 0 {
		y = 0
	}
	for i, bf := range f.Blocks {
		if i > 0 {
			y += BlockGap
		}
		lines := laid[i]
		opacity := f.Motion.Opacity * bf.Motion.Opacity
		if !bf.Started || opacity < 0.02 {
			y += len(lines)
			continue
		}
		dx := int(math.Round(f.Motion.X + bf.Motion.X))
		dy := int(math.Round(f.Motion.Y + bf.Motion.Y))

		blockWidth := 0
		for _, l := range lines {
			blockWidth = max(blockWidth, l.width())
		}
		left := (c.width - blockWidth) / 2
		if left < 0 {
			left = 0
		}
		for _, l := range lines {
			x := left
			if l.centered {
				x = (c.width - l.width()) / 2
				if x < 0 {
					x = 0
				}
			}
			x += dx
			for _, s := range l.segs {
				x = c.Text(x, y+dy, s.text, s.style.Faded(m.theme, opacity))
			}
			y++
		}
	}
}
