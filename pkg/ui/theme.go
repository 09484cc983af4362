package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme is the palette of the wizard. Colors are hex strings so they can be
// blended: opacity is drawn by mixing a color into Background.
type Theme struct {
	Background string
	Text       string
	Accent     string
	Muted      string
	Particle   string
	Danger     string
}

// DarkTheme is used on dark terminals.
var DarkTheme = Theme{
	Background: "#282A36",
	Text:       "#F8F8F2",
	Accent:     "#BD93F9",
	Muted:      "#6272A4",
	Particle:   "#8BE9FD",
	Danger:     "#FF5555",
}

// LightTheme is used on light terminals.
var LightTheme = Theme{
	Background: "#FFFFFF",
	Text:       "#1A1A1A",
	Accent:     "#6B47D9",
	Muted:      "#666666",
	Particle:   "#006080",
	Danger:     "#CC0000",
}

var (
	defaultThemeOnce sync.Once
	defaultTheme     Theme
)

// DefaultTheme picks the palette for the terminal background. The terminal
// is queried once per process; later calls may run while a program owns stdin.
func DefaultTheme() Theme {
	defaultThemeOnce.Do(func() {
		defaultTheme = LightTheme
		if lipgloss.HasDarkBackground() {
			defaultTheme = DarkTheme
		}
	})
	return defaultTheme
}

// Fade returns hex mixed into the background at opacity (0 invisible, 1 full).
func (t Theme) Fade(hex string, opacity float64) string {
	opacity = clamp01(opacity)
	if opacity >= 1 {
		return hex
	}
	if opacity <= 0 {
		return t.Background
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	bg, err := colorful.Hex(t.Background)
	if err != nil {
		return hex
	}
	return bg.BlendLab(c, opacity).Clamped().Hex()
}
