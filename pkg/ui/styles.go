package ui

import "github.com/charmbracelet/lipgloss"

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - spacing and text weights shared by every block
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in cells)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// BlockGap is the number of blank rows between stacked blocks.
const BlockGap = SpaceXS

// Glyphs
const (
	CursorGlyph   = "›"
	NoCursorGlyph = " "
)

// ══════════════════════════════════════════════════════════════════════════════
// TEXT STYLES - a Style is a color plus weight; colors come from the theme so
// the same Style can be faded per frame
// ══════════════════════════════════════════════════════════════════════════════

// Style is how one run of cells is drawn.
type Style struct {
	Color string
	Bold  bool
}

// Render draws s in this style.
func (st Style) Render(s string) string {
	ls := lipgloss.NewStyle().Foreground(ThemeFg(st.Color))
	if st.Bold {
		ls = ls.Bold(true)
	}
	return ls.Render(s)
}

// Faded returns st with its color mixed into the theme background.
func (st Style) Faded(t Theme, opacity float64) Style {
	st.Color = t.Fade(st.Color, opacity)
	return st
}

// HeadingStyle is the greeting.
func (t Theme) HeadingStyle() Style { return Style{Color: t.Accent, Bold: true} }

// TextStyle is body copy.
func (t Theme) TextStyle() Style { return Style{Color: t.Text} }

// SelectedStyle is the row under the cursor.
func (t Theme) SelectedStyle() Style { return Style{Color: t.Accent, Bold: true} }

// MutedStyle is hints, URLs and the footer.
func (t Theme) MutedStyle() Style { return Style{Color: t.Muted} }

// DangerStyle is errors.
func (t Theme) DangerStyle() Style { return Style{Color: t.Danger, Bold: true} }
