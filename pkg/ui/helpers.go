package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		// Even suffix is too wide, truncate suffix
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// centerX returns the column at which s starts when centered in width cells.
func centerX(width int, s string) int {
	x := (width - runewidth.StringWidth(s)) / 2
	if x < 0 {
		return 0
	}
	return x
}

type cell struct {
	r     rune
	style Style
	set   bool
	cont  bool // right half of a wide rune
}

// Canvas is a fixed grid of terminal cells. Later writes replace earlier
// ones, so particles are drawn first and text on top.
type Canvas struct {
	width, height int
	cells         []cell
}

// NewCanvas returns an empty width×height canvas.
func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Canvas{width: width, height: height, cells: make([]cell, width*height)}
}

func (c *Canvas) at(x, y int) *cell {
	return &c.cells[y*c.width+x]
}

func (c *Canvas) clear(x, y int) {
	if x < 0 || x >= c.width {
		return
	}
	*c.at(x, y) = cell{}
}

// Put draws r at (x, y). Out-of-bounds and half-visible wide runes are dropped.
func (c *Canvas) Put(x, y int, r rune, st Style) {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return
	}
	w := runewidth.RuneWidth(r)
	if w == 0 || x+w > c.width {
		return
	}
	for i := 0; i < w; i++ {
		cur := c.at(x+i, y)
		if cur.cont {
			c.clear(x+i-1, y)
		}
		if x+i+1 < c.width && c.at(x+i+1, y).cont {
			c.clear(x+i+1, y)
		}
	}
	*c.at(x, y) = cell{r: r, style: st, set: true}
	if w == 2 {
		*c.at(x+1, y) = cell{style: st, set: true, cont: true}
	}
}

// Text draws s starting at (x, y) and returns the column after the last rune.
func (c *Canvas) Text(x, y int, s string, st Style) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		c.Put(x, y, r, st)
		x += w
	}
	return x
}

// Line returns row y without styling, trailing blanks trimmed.
func (c *Canvas) Line(y int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < c.width; x++ {
		cl := c.at(x, y)
		switch {
		case cl.cont:
		case cl.set:
			sb.WriteRune(cl.r)
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Render returns the styled canvas. Adjacent cells with the same style are
// emitted as one run.
func (c *Canvas) Render() string {
	var out strings.Builder
	var run strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		var runStyle Style
		styled := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if styled {
				out.WriteString(runStyle.Render(run.String()))
			} else {
				out.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < c.width; x++ {
			cl := c.at(x, y)
			if cl.cont {
				continue
			}
			if cl.set != styled || (cl.set && cl.style != runStyle) {
				flush()
				styled, runStyle = cl.set, cl.style
			}
			if cl.set {
				run.WriteRune(cl.r)
			} else {
				run.WriteByte(' ')
			}
		}
		flush()
	}
	return out.String()
}

func runeWidth(s string) int {
	return runewidth.StringWidth(s)
}
