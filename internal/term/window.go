package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Window paints into a tcell screen with curses-style (line, column)
// coordinates. Nothing reaches the terminal until Refresh.
type Window struct {
	screen tcell.Screen
}

// NewWindow wraps an initialized screen.
func NewWindow(s tcell.Screen) *Window { return &Window{screen: s} }

// Size returns the terminal size as (lines, columns).
func (w *Window) Size() (int, int) {
	cols, lines := w.screen.Size()
	return lines, cols
}

// AddStr writes s starting at (y, x) and clips at the right edge. It returns
// the number of cells written.
func (w *Window) AddStr(y, x int, s string, style tcell.Style) int {
	cols, lines := w.screen.Size()
	if y < 0 || y >= lines {
		return 0
	}
	col := x
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > cols {
			break
		}
		if col >= 0 {
			w.screen.SetContent(col, y, r, nil, style)
		}
		col += rw
	}
	return col - x
}

// ColorAt restyles width cells starting at (y, x), keeping their content.
func (w *Window) ColorAt(y, x, width int, style tcell.Style) {
	cols, lines := w.screen.Size()
	if y < 0 || y >= lines {
		return
	}
	for col := max(x, 0); col < x+width && col < cols; col++ {
		mainc, combc, _, _ := w.screen.GetContent(col, y)
		w.screen.SetContent(col, y, mainc, combc, style)
	}
}

// Erase blanks the whole window.
func (w *Window) Erase() { w.screen.Clear() }

// Refresh pushes pending changes to the terminal.
func (w *Window) Refresh() { w.screen.Show() }

// Sync repaints every cell, used after a resize.
func (w *Window) Sync() { w.screen.Sync() }
