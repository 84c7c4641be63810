// Package displayable is a small tree of screen regions with a shared
// poke, draw, finalize lifecycle and key/mouse bubbling.
package displayable

import (
	"github.com/gdamore/tcell/v2"

	"github.com/Dicklesworthstone/sysmoni/internal/keybinding"
	"github.com/Dicklesworthstone/sysmoni/internal/term"
)

// Displayable is a node in the screen tree.
type Displayable interface {
	// Poke runs before Draw on every loop iteration, visible or not.
	Poke()
	// Draw paints the region if it needs to.
	Draw()
	// Finalize runs after the whole tree is drawn, e.g. to place the cursor.
	Finalize()
	// Press handles a key and reports whether it was consumed.
	Press(key keybinding.Symbol) bool
	// Click handles a pointer event and reports whether it was consumed.
	Click(ev term.MouseEvent) bool
	// Contains reports whether the screen cell (x, y) lies inside the region.
	Contains(x, y int) bool
	Node() *Base
}

// Base holds the state shared by every region. Root is a lookup handle and
// does not own the tree.
type Base struct {
	X, Y          int
	Width, Height int

	NeedRedraw bool
	Focused    bool
	Visible    bool

	Win  *term.Window
	Root Displayable
}

// NewBase returns a visible, dirty region painting into win.
func NewBase(win *term.Window, root Displayable) Base {
	return Base{Win: win, Root: root, Visible: true, NeedRedraw: true}
}

func (b *Base) Node() *Base { return b }

func (b *Base) Poke() {}

func (b *Base) Draw() { b.NeedRedraw = false }

func (b *Base) Finalize() {}

func (b *Base) Press(keybinding.Symbol) bool { return false }

func (b *Base) Click(term.MouseEvent) bool { return false }

func (b *Base) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Resize moves the region and marks it dirty when anything changed.
func (b *Base) Resize(y, x, height, width int) {
	if b.X == x && b.Y == y && b.Height == height && b.Width == width {
		return
	}
	b.X, b.Y, b.Height, b.Width = x, y, height, width
	b.NeedRedraw = true
}

// AddStr paints s at window coordinates. It is a no-op without a window.
func (b *Base) AddStr(y, x int, s string, style tcell.Style) int {
	if b.Win == nil {
		return 0
	}
	return b.Win.AddStr(y, x, s, style)
}

// ColorAt restyles cells at window coordinates.
func (b *Base) ColorAt(y, x, width int, style tcell.Style) {
	if b.Win != nil {
		b.Win.ColorAt(y, x, width, style)
	}
}
