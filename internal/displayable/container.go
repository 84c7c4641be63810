package displayable

import (
	"slices"

	"github.com/Dicklesworthstone/sysmoni/internal/keybinding"
	"github.com/Dicklesworthstone/sysmoni/internal/term"
)

// Container owns an ordered list of children and forwards the lifecycle and
// input to them.
type Container struct {
	Base
	children []Displayable
}

// NewContainer returns an empty container painting into win.
func NewContainer(win *term.Window, root Displayable) *Container {
	return &Container{Base: NewBase(win, root)}
}

func (c *Container) AddChild(d Displayable) {
	c.children = append(c.children, d)
}

// RemoveChild drops d and reports whether it was a child.
func (c *Container) RemoveChild(d Displayable) bool {
	i := slices.Index(c.children, d)
	if i < 0 {
		return false
	}
	c.children = slices.Delete(c.children, i, i+1)
	return true
}

func (c *Container) Children() []Displayable { return c.children }

// FocusedChild returns the first focused descendant, depth first.
func (c *Container) FocusedChild() Displayable {
	for _, child := range c.children {
		if child.Node().Focused {
			return child
		}
		if sub, ok := child.(interface{ FocusedChild() Displayable }); ok {
			if f := sub.FocusedChild(); f != nil {
				return f
			}
		}
	}
	return nil
}

// MarkDirty flags the container and every descendant for redraw.
func (c *Container) MarkDirty() {
	c.NeedRedraw = true
	for _, child := range c.children {
		if sub, ok := child.(interface{ MarkDirty() }); ok {
			sub.MarkDirty()
			continue
		}
		child.Node().NeedRedraw = true
	}
}

func (c *Container) Poke() {
	for _, child := range c.children {
		child.Poke()
	}
}

// Draw pushes the container's dirty flag down to its children and draws
// the visible ones.
func (c *Container) Draw() {
	for _, child := range c.children {
		n := child.Node()
		if c.NeedRedraw {
			n.NeedRedraw = true
		}
		if n.Visible {
			child.Draw()
		}
	}
	c.NeedRedraw = false
}

func (c *Container) Finalize() {
	for _, child := range c.children {
		if child.Node().Visible {
			child.Finalize()
		}
	}
}

// Press hands key to the focused descendant.
func (c *Container) Press(key keybinding.Symbol) bool {
	if f := c.FocusedChild(); f != nil {
		return f.Press(key)
	}
	return false
}

// Click offers ev to the focused descendant, then to every visible child
// under the pointer.
func (c *Container) Click(ev term.MouseEvent) bool {
	if f := c.FocusedChild(); f != nil && f.Click(ev) {
		return true
	}
	for _, child := range c.children {
		if child.Node().Visible && child.Contains(ev.X, ev.Y) && child.Click(ev) {
			return true
		}
	}
	return false
}
