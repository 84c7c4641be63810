package ui

import (
	"fmt"

	"github.com/Dicklesworthstone/sysmoni/internal/displayable"
	"github.com/Dicklesworthstone/sysmoni/internal/keybinding"
	"github.com/Dicklesworthstone/sysmoni/internal/term"
)

// HelpScreen lists the active bindings. While shown it holds the focus and
// closes on the next key press or click.
type HelpScreen struct {
	displayable.Base

	keymaps *keybinding.KeyMaps
}

func NewHelpScreen(win *term.Window, root displayable.Displayable, keymaps *keybinding.KeyMaps) *HelpScreen {
	h := &HelpScreen{Base: displayable.NewBase(win, root), keymaps: keymaps}
	h.Visible = false
	return h
}

func (h *HelpScreen) Show() {
	h.Visible = true
	h.Focused = true
	h.NeedRedraw = true
}

func (h *HelpScreen) Hide() {
	h.Visible = false
	h.Focused = false
	if d, ok := h.Root.(interface{ MarkDirty() }); ok {
		d.MarkDirty()
	}
}

func (h *HelpScreen) Lines() []string {
	out := []string{"Key bindings (press any key to close)", ""}
	for _, b := range h.keymaps.Bindings(h.keymaps.Active()) {
		out = append(out, fmt.Sprintf("  %-12s %s", b.Keys, b.Action))
	}
	return out
}

func (h *HelpScreen) Draw() {
	if !h.NeedRedraw {
		return
	}
	lines := h.Lines()
	for row := 0; row < h.Height; row++ {
		text := ""
		if row < len(lines) {
			text = lines[row]
		}
		style := plainCell
		if row == 0 {
			style = headerCell
		}
		h.AddStr(h.Y+row, h.X, padRight(text, h.Width), style)
	}
	h.NeedRedraw = false
}

func (h *HelpScreen) Press(keybinding.Symbol) bool {
	h.Hide()
	return true
}

func (h *HelpScreen) Click(ev term.MouseEvent) bool {
	if !ev.Left() {
		return false
	}
	h.Hide()
	return true
}
