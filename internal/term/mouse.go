package term

import "github.com/gdamore/tcell/v2"

// MouseEvent is a decoded pointer event in screen cells.
type MouseEvent struct {
	X, Y    int
	Buttons tcell.ButtonMask
	Mod     tcell.ModMask
}

func newMouseEvent(e *tcell.EventMouse) MouseEvent {
	x, y := e.Position()
	return MouseEvent{X: x, Y: y, Buttons: e.Buttons(), Mod: e.Modifiers()}
}

// Pressed reports whether any of the buttons in b are down.
func (m MouseEvent) Pressed(b tcell.ButtonMask) bool { return m.Buttons&b != 0 }

// Left reports a primary button press.
func (m MouseEvent) Left() bool { return m.Pressed(tcell.Button1) }

func (m MouseEvent) WheelUp() bool { return m.Pressed(tcell.WheelUp) }

func (m MouseEvent) WheelDown() bool { return m.Pressed(tcell.WheelDown) }
