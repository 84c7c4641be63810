// Package term acquires the terminal through tcell and exposes it as a
// curses-like window plus a key code reader.
package term

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal owns a tcell screen in full-screen mode. Close restores the
// terminal and is safe to call more than once.
type Terminal struct {
	screen tcell.Screen
	window *Window
	reader *Reader
	once   sync.Once
}

// Open acquires the controlling terminal.
func Open(mouse bool) (*Terminal, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	return OpenScreen(s, mouse)
}

// OpenScreen initializes s and starts reading its events.
func OpenScreen(s tcell.Screen, mouse bool) (*Terminal, error) {
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	s.HideCursor()
	if mouse {
		s.EnableMouse(tcell.MouseButtonEvents)
	}
	s.Clear()
	return &Terminal{
		screen: s,
		window: NewWindow(s),
		reader: NewReader(s),
	}, nil
}

func (t *Terminal) Window() *Window { return t.window }

func (t *Terminal) Reader() *Reader { return t.reader }

// Wake makes a blocked GetCh return ERR.
func (t *Terminal) Wake() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Close leaves full-screen mode.
func (t *Terminal) Close() {
	t.once.Do(func() {
		t.reader.Close()
		t.screen.DisableMouse()
		t.screen.Fini()
	})
}
