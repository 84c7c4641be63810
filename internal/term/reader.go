package term

import (
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/Dicklesworthstone/sysmoni/internal/keybinding"
)

// ErrNoMouseEvent is returned by GetMouse when no pointer event is pending.
var ErrNoMouseEvent = errors.New("no mouse event")

// EventSource is the part of tcell.Screen the reader consumes.
type EventSource interface {
	PollEvent() tcell.Event
}

// Reader turns tcell events into integer key codes, one at a time, the way a
// curses getch loop sees them. A single event can expand to several codes
// (Alt prefixes, multi-byte runes); the remainder stays queued for
// GetChNoWait.
type Reader struct {
	events chan tcell.Event
	done   chan struct{}
	stop   sync.Once

	queue []keybinding.Symbol
	mouse *MouseEvent
}

// NewReader starts pumping events from src until it returns nil or Close is
// called.
func NewReader(src EventSource) *Reader {
	r := &Reader{
		events: make(chan tcell.Event, 64),
		done:   make(chan struct{}),
	}
	go r.pump(src)
	return r
}

func (r *Reader) pump(src EventSource) {
	defer close(r.events)
	for {
		ev := src.PollEvent()
		if ev == nil {
			return
		}
		select {
		case r.events <- ev:
		case <-r.done:
			return
		}
	}
}

// Close stops the pump. Codes already queued can still be read.
func (r *Reader) Close() {
	r.stop.Do(func() { close(r.done) })
}

// GetCh blocks until a code is available. It returns ERR once the event
// source is exhausted and when woken by an interrupt event.
func (r *Reader) GetCh() keybinding.Symbol {
	for len(r.queue) == 0 {
		ev, ok := <-r.events
		if !ok {
			return keybinding.ERR
		}
		r.queue = append(r.queue, r.translate(ev)...)
	}
	return r.pop()
}

// GetChNoWait returns the next queued code or ERR.
func (r *Reader) GetChNoWait() keybinding.Symbol {
	if len(r.queue) == 0 {
		return keybinding.ERR
	}
	return r.pop()
}

// Flush discards queued codes.
func (r *Reader) Flush() {
	r.queue = r.queue[:0]
}

// GetMouse returns the pointer event behind the last KeyMouse code.
func (r *Reader) GetMouse() (MouseEvent, error) {
	if r.mouse == nil {
		return MouseEvent{}, ErrNoMouseEvent
	}
	ev := *r.mouse
	r.mouse = nil
	return ev, nil
}

func (r *Reader) pop() keybinding.Symbol {
	c := r.queue[0]
	r.queue = r.queue[1:]
	return c
}

func (r *Reader) translate(ev tcell.Event) []keybinding.Symbol {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return keyCodes(e)
	case *tcell.EventMouse:
		m := newMouseEvent(e)
		r.mouse = &m
		return []keybinding.Symbol{keybinding.KeyMouse}
	case *tcell.EventResize:
		return []keybinding.Symbol{keybinding.KeyResize}
	case *tcell.EventInterrupt:
		return []keybinding.Symbol{keybinding.ERR}
	default:
		return nil
	}
}

var namedCodes = map[tcell.Key]keybinding.Symbol{
	tcell.KeyUp:         keybinding.KeyUp,
	tcell.KeyDown:       keybinding.KeyDown,
	tcell.KeyLeft:       keybinding.KeyLeft,
	tcell.KeyRight:      keybinding.KeyRight,
	tcell.KeyHome:       keybinding.KeyHome,
	tcell.KeyEnd:        keybinding.KeyEnd,
	tcell.KeyPgUp:       keybinding.KeyPPage,
	tcell.KeyPgDn:       keybinding.KeyNPage,
	tcell.KeyInsert:     keybinding.KeyIC,
	tcell.KeyDelete:     keybinding.KeyDC,
	tcell.KeyBacktab:    keybinding.KeyBTab,
	tcell.KeyEnter:      keybinding.KeyEnter,
	tcell.KeyBackspace:  keybinding.KeyBackspace,
	tcell.KeyBackspace2: keybinding.KeyBackspace,
}

func keyCodes(e *tcell.EventKey) []keybinding.Symbol {
	var out []keybinding.Symbol
	if e.Modifiers()&tcell.ModAlt != 0 {
		out = append(out, keybinding.KeyEsc)
	}
	k := e.Key()
	ctrl := e.Modifiers()&tcell.ModCtrl != 0
	switch {
	case ctrl && k == tcell.KeyRune:
		if code, ok := ctrlCode(e.Rune()); ok {
			return append(out, code)
		}
	case ctrl && k < 128:
		if code, ok := ctrlCode(rune(k)); ok {
			return append(out, code)
		}
	}
	switch {
	case k == tcell.KeyRune:
		r := e.Rune()
		if r < utf8.RuneSelf {
			return append(out, keybinding.Symbol(r))
		}
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		for _, b := range buf[:n] {
			out = append(out, keybinding.Symbol(b))
		}
		return out
	case k == tcell.KeyDelete && e.Modifiers()&tcell.ModShift != 0:
		return append(out, keybinding.KeySDC)
	case k >= tcell.KeyF1 && k <= tcell.KeyF64:
		return append(out, keybinding.KeyF(int(k-tcell.KeyF1)+1))
	}
	if code, ok := namedCodes[k]; ok {
		return append(out, code)
	}
	if k < 128 {
		return append(out, keybinding.Symbol(k))
	}
	return nil
}

// ctrlCode maps a key pressed with Ctrl to its ASCII control code. tcell
// reports Ctrl+C as the key 'C' with ModCtrl.
func ctrlCode(r rune) (keybinding.Symbol, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return keybinding.Symbol(r - 'a' + 1), true
	case r >= 'A' && r <= 'Z':
		return keybinding.Symbol(r - 'A' + 1), true
	case r == '_':
		return 31, true
	case r == ' ':
		return 0, true
	}
	return 0, false
}
