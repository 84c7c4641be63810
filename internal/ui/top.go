package ui

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Dicklesworthstone/sysmoni/internal/displayable"
	"github.com/Dicklesworthstone/sysmoni/internal/keybinding"
	"github.com/Dicklesworthstone/sysmoni/internal/logging"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/term"
)

const (
	rootContext = "root"
	timeLayout  = "Mon Jan 02 15:04:05 2006"
	helpHint    = "(Press h for help or q to quit)"

	idleAfter = time.Second
	idleSleep = 250 * time.Millisecond
)

// Provider hands out the latest metrics snapshot.
type Provider interface {
	Snapshot() model.Sample
}

// Signaller delivers signals to processes.
type Signaller interface {
	Signal(pid int, sig syscall.Signal) error
}

// InputSource reads key codes the way curses getch does.
type InputSource interface {
	GetCh() keybinding.Symbol
	GetChNoWait() keybinding.Symbol
	Flush()
	GetMouse() (term.MouseEvent, error)
}

// Options configures a Top.
type Options struct {
	Mode      Mode
	Window    *term.Window
	Input     InputSource
	Provider  Provider
	Signaller Signaller
	Logger    *log.Logger
}

// Top is the root of the screen tree. It owns the main loop, the key maps
// and the panels.
type Top struct {
	displayable.Container

	Devices   *DevicePanel
	Processes *ProcessPanel
	Help      *HelpScreen

	input    InputSource
	provider Provider
	logger   *log.Logger
	keymaps  *keybinding.KeyMaps
	actions  map[string]*keybinding.Action

	mode      Mode
	compact   bool
	termLines int
	termCols  int
	sized     bool
	sample    model.Sample

	lastInput time.Time
	now       func() time.Time
	sleep     func(time.Duration)
}

// NewTop builds the screen tree and installs the default key bindings.
func NewTop(opts Options) *Top {
	t := &Top{
		input:    opts.Input,
		provider: opts.Provider,
		logger:   opts.Logger,
		mode:     opts.Mode,
		compact:  opts.Mode == ModeCompact,
		now:      time.Now,
		sleep:    time.Sleep,
	}
	if t.logger == nil {
		t.logger = logging.Discard()
	}
	t.Container = displayable.Container{Base: displayable.NewBase(opts.Window, t)}
	t.Width = 79

	t.Devices = NewDevicePanel(opts.Window, t)
	t.Devices.SetCompact(t.compact)
	t.AddChild(t.Devices)

	t.Processes = NewProcessPanel(opts.Window, t)
	t.Processes.Selection.signaller = opts.Signaller
	t.AddChild(t.Processes)

	t.keymaps = keybinding.NewKeyMaps(nil)
	t.Help = NewHelpScreen(opts.Window, t, t.keymaps)
	t.AddChild(t.Help)

	t.layout()
	t.lastInput = t.now()
	t.actions = t.defaultActions()
	t.installBindings()
	return t
}

// KeyMaps exposes the key map set for customization.
func (t *Top) KeyMaps() *keybinding.KeyMaps { return t.keymaps }

func (t *Top) Mode() Mode { return t.mode }

// SetMode switches the layout mode and recomputes the geometry.
func (t *Top) SetMode(m Mode) {
	if t.mode != m {
		t.mode = m
		t.UpdateSize()
	}
}

func (t *Top) Compact() bool { return t.compact }

func (t *Top) setCompact(v bool) {
	if t.compact != v {
		t.compact = v
		t.NeedRedraw = true
	}
}

func (t *Top) layout() {
	t.Devices.Resize(1, 0, t.Devices.Height, t.Width)
	t.Processes.Resize(t.Devices.Y+t.Devices.Height+1, 0, t.Processes.Height, t.Width)
	t.Height = 1 + t.Devices.Height + 1 + t.Processes.Height
	t.Help.Resize(1, 0, max(0, t.termLines-1), t.Width)
}

// UpdateSize reads the terminal size, picks the layout and places the
// panels. A compactness or size change marks the tree dirty.
func (t *Top) UpdateSize() {
	if t.Win == nil {
		return
	}
	lines, cols := t.Win.Size()
	compact := t.mode == ModeCompact
	if t.mode == ModeAuto {
		compact = lines < 1+t.Devices.FullHeight()+1+t.Processes.Height
	}
	t.setCompact(compact)
	t.Devices.SetCompact(compact)
	t.Width = cols
	if !t.sized || lines != t.termLines || cols != t.termCols {
		t.sized = true
		t.termLines, t.termCols = lines, cols
		t.NeedRedraw = true
		t.logger.Debug("resize", "lines", lines, "cols", cols, "compact", compact)
	}
	t.layout()
}

func (t *Top) Poke() {
	if t.provider != nil {
		if s := t.provider.Snapshot(); !s.Timestamp.Equal(t.sample.Timestamp) {
			t.sample = s
			t.Devices.SetSample(s)
			t.Processes.SetSample(s)
		}
	}
	t.Devices.Visible = !t.Help.Visible
	t.Processes.Visible = !t.Help.Visible

	t.Container.Poke()

	if !t.sized || t.Height != 1+t.Devices.Height+1+t.Processes.Height {
		t.UpdateSize()
	}
}

func (t *Top) Draw() {
	if t.Win == nil {
		return
	}
	if t.NeedRedraw {
		t.Win.Erase()
		t.AddStr(t.Y, t.X+62, helpHint, plainCell)
		t.ColorAt(t.Y, t.X+69, 1, hintCell)
	}
	stamp := t.now().Format(timeLayout)
	t.AddStr(t.Y, t.X, fmt.Sprintf("%-62s", stamp), plainCell)
	t.ColorAt(t.Y, t.X+len(stamp)-11, 1, blinkCell)
	t.ColorAt(t.Y, t.X+len(stamp)-8, 1, blinkCell)

	t.Container.Draw()
}

func (t *Top) Finalize() {
	t.Container.Finalize()
	if t.Win != nil {
		t.Win.Refresh()
	}
}

// Redraw runs one poke, draw, finalize pass.
func (t *Top) Redraw() {
	t.Poke()
	t.Draw()
	t.Finalize()
}

// Loop redraws and handles input until a quit action runs or ctx is done.
func (t *Top) Loop(ctx context.Context) error {
	if t.Win == nil || t.input == nil {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.Redraw()
		if t.HandleInput() == keybinding.SignalQuit {
			return nil
		}
		if t.now().Sub(t.lastInput) > idleAfter {
			t.sleep(idleSleep)
		}
	}
}

// HandleInput reads one input unit and dispatches it.
func (t *Top) HandleInput() keybinding.Signal {
	key := t.input.GetCh()
	if key == keybinding.ERR {
		t.keymaps.Buffer().Clear()
		return keybinding.SignalContinue
	}

	t.lastInput = t.now()
	if key == keybinding.KeyEnter {
		key = keybinding.KeyLF
	}
	if key == keybinding.KeyEsc || (key >= 128 && key < 256) {
		keys := []keybinding.Symbol{key}
		for range 4 {
			if next := t.input.GetChNoWait(); next != keybinding.ERR {
				keys = append(keys, next)
			}
		}
		if len(keys) == 1 {
			keys = append(keys, keybinding.ERR)
		} else if keys[0] == keybinding.KeyEsc {
			keys[0] = keybinding.AltKey
		}
		sig := t.HandleKeys(keys...)
		t.input.Flush()
		return sig
	}

	t.input.Flush()
	switch key {
	case keybinding.KeyMouse:
		t.handleMouse()
	case keybinding.KeyResize:
		if t.Win != nil {
			t.Win.Sync()
		}
		t.UpdateSize()
	default:
		return t.HandleKey(key)
	}
	return keybinding.SignalContinue
}

func (t *Top) handleMouse() {
	ev, err := t.input.GetMouse()
	if err != nil {
		t.logger.Debug("mouse", "err", err)
		return
	}
	t.Container.Click(ev)
}

// HandleKeys feeds one input unit in order. It stops at the first quit, and
// drops the rest of the unit once a focused panel takes a key.
func (t *Top) HandleKeys(keys ...keybinding.Symbol) keybinding.Signal {
	for _, key := range keys {
		sig, taken := t.handleKey(key)
		if sig == keybinding.SignalQuit || taken {
			return sig
		}
	}
	return keybinding.SignalContinue
}

// HandleKey offers key to the focused panel first and then to the root
// key map. A negative key resets the key buffer.
func (t *Top) HandleKey(key keybinding.Symbol) keybinding.Signal {
	sig, _ := t.handleKey(key)
	return sig
}

// handleKey also reports whether a focused panel took the key.
func (t *Top) handleKey(key keybinding.Symbol) (keybinding.Signal, bool) {
	if key < 0 {
		t.keymaps.Buffer().Clear()
		return keybinding.SignalContinue, false
	}
	if t.Container.Press(key) {
		return keybinding.SignalContinue, true
	}
	t.keymaps.Use(rootContext)
	sig, _ := t.press(key)
	return sig, false
}

// press feeds key into the key buffer and runs the matched action. It
// reports whether the key was consumed. A key that ends a sequence without
// belonging to it is fed again on a fresh buffer.
func (t *Top) press(key keybinding.Symbol) (keybinding.Signal, bool) {
	buf := t.keymaps.Buffer()
	hadKeys := len(buf.Keys) > 0
	buf.Add(key)

	if buf.Result != nil {
		action, inv, unconsumed := buf.Result, buf.Invocation(), buf.Unconsumed
		sig := action.Invoke(inv)
		if buf.FinishedParsing {
			buf.Clear()
		}
		if unconsumed && sig != keybinding.SignalQuit {
			return t.press(key)
		}
		return sig, true
	}
	if buf.FinishedParsing {
		t.logger.Debug("unbound keys", "keys", buf.String())
		buf.Clear()
		if hadKeys {
			return t.press(key)
		}
		return keybinding.SignalContinue, false
	}
	return keybinding.SignalContinue, true
}
