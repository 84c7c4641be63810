package ui

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/keybinding"
)

// ErrUnknownAction is returned when a configured binding names no action.
var ErrUnknownAction = errors.New("unknown action")

// hostEnd scrolls far enough to reach the end of any command line.
const hostEnd = 1024

var defaultBindings = []struct{ keys, action string }{
	{"q", "quit"},
	{"a", "auto_mode"},
	{"f", "full_mode"},
	{"c", "compact_mode"},
	{"<Left>", "host_left"},
	{"<Right>", "host_right"},
	{"<Home>", "host_begin"},
	{"<End>", "host_end"},
	{"<Up>", "select_up"},
	{"<Down>", "select_down"},
	{"<Esc>", "select_clear"},
	{"T", "terminate"},
	{"K", "kill"},
	{"<C-c>", "interrupt"},
	{"h", "help"},
}

var defaultAliases = []struct{ source, target string }{
	{"q", "Q"},
	{"<Left>", "["},
	{"<Right>", "]"},
	{"<Home>", "<C-a>"},
	{"<Home>", "^"},
	{"<End>", "<C-e>"},
	{"<End>", "$"},
	{"<Up>", "<S-Tab>"},
	{"<Down>", "<Tab>"},
	{"<C-c>", "I"},
	{"h", "?"},
}

func (t *Top) defaultActions() map[string]*keybinding.Action {
	sel := t.Processes.Selection
	signal := func(name string, send func() error) *keybinding.Action {
		return keybinding.NewAction(name, func(keybinding.Invocation) {
			if err := send(); err != nil {
				t.logger.Warn("signal failed", "action", name, "err", err)
			}
		})
	}
	actions := []*keybinding.Action{
		{Name: "quit", Run: func(keybinding.Invocation) keybinding.Signal { return keybinding.SignalQuit }},
		keybinding.NewAction("auto_mode", func(keybinding.Invocation) { t.SetMode(ModeAuto) }),
		keybinding.NewAction("full_mode", func(keybinding.Invocation) { t.SetMode(ModeFull) }),
		keybinding.NewAction("compact_mode", func(keybinding.Invocation) { t.SetMode(ModeCompact) }),
		keybinding.NewAction("host_left", func(inv keybinding.Invocation) {
			t.Processes.SetHostOffset(t.Processes.HostOffset() - inv.Count(1))
		}),
		keybinding.NewAction("host_right", func(inv keybinding.Invocation) {
			t.Processes.SetHostOffset(t.Processes.HostOffset() + inv.Count(1))
		}),
		keybinding.NewAction("host_begin", func(keybinding.Invocation) { t.Processes.SetHostOffset(-1) }),
		keybinding.NewAction("host_end", func(keybinding.Invocation) { t.Processes.SetHostOffset(hostEnd) }),
		keybinding.NewAction("select_up", func(inv keybinding.Invocation) { sel.Move(-inv.Count(1)) }),
		keybinding.NewAction("select_down", func(inv keybinding.Invocation) { sel.Move(inv.Count(1)) }),
		keybinding.NewAction("select_clear", func(keybinding.Invocation) { sel.Clear() }),
		signal("terminate", sel.Terminate),
		signal("kill", sel.Kill),
		signal("interrupt", sel.Interrupt),
		keybinding.NewAction("help", func(keybinding.Invocation) { t.Help.Show() }),
	}
	out := make(map[string]*keybinding.Action, len(actions))
	for _, a := range actions {
		out[a.Name] = a
	}
	return out
}

func (t *Top) installBindings() {
	for _, b := range defaultBindings {
		t.keymaps.Bind(rootContext, b.keys, t.actions[b.action])
	}
	for _, a := range defaultAliases {
		if err := t.keymaps.Copy(rootContext, a.source, a.target); err != nil {
			t.logger.Error("default alias", "err", err)
		}
	}
	t.keymaps.Use(rootContext)
}

// ApplyKeys layers user bindings over the defaults: binds first, then
// aliases, then unbinds, and finally the quantifier switch. Every failure is collected and the rest still
// apply.
func (t *Top) ApplyKeys(keys config.Keys) error {
	var errs []error
	for _, b := range keys.Bind {
		action, ok := t.actions[b.Action]
		if !ok {
			errs = append(errs, fmt.Errorf("bind %q: %w: %q", b.Keys, ErrUnknownAction, b.Action))
			continue
		}
		t.keymaps.Bind(contextOr(b.Context), b.Keys, action)
	}
	for _, a := range keys.Alias {
		if err := t.keymaps.Copy(contextOr(a.Context), a.Source, a.Target); err != nil {
			errs = append(errs, err)
		}
	}
	for _, k := range keys.Unbind {
		t.keymaps.Unbind(rootContext, k)
	}
	if keys.NoQuantifiers {
		t.keymaps.SetQuantifiers(rootContext, false)
	}
	t.keymaps.Use(rootContext)
	return errors.Join(errs...)
}

func contextOr(ctx string) string {
	if ctx == "" {
		return rootContext
	}
	return ctx
}
