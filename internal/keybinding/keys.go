// Package keybinding turns binding strings into key symbols and matches live
// key input against per-context tries of bound commands.
//
// Binding strings are plain text where every character stands for itself and
// <name> denotes a named key:
//
//	"q"          the q key
//	"gg"         g followed by g
//	"<C-c>"      Ctrl+C
//	"x<A-Left>"  x, then Alt+Left (two symbols: AltKey, KeyLeft)
//	"<any>"      wildcard matching any key but Esc
//	"g<bg>"      passive command fired after g while longer sequences stay open
package keybinding

import "strconv"

// Symbol is a single decoded key. Printable ASCII maps to itself, named keys
// use the curses code space and a handful of synthetic markers sit above it.
type Symbol int

// ERR is the code for "no input".
const ERR Symbol = -1

// ASCII control codes with a meaning of their own.
const (
	KeyTab Symbol = 9
	KeyLF  Symbol = 10
	KeyEsc Symbol = 27
	KeyDel Symbol = 127
)

// Named keys, numbered as curses numbers them.
const (
	KeyDown      Symbol = 258
	KeyUp        Symbol = 259
	KeyLeft      Symbol = 260
	KeyRight     Symbol = 261
	KeyHome      Symbol = 262
	KeyBackspace Symbol = 263
	KeyF0        Symbol = 264
	KeyDC        Symbol = 330
	KeyIC        Symbol = 331
	KeyNPage     Symbol = 338
	KeyPPage     Symbol = 339
	KeyEnter     Symbol = 343
	KeyBTab      Symbol = 353
	KeyEnd       Symbol = 360
	KeySDC       Symbol = 383
	KeyMouse     Symbol = 409
	KeyResize    Symbol = 410
)

// Synthetic markers. They never arrive from a terminal.
const (
	AnyKey Symbol = 9001 + iota
	PassiveAction
	AltKey
	QuantKey
)

// KeyF returns the code of function key n.
func KeyF(n int) Symbol { return KeyF0 + Symbol(n) }

// IsDigit reports whether s is one of '0'..'9'.
func (s Symbol) IsDigit() bool { return s >= '0' && s <= '9' }

func (s Symbol) String() string { return KeyToString(s) }

type namedKey struct {
	name string
	seq  Sequence
}

// namedKeys is kept in declaration order so reverse lookups pick the first
// name registered for a code.
var namedKeys []namedKey

var specialKeys = map[string]Sequence{}

var reversedSpecialKeys = map[Symbol]string{}

func addNamed(name string, seq ...Symbol) {
	if _, ok := specialKeys[name]; ok {
		return
	}
	specialKeys[name] = seq
	namedKeys = append(namedKeys, namedKey{name: name, seq: seq})
	if len(seq) == 1 {
		if _, ok := reversedSpecialKeys[seq[0]]; !ok {
			reversedSpecialKeys[seq[0]] = name
		}
	}
}

func init() {
	base := []namedKey{
		{"bs", Sequence{KeyBackspace}},
		{"backspace", Sequence{KeyBackspace}},
		{"backspace2", Sequence{KeyDel}},
		{"delete", Sequence{KeyDC}},
		{"s-delete", Sequence{KeySDC}},
		{"insert", Sequence{KeyIC}},
		{"cr", Sequence{KeyLF}},
		{"enter", Sequence{KeyLF}},
		{"return", Sequence{KeyLF}},
		{"space", Sequence{' '}},
		{"esc", Sequence{KeyEsc}},
		{"escape", Sequence{KeyEsc}},
		{"down", Sequence{KeyDown}},
		{"up", Sequence{KeyUp}},
		{"left", Sequence{KeyLeft}},
		{"right", Sequence{KeyRight}},
		{"pagedown", Sequence{KeyNPage}},
		{"pageup", Sequence{KeyPPage}},
		{"home", Sequence{KeyHome}},
		{"end", Sequence{KeyEnd}},
		{"tab", Sequence{KeyTab}},
		{"s-tab", Sequence{KeyBTab}},
		{"lt", Sequence{'<'}},
		{"gt", Sequence{'>'}},
	}
	for _, k := range base {
		addNamed(k.name, k.seq...)
	}
	for _, k := range base {
		addNamed("a-"+k.name, append(Sequence{AltKey}, k.seq...)...)
	}
	for _, c := range "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_!{}[],./" {
		addNamed("a-"+string(c), AltKey, Symbol(c))
	}
	for _, c := range "abcdefghijklmnopqrstuvwxyz" {
		addNamed("c-"+string(c), Symbol(c)-96)
	}
	addNamed("c-_", 0x1f)
	addNamed("c-space", 0)
	for n := 0; n < 64; n++ {
		addNamed("f"+strconv.Itoa(n), KeyF(n))
	}
	addNamed("any", AnyKey)
	addNamed("alt", AltKey)
	addNamed("bg", PassiveAction)
	addNamed("allow_quantifiers", QuantKey)
}
