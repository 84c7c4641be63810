package keybinding

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedKeyType is returned by ParseAny for inputs that are neither
// text nor symbols.
var ErrUnsupportedKeyType = errors.New("unsupported key type")

// Sequence is an ordered list of symbols, either a bound key path or the keys
// typed so far.
type Sequence []Symbol

func (s Sequence) String() string { return Unparse(s) }

// Parse decodes binding text into symbols. It never fails: unknown or
// unterminated bracket content is emitted literally.
func Parse(text string) Sequence {
	var (
		out       Sequence
		inBracket bool
		name      []byte
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inBracket && c == '>':
			out = append(out, lookupBracket(string(name))...)
			inBracket = false
			name = name[:0]
		case inBracket:
			name = append(name, c)
		case c == '<':
			inBracket = true
			name = name[:0]
		default:
			out = append(out, Symbol(c))
		}
	}
	if inBracket {
		out = append(out, '<')
		for _, c := range name {
			out = append(out, Symbol(c))
		}
	}
	return out
}

func lookupBracket(name string) Sequence {
	key := strings.ToLower(name)
	if len(name) == 3 && (key[0] == 'a' || key[0] == 'c') && name[1] == '-' {
		key = key[:2] + name[2:]
	}
	if seq, ok := specialKeys[key]; ok {
		return append(Sequence(nil), seq...)
	}
	if isDigits(name) {
		if n, err := strconv.Atoi(name); err == nil {
			return Sequence{Symbol(n)}
		}
	}
	out := Sequence{'<'}
	for i := 0; i < len(name); i++ {
		out = append(out, Symbol(name[i]))
	}
	return append(out, '>')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseAny accepts binding text, a symbol sequence or a single symbol.
func ParseAny(v any) (Sequence, error) {
	switch k := v.(type) {
	case string:
		return Parse(k), nil
	case Sequence:
		return append(Sequence(nil), k...), nil
	case []Symbol:
		return append(Sequence(nil), k...), nil
	case Symbol:
		return Sequence{k}, nil
	case int:
		return Sequence{Symbol(k)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, v)
	}
}

// KeyToString renders a single symbol in binding notation. Only codes 33 to
// 126 print as themselves, so space and tab come out as <space> and <tab>.
func KeyToString(s Symbol) string {
	if s == '<' {
		return "<lt>"
	}
	if s >= 33 && s <= 126 {
		return string(rune(s))
	}
	if name, ok := reversedSpecialKeys[s]; ok {
		return "<" + name + ">"
	}
	return "<" + strconv.Itoa(int(s)) + ">"
}

// Unparse renders a sequence in binding notation.
func Unparse(seq Sequence) string {
	var b strings.Builder
	for _, s := range seq {
		b.WriteString(KeyToString(s))
	}
	return b.String()
}
