package keybinding

// excludedFromAny lists keys the <any> wildcard never matches.
var excludedFromAny = map[Symbol]bool{KeyEsc: true}

// KeyBuffer accumulates keys and walks the active trie one symbol at a time.
type KeyBuffer struct {
	Keys      Sequence
	Wildcards Sequence

	// Result is the action to invoke after the last Add, if any.
	Result *Action
	// Pending is a branch's own action, taken if the next key leads nowhere.
	Pending *Action

	Quantifier    int
	HasQuantifier bool

	FinishedParsingQuantifier bool
	FinishedParsing           bool
	ParseError                bool
	// Unconsumed is set when the last key was not part of the matched
	// sequence and should be fed again on a cleared buffer.
	Unconsumed bool

	keymap  *Node
	pointer *Node
}

// NewKeyBuffer returns a cleared buffer walking keymap.
func NewKeyBuffer(keymap *Node) *KeyBuffer {
	b := &KeyBuffer{keymap: keymap}
	b.Clear()
	return b
}

// Clear resets the parse state and keeps the trie.
func (b *KeyBuffer) Clear() {
	*b = KeyBuffer{keymap: b.keymap, pointer: b.keymap}
	if a := b.keymap.Child(QuantKey).Action(); a != nil && a.Name == quantifiersOff.Name {
		b.FinishedParsingQuantifier = true
	}
}

// Invocation describes the current match for the action in Result.
func (b *KeyBuffer) Invocation() Invocation {
	keys := b.Keys
	if b.Unconsumed && len(keys) > 0 {
		keys = keys[:len(keys)-1]
	}
	return Invocation{
		Keys:          append(Sequence(nil), keys...),
		Wildcards:     append(Sequence(nil), b.Wildcards...),
		Quantifier:    b.Quantifier,
		HasQuantifier: b.HasQuantifier,
	}
}

// Add feeds one key into the buffer.
func (b *KeyBuffer) Add(key Symbol) {
	b.Keys = append(b.Keys, key)
	b.Result = nil
	b.Unconsumed = false

	if !b.FinishedParsingQuantifier && key.IsDigit() {
		b.Quantifier = b.Quantifier*10 + int(key-'0')
		b.HasQuantifier = true
		return
	}
	b.FinishedParsingQuantifier = true

	next := b.pointer.Child(key)
	if next == nil && !excludedFromAny[key] {
		if next = b.pointer.Child(AnyKey); next != nil {
			b.Wildcards = append(b.Wildcards, key)
		}
	}

	if next == nil {
		b.FinishedParsing = true
		if b.Pending != nil {
			b.Result = b.Pending
			b.Pending = nil
			b.Unconsumed = true
			return
		}
		b.ParseError = true
		return
	}

	b.pointer = next
	if !next.IsBranch() {
		b.Result = next.action
		b.Pending = nil
		b.FinishedParsing = true
		return
	}
	b.Pending = next.action
	if passive := next.Child(PassiveAction); passive != nil {
		b.Result = passive.Action()
	}
}

func (b *KeyBuffer) String() string { return Unparse(b.Keys) }
