package keybinding

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBindingNotFound is returned when an alias source is not bound.
var ErrBindingNotFound = errors.New("keybinding not found")

// Signal tells the main loop whether to keep running after an action.
type Signal int

const (
	SignalContinue Signal = iota
	SignalQuit
)

// Invocation carries the context of a matched key sequence to its action.
type Invocation struct {
	Keys          Sequence
	Wildcards     Sequence
	Quantifier    int
	HasQuantifier bool
}

// Count returns the typed quantifier or def when none was given.
func (inv Invocation) Count(def int) int {
	if inv.HasQuantifier {
		return inv.Quantifier
	}
	return def
}

// Action is a bound command.
type Action struct {
	Name string
	Run  func(Invocation) Signal
}

// NewAction wraps fn as a named action that never stops the loop.
func NewAction(name string, fn func(Invocation)) *Action {
	return &Action{Name: name, Run: func(inv Invocation) Signal {
		fn(inv)
		return SignalContinue
	}}
}

// Invoke runs the action. A nil action or one without Run is a no-op.
func (a *Action) Invoke(inv Invocation) Signal {
	if a == nil || a.Run == nil {
		return SignalContinue
	}
	return a.Run(inv)
}

// quantifiersOff is stored under QuantKey to disable count prefixes.
var quantifiersOff = &Action{Name: "false"}

// Node is a trie slot: a leaf when children is nil, a branch otherwise. A
// branch may also carry its own action, taken when no longer sequence matches.
type Node struct {
	action   *Action
	children map[Symbol]*Node
}

func newLeaf(a *Action) *Node { return &Node{action: a} }

func newBranch() *Node { return &Node{children: map[Symbol]*Node{}} }

// IsBranch reports whether the node has a children table.
func (n *Node) IsBranch() bool { return n != nil && n.children != nil }

// Action returns the node's own action, if any.
func (n *Node) Action() *Action {
	if n == nil {
		return nil
	}
	return n.action
}

// Child returns the child under s or nil.
func (n *Node) Child(s Symbol) *Node {
	if n == nil || n.children == nil {
		return nil
	}
	return n.children[s]
}

func (n *Node) empty() bool {
	return n.action == nil && len(n.children) == 0
}

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{action: n.action}
	if n.children != nil {
		c.children = make(map[Symbol]*Node, len(n.children))
		for k, v := range n.children {
			c.children[k] = v.clone()
		}
	}
	return c
}

// Binding is one flattened entry of a context trie.
type Binding struct {
	Keys   string
	Action string
}

// KeyMaps holds one trie per context and drives a KeyBuffer with the active one.
type KeyMaps struct {
	maps   map[string]*Node
	buffer *KeyBuffer
	used   string
	inUse  bool
}

// NewKeyMaps creates an empty set bound to buf. A nil buf gets a fresh buffer.
func NewKeyMaps(buf *KeyBuffer) *KeyMaps {
	if buf == nil {
		buf = NewKeyBuffer(nil)
	}
	return &KeyMaps{maps: map[string]*Node{}, buffer: buf}
}

// Buffer returns the buffer driven by the active context.
func (km *KeyMaps) Buffer() *KeyBuffer { return km.buffer }

// Active returns the name of the context last passed to Use.
func (km *KeyMaps) Active() string { return km.used }

func (km *KeyMaps) root(context string) *Node {
	n, ok := km.maps[context]
	if !ok {
		n = newBranch()
		km.maps[context] = n
	}
	return n
}

// Use points the buffer at context's trie. The buffer is cleared only when
// the active context changes.
func (km *KeyMaps) Use(context string) {
	km.buffer.keymap = km.root(context)
	if !km.inUse || km.used != context {
		km.used = context
		km.inUse = true
		km.buffer.Clear()
	}
}

// Bind maps keys to action in context. Empty key text is ignored.
func (km *KeyMaps) Bind(context, keys string, action *Action) {
	km.bindNode(context, Parse(keys), newLeaf(action))
}

func (km *KeyMaps) bindNode(context string, seq Sequence, node *Node) {
	if len(seq) == 0 {
		return
	}
	pointer := km.root(context)
	for _, s := range seq[:len(seq)-1] {
		next := pointer.children[s]
		if !next.IsBranch() {
			next = newBranch()
			pointer.children[s] = next
		}
		pointer = next
	}
	last := seq[len(seq)-1]
	if existing := pointer.children[last]; existing.IsBranch() && !node.IsBranch() {
		existing.action = node.action
		return
	}
	pointer.children[last] = node
}

// Copy binds target to a deep copy of whatever source is bound to.
func (km *KeyMaps) Copy(context, source, target string) error {
	seq := Parse(source)
	if len(seq) == 0 {
		return nil
	}
	pointer := km.root(context)
	for _, s := range seq {
		pointer = pointer.Child(s)
		if pointer == nil {
			return fmt.Errorf("copy %q to %q in %s: %w", source, target, context, ErrBindingNotFound)
		}
	}
	km.bindNode(context, Parse(target), pointer.clone())
	return nil
}

// Unbind removes the binding for keys and prunes branches left empty.
// Unknown keys are ignored.
func (km *KeyMaps) Unbind(context, keys string) {
	seq := Parse(keys)
	if len(seq) == 0 {
		return
	}
	unbind(km.root(context), seq)
}

func unbind(pointer *Node, seq Sequence) {
	child := pointer.Child(seq[0])
	if child == nil {
		return
	}
	if len(seq) > 1 {
		if !child.IsBranch() {
			return
		}
		unbind(child, seq[1:])
		switch {
		case child.empty():
			delete(pointer.children, seq[0])
		case len(child.children) == 0:
			// Only the branch's own action is left; it fires on its own again.
			child.children = nil
		}
		return
	}
	if child.IsBranch() && len(child.children) > 0 && child.action != nil {
		child.action = nil
		return
	}
	delete(pointer.children, seq[0])
}

// SetQuantifiers enables or disables count prefixes in context.
func (km *KeyMaps) SetQuantifiers(context string, allowed bool) {
	root := km.root(context)
	if allowed {
		delete(root.children, QuantKey)
	} else {
		root.children[QuantKey] = newLeaf(quantifiersOff)
	}
	if km.inUse && km.used == context {
		km.buffer.Clear()
	}
}

// Lookup returns the node bound at keys in context, or nil.
func (km *KeyMaps) Lookup(context, keys string) *Node {
	pointer, ok := km.maps[context]
	if !ok {
		return nil
	}
	for _, s := range Parse(keys) {
		pointer = pointer.Child(s)
		if pointer == nil {
			return nil
		}
	}
	return pointer
}

// Bindings lists every action reachable in context, sorted by key text.
func (km *KeyMaps) Bindings(context string) []Binding {
	root, ok := km.maps[context]
	if !ok {
		return nil
	}
	var out []Binding
	var walk func(n *Node, prefix Sequence)
	walk = func(n *Node, prefix Sequence) {
		for s, child := range n.children {
			if s == QuantKey {
				continue
			}
			path := append(append(Sequence(nil), prefix...), s)
			if a := child.Action(); a != nil {
				out = append(out, Binding{Keys: Unparse(path), Action: a.Name})
			}
			if child.IsBranch() {
				walk(child, path)
			}
		}
	}
	walk(root, nil)
	sort.Slice(out, func(i, j int) bool { return out[i].Keys < out[j].Keys })
	return out
}
