package keybinding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
	last  Invocation
}

func (r *recorder) action(name string) *Action {
	return NewAction(name, func(inv Invocation) {
		r.calls = append(r.calls, name)
		r.last = inv
	})
}

// feed adds keys one by one and runs whatever result each key produces,
// clearing once parsing finishes.
func feed(km *KeyMaps, keys string) {
	buf := km.Buffer()
	for _, k := range Parse(keys) {
		buf.Add(k)
		if buf.Result != nil {
			buf.Result.Invoke(buf.Invocation())
		}
		if buf.FinishedParsing {
			buf.Clear()
		}
	}
}

func TestBindAndMatch(t *testing.T) {
	r := &recorder{}
	km := NewKeyMaps(nil)
	km.Bind("root", "q", r.action("quit"))
	km.Bind("root", "gg", r.action("top"))
	km.Use("root")

	feed(km, "q")
	feed(km, "gg")
	assert.Equal(t, []string{"quit", "top"}, r.calls)
}

func TestBindOverwrites(t *testing.T) {
	r := &recorder{}
	km := NewKeyMaps(nil)
	km.Bind("root", "x", r.action("first"))
	km.Bind("root", "x", r.action("second"))
	km.Use("root")

	feed(km, "x")
	assert.Equal(t, []string{"second"}, r.calls)
}

func TestBindLeafThenLongerReplacesLeaf(t *testing.T) {
	r := &recorder{}
	km := NewKeyMaps(nil)
	km.Bind("root", "g", r.action("g"))
	km.Bind("root", "gx", r.action("gx"))

	n := km.Lookup("root", "g")
	require.NotNil(t, n)
	assert.True(t, n.IsBranch())
	assert.Nil(t, n.Action())
}

func TestBranchOwnLeaf(t *testing.T) {
	r := &recorder{}
	km := NewKeyMaps(nil)
	km.Bind("root", "gg", r.action("top"))
	km.Bind("root", "g", r.action("g"))
	km.Bind("root", "j", r.action("down"))
	km.Use("root")

	feed(km, "gg")
	assert.Equal(t, []string{"top"}, r.calls)

	buf := km.Buffer()
	buf.Add('g')
	assert.Nil(t, buf.Result)
	assert.False(t, buf.FinishedParsing)
	require.NotNil(t, buf.Pending)

	buf.Add('j')
	require.NotNil(t, buf.Result)
	assert.Equal(t, "g", buf.Result.Name)
	assert.True(t, buf.FinishedParsing)
	assert.False(t, buf.ParseError)
	assert.True(t, buf.Unconsumed)
	assert.Equal(t, Sequence{'g'}, buf.Invocation().Keys)
}

func TestCopyIsIndependent(t *testing.T) {
	r := &recorder{}
	km := NewKeyMaps(nil)
	km.Bind("root", "ab", r.action("ab"))
	require.NoError(t, km.Copy("root", "a", "z"))

	km.Unbind("root", "ab")
	assert.Nil(t, km.Lookup("root", "a"))

	km.Use("root")
	feed(km, "zb")
	assert.Equal(t, []string{"ab"}, r.calls)
}

func TestCopyMissingSource(t *testing.T) {
	km := NewKeyMaps(nil)
	km.Bind("root", "a", NewAction("a", func(Invocation) {}))

	err := km.Copy("root", "b", "c")
	assert.ErrorIs(t, err, ErrBindingNotFound)
	err = km.Copy("other", "a", "c")
	assert.ErrorIs(t, err, ErrBindingNotFound)
	assert.Nil(t, km.Lookup("root", "c"))
}

func TestCopyLeafToLeaf(t *testing.T) {
	r := &recorder{}
	km := NewKeyMaps(nil)
	km.Bind("root", "<Left>", r.action("left"))
	require.NoError(t, km.Copy("root", "<Left>", "["))
	km.Use("root")

	feed(km, "[")
	assert.Equal(t, []string{"left"}, r.calls)
}

func TestUnbindPrunes(t *testing.T) {
	km := NewKeyMaps(nil)
	noop := NewAction("noop", func(Invocation) {})
	km.Bind("root", "abc", noop)
	km.Bind("root", "x", noop)

	km.Unbind("root", "abc")
	assert.Nil(t, km.Lookup("root", "a"))
	assert.NotNil(t, km.Lookup("root", "x"))

	km.Unbind("root", "nothing")
	km.Unbind("missing", "x")
	assert.NotNil(t, km.Lookup("root", "x"))
}

func TestUnbindKeepsSiblings(t *testing.T) {
	km := NewKeyMaps(nil)
	noop := NewAction("noop", func(Invocation) {})
	km.Bind("root", "ab", noop)
	km.Bind("root", "ac", noop)

	km.Unbind("root", "ab")
	assert.Nil(t, km.Lookup("root", "ab"))
	assert.NotNil(t, km.Lookup("root", "ac"))
}

func TestUnbindBranchOwnLeaf(t *testing.T) {
	km := NewKeyMaps(nil)
	noop := NewAction("noop", func(Invocation) {})
	km.Bind("root", "gg", noop)
	km.Bind("root", "g", noop)

	km.Unbind("root", "g")
	n := km.Lookup("root", "g")
	require.NotNil(t, n)
	assert.Nil(t, n.Action())
	assert.NotNil(t, km.Lookup("root", "gg"))
}

func TestUnbindLongerLeavesPrefixLeaf(t *testing.T) {
	r := &recorder{}
	km := NewKeyMaps(nil)
	km.Bind("root", "gg", r.action("A"))
	km.Bind("root", "g", r.action("B"))
	km.Use("root")

	km.Unbind("root", "gg")
	n := km.Lookup("root", "g")
	require.NotNil(t, n)
	assert.False(t, n.IsBranch())
	assert.Equal(t, "B", n.Action().Name)

	buf := km.Buffer()
	buf.Add('g')
	require.NotNil(t, buf.Result)
	assert.True(t, buf.FinishedParsing)

	feed(km, "g")
	assert.Equal(t, []string{"B"}, r.calls)
}

func TestUseClearsOnlyOnChange(t *testing.T) {
	km := NewKeyMaps(nil)
	noop := NewAction("noop", func(Invocation) {})
	km.Bind("root", "gg", noop)
	km.Bind("help", "q", noop)
	km.Use("root")

	buf := km.Buffer()
	buf.Add('g')
	km.Use("root")
	assert.Equal(t, Sequence{'g'}, buf.Keys)
	assert.Equal(t, "root", km.Active())

	km.Use("help")
	assert.Empty(t, buf.Keys)
	assert.Equal(t, "help", km.Active())
}

func TestBindings(t *testing.T) {
	km := NewKeyMaps(nil)
	km.Bind("root", "q", NewAction("quit", func(Invocation) {}))
	km.Bind("root", "<C-c>", NewAction("interrupt", func(Invocation) {}))
	km.Bind("root", "gg", NewAction("top", func(Invocation) {}))
	km.SetQuantifiers("root", false)

	got := km.Bindings("root")
	assert.Equal(t, []Binding{
		{Keys: "<c-c>", Action: "interrupt"},
		{Keys: "gg", Action: "top"},
		{Keys: "q", Action: "quit"},
	}, got)
	assert.Nil(t, km.Bindings("missing"))
}
