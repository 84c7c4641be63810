package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/keybinding"
)

func TestApplyKeys(t *testing.T) {
	f := newFixture(t, 120, 60, ModeAuto)
	err := f.top.ApplyKeys(config.Keys{
		Bind: []config.KeyBind{
			{Keys: "j", Action: "select_down"},
			{Keys: "k", Action: "select_up"},
		},
		Alias:  []config.KeyAlias{{Source: "<C-c>", Target: "x"}},
		Unbind: []string{"T"},
	})
	require.NoError(t, err)

	km := f.top.KeyMaps()
	assert.Equal(t, "select_down", km.Lookup(rootContext, "j").Action().Name)
	assert.Equal(t, "interrupt", km.Lookup(rootContext, "x").Action().Name)
	assert.Nil(t, km.Lookup(rootContext, "T"))

	f.keys("jj")
	assert.Equal(t, 200, f.selectedPID())
	f.keys("T")
	assert.Empty(t, f.signals.sent)
}

func TestApplyKeysCollectsErrors(t *testing.T) {
	f := newFixture(t, 120, 60, ModeAuto)
	err := f.top.ApplyKeys(config.Keys{
		Bind: []config.KeyBind{
			{Keys: "z", Action: "launch_rockets"},
			{Keys: "j", Action: "select_down"},
		},
		Alias: []config.KeyAlias{{Source: "<F5>", Target: "r"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.ErrorIs(t, err, keybinding.ErrBindingNotFound)

	km := f.top.KeyMaps()
	assert.Nil(t, km.Lookup(rootContext, "z"))
	assert.Nil(t, km.Lookup(rootContext, "r"))
	assert.NotNil(t, km.Lookup(rootContext, "j"))
}

func TestApplyKeysOtherContext(t *testing.T) {
	f := newFixture(t, 120, 60, ModeAuto)
	require.NoError(t, f.top.ApplyKeys(config.Keys{
		Bind: []config.KeyBind{{Context: "browser", Keys: "q", Action: "help"}},
	}))
	km := f.top.KeyMaps()
	assert.Equal(t, "help", km.Lookup("browser", "q").Action().Name)
	assert.Equal(t, "quit", km.Lookup(rootContext, "q").Action().Name)
	assert.Equal(t, rootContext, km.Active())
}

func TestHelpListsBindings(t *testing.T) {
	f := newFixture(t, 120, 60, ModeAuto)
	lines := f.top.Help.Lines()
	require.NotEmpty(t, lines)

	var found bool
	for _, l := range lines {
		if assert.NotContains(t, l, "allow_quantifiers") && len(l) > 2 && l[2] == 'q' {
			found = true
			assert.Contains(t, l, "quit")
		}
	}
	assert.True(t, found)
}

func TestApplyKeysUnbindLongerKeepsPrefix(t *testing.T) {
	f := newFixture(t, 120, 60, ModeAuto)
	hits := 0
	km := f.top.KeyMaps()
	km.Bind(rootContext, "gg", keybinding.NewAction("top", func(keybinding.Invocation) {}))
	km.Bind(rootContext, "g", keybinding.NewAction("first", func(keybinding.Invocation) { hits++ }))

	require.NoError(t, f.top.ApplyKeys(config.Keys{Unbind: []string{"gg"}}))
	f.keys("g")
	assert.Equal(t, 1, hits)

	f.top.HandleInput()
	f.keys("g")
	assert.Equal(t, 2, hits)
}

func TestApplyKeysNoQuantifiers(t *testing.T) {
	f := newFixture(t, 120, 60, ModeAuto)
	hits := 0
	require.NoError(t, f.top.ApplyKeys(config.Keys{
		Bind:          []config.KeyBind{{Keys: "3", Action: "help"}},
		NoQuantifiers: true,
	}))
	f.top.KeyMaps().Bind(rootContext, "3", keybinding.NewAction("three", func(keybinding.Invocation) { hits++ }))

	f.keys("3")
	assert.Equal(t, 1, hits)
	f.keys("2<Down>")
	assert.Equal(t, 100, f.selectedPID())
}
