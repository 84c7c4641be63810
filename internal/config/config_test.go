package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
mode = "compact"
interval = "2s"
mouse = false
log_file = "/tmp/sysmoni.log"

[keys]
unbind = ["T"]

[[keys.bind]]
context = "root"
keys = "gg"
action = "host_begin"

[[keys.alias]]
context = "root"
source = "q"
target = "x"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFromFlagsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := FromFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Mode)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.True(t, cfg.Mouse)
	assert.True(t, cfg.EnableGPU)
	assert.False(t, cfg.Once)
}

func TestFromFlagsConfigFile(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := FromFlags([]string{"-config", path})
	require.NoError(t, err)
	assert.Equal(t, "compact", cfg.Mode)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.False(t, cfg.Mouse)
	assert.True(t, cfg.EnableGPU)
	assert.Equal(t, "/tmp/sysmoni.log", cfg.LogFile)
	assert.Equal(t, []string{"T"}, cfg.Keys.Unbind)
	assert.Equal(t, []KeyBind{{Context: "root", Keys: "gg", Action: "host_begin"}}, cfg.Keys.Bind)
	assert.Equal(t, []KeyAlias{{Context: "root", Source: "q", Target: "x"}}, cfg.Keys.Alias)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := FromFlags([]string{"-config", path, "-mode", "full", "-once"})
	require.NoError(t, err)
	assert.Equal(t, "full", cfg.Mode)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.True(t, cfg.Once)
}

func TestEnvOverridesFlags(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("SYSMONI_INTERVAL", "5")
	t.Setenv("SYSMONI_GPU", "0")

	cfg, err := FromFlags([]string{"-config", path, "-interval", "3s"})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.False(t, cfg.EnableGPU)
}

func TestFromFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing explicit file", args: []string{"-config", filepath.Join(t.TempDir(), "nope.toml")}},
		{name: "bad mode", args: []string{"-config", writeConfig(t, ""), "-mode", "tiny"}},
		{name: "bad interval", args: []string{"-config", writeConfig(t, ""), "-interval", "0s"}},
		{name: "bad toml", args: []string{"-config", writeConfig(t, "mode = ")}},
		{name: "unknown flag", args: []string{"-bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFlags(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}
	assert.Equal(t, filepath.Join(home, "logs/sysmoni.log"), expandPath("~/logs/sysmoni.log"))
	assert.Equal(t, "/abs", expandPath("/abs"))
	assert.Equal(t, "", expandPath(""))
}
