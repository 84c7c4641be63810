package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sysmoni.log")
	logger, closer, err := New(path, "debug")
	require.NoError(t, err)

	logger.Debug("resize", "lines", 24)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "resize")
	assert.Contains(t, string(data), "lines=24")
}

func TestNewWithoutPath(t *testing.T) {
	logger, closer, err := New("", "info")
	require.NoError(t, err)
	logger.Info("dropped")
	assert.NoError(t, closer.Close())
}

func TestNewBadLevel(t *testing.T) {
	_, _, err := New("", "loud")
	assert.Error(t, err)
}
