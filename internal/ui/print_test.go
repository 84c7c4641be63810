package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, testSample(), 120))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "Sat Mar 09 14:05:06 2024")
	assert.Contains(t, out, "2 device(s), 3 process(es)")
	assert.Equal(t, 2, strings.Count(out, "Tesla T4"))
	assert.Contains(t, out, "train.py")
	assert.NotContains(t, out, "sshd")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 120)
	}
}

func TestPrintPerCore(t *testing.T) {
	s := testSample()
	s.Host.PerCore = []float64{12.5, 80}
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, s, 120))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "cores 0: 12% 1: 80%")

	buf.Reset()
	require.NoError(t, Print(&buf, testSample(), 120))
	assert.Contains(t, ansi.Strip(buf.String()), "cores: n/a")
}

func TestPrintWithoutDevices(t *testing.T) {
	s := model.Sample{Processes: []model.Process{
		{PID: 1, User: "root", Command: "init", Device: model.NoDevice, CPU: 1},
	}}
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, s, 79))

	out := ansi.Strip(buf.String())
	assert.Contains(t, out, "No devices found")
	assert.Contains(t, out, "init")
}

func TestPrintTruncatesToWidth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, testSample(), 40))
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 40)
	}
}

func TestOutputWidthNotTerminal(t *testing.T) {
	assert.Equal(t, 1024, OutputWidth(-1))
}
