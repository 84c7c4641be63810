package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	xterm "golang.org/x/term"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// OutputWidth is the print width for fd: the terminal width but at least 79
// columns, or 1024 when fd is not a terminal.
func OutputWidth(fd int) int {
	if !xterm.IsTerminal(fd) {
		return 1024
	}
	cols, _, err := xterm.GetSize(fd)
	if err != nil {
		return 79
	}
	return max(79, cols)
}

// Print writes one static snapshot of s to w, width columns wide.
func Print(w io.Writer, s model.Sample, width int) error {
	inner := max(20, width-4)

	devices := NewDevicePanel(nil, nil)
	devices.SetSample(s)
	procs := NewProcessPanel(nil, nil)
	procs.Width = inner
	procs.SetSample(s)

	header := titleStyle.Render(s.Timestamp.Format(timeLayout)) + "  " +
		subtleStyle.Render(fmt.Sprintf("%d device(s), %d process(es)", len(s.Devices), len(procs.Rows())))

	out := lipgloss.JoinVertical(lipgloss.Left,
		header,
		coreLine(s.Host.PerCore),
		card("Devices", strings.Join(devices.Lines(inner), "\n")),
		"",
		card("Processes", strings.Join(procs.Lines(inner), "\n")),
	)
	for _, line := range strings.Split(out, "\n") {
		if _, err := fmt.Fprintln(w, ansi.Truncate(line, width, "")); err != nil {
			return err
		}
	}
	return nil
}

// coreLine lists per-core load, or nothing before the first CPU delta.
func coreLine(perCore []float64) string {
	if len(perCore) == 0 {
		return subtleStyle.Render("cores: n/a")
	}
	parts := make([]string, len(perCore))
	for i, pct := range perCore {
		parts[i] = fmt.Sprintf("%d:%3.0f%%", i, pct)
	}
	return labelStyle.Render("cores") + " " + strings.Join(parts, " ")
}
