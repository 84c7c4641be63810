package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
)

// Screen styles
var (
	plainCell    = tcell.StyleDefault
	headerCell   = tcell.StyleDefault.Bold(true)
	hintCell     = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true).Italic(true)
	blinkCell    = tcell.StyleDefault.Blink(true)
	selectedCell = tcell.StyleDefault.Reverse(true)
	subtleCell   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Print styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)

// loadCell colors a utilization figure the way the gauges do.
func loadCell(pct float64) tcell.Style {
	switch {
	case pct >= 80:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case pct >= 50:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
}

func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func mib(mb float64) string {
	if mb < 0 {
		mb = 0
	}
	return humanize.IBytes(uint64(mb * 1024 * 1024))
}
