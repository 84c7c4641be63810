package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Dicklesworthstone/sysmoni/internal/displayable"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/term"
)

// DevicePanel shows one block per GPU and a host summary line. A full block
// is three lines, a compact one two.
type DevicePanel struct {
	displayable.Base

	compact bool
	sample  model.Sample
}

func NewDevicePanel(win *term.Window, root displayable.Displayable) *DevicePanel {
	p := &DevicePanel{Base: displayable.NewBase(win, root)}
	p.Height = p.FullHeight()
	return p
}

func (p *DevicePanel) rows() int { return max(1, len(p.sample.Devices)) }

// FullHeight is the panel height in the full layout.
func (p *DevicePanel) FullHeight() int { return 4 + 3*p.rows() }

// CompactHeight is the panel height in the compact layout.
func (p *DevicePanel) CompactHeight() int { return 4 + 2*p.rows() }

// SetCompact switches layout and updates Height.
func (p *DevicePanel) SetCompact(compact bool) {
	if p.compact != compact {
		p.compact = compact
		p.NeedRedraw = true
	}
	if compact {
		p.Height = p.CompactHeight()
	} else {
		p.Height = p.FullHeight()
	}
}

func (p *DevicePanel) Compact() bool { return p.compact }

// SetSample replaces the displayed snapshot.
func (p *DevicePanel) SetSample(s model.Sample) {
	if s.Timestamp.Equal(p.sample.Timestamp) && len(s.Devices) == len(p.sample.Devices) {
		return
	}
	p.sample = s
	p.SetCompact(p.compact)
	p.NeedRedraw = true
}

// Lines renders the panel as plain text, width columns wide.
func (p *DevicePanel) Lines(width int) []string {
	sep := strings.Repeat("=", width)
	thin := strings.Repeat("-", width)
	out := []string{
		fmt.Sprintf("%-4s %-28s %6s %6s  %s", "GPU", "Name", "Temp", "Util", "Memory-Usage"),
		sep,
	}
	if len(p.sample.Devices) == 0 {
		out = append(out, "  No devices found")
		if !p.compact {
			out = append(out, "")
		}
		out = append(out, thin)
	}
	for _, d := range p.sample.Devices {
		mem := fmt.Sprintf("%s / %s", mib(d.MemUsedMB), mib(d.MemTotalMB))
		out = append(out, fmt.Sprintf("%-4d %-28s %5.0fC %5.0f%%  %s",
			d.Index, truncate(d.Name, 28), d.TempC, d.Util, mem))
		if !p.compact {
			out = append(out, fmt.Sprintf("     MEM %s  UTL %s",
				gaugeBar(d.MemPercent(), 20), gaugeBar(d.Util, 20)))
		}
		out = append(out, thin)
	}
	h := p.sample.Host
	out = append(out,
		fmt.Sprintf("CPU %5.1f%%  MEM %s / %s (%.1f%%)  SWP %.1f%%  LOAD %.2f %.2f %.2f",
			h.CPUPercent,
			humanize.IBytes(h.MemUsed), humanize.IBytes(h.MemTotal), h.MemPercent(),
			h.SwapPercent(), h.Load1, h.Load5, h.Load15),
		sep,
	)
	return out
}

func (p *DevicePanel) Draw() {
	if !p.NeedRedraw {
		return
	}
	for i, line := range p.Lines(p.Width) {
		style := plainCell
		if i == 0 {
			style = headerCell
		}
		p.AddStr(p.Y+i, p.X, padRight(line, p.Width), style)
	}
	p.colorDevices()
	p.NeedRedraw = false
}

func (p *DevicePanel) colorDevices() {
	per := 3
	if p.compact {
		per = 2
	}
	for i, d := range p.sample.Devices {
		y := p.Y + 2 + i*per
		p.ColorAt(y, p.X+41, 6, loadCell(d.Util))
	}
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
