package ui

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/Dicklesworthstone/sysmoni/internal/displayable"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/term"
)

// hostRows is how many host processes are listed when no GPU is present.
const hostRows = 10

// commandColumn is where the command starts in a process row.
const commandColumn = 48

// ProcessPanel lists GPU processes, or the busiest host processes on
// machines without a GPU.
type ProcessPanel struct {
	displayable.Base

	Selection *Selection

	rows       []model.Process
	hostOffset int
}

func NewProcessPanel(win *term.Window, root displayable.Displayable) *ProcessPanel {
	p := &ProcessPanel{Base: displayable.NewBase(win, root)}
	p.Selection = &Selection{panel: p, index: -1}
	p.Height = p.wantHeight()
	return p
}

func (p *ProcessPanel) wantHeight() int { return 4 + max(1, len(p.rows)) }

// SetSample picks the rows to show from s and keeps the selection on the
// same PID when it is still listed.
func (p *ProcessPanel) SetSample(s model.Sample) {
	var rows []model.Process
	if len(s.Devices) > 0 {
		for _, proc := range s.Processes {
			if proc.Device != model.NoDevice {
				rows = append(rows, proc)
			}
		}
	} else {
		rows = s.Processes[:min(hostRows, len(s.Processes))]
	}
	p.rows = rows
	p.Height = p.wantHeight()
	p.Selection.sync()
	p.SetHostOffset(p.hostOffset)
	p.NeedRedraw = true
}

func (p *ProcessPanel) Rows() []model.Process { return p.rows }

// HostOffset is the horizontal scroll of the command column. -1 is the home
// position.
func (p *ProcessPanel) HostOffset() int { return p.hostOffset }

func (p *ProcessPanel) maxHostOffset() int {
	longest := 0
	for _, r := range p.rows {
		longest = max(longest, len([]rune(r.Command)))
	}
	return max(0, longest-max(1, p.Width-commandColumn))
}

// SetHostOffset clamps v to [-1, max offset].
func (p *ProcessPanel) SetHostOffset(v int) {
	v = min(v, p.maxHostOffset())
	v = max(v, -1)
	if v != p.hostOffset {
		p.hostOffset = v
		p.NeedRedraw = true
	}
}

// Lines renders the panel as plain text, width columns wide.
func (p *ProcessPanel) Lines(width int) []string {
	out := []string{
		fmt.Sprintf("%-4s %7s %-10s %10s %5s %5s  %s", "GPU", "PID", "USER", "GPU-MEM", "%CPU", "%MEM", "COMMAND"),
		strings.Repeat("=", width),
	}
	if len(p.rows) == 0 {
		out = append(out, "  No running processes found")
	}
	for _, r := range p.rows {
		out = append(out, p.rowText(r, width))
	}
	return append(out, strings.Repeat("-", width))
}

func (p *ProcessPanel) rowText(r model.Process, width int) string {
	dev, gmem := "H", "N/A"
	if r.Device != model.NoDevice {
		dev = fmt.Sprint(r.Device)
		gmem = mib(r.GPUMemMB)
	}
	cmd := r.Command
	if off := p.hostOffset; off > 0 {
		rs := []rune(cmd)
		cmd = "…" + string(rs[min(off+1, len(rs)):])
	}
	line := fmt.Sprintf("%-4s %7d %-10s %10s %5.1f %5.1f  %s",
		dev, r.PID, truncate(r.User, 10), gmem, r.CPU, r.Memory, cmd)
	return truncate(line, width)
}

func (p *ProcessPanel) Draw() {
	if !p.NeedRedraw {
		return
	}
	lines := p.Lines(p.Width)
	for i, line := range lines {
		style := plainCell
		if i == 0 {
			style = headerCell
		}
		p.AddStr(p.Y+i, p.X, padRight(line, p.Width), style)
	}
	if len(p.rows) == 0 {
		p.ColorAt(p.Y+2, p.X, p.Width, subtleCell)
	}
	if i := p.Selection.index; i >= 0 {
		p.ColorAt(p.Y+2+i, p.X, p.Width, selectedCell)
	}
	p.NeedRedraw = false
}

// Click selects the row under the pointer; the wheel moves the selection.
func (p *ProcessPanel) Click(ev term.MouseEvent) bool {
	switch {
	case ev.WheelUp():
		p.Selection.Move(-1)
	case ev.WheelDown():
		p.Selection.Move(1)
	case ev.Left():
		row := ev.Y - (p.Y + 2)
		if row < 0 || row >= len(p.rows) {
			return false
		}
		p.Selection.Set(row)
	default:
		return false
	}
	return true
}

// Selection tracks the highlighted process by row and PID.
type Selection struct {
	panel     *ProcessPanel
	index     int
	pid       int
	signaller Signaller
}

// Process returns the selected process, if any.
func (s *Selection) Process() (model.Process, bool) {
	if s.index < 0 || s.index >= len(s.panel.rows) {
		return model.Process{}, false
	}
	return s.panel.rows[s.index], true
}

// Set selects row i.
func (s *Selection) Set(i int) {
	if i < 0 || i >= len(s.panel.rows) {
		return
	}
	if i != s.index {
		s.panel.NeedRedraw = true
	}
	s.index = i
	s.pid = s.panel.rows[i].PID
}

// Move shifts the selection by n rows. Without a selection, a downward move
// starts at the first row and an upward one at the last.
func (s *Selection) Move(n int) {
	rows := len(s.panel.rows)
	if rows == 0 || n == 0 {
		return
	}
	switch {
	case s.index < 0 && n > 0:
		s.Set(0)
	case s.index < 0:
		s.Set(rows - 1)
	default:
		s.Set(min(max(s.index+n, 0), rows-1))
	}
}

func (s *Selection) Clear() {
	if s.index >= 0 {
		s.panel.NeedRedraw = true
	}
	s.index, s.pid = -1, 0
}

func (s *Selection) sync() {
	if s.index < 0 {
		return
	}
	for i, r := range s.panel.rows {
		if r.PID == s.pid {
			s.index = i
			return
		}
	}
	s.Clear()
}

func (s *Selection) send(sig syscall.Signal) error {
	proc, ok := s.Process()
	if !ok || s.signaller == nil {
		return nil
	}
	return s.signaller.Signal(proc.PID, sig)
}

func (s *Selection) Terminate() error { return s.send(syscall.SIGTERM) }

func (s *Selection) Kill() error { return s.send(syscall.SIGKILL) }

func (s *Selection) Interrupt() error { return s.send(syscall.SIGINT) }
