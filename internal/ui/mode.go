package ui

import "fmt"

// Mode selects the device panel layout.
type Mode int

const (
	ModeAuto Mode = iota
	ModeFull
	ModeCompact
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeCompact:
		return "compact"
	default:
		return "auto"
	}
}

// ParseMode accepts auto, full or compact.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto", "":
		return ModeAuto, nil
	case "full":
		return ModeFull, nil
	case "compact":
		return ModeCompact, nil
	}
	return ModeAuto, fmt.Errorf("unknown mode %q", s)
}
