package model

import "time"

// Host aggregates machine-wide CPU and memory usage.
type Host struct {
	CPUPercent float64   // percent 0-100
	PerCore    []float64 // per-core percent
	Load1      float64
	Load5      float64
	Load15     float64

	MemUsed   uint64 // bytes
	MemTotal  uint64
	SwapUsed  uint64
	SwapTotal uint64
}

// MemPercent is used memory as a percentage of total.
func (h Host) MemPercent() float64 { return pct(float64(h.MemUsed), float64(h.MemTotal)) }

// SwapPercent is used swap as a percentage of total.
func (h Host) SwapPercent() float64 { return pct(float64(h.SwapUsed), float64(h.SwapTotal)) }

// Device holds a single GPU snapshot.
type Device struct {
	Index      int
	UUID       string
	Name       string
	Util       float64 // percent
	MemUsedMB  float64
	MemTotalMB float64
	TempC      float64
}

// MemPercent is used device memory as a percentage of total.
func (d Device) MemPercent() float64 { return pct(d.MemUsedMB, d.MemTotalMB) }

// NoDevice marks a process that holds no GPU context.
const NoDevice = -1

// Process is a lightweight process table entry.
type Process struct {
	PID      int
	User     string
	Command  string
	CPU      float64 // percent of one core
	Memory   float64 // percent of host memory
	Device   int     // device index or NoDevice
	GPUMemMB float64
}

// Sample is the full snapshot exchanged between sampler and UI.
type Sample struct {
	Timestamp time.Time
	Interval  time.Duration
	Host      Host
	Devices   []Device
	Processes []Process
}

// Zero returns an empty sample for initialization.
func Zero() Sample { return Sample{Timestamp: time.Now()} }

func pct(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return used / total * 100
}
