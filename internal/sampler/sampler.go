package sampler

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// maxProcesses bounds the process list; GPU processes are always kept.
const maxProcesses = 64

// Sampler periodically emits Samples built from procfs and best-effort
// nvidia-smi reads, and keeps the latest one for readers on other goroutines.
type Sampler struct {
	Interval  time.Duration
	EnableGPU bool

	prevTotal float64
	prevIdle  float64
	prevCore  []cpu.TimesStat

	// GPU async
	gpuData  []model.Device
	gpuProcs map[int]gpuProc
	gpuMu    sync.RWMutex

	latest   model.Sample
	latestMu sync.RWMutex
}

type gpuProc struct {
	device int
	memMB  float64
}

func New(interval time.Duration, enableGPU bool) *Sampler {
	return &Sampler{
		Interval:  interval,
		EnableGPU: enableGPU,
		latest:    model.Zero(),
	}
}

// Stream returns a channel that will receive snapshots until ctx is done.
func (s *Sampler) Stream(ctx context.Context) <-chan model.Sample {
	ch := make(chan model.Sample)
	if s.EnableGPU {
		go s.gpuLoop(ctx)
	}
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case t := <-ticker.C:
				select {
				case ch <- s.sample(t):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Watch stores every streamed snapshot and calls notify after each one. It
// returns when ctx is done.
func (s *Sampler) Watch(ctx context.Context, notify func()) {
	for sample := range s.Stream(ctx) {
		s.publish(sample)
		if notify != nil {
			notify()
		}
	}
}

// Collect takes a single snapshot outside the stream, priming CPU deltas
// first.
func (s *Sampler) Collect(ctx context.Context) model.Sample {
	s.cpuPercents()
	if s.EnableGPU {
		s.updateGPU()
	}
	select {
	case <-time.After(250 * time.Millisecond):
	case <-ctx.Done():
	}
	sample := s.sample(time.Now())
	s.publish(sample)
	return sample
}

// Snapshot returns the most recent sample.
func (s *Sampler) Snapshot() model.Sample {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return s.latest
}

func (s *Sampler) publish(sample model.Sample) {
	s.latestMu.Lock()
	s.latest = sample
	s.latestMu.Unlock()
}

// Signal delivers sig to pid.
func (s *Sampler) Signal(pid int, sig syscall.Signal) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := p.SendSignal(sig); err != nil {
		return fmt.Errorf("signal %d to process %d: %w", sig, pid, err)
	}
	return nil
}

func (s *Sampler) sample(now time.Time) model.Sample {
	memStat, _ := mem.VirtualMemory()
	swapStat, _ := mem.SwapMemory()

	cpuPct, corePct := s.cpuPercents()
	loadAvg, _ := load.Avg()

	s.gpuMu.RLock()
	devices := s.gpuData
	gpuProcs := s.gpuProcs
	s.gpuMu.RUnlock()

	host := model.Host{
		CPUPercent: cpuPct,
		PerCore:    corePct,
	}
	if loadAvg != nil {
		host.Load1, host.Load5, host.Load15 = loadAvg.Load1, loadAvg.Load5, loadAvg.Load15
	}
	if memStat != nil {
		host.MemUsed, host.MemTotal = memStat.Used, memStat.Total
	}
	if swapStat != nil {
		host.SwapUsed, host.SwapTotal = swapStat.Used, swapStat.Total
	}

	return model.Sample{
		Timestamp: now,
		Interval:  s.Interval,
		Host:      host,
		Devices:   devices,
		Processes: s.processes(gpuProcs),
	}
}

// CPU percentages from times delta.
func (s *Sampler) cpuPercents() (total float64, perCore []float64) {
	times, _ := cpu.Times(false)
	if len(times) == 0 {
		return 0, nil
	}
	cur := times[0]
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait
	if s.prevTotal > 0 {
		dt := curTotal - s.prevTotal
		di := curIdle - s.prevIdle
		if dt > 0 {
			total = 100 * (1 - di/dt)
		}
	}
	s.prevTotal, s.prevIdle = curTotal, curIdle

	coreTimes, _ := cpu.Times(true)
	perCore = make([]float64, len(coreTimes))
	for i, c := range coreTimes {
		if i >= len(s.prevCore) {
			continue
		}
		prev := s.prevCore[i]
		dt := c.Total() - prev.Total()
		di := (c.Idle + c.Iowait) - (prev.Idle + prev.Iowait)
		if dt > 0 {
			perCore[i] = 100 * (1 - di/dt)
		}
	}
	s.prevCore = coreTimes
	return
}

func (s *Sampler) processes(gpuProcs map[int]gpuProc) []model.Process {
	procs, _ := process.Processes()
	var out []model.Process
	for _, p := range procs {
		// Skip kernel threads without name
		name, _ := p.Name()
		if name == "" {
			continue
		}
		cpuPct, _ := p.CPUPercent()
		memPct, _ := p.MemoryPercent()
		user, _ := p.Username()
		cmd, _ := p.Cmdline()
		if cmd == "" {
			cmd = name
		}
		entry := model.Process{
			PID:     int(p.Pid),
			User:    user,
			Command: truncate(cmd, 120),
			CPU:     cpuPct,
			Memory:  float64(memPct),
			Device:  model.NoDevice,
		}
		if gp, ok := gpuProcs[entry.PID]; ok {
			entry.Device = gp.device
			entry.GPUMemMB = gp.memMB
		}
		out = append(out, entry)
	}
	return rankProcesses(out, maxProcesses)
}

// rankProcesses orders GPU processes first (by device, then GPU memory) and
// the rest by CPU, keeping every GPU process and at most limit entries
// overall otherwise.
func rankProcesses(procs []model.Process, limit int) []model.Process {
	sort.SliceStable(procs, func(i, j int) bool {
		a, b := procs[i], procs[j]
		aGPU, bGPU := a.Device != model.NoDevice, b.Device != model.NoDevice
		if aGPU != bGPU {
			return aGPU
		}
		if aGPU && a.Device != b.Device {
			return a.Device < b.Device
		}
		if aGPU && a.GPUMemMB != b.GPUMemMB {
			return a.GPUMemMB > b.GPUMemMB
		}
		return a.CPU > b.CPU
	})
	if len(procs) <= limit {
		return procs
	}
	n := limit
	for n < len(procs) && procs[n].Device != model.NoDevice {
		n++
	}
	return procs[:n]
}

func (s *Sampler) gpuLoop(ctx context.Context) {
	// Initial fetch
	s.updateGPU()

	// Poll GPU slower than main loop to reduce overhead/stutter
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateGPU()
		}
	}
}

func (s *Sampler) updateGPU() {
	devices := s.queryGPU()
	procs := s.queryComputeApps(devices)
	s.gpuMu.Lock()
	s.gpuData = devices
	s.gpuProcs = procs
	s.gpuMu.Unlock()
}

func (s *Sampler) queryGPU() []model.Device {
	out, _ := runCmd(400*time.Millisecond, "nvidia-smi",
		"--query-gpu=index,uuid,name,utilization.gpu,memory.used,memory.total,temperature.gpu",
		"--format=csv,noheader,nounits")
	return parseDevices(out)
}

func (s *Sampler) queryComputeApps(devices []model.Device) map[int]gpuProc {
	if len(devices) == 0 {
		return nil
	}
	out, _ := runCmd(400*time.Millisecond, "nvidia-smi",
		"--query-compute-apps=gpu_uuid,pid,used_memory",
		"--format=csv,noheader,nounits")
	return parseComputeApps(out, devices)
}

func parseDevices(out string) []model.Device {
	if out == "" {
		return nil
	}
	var devices []model.Device
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 7 {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		devices = append(devices, model.Device{
			Index:      idx,
			UUID:       strings.TrimSpace(parts[1]),
			Name:       strings.TrimSpace(parts[2]),
			Util:       parseFloat(parts[3]),
			MemUsedMB:  parseFloat(parts[4]),
			MemTotalMB: parseFloat(parts[5]),
			TempC:      parseFloat(parts[6]),
		})
	}
	return devices
}

// parseComputeApps maps pid to its GPU usage. A process on several devices
// is attributed to the lowest index with its memory summed.
func parseComputeApps(out string, devices []model.Device) map[int]gpuProc {
	byUUID := make(map[string]int, len(devices))
	for _, d := range devices {
		byUUID[d.UUID] = d.Index
	}
	procs := make(map[int]gpuProc)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 3 {
			continue
		}
		idx, ok := byUUID[strings.TrimSpace(parts[0])]
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		gp, seen := procs[pid]
		if !seen || idx < gp.device {
			gp.device = idx
		}
		gp.memMB += parseFloat(parts[2])
		procs[pid] = gp
	}
	return procs
}

// Helpers
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func runCmd(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}
