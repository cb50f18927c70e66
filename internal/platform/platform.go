// Package platform samples host/container resource usage for the
// driver's live stats and TUI, adapted from src/cgroup.go and
// ws/internal/single/platform/cgroup_cpu.go's cgroup-aware
// measurement, using gopsutil instead of hand-rolled /proc parsing
// where gopsutil already covers the same ground (it does not expose
// cgroup memory.max directly, so that one check is kept as a direct
// file read, as the cgroup helper in src/cgroup.go does).
package platform

import (
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Sample is a point-in-time resource reading.
type Sample struct {
	CPUPercent    float64
	MemoryUsed    uint64
	MemoryLimit   int64 // 0 means "no cgroup limit detected"
	NumGoroutines int
}

// Read samples current CPU percent (measured since the previous CPU
// sample rather than over a fixed window) and memory
// usage via gopsutil, plus the container memory limit via cgroup
// files when present.
func Read(numGoroutines int) (Sample, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return Sample{}, err
	}
	var cpuPct float64
	if len(percents) > 0 {
		cpuPct = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		CPUPercent:    cpuPct,
		MemoryUsed:    vm.Used,
		MemoryLimit:   cgroupMemoryLimit(),
		NumGoroutines: numGoroutines,
	}, nil
}

// cgroupMemoryLimit mirrors src/cgroup.go's getMemoryLimit: cgroup v2
// first, then v1, then "no limit detected".
func cgroupMemoryLimit() int64 {
	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		limitStr := strings.TrimSpace(string(data))
		if limitStr != "max" {
			if v, err := strconv.ParseInt(limitStr, 10, 64); err == nil {
				return v
			}
		}
		return 0
	}
	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil {
			return v
		}
	}
	return 0
}
