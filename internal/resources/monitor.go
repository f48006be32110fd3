// Package resources samples local CPU, memory and disk utilization.
package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/grovetools/core/logging"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"
)

const (
	DefaultWindow   = time.Second
	DefaultDiskPath = "/"
)

// Sample is a single utilization reading. Every field is a percentage in [0, 100].
type Sample struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
}

// Monitor reads utilization from the operating system. CPU usage is
// measured over a blocking window; memory and disk are point-in-time reads.
type Monitor struct {
	window   time.Duration
	diskPath string
	logger   *logrus.Entry

	cpuPercent    func(ctx context.Context, window time.Duration) (float64, error)
	memoryPercent func(ctx context.Context) (float64, error)
	diskPercent   func(ctx context.Context, path string) (float64, error)
}

// NewMonitor creates a Monitor. A zero window or empty path selects the defaults.
func NewMonitor(window time.Duration, diskPath string) *Monitor {
	if window <= 0 {
		window = DefaultWindow
	}
	if diskPath == "" {
		diskPath = DefaultDiskPath
	}
	return &Monitor{
		window:        window,
		diskPath:      diskPath,
		logger:        logging.NewLogger("devdash-resources"),
		cpuPercent:    hostCPUPercent,
		memoryPercent: hostMemoryPercent,
		diskPercent:   hostDiskPercent,
	}
}

// Window returns the CPU sampling window.
func (m *Monitor) Window() time.Duration {
	return m.window
}

// Sample blocks for the CPU window and returns the current readings. A
// metric that cannot be read is reported as 0.
func (m *Monitor) Sample(ctx context.Context) Sample {
	var s Sample
	var err error

	if s.CPUPercent, err = m.cpuPercent(ctx, m.window); err != nil {
		m.logger.WithError(err).Debug("CPU utilization unavailable")
	}
	if s.MemoryPercent, err = m.memoryPercent(ctx); err != nil {
		m.logger.WithError(err).Debug("Memory utilization unavailable")
	}
	if s.DiskPercent, err = m.diskPercent(ctx, m.diskPath); err != nil {
		m.logger.WithError(err).WithField("path", m.diskPath).Debug("Disk utilization unavailable")
	}

	s.CPUPercent = clamp(s.CPUPercent)
	s.MemoryPercent = clamp(s.MemoryPercent)
	s.DiskPercent = clamp(s.DiskPercent)
	return s
}

func clamp(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func hostCPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	values, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("no cpu readings")
	}
	return values[0], nil
}

func hostMemoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func hostDiskPercent(ctx context.Context, path string) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return usage.UsedPercent, nil
}
