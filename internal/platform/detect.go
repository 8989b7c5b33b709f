package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	// hostInfo is swapped out in tests.
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
	goarch   string
	goos     string
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{
		hostInfo: host.InfoWithContext,
		goarch:   runtime.GOARCH,
		goos:     runtime.GOOS,
	}
}

// Detect performs platform detection and returns platform information.
//
// The kernel machine string from gopsutil decides the architecture. If the
// host query fails (sandboxed builds, missing /proc) the compiled GOARCH is
// used instead. Only a cancelled context is a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:         d.goos,
		KernelArch: d.goarch,
	}

	stat, err := d.hostInfo(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		info.Arch = ArchFromMachine(d.goarch)
		return info, nil
	}

	if stat.OS != "" {
		info.OS = normalizePlatform(stat.OS)
	}
	if machine := normalizePlatform(stat.KernelArch); machine != "" {
		info.KernelArch = machine
	}
	info.Platform = normalizePlatform(stat.Platform)
	info.Version = normalizePlatform(stat.PlatformVersion)
	info.Arch = ArchFromMachine(info.KernelArch)

	return info, nil
}
