package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   string
	goarch string
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// Detect performs platform detection and returns platform information.
//
// The OS comes from the Go runtime. gopsutil adds distro details and is
// allowed to fail: in that case the runtime values are used alone. Android
// reports itself as Linux to gopsutil, so the runtime OS always wins.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   d.goos,
		Arch: d.goarch,
	}

	stat, err := host.InfoWithContext(ctx)
	if err != nil {
		// Cancellation is a hard failure, anything else falls back to runtime values
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
	} else if stat != nil {
		if info.OS == "" {
			info.OS = normalizeName(stat.OS)
		}
		if info.IsLinux() {
			info.Distro = normalizeName(stat.Platform)
			info.Family = mapFamily(stat.PlatformFamily)
		}
		info.Version = normalizeName(stat.PlatformVersion)
	}

	info.Platform = fromGOOS(info.OS)
	return info, nil
}
