package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect performs platform detection and returns platform information.
// OS and architecture come from runtime.GOOS and runtime.GOARCH; gopsutil
// adds the kernel architecture, which NativeKey uses to detect emulation,
// and the distribution, which is only logged.
//
// If gopsutil fails the extra fields are left empty and detection still
// succeeds, unless the context was cancelled.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OSRaw:   runtime.GOOS,
		ArchRaw: runtime.GOARCH,
		OS:      MapOS(runtime.GOOS),
		Arch:    MapArch(runtime.GOARCH),
	}

	stat, err := host.InfoWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	info.KernelArch = stat.KernelArch
	info.Distro = normalizeID(stat.Platform)

	return info, nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
