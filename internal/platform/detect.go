package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns platform information for the current host. OS and
// architecture come from the runtime; Linux distribution details come from
// gopsutil. When distro detection fails the distro fields stay empty and
// detection still succeeds, because only the package step needs them.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if runtime.GOOS != "linux" {
		return info, nil
	}

	id, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		// Graceful fallback: OS/arch alone is enough for everything
		// except the apt gate, which will refuse on unknown family.
		return info, nil
	}

	if id = normalizeID(id); id != "" {
		info.Distro = id
		info.Family = mapFamily(family)
		if info.Family == FamilyUnknown {
			// Some hosts report family oddly but the ID itself is a
			// well-known distro.
			info.Family = mapFamily(id)
		}
		info.Version = normalizeID(version)
	}

	return info, nil
}
