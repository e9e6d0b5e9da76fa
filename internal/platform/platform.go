// Package platform detects the host platform for zshup.
//
// zshup only installs packages on Debian-family systems (apt), so the main
// question this package answers is "can the package step run here". The
// detected information is also exposed to Lua config overrides as a
// read-only table, letting users adjust plugin and package lists per
// platform.
package platform

import (
	"context"
	"strings"
)

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	OS      string // "linux", "darwin"
	Arch    string // GOARCH (e.g. "amd64", "arm64")
	Distro  string // distro ID (Linux only, e.g. "ubuntu")
	Family  string // canonical family (e.g. "debian")
	Version string // distro version (Linux only, e.g. "24.04")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsDebianFamily returns true if the Linux distribution is Debian-based.
// This gates the apt package step.
func (i *Info) IsDebianFamily() bool {
	return i.OS == "linux" && i.Family == FamilyDebian
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// familyMap maps distribution names to their canonical family names,
// normalizing the variations gopsutil reports.
var familyMap = map[string]string{
	"debian":  FamilyDebian,
	"ubuntu":  FamilyDebian,
	"mint":    FamilyDebian,
	"rhel":    FamilyRHEL,
	"centos":  FamilyRHEL,
	"rocky":   FamilyRHEL,
	"fedora":  FamilyFedora,
	"arch":    FamilyArch,
	"manjaro": FamilyArch,
	"alpine":  FamilyAlpine,
}

// mapFamily maps a distribution family string to a canonical family name.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}

// normalizeID converts platform IDs to lowercase for consistency.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
