// Package platform detects the host operating system and CPU architecture
// and maps them onto the architecture names used in vendor download URLs.
//
// Detection uses gopsutil for the kernel machine string and falls back to
// runtime.GOARCH when the host cannot be queried. The result is also exposed
// to Lua configurations as a read-only "platform" table.
package platform

import "context"

// Arch is a download architecture. The value is derived once per process
// and is the spelling vendors use in archive names.
type Arch string

const (
	// ArchARM64 is any ARM CPU (Apple Silicon, aarch64 Linux).
	ArchARM64 Arch = "arm64"
	// ArchX86_64 is every non-ARM CPU.
	ArchX86_64 Arch = "x86_64"
)

// String returns the string representation of the architecture.
func (a Arch) String() string {
	return string(a)
}

// Valid reports whether a is one of the known architectures.
func (a Arch) Valid() bool {
	return a == ArchARM64 || a == ArchX86_64
}

// Info contains platform detection information.
type Info struct {
	OS         string // "darwin", "linux", "windows"
	Arch       Arch   // normalized download architecture
	KernelArch string // raw machine string as reported by the host (e.g. "aarch64")
	Platform   string // host platform ID as reported by gopsutil (e.g. "darwin", "ubuntu")
	Version    string // platform version (e.g. "14.4.1")
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsARM64 returns true if the CPU reports ARM.
func (i *Info) IsARM64() bool {
	return i.Arch == ArchARM64
}

// IsX86_64 returns true if the CPU is not ARM.
func (i *Info) IsX86_64() bool {
	return i.Arch == ArchX86_64
}

// IsAppleSilicon returns true if running on Apple Silicon (macOS + arm64).
func (i *Info) IsAppleSilicon() bool {
	return i.IsMacOS() && i.IsARM64()
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when the architecture is
// forced from the command line and in tests.
type StaticDetector struct {
	Info Info
}

// Detect returns a copy of the configured info.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	info := s.Info
	return &info, nil
}
