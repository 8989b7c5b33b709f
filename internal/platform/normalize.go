package platform

import (
	"fmt"
	"strings"
)

// ArchFromMachine maps a machine string (uname -m, GOARCH) to a download
// architecture. Anything that reports ARM is arm64; everything else is x86_64.
func ArchFromMachine(machine string) Arch {
	m := normalizePlatform(machine)
	if strings.HasPrefix(m, "arm") || strings.HasPrefix(m, "aarch64") {
		return ArchARM64
	}
	return ArchX86_64
}

// ParseArch parses a user-supplied architecture name. It accepts the download
// spellings as well as the common aliases ("amd64", "aarch64").
func ParseArch(s string) (Arch, error) {
	switch normalizePlatform(s) {
	case "arm64", "aarch64":
		return ArchARM64, nil
	case "x86_64", "amd64", "x64":
		return ArchX86_64, nil
	default:
		return "", fmt.Errorf("unsupported architecture: %q (want arm64 or x86_64)", s)
	}
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
