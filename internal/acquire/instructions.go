package acquire

import (
	"fmt"
	"strings"
)

// Manual describes how a user can install the executable by hand.
type Manual struct {
	PackageManager string
	Tap            string
	Package        string
	DownloadPage   string
}

// ManualInstructions renders the installation hint appended to the final
// warning. Missing parts are left out.
func ManualInstructions(name string, m Manual) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is optional; to install it manually:", name)

	pm := m.PackageManager
	if pm == "" {
		pm = "brew"
	}
	if m.Tap != "" && m.Package != "" {
		fmt.Fprintf(&b, "\n  %s tap %s && %s install %s", pm, m.Tap, pm, m.Package)
	}
	if m.DownloadPage != "" {
		fmt.Fprintf(&b, "\n  or download it from %s", m.DownloadPage)
	}
	fmt.Fprintf(&b, "\n  then place %s on your PATH", name)

	return b.String()
}
