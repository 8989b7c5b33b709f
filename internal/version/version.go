// Package version extracts version numbers from tool output.
package version

import (
	"fmt"
	"regexp"
)

var versionRegex = regexp.MustCompile(`\d+\.\d+\.\d+`)

// Extract extracts the first semantic version from command output, e.g.
// "1.2.0" from "Speedtest by Ookla 1.2.0.84 (ea6b6773cf) Darwin 23.4.0 arm64".
func Extract(output string) (string, error) {
	match := versionRegex.FindString(output)
	if match == "" {
		return "", fmt.Errorf("no version found in output")
	}
	return match, nil
}
