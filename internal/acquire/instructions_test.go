package acquire

import (
	"strings"
	"testing"
)

func TestManualInstructions(t *testing.T) {
	tests := []struct {
		name    string
		manual  Manual
		want    []string
		notWant []string
	}{
		{
			name: "full",
			manual: Manual{
				Tap:          "teamookla/speedtest",
				Package:      "speedtest",
				DownloadPage: "https://www.speedtest.net/apps/cli",
			},
			want: []string{
				"speedtest is optional; to install it manually:",
				"brew tap teamookla/speedtest && brew install speedtest",
				"or download it from https://www.speedtest.net/apps/cli",
				"then place speedtest on your PATH",
			},
		},
		{
			name:    "custom_package_manager",
			manual:  Manual{PackageManager: "port", Tap: "a/b", Package: "c"},
			want:    []string{"port tap a/b && port install c"},
			notWant: []string{"brew", "download it from"},
		},
		{
			name:    "download_only",
			manual:  Manual{DownloadPage: "https://example.com"},
			want:    []string{"or download it from https://example.com"},
			notWant: []string{" tap "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ManualInstructions("speedtest", tt.manual)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ManualInstructions() = %q, want %q", got, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("ManualInstructions() = %q, should not contain %q", got, w)
				}
			}
		})
	}
}
