package binary

import (
	"strings"
	"testing"

	"github.com/mwangiiharun/hermes/internal/platform"
)

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		version string
		arch    platform.Arch
		want    string
		wantErr bool
	}{
		{
			name:    "arm64",
			tmpl:    DefaultURLTemplate,
			version: "1.2.0",
			arch:    platform.ArchARM64,
			want:    "https://install.speedtest.net/app/cli/ookla-speedtest-1.2.0-macosx-arm64.tgz",
		},
		{
			name:    "x86_64",
			tmpl:    DefaultURLTemplate,
			version: "1.2.0",
			arch:    platform.ArchX86_64,
			want:    "https://install.speedtest.net/app/cli/ookla-speedtest-1.2.0-macosx-x86_64.tgz",
		},
		{
			name:    "custom_template",
			tmpl:    "https://mirror.example.com/{{.Arch}}/speedtest-{{.Version}}.tgz",
			version: "1.1.1",
			arch:    platform.ArchARM64,
			want:    "https://mirror.example.com/arm64/speedtest-1.1.1.tgz",
		},
		{
			name:    "missing_version",
			tmpl:    DefaultURLTemplate,
			arch:    platform.ArchARM64,
			wantErr: true,
		},
		{
			name:    "invalid_arch",
			tmpl:    DefaultURLTemplate,
			version: "1.2.0",
			arch:    platform.Arch("amd64"),
			wantErr: true,
		},
		{
			name:    "unknown_field",
			tmpl:    "https://example.com/{{.OS}}.tgz",
			version: "1.2.0",
			arch:    platform.ArchARM64,
			wantErr: true,
		},
		{
			name:    "not_a_url",
			tmpl:    "speedtest-{{.Version}}.tgz",
			version: "1.2.0",
			arch:    platform.ArchARM64,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DownloadURL(tt.tmpl, tt.version, tt.arch)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DownloadURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DownloadURL() = %q, want %q", got, tt.want)
			}
			if !strings.Contains(got, tt.arch.String()) {
				t.Errorf("URL %q does not contain arch %q", got, tt.arch)
			}
		})
	}
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{
			url:  "https://install.speedtest.net/app/cli/ookla-speedtest-1.2.0-macosx-arm64.tgz",
			want: "ookla-speedtest-1.2.0-macosx-arm64.tgz",
		},
		{url: "https://example.com/a.tgz?token=x", want: "a.tgz"},
		{url: "https://example.com/", want: "download.tgz"},
		{url: "https://example.com", want: "download.tgz"},
	}

	for _, tt := range tests {
		if got := ArchiveName(tt.url); got != tt.want {
			t.Errorf("ArchiveName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
