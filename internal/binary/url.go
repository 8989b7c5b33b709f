package binary

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/mwangiiharun/hermes/internal/platform"
)

// DefaultURLTemplate is Ookla's macOS CLI archive.
// Pattern: https://install.speedtest.net/app/cli/ookla-speedtest-{version}-macosx-{arch}.tgz
const DefaultURLTemplate = "https://install.speedtest.net/app/cli/ookla-speedtest-{{.Version}}-macosx-{{.Arch}}.tgz"

// URLData is the value templates are rendered with.
type URLData struct {
	Version string
	Arch    string
}

// DownloadURL renders a download URL template for a version and architecture.
func DownloadURL(tmpl, version string, arch platform.Arch) (string, error) {
	if version == "" {
		return "", fmt.Errorf("version is required")
	}
	if !arch.Valid() {
		return "", fmt.Errorf("unsupported architecture: %q", arch)
	}

	t, err := template.New("url").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse url template: %w", err)
	}

	var b strings.Builder
	if err := t.Execute(&b, URLData{Version: version, Arch: arch.String()}); err != nil {
		return "", fmt.Errorf("render url template: %w", err)
	}

	rendered := b.String()
	u, err := url.Parse(rendered)
	if err != nil {
		return "", fmt.Errorf("invalid download url %q: %w", rendered, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid download url %q: scheme and host are required", rendered)
	}

	return rendered, nil
}

// ArchiveName returns the file name component of a download URL.
func ArchiveName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "download.tgz"
	}
	name := u.Path[strings.LastIndex(u.Path, "/")+1:]
	if name == "" {
		return "download.tgz"
	}
	return name
}
