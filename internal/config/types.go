// Package config loads the hermes-setup Lua configuration: which optional
// executable to acquire, where it comes from, and how downloads behave.
//
// User code runs in a sandboxed gopher-lua VM with a read-only "platform"
// table, so a config can branch on the host:
//
//	hermes = {
//	  speedtest = {
//	    version = "1.2.0",
//	    strategies = platform.is_macos and { "tap", "download" } or { "download" },
//	  },
//	}
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mwangiiharun/hermes/internal/binary"
	"github.com/mwangiiharun/hermes/internal/platform"
)

// Config is the complete hermes-setup configuration.
type Config struct {
	Speedtest Speedtest
	Download  Download
}

// Speedtest describes the optional executable and its acquisition sources.
type Speedtest struct {
	// Name of the executable and of the extracted archive entry
	Name    string
	Version string

	// Tap and Package are handed to PackageManager
	Tap            string
	Package        string
	PackageManager string

	// URL is a text/template with .Version and .Arch
	URL          string
	DownloadPage string

	// SHA256 maps an architecture to the expected archive digest
	SHA256       map[platform.Arch]string
	SignatureURL string
	Keyring      string

	// Strategies are tried in order after the local and PATH checks
	Strategies []string
	Extractor  string

	// InstallDir overrides the default bin directory
	InstallDir string
}

// Download configures the HTTP fetch.
type Download struct {
	Timeout time.Duration
	// Retries after the first attempt; 0 disables retrying
	Retries  int
	Progress bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Speedtest: Speedtest{
			Name:           DefaultName,
			Version:        DefaultVersion,
			Tap:            DefaultTap,
			Package:        DefaultPackage,
			PackageManager: DefaultPackageManager,
			URL:            binary.DefaultURLTemplate,
			DownloadPage:   DefaultDownloadPage,
			Strategies:     []string{StrategyTap, StrategyDownload},
			Extractor:      binary.ExtractorTar,
		},
		Download: Download{
			Timeout:  DefaultTimeout,
			Retries:  DefaultRetries,
			Progress: true,
		},
	}
}

// ExpectedSHA256 returns the configured digest for arch, or "".
func (s *Speedtest) ExpectedSHA256(arch platform.Arch) string {
	return s.SHA256[arch]
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var (
	sha256Pattern  = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
	versionPattern = regexp.MustCompile(`^[0-9A-Za-z._+-]+$`)
	tapPattern     = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

// Validate checks every field that ends up in a path, URL or command line.
func (c *Config) Validate() error {
	s := &c.Speedtest

	if err := validateName(s.Name); err != nil {
		return &ValidationError{Field: "speedtest.name", Message: err.Error()}
	}
	if !versionPattern.MatchString(s.Version) {
		return &ValidationError{Field: "speedtest.version", Message: fmt.Sprintf("invalid version %q", s.Version)}
	}

	if len(s.Strategies) == 0 {
		return &ValidationError{Field: "speedtest.strategies", Message: "at least one strategy is required"}
	}
	seen := make(map[string]bool, len(s.Strategies))
	for i, name := range s.Strategies {
		if name != StrategyTap && name != StrategyDownload {
			return &ValidationError{
				Field:   fmt.Sprintf("speedtest.strategies[%d]", i+1),
				Message: fmt.Sprintf("unknown strategy %q (expected %q or %q)", name, StrategyTap, StrategyDownload),
			}
		}
		if seen[name] {
			return &ValidationError{
				Field:   fmt.Sprintf("speedtest.strategies[%d]", i+1),
				Message: fmt.Sprintf("strategy %q listed twice", name),
			}
		}
		seen[name] = true
	}

	if c.Uses(StrategyTap) {
		if !tapPattern.MatchString(s.Tap) {
			return &ValidationError{Field: "speedtest.tap", Message: fmt.Sprintf("expected user/repo, got %q", s.Tap)}
		}
		if s.Package == "" || strings.HasPrefix(s.Package, "-") {
			return &ValidationError{Field: "speedtest.package", Message: fmt.Sprintf("invalid package %q", s.Package)}
		}
		if err := validateName(s.PackageManager); err != nil {
			return &ValidationError{Field: "speedtest.package_manager", Message: err.Error()}
		}
	}

	if c.Uses(StrategyDownload) {
		if err := validateHTTPS(s.URL); err != nil {
			return &ValidationError{Field: "speedtest.url", Message: err.Error()}
		}
		if s.Extractor != binary.ExtractorTar && s.Extractor != binary.ExtractorBuiltin {
			return &ValidationError{
				Field:   "speedtest.extractor",
				Message: fmt.Sprintf("unknown extractor %q (expected %q or %q)", s.Extractor, binary.ExtractorTar, binary.ExtractorBuiltin),
			}
		}
	}

	if s.DownloadPage != "" {
		if err := validateHTTPS(s.DownloadPage); err != nil {
			return &ValidationError{Field: "speedtest.download_page", Message: err.Error()}
		}
	}

	for arch, sum := range s.SHA256 {
		if !arch.Valid() {
			return &ValidationError{Field: "speedtest.sha256", Message: fmt.Sprintf("unknown architecture %q", arch)}
		}
		if !sha256Pattern.MatchString(sum) {
			return &ValidationError{Field: "speedtest.sha256." + arch.String(), Message: "expected 64 hex characters"}
		}
	}

	if s.SignatureURL != "" {
		if err := validateHTTPS(s.SignatureURL); err != nil {
			return &ValidationError{Field: "speedtest.signature_url", Message: err.Error()}
		}
		if s.Keyring == "" {
			return &ValidationError{Field: "speedtest.keyring", Message: "required when signature_url is set"}
		}
	}

	if c.Download.Timeout <= 0 {
		return &ValidationError{Field: "download.timeout", Message: "must be positive"}
	}
	if c.Download.Retries < 0 {
		return &ValidationError{Field: "download.retries", Message: "cannot be negative"}
	}
	if c.Download.Retries > binary.MaxRetries {
		return &ValidationError{Field: "download.retries", Message: fmt.Sprintf("cannot exceed %d", binary.MaxRetries)}
	}

	return nil
}

// Uses reports whether strategy is enabled.
func (c *Config) Uses(strategy string) bool {
	for _, s := range c.Speedtest.Strategies {
		if s == strategy {
			return true
		}
	}
	return false
}

// validateName rejects anything that is not a bare file name.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("cannot be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("must be a plain file name, got %q", name)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("cannot start with '-': %q", name)
	}
	return nil
}

// validateHTTPS checks the literal prefix of a URL or URL template.
func validateHTTPS(raw string) error {
	if raw == "" {
		return fmt.Errorf("cannot be empty")
	}
	// Only the part before the first template action is checked
	head := raw
	if i := strings.Index(head, "{{"); i >= 0 {
		head = head[:i]
	}
	u, err := url.Parse(head)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("URL must use https:// (got: %q)", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host: %q", raw)
	}
	return nil
}
