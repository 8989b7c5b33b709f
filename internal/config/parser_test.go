package config

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mwangiiharun/hermes/internal/binary"
	"github.com/mwangiiharun/hermes/internal/platform"
)

const (
	armSum = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	x86Sum = "BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
)

func macDetector(arch platform.Arch) platform.Detector {
	return platform.StaticDetector{Info: platform.Info{OS: "darwin", Arch: arch, KernelArch: arch.String()}}
}

func TestParser_ParseString_Minimal(t *testing.T) {
	cfg, err := NewParser(nil).ParseString(context.Background(), `hermes = {}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	want := Default()
	if cfg.Speedtest.Name != want.Speedtest.Name || cfg.Speedtest.Version != want.Speedtest.Version {
		t.Errorf("Speedtest = %+v, want defaults", cfg.Speedtest)
	}
	if cfg.Speedtest.URL != binary.DefaultURLTemplate {
		t.Errorf("URL = %s, want default template", cfg.Speedtest.URL)
	}
	if len(cfg.Speedtest.Strategies) != 2 {
		t.Errorf("Strategies = %v, want [tap download]", cfg.Speedtest.Strategies)
	}
}

func TestParser_ParseString_Full(t *testing.T) {
	luaCode := `
		hermes = {
			speedtest = {
				name = "speedtest",
				version = "1.2.1",
				tap = "example/tools",
				package = "speedtest-cli",
				package_manager = "brew",
				url = "https://mirror.example.com/st-{{.Version}}-{{.Arch}}.tgz",
				download_page = "https://mirror.example.com/",
				sha256 = {
					arm64 = "` + armSum + `",
					amd64 = "` + x86Sum + `",
				},
				signature_url = "https://mirror.example.com/st-{{.Version}}-{{.Arch}}.tgz.asc",
				keyring = "~/.config/hermes/ookla.gpg",
				strategies = { "download", "tap" },
				extractor = "builtin",
				install_dir = "~/bin",
			},
			download = {
				timeout = 30,
				retries = 0,
				progress = false,
			},
		}
	`

	cfg, err := NewParser(nil).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	s := cfg.Speedtest
	if s.Version != "1.2.1" || s.Tap != "example/tools" || s.Package != "speedtest-cli" {
		t.Errorf("Speedtest = %+v", s)
	}
	if s.Extractor != binary.ExtractorBuiltin {
		t.Errorf("Extractor = %s, want builtin", s.Extractor)
	}
	if s.InstallDir != "~/bin" {
		t.Errorf("InstallDir = %s, want ~/bin", s.InstallDir)
	}
	if got := strings.Join(s.Strategies, ","); got != "download,tap" {
		t.Errorf("Strategies = %s, want download,tap", got)
	}
	if s.ExpectedSHA256(platform.ArchARM64) != armSum {
		t.Errorf("arm64 sha256 = %s", s.ExpectedSHA256(platform.ArchARM64))
	}
	if s.ExpectedSHA256(platform.ArchX86_64) != strings.ToLower(x86Sum) {
		t.Errorf("x86_64 sha256 = %s, want normalized lowercase", s.ExpectedSHA256(platform.ArchX86_64))
	}

	d := cfg.Download
	if d.Timeout != 30*time.Second || d.Retries != 0 || d.Progress {
		t.Errorf("Download = %+v", d)
	}
}

func TestParser_ParseString_PlatformConditionals(t *testing.T) {
	luaCode := `
		hermes = {
			speedtest = {
				strategies = { platform.is_macos and "tap" or nil, "download" },
				version = platform.when(platform.is_apple_silicon, "1.2.0-arm") or "1.2.0",
			},
		}
	`

	tests := []struct {
		name           string
		detector       platform.Detector
		wantStrategies string
		wantVersion    string
	}{
		{
			name:           "apple_silicon",
			detector:       macDetector(platform.ArchARM64),
			wantStrategies: "tap,download",
			wantVersion:    "1.2.0-arm",
		},
		{
			name:           "intel_mac",
			detector:       macDetector(platform.ArchX86_64),
			wantStrategies: "tap,download",
			wantVersion:    "1.2.0",
		},
		{
			name:           "linux",
			detector:       platform.StaticDetector{Info: platform.Info{OS: "linux", Arch: platform.ArchARM64}},
			wantStrategies: "download",
			wantVersion:    "1.2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewParser(tt.detector).ParseString(context.Background(), luaCode)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if got := strings.Join(cfg.Speedtest.Strategies, ","); got != tt.wantStrategies {
				t.Errorf("Strategies = %s, want %s", got, tt.wantStrategies)
			}
			if cfg.Speedtest.Version != tt.wantVersion {
				t.Errorf("Version = %s, want %s", cfg.Speedtest.Version, tt.wantVersion)
			}
		})
	}
}

func TestParser_ParseString_PlatformReadOnly(t *testing.T) {
	_, err := NewParser(macDetector(platform.ArchARM64)).ParseString(context.Background(), `
		platform.arch = "x86_64"
		hermes = {}
	`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if !strings.Contains(parseErr.Detail, "read-only") {
		t.Errorf("Detail = %s, want read-only", parseErr.Detail)
	}
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantParse bool
		wantField string
	}{
		{name: "syntax_error", code: `hermes = {`, wantParse: true},
		{name: "missing_table", code: `other = {}`, wantParse: true},
		{name: "hermes_not_table", code: `hermes = "speedtest"`, wantParse: true},
		{name: "speedtest_not_table", code: `hermes = { speedtest = 1 }`, wantField: "speedtest"},
		{name: "version_not_string", code: `hermes = { speedtest = { version = 1.2 } }`, wantField: "speedtest.version"},
		{name: "sha256_bad_arch", code: `hermes = { speedtest = { sha256 = { sparc = "` + armSum + `" } } }`, wantField: "speedtest.sha256.sparc"},
		{name: "sha256_bad_digest", code: `hermes = { speedtest = { sha256 = { arm64 = "abc" } } }`, wantField: "speedtest.sha256.arm64"},
		{name: "unknown_strategy", code: `hermes = { speedtest = { strategies = { "apt" } } }`, wantField: "speedtest.strategies[1]"},
		{name: "strategy_not_string", code: `hermes = { speedtest = { strategies = { "download", 7 } } }`, wantField: "speedtest.strategies[2]"},
		{name: "strategy_table_entry", code: `hermes = { speedtest = { strategies = { {}, "tap" } } }`, wantField: "speedtest.strategies[1]"},
		{name: "too_many_retries", code: `hermes = { download = { retries = 40 } }`, wantField: "download.retries"},
		{name: "timeout_not_number", code: `hermes = { download = { timeout = "30s" } }`, wantField: "download.timeout"},
		{name: "progress_not_bool", code: `hermes = { download = { progress = "yes" } }`, wantField: "download.progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)
			if err == nil {
				t.Fatal("expected error")
			}

			var parseErr *ParseError
			var valErr *ValidationError
			switch {
			case tt.wantParse:
				if !errors.As(err, &parseErr) {
					t.Errorf("error = %T %v, want *ParseError", err, err)
				}
			case !errors.As(err, &valErr):
				t.Errorf("error = %T %v, want *ValidationError", err, err)
			case valErr.Field != tt.wantField:
				t.Errorf("Field = %s, want %s", valErr.Field, tt.wantField)
			}
		})
	}
}

func TestParser_ParseString_TooLarge(t *testing.T) {
	code := "hermes = {}\n-- " + strings.Repeat("x", MaxConfigSize)
	_, err := NewParser(nil).ParseString(context.Background(), code)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Message != "config too large" {
		t.Errorf("error = %v, want config too large", err)
	}
}

func TestParser_ParseString_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewParser(nil).ParseString(ctx, `while true do end`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if parseErr.Message != "config evaluation timed out" {
		t.Errorf("Message = %s", parseErr.Message)
	}
}

func TestFormatError(t *testing.T) {
	err := &ParseError{Message: "Lua syntax error", Detail: "line 1: unexpected EOF\nstack traceback:\n\t[G]: ?"}

	short := FormatError(err, false)
	if strings.Contains(short, "stack traceback") {
		t.Errorf("FormatError(false) = %q, should strip the traceback", short)
	}
	if !strings.Contains(short, "unexpected EOF") {
		t.Errorf("FormatError(false) = %q, want detail", short)
	}

	if verbose := FormatError(err, true); !strings.Contains(verbose, "stack traceback") {
		t.Errorf("FormatError(true) = %q, want full detail", verbose)
	}

	plain := errors.New("boom")
	if FormatError(plain, false) != "boom" {
		t.Errorf("FormatError(plain) = %q", FormatError(plain, false))
	}
}
