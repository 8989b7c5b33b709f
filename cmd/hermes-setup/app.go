package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mwangiiharun/hermes/internal/acquire"
	"github.com/mwangiiharun/hermes/internal/binary"
	"github.com/mwangiiharun/hermes/internal/config"
	"github.com/mwangiiharun/hermes/internal/logging"
	"github.com/mwangiiharun/hermes/internal/platform"
	"github.com/mwangiiharun/hermes/internal/runner"
)

// app carries the dependencies and global flags shared by all commands.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	runner   runner.Runner
	detector platform.Detector
	// fetcher replaces the HTTP downloader when set
	fetcher acquire.Fetcher
	logger  logging.Logger

	configPath string
	verbose    bool
	jsonLogs   bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		runner:   &runner.SystemRunner{},
		detector: platform.NewDetector(),
		logger:   logging.Noop(),
	}
}

// setupLogging is called once flags are parsed.
func (a *app) setupLogging() {
	level := "error"
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.NewZerolog(a.stderr, level, !a.jsonLogs)
}

func (a *app) loadConfig(ctx context.Context) (*config.Config, error) {
	path, err := config.ResolvePath(a.configPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loading config", "path", path)

	cfg, err := config.Load(ctx, path, a.detector)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// installDir resolves --bin-dir, then the config, then ~/.local/bin.
func (a *app) installDir(cfg *config.Config, flagValue string) (string, error) {
	dir := flagValue
	if dir == "" {
		dir = cfg.Speedtest.InstallDir
	}
	if dir == "" {
		return config.DefaultInstallDir()
	}
	return config.ExpandHome(dir)
}

// host detects the environment and applies a forced architecture.
func (a *app) host(ctx context.Context, forced platform.Arch) (acquire.HostEnvironment, error) {
	stateDir, err := config.StateDir()
	if err != nil {
		a.logger.Warn("no state directory; receipts and locking disabled", "error", err)
		stateDir = ""
	}

	host, err := acquire.DetectHost(ctx, a.detector, stateDir)
	if err != nil {
		return host, err
	}
	if forced != "" {
		host.Arch = forced
	}
	return host, nil
}

// strategies builds the configured strategies in order.
func (a *app) strategies(cfg *config.Config) ([]acquire.Strategy, error) {
	s := cfg.Speedtest
	var out []acquire.Strategy

	for _, name := range s.Strategies {
		switch name {
		case config.StrategyTap:
			tap := &acquire.TapStrategy{
				Runner:         a.runner,
				PackageManager: s.PackageManager,
				Tap:            s.Tap,
				Package:        s.Package,
			}
			if s.PackageManager == config.DefaultPackageManager {
				tap.Env = []string{"HOMEBREW_NO_AUTO_UPDATE=1", "HOMEBREW_NO_INSTALL_CLEANUP=1"}
			}
			out = append(out, tap)

		case config.StrategyDownload:
			extractor, err := binary.NewExtractor(s.Extractor, a.runner)
			if err != nil {
				return nil, err
			}
			keyring := s.Keyring
			if keyring != "" {
				if keyring, err = config.ExpandHome(keyring); err != nil {
					return nil, err
				}
			}
			out = append(out, &acquire.DownloadStrategy{
				Fetcher:      a.downloader(cfg),
				Extractor:    extractor,
				Verifier:     binary.NewVerifier(),
				URL:          s.URL,
				Version:      s.Version,
				SHA256:       s.SHA256,
				SignatureURL: s.SignatureURL,
				KeyringPath:  keyring,
				Logger:       a.logger,
			})

		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}

	return out, nil
}

func (a *app) downloader(cfg *config.Config) acquire.Fetcher {
	if a.fetcher != nil {
		return a.fetcher
	}

	retries := cfg.Download.Retries
	if retries == 0 {
		retries = -1
	}
	dc := binary.DownloaderConfig{
		Timeout: cfg.Download.Timeout,
		Retries: retries,
	}
	if f, ok := a.stderr.(*os.File); ok && cfg.Download.Progress {
		dc.Progress = f
	}
	return binary.NewDownloader(dc)
}

func manualFor(cfg *config.Config) acquire.Manual {
	return acquire.Manual{
		PackageManager: cfg.Speedtest.PackageManager,
		Tap:            cfg.Speedtest.Tap,
		Package:        cfg.Speedtest.Package,
		DownloadPage:   cfg.Speedtest.DownloadPage,
	}
}
