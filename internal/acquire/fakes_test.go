package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mwangiiharun/hermes/internal/binary"
	"github.com/mwangiiharun/hermes/internal/logging"
	"github.com/mwangiiharun/hermes/internal/runner"
	"github.com/mwangiiharun/hermes/internal/testutil"
)

// fakeRunner records commands. exitCodes maps a subcommand ("tap",
// "install") to its exit status; onInstall runs after a successful install.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []runner.Command
	exitCodes map[string]int
	err       error
	onInstall func()
}

func (f *fakeRunner) Run(ctx context.Context, cmd runner.Command) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if f.err != nil {
		return runner.Result{ExitCode: -1}, f.err
	}

	sub := ""
	if len(cmd.Args) > 0 {
		sub = cmd.Args[0]
	}
	code := f.exitCodes[sub]
	if code != 0 {
		return runner.Result{ExitCode: code, Output: []byte("Error: " + sub + " failed")}, nil
	}
	if sub == "install" && f.onInstall != nil {
		f.onInstall()
	}
	return runner.Result{}, nil
}

func (f *fakeRunner) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// fakeFetcher serves fixed bodies keyed by URL, or fails every request.
type fakeFetcher struct {
	mu     sync.Mutex
	urls   []string
	bodies map[string][]byte
	body   []byte
	err    error
}

func (f *fakeFetcher) DownloadToFile(ctx context.Context, url, destPath string) error {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	body, ok := f.bodies[url]
	if !ok {
		body = f.body
	}
	if body == nil {
		return errors.New("unexpected status code: 404")
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(destPath, body, 0644)
}

func (f *fakeFetcher) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

// countingStrategy records how often it ran.
type countingStrategy struct {
	label string
	calls int
	inst  *Installation
	err   error
}

func (s *countingStrategy) Name() string {
	return s.label
}

func (s *countingStrategy) Acquire(ctx context.Context, req Request) (*Installation, error) {
	s.calls++
	return s.inst, s.err
}

// fixture wires an Acquirer over an isolated environment with a fake
// brew on the search path.
type fixture struct {
	env      *testutil.Env
	host     HostEnvironment
	brewDir  string
	runner   *fakeRunner
	fetcher  *fakeFetcher
	warnings *logging.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	env := testutil.SetupTestEnv(t)
	brewDir := filepath.Join(env.Root, "homebrew", "bin")
	if err := os.MkdirAll(brewDir, 0755); err != nil {
		t.Fatal(err)
	}
	testutil.WriteExecutable(t, brewDir, "brew", "#!/bin/sh\nexit 0\n")

	return &fixture{
		env: env,
		host: HostEnvironment{
			Arch:        "arm64",
			SearchPaths: []string{env.PathDir, brewDir},
			HomeDir:     env.Home,
			TempDir:     env.TempDir,
			StateDir:    env.StateDir,
		},
		brewDir:  brewDir,
		runner:   &fakeRunner{exitCodes: map[string]int{}},
		fetcher:  &fakeFetcher{},
		warnings: &logging.Recorder{},
	}
}

func (f *fixture) tap() *TapStrategy {
	return &TapStrategy{
		Runner:         f.runner,
		PackageManager: "brew",
		Tap:            "teamookla/speedtest",
		Package:        "speedtest",
	}
}

func (f *fixture) download() *DownloadStrategy {
	return &DownloadStrategy{
		Fetcher:   f.fetcher,
		Extractor: &binary.BuiltinExtractor{},
		URL:       "https://install.speedtest.net/app/cli/ookla-speedtest-{{.Version}}-macosx-{{.Arch}}.tgz",
		Version:   "1.2.0",
	}
}

func (f *fixture) acquirer(strategies ...Strategy) *Acquirer {
	return New(Options{
		Host:       f.host,
		Strategies: strategies,
		Manual: Manual{
			Tap:          "teamookla/speedtest",
			Package:      "speedtest",
			DownloadPage: "https://www.speedtest.net/apps/cli",
		},
		Warner: f.warnings,
	})
}

// speedtestArchive is a vendor-shaped archive with the binary and docs.
func speedtestArchive(t *testing.T) []byte {
	t.Helper()
	return testutil.TarGz(t, map[string]string{
		"speedtest":    "#!/bin/sh\necho 'Speedtest by Ookla 1.2.0.84'\n",
		"speedtest.5":  "manual page",
		"speedtest.md": "readme",
	})
}

func assertNoSideEffects(t *testing.T, f *fixture) {
	t.Helper()
	if calls := f.runner.Calls(); len(calls) != 0 {
		t.Errorf("runner calls = %v, want none", calls)
	}
	if urls := f.fetcher.URLs(); len(urls) != 0 {
		t.Errorf("fetched = %v, want none", urls)
	}
}
