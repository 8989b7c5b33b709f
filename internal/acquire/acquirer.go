// Package acquire makes an optional external executable available without
// ever failing the caller.
//
// EnsureExecutable runs, in order and stopping at the first hit:
//
//  1. the install directory check
//  2. the search path check
//  3. each configured Strategy (package manager tap, vendor download)
//
// Failures degrade to warnings and OutcomeUnavailable. The two checks have
// no side effects, so calling it again after an install is a no-op.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwangiiharun/hermes/internal/lock"
	"github.com/mwangiiharun/hermes/internal/logging"
	"github.com/mwangiiharun/hermes/internal/receipt"
)

// Options configures an Acquirer.
type Options struct {
	Host       HostEnvironment
	Strategies []Strategy
	Manual     Manual
	Logger     logging.Logger
	Warner     logging.Warner
	// Now is used for receipt timestamps; defaults to time.Now
	Now func() time.Time
}

// Acquirer runs the checks and strategies for one host.
type Acquirer struct {
	host       HostEnvironment
	strategies []Strategy
	manual     Manual
	logger     logging.Logger
	warner     logging.Warner
	receipts   *receipt.Store
	now        func() time.Time
}

// New creates an Acquirer. Receipts and the acquisition lock live in
// Host.StateDir and are disabled when it is empty.
func New(opts Options) *Acquirer {
	a := &Acquirer{
		host:       opts.Host,
		strategies: opts.Strategies,
		manual:     opts.Manual,
		logger:     opts.Logger,
		warner:     opts.Warner,
		now:        opts.Now,
	}
	if a.logger == nil {
		a.logger = logging.Noop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if opts.Host.StateDir != "" {
		a.receipts = receipt.NewStore(opts.Host.StateDir)
	}
	return a
}

// EnsureExecutable makes name available, preferring an existing copy in
// installDir or on the search path. It never returns an error and never
// panics; problems are reported in Result.Warnings.
func (a *Acquirer) EnsureExecutable(ctx context.Context, name, installDir string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("acquisition panicked", "name", name, "panic", r)
			res.Outcome = OutcomeUnavailable
			res.Path = ""
			res.Strategy = ""
			a.warn(&res, fmt.Sprintf("Unexpected error while installing %s: %v\n%s", name, r, ManualInstructions(name, a.manual)))
		}
	}()

	if err := validateName(name); err != nil {
		a.warn(&res, fmt.Sprintf("Cannot install %q: %v", name, err))
		return res
	}

	probe := &Probe{Name: name, SearchPaths: a.host.SearchPaths}
	if probe.InDir(installDir) {
		a.logger.Debug("executable already installed", "name", name, "path", probe.ResolvedPath)
		return Result{Outcome: OutcomeAlready, Path: probe.ResolvedPath, Strategy: SourceInstallDir}
	}
	if probe.Lookup() {
		a.logger.Debug("executable found on search path", "name", name, "path", probe.ResolvedPath)
		return Result{Outcome: OutcomeAlready, Path: probe.ResolvedPath, Strategy: SourcePath}
	}

	release, ok := a.lock(ctx, &res, name)
	if !ok {
		return res
	}
	defer release()

	// Another process may have finished while we waited for the lock
	if probe.InDir(installDir) {
		return Result{Outcome: OutcomeAlready, Path: probe.ResolvedPath, Strategy: SourceInstallDir}
	}

	req := Request{Name: name, InstallDir: installDir, Host: a.host}
	attempt, failures := FirstSuccess(ctx, req, a.strategies...)
	res.Failures = failures

	for _, f := range failures {
		a.logger.Warn("acquisition strategy failed", "name", name, "strategy", f.Strategy, "kind", f.Kind().String(), "error", f.Err)
		// Remediation failures are expected whenever the package manager is absent
		if f.Kind() != KindRemediation {
			a.warn(&res, f.warning(name))
		}
	}

	if !attempt.Succeeded() {
		a.warn(&res, fmt.Sprintf("%s is not available.\n%s", name, ManualInstructions(name, a.manual)))
		res.Outcome = OutcomeUnavailable
		return res
	}

	res.Outcome = OutcomeInstalled
	res.Path = attempt.Installation.Path
	res.Strategy = attempt.Strategy
	a.logger.Info("executable installed", "name", name, "strategy", attempt.Strategy, "path", res.Path)
	a.saveReceipt(name, attempt)

	return res
}

// lock takes the acquisition lock when a state directory is configured.
func (a *Acquirer) lock(ctx context.Context, res *Result, name string) (func(), bool) {
	if a.host.StateDir == "" {
		return func() {}, true
	}

	lk, err := lock.Acquire(ctx, a.host.StateDir, name)
	if errors.Is(err, lock.ErrLockExists) {
		a.warn(res, fmt.Sprintf("Another installation of %s is in progress; skipping.\n%s", name, ManualInstructions(name, a.manual)))
		return nil, false
	}
	if err != nil {
		a.logger.Warn("continuing without acquisition lock", "name", name, "error", err)
		return func() {}, true
	}

	stop := lk.KeepAlive(lock.RefreshInterval)
	return func() {
		stop()
		if err := lk.Release(); err != nil {
			a.logger.Warn("failed to release acquisition lock", "path", lk.Path(), "error", err)
		}
	}, true
}

func (a *Acquirer) saveReceipt(name string, attempt Attempt) {
	if a.receipts == nil {
		return
	}
	inst := attempt.Installation
	err := a.receipts.Save(&receipt.Receipt{
		Name:        name,
		Strategy:    attempt.Strategy,
		Version:     inst.Version,
		URL:         inst.URL,
		Path:        inst.Path,
		SHA256:      inst.SHA256,
		InstalledAt: a.now().UTC(),
	})
	if err != nil {
		a.logger.Warn("failed to write install receipt", "name", name, "error", err)
	}
}

func (a *Acquirer) warn(res *Result, msg string) {
	res.Warnings = append(res.Warnings, msg)
	if a.warner != nil {
		a.warner.Warn(msg)
	}
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("executable name is required")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("executable name must be a plain file name")
	}
	return nil
}
