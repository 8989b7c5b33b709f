package acquire

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mwangiiharun/hermes/internal/runner"
)

// StrategyTap is the name reported by TapStrategy.
const StrategyTap = "tap"

// TapStrategy registers a third-party repository with the host package
// manager and installs the package from it.
//
//	<pm> tap <Tap>
//	<pm> install <Package>
type TapStrategy struct {
	Runner         runner.Runner
	PackageManager string
	Tap            string
	Package        string
	// Env is added to both package manager invocations
	Env []string
}

func (s *TapStrategy) Name() string {
	return StrategyTap
}

func (s *TapStrategy) Acquire(ctx context.Context, req Request) (*Installation, error) {
	pm, err := runner.LookPath(s.PackageManager, req.Host.SearchPaths)
	if err != nil {
		return nil, newError(KindRemediation, "locate package manager", err)
	}

	steps := []runner.Command{
		{Name: pm, Args: []string{"tap", s.Tap}, Env: s.Env},
		{Name: pm, Args: []string{"install", s.Package}, Env: s.Env},
	}
	for _, cmd := range steps {
		res, err := s.Runner.Run(ctx, cmd)
		if err != nil {
			return nil, newError(KindRemediation, cmd.String(), err)
		}
		if err := res.Check(cmd); err != nil {
			return nil, newError(KindRemediation, fmt.Sprintf("%s %s", filepath.Base(pm), cmd.Args[0]), err)
		}
	}

	probe := &Probe{Name: req.Name, SearchPaths: req.Host.SearchPaths}
	if !probe.Lookup() {
		return nil, newError(KindRemediation, "verify install", fmt.Errorf("%s installed but %s was not found", s.Package, req.Name))
	}

	return &Installation{Path: probe.ResolvedPath}, nil
}
