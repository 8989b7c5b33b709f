package acquire

import (
	"context"
	"fmt"
)

// Request is the input every strategy receives.
type Request struct {
	Name       string
	InstallDir string
	Host       HostEnvironment
}

// Installation is what a successful strategy produced.
type Installation struct {
	Path string
	// Version, URL and SHA256 are recorded in the receipt when known
	Version string
	URL     string
	SHA256  string
}

// Strategy is one way of acquiring an executable. Strategies share no
// state and report failure through the returned error.
type Strategy interface {
	Name() string
	Acquire(ctx context.Context, req Request) (*Installation, error)
}

// Attempt is the winning strategy and its installation.
type Attempt struct {
	Strategy     string
	Installation *Installation
}

// Succeeded reports whether a strategy produced an executable.
func (a Attempt) Succeeded() bool {
	return a.Installation != nil && a.Installation.Path != ""
}

// FirstSuccess runs strategies in order and stops at the first one that
// returns without error. Every earlier failure is returned in order. A
// panicking strategy counts as a KindUnexpected failure of that strategy.
func FirstSuccess(ctx context.Context, req Request, strategies ...Strategy) (Attempt, []Failure) {
	var failures []Failure

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Failure{Strategy: s.Name(), Err: newError(KindUnexpected, "acquisition cancelled", err)})
			break
		}

		inst, err := runStrategy(ctx, s, req)
		if err == nil && (inst == nil || inst.Path == "") {
			err = newError(KindUnexpected, "strategy reported success without a path", nil)
		}
		if err != nil {
			failures = append(failures, Failure{Strategy: s.Name(), Err: err})
			continue
		}

		return Attempt{Strategy: s.Name(), Installation: inst}, failures
	}

	return Attempt{}, failures
}

func runStrategy(ctx context.Context, s Strategy, req Request) (inst *Installation, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst = nil
			err = newError(KindUnexpected, "strategy panicked", fmt.Errorf("%v", r))
		}
	}()
	return s.Acquire(ctx, req)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc struct {
	Label string
	Fn    func(ctx context.Context, req Request) (*Installation, error)
}

func (f StrategyFunc) Name() string {
	return f.Label
}

func (f StrategyFunc) Acquire(ctx context.Context, req Request) (*Installation, error) {
	return f.Fn(ctx, req)
}
