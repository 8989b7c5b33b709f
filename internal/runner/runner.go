// Package runner executes external processes from an argument vector and
// reports a structured exit result. Nothing is passed through a shell.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command is a process invocation. Name is resolved on PATH unless it
// contains a path separator.
type Command struct {
	Name string
	Args []string
	// Env is appended to the current environment.
	Env []string
	Dir string
}

// String renders the command for log output.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	ExitCode int
	// Output is combined stdout and stderr.
	Output []byte
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Check returns an *ExitError when the process exited non-zero.
func (r Result) Check(cmd Command) error {
	if r.Success() {
		return nil
	}
	return &ExitError{Command: cmd, ExitCode: r.ExitCode, Output: strings.TrimSpace(string(r.Output))}
}

// ExitError reports a process that ran but did not succeed.
type ExitError struct {
	Command  Command
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// Runner executes system commands. Mockable for tests.
//
// Run returns an error only when the process could not be started or the
// context ended; a non-zero exit is reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// SystemRunner executes real system commands.
type SystemRunner struct{}

func (r *SystemRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	out, err := c.CombinedOutput()
	if err == nil {
		return Result{ExitCode: 0, Output: out}, nil
	}

	if ctx.Err() != nil {
		return Result{ExitCode: -1, Output: out}, fmt.Errorf("run %s: %w", cmd.Name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Output: out}, nil
	}

	return Result{ExitCode: -1, Output: out}, fmt.Errorf("run %s: %w", cmd.Name, err)
}

// LookPath searches dirs in order for an executable regular file called name.
// Unlike exec.LookPath it never consults the process environment.
func LookPath(name string, dirs []string) (string, error) {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) {
		return "", fmt.Errorf("invalid executable name: %q", name)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0 {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}
