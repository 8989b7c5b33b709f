package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwangiiharun/hermes/internal/acquire"
	"github.com/mwangiiharun/hermes/internal/config"
	"github.com/mwangiiharun/hermes/internal/receipt"
	"github.com/mwangiiharun/hermes/internal/runner"
	"github.com/mwangiiharun/hermes/internal/version"
)

// versionTimeout bounds "speedtest --version".
const versionTimeout = 10 * time.Second

func newCheckCommand(a *app) *cobra.Command {
	var binDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether the speedtest CLI is available",
		Long: `Check looks for the speedtest CLI in the install directory and on PATH,
prints its version and how it was installed. Exits 1 when it is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd.Context(), binDir)
		},
	}

	cmd.Flags().StringVar(&binDir, "bin-dir", "", "install directory (default ~/.local/bin)")

	return cmd
}

func (a *app) runCheck(ctx context.Context, binDir string) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return errors.New(config.FormatError(err, a.verbose))
	}
	name := cfg.Speedtest.Name

	installDir, err := a.installDir(cfg, binDir)
	if err != nil {
		return err
	}

	probe := &acquire.Probe{Name: name, SearchPaths: filepath.SplitList(os.Getenv("PATH"))}
	if !probe.InDir(installDir) && !probe.Lookup() {
		fmt.Fprintf(a.stdout, "%s: not installed\n", name)
		fmt.Fprintln(a.stdout, acquire.ManualInstructions(name, manualFor(cfg)))
		return &exitError{code: 1}
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", name, probe.ResolvedPath)

	if v := a.executableVersion(ctx, probe.ResolvedPath); v != "" {
		fmt.Fprintf(a.stdout, "version: %s\n", v)
	}

	stateDir, err := config.StateDir()
	if err != nil {
		return nil
	}
	r, err := receipt.NewStore(stateDir).Load(name)
	if err != nil {
		a.logger.Warn("could not read receipt", "error", err)
		return nil
	}
	if r != nil {
		fmt.Fprintf(a.stdout, "installed via %s on %s\n", r.Strategy, r.InstalledAt.Format(time.RFC3339))
		if r.SHA256 != "" {
			fmt.Fprintf(a.stdout, "sha256: %s\n", r.SHA256)
		}
	}

	return nil
}

// executableVersion returns the version reported by --version, or "" when
// it cannot be determined.
func (a *app) executableVersion(ctx context.Context, path string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	cmd := runner.Command{Name: path, Args: []string{"--version"}}
	res, err := a.runner.Run(ctx, cmd)
	if err == nil {
		err = res.Check(cmd)
	}
	if err != nil {
		a.logger.Debug("version probe failed", "path", path, "error", err)
		return ""
	}

	v, err := version.Extract(string(res.Output))
	if err != nil {
		a.logger.Debug("unrecognized version output", "path", path, "error", err)
		return ""
	}
	return v
}
