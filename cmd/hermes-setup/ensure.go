package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwangiiharun/hermes/internal/acquire"
	"github.com/mwangiiharun/hermes/internal/config"
	"github.com/mwangiiharun/hermes/internal/logging"
	"github.com/mwangiiharun/hermes/internal/platform"
)

type ensureOptions struct {
	binDir string
	name   string
	arch   string
}

func newEnsureCommand(a *app) *cobra.Command {
	var opts ensureOptions

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Make the speedtest CLI available, installing it if needed",
		Long: `Ensure checks the install directory and PATH for the speedtest CLI. When
it is missing, the configured strategies are tried in order: the Homebrew tap,
then a direct download of the Ookla archive.

Ensure never fails because the executable could not be installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEnsure(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.binDir, "bin-dir", "", "install directory (default ~/.local/bin)")
	cmd.Flags().StringVar(&opts.name, "name", "", "executable name (default from config)")
	cmd.Flags().StringVar(&opts.arch, "arch", "", "override the detected architecture (arm64 or x86_64)")

	return cmd
}

func (a *app) runEnsure(ctx context.Context, opts ensureOptions) error {
	var forced platform.Arch
	if opts.arch != "" {
		arch, err := platform.ParseArch(opts.arch)
		if err != nil {
			return err
		}
		forced = arch
	}

	warner := logging.NewColorWarner(a.stderr)

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		warner.Warn(fmt.Sprintf("ignoring configuration: %s", config.FormatError(err, a.verbose)))
		cfg = config.Default()
	}

	name := cfg.Speedtest.Name
	if opts.name != "" {
		name = opts.name
	}
	manual := manualFor(cfg)

	installDir, err := a.installDir(cfg, opts.binDir)
	if err != nil {
		warner.Warn(fmt.Sprintf("%s is not available: %v\n%s", name, err, acquire.ManualInstructions(name, manual)))
		return nil
	}

	host, err := a.host(ctx, forced)
	if err != nil {
		warner.Warn(fmt.Sprintf("%s is not available: %v\n%s", name, err, acquire.ManualInstructions(name, manual)))
		return nil
	}

	strategies, err := a.strategies(cfg)
	if err != nil {
		warner.Warn(fmt.Sprintf("%s is not available: %v\n%s", name, err, acquire.ManualInstructions(name, manual)))
		return nil
	}

	acq := acquire.New(acquire.Options{
		Host:       host,
		Strategies: strategies,
		Manual:     manual,
		Logger:     a.logger,
		Warner:     warner,
	})

	printStep(a.stdout, fmt.Sprintf("ensuring %s in %s", name, installDir))
	res := acq.EnsureExecutable(ctx, name, installDir)

	switch res.Outcome {
	case acquire.OutcomeAlready:
		printDetail(a.stdout, fmt.Sprintf("already available at %s", res.Path))
	case acquire.OutcomeInstalled:
		printSuccess(a.stdout, fmt.Sprintf("installed %s via %s at %s", name, res.Strategy, res.Path))
	default:
		printFailure(a.stdout, fmt.Sprintf("%s unavailable; continuing without it", name))
	}

	return nil
}
