package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwangiiharun/hermes/internal/binary"
	"github.com/mwangiiharun/hermes/internal/config"
	"github.com/mwangiiharun/hermes/internal/platform"
)

func newURLCommand(a *app) *cobra.Command {
	var arch string

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the direct-download URL for this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runURL(cmd.Context(), arch)
		},
	}

	cmd.Flags().StringVar(&arch, "arch", "", "architecture (arm64 or x86_64; default detected)")

	return cmd
}

func (a *app) runURL(ctx context.Context, archFlag string) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return errors.New(config.FormatError(err, a.verbose))
	}

	var arch platform.Arch
	if archFlag != "" {
		if arch, err = platform.ParseArch(archFlag); err != nil {
			return err
		}
	} else {
		info, err := a.detector.Detect(ctx)
		if err != nil {
			return fmt.Errorf("detect platform: %w", err)
		}
		arch = info.Arch
	}

	url, err := binary.DownloadURL(cfg.Speedtest.URL, cfg.Speedtest.Version, arch)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, url)
	return nil
}
