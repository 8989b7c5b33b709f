package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(version string, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hermes-setup",
		Short: "Install the optional Ookla speedtest CLI",
		Long: `hermes-setup makes the Ookla speedtest CLI available to hermes.

The executable is optional: when it cannot be installed hermes-setup prints a
warning with manual instructions and still exits successfully.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setupLogging()
		},
	}

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/hermes/hermes.lua)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&a.jsonLogs, "log-json", false, "emit logs as JSON")

	cmd.AddCommand(newEnsureCommand(a))
	cmd.AddCommand(newCheckCommand(a))
	cmd.AddCommand(newURLCommand(a))

	return cmd
}
