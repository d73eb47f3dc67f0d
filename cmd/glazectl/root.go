package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	config   string
	host     string
	port     int
	logLevel string
	json     bool
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "glazectl",
		Short:         "GlazeWM IPC client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.host, "host", "", "Window manager host (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&flags.port, "port", "p", 0, "Window manager IPC port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Print raw JSON")

	rootCmd.AddCommand(newQueryCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newSubscribeCommand(ctx))
	rootCmd.AddCommand(newEventsCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
