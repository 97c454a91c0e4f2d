// README: Cobra root command; holds the shared --config flag.
package main

import (
	"github.com/spf13/cobra"
)

var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "saguaro",
		Short:         "Appointment slot recommendation service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML or JSON)")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(suggestCmd())
	cmd.AddCommand(demoCmd())
	return cmd
}
