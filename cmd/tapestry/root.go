package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Tapestry CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tapestry",
		Short: "Tapestry - a multi-user text world server",
		Long: `Tapestry is a persistent multi-user text world. Players connect
over telnet, build rooms, objects and exits, and interact through a
small command language.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
