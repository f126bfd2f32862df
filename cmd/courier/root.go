package main

import (
	"fmt"
	"os"

	"github.com/aretw0/courier/internal/cli"
	"github.com/spf13/cobra"
)

var globals cli.GlobalOptions

var rootCmd = &cobra.Command{
	Use:   "courier",
	Short: "Courier is a package tracking and lost-package claim assistant",
	Long: `Courier walks users through package tracking and lost-package claims in a short,
session-scoped conversation. Run it as an HTTP API, an interactive chat, or an MCP server.

Configuration is read from --config (YAML) and COURIER_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globals.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&globals.Debug, "debug", false, "Enable debug logging to stderr")
}
