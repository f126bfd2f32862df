package main

import (
	"fmt"

	"github.com/aretw0/courier"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of courier",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "courier version %s\n", courier.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
