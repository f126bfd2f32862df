package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/aretw0/courier/internal/cli"
	"github.com/aretw0/courier/pkg/domain"
	"github.com/spf13/cobra"
)

type packageLister interface {
	List() []domain.Package
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Inspect the package tracking table",
}

var packagesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List known tracking numbers and their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		lister, ok := a.Directory.(packageLister)
		if !ok {
			return fmt.Errorf("the %s store does not support listing packages", a.Config.Store.Backend)
		}
		pkgs := lister.List()
		sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].TrackingNumber < pkgs[j].TrackingNumber })

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TRACKING NUMBER\tSTATUS\tCLAIMABLE")
		for _, p := range pkgs {
			fmt.Fprintf(w, "%s\t%s\t%t\n", p.TrackingNumber, p.Status, p.Status.Claimable())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(packagesCmd)
	packagesCmd.AddCommand(packagesLsCmd)
}
