package main

import (
	"fmt"
	"time"

	"github.com/aretw0/courier/internal/cli"
	"github.com/spf13/cobra"
)

var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Manage expiring key/value entries",
	Long: `Reads and writes the key/value entries that back sessions and the /cookies endpoints.
Only useful against a shared store such as Redis; the memory store lives and dies with the process.`,
}

var kvGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value of a live key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		value, ok, err := a.Sessions.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("key '%s' not found", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var kvSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value, optionally expiring after --ttl",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl < 0 {
			return fmt.Errorf("--ttl must not be negative")
		}

		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Sessions.Put(cmd.Context(), args[0], args[1], ttl); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set '%s'\n", args[0])
		return nil
	},
}

var kvRmCmd = &cobra.Command{
	Use:   "rm <key>...",
	Short: "Remove one or more keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		missing := 0
		for _, key := range args {
			existed, err := a.Sessions.Delete(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !existed {
				fmt.Fprintf(cmd.ErrOrStderr(), "Key '%s' not found\n", key)
				missing++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed '%s'\n", key)
		}
		if missing > 0 {
			return fmt.Errorf("%d key(s) not found", missing)
		}
		return nil
	},
}

var kvClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry, sessions included",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Sessions.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All entries cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvGetCmd, kvSetCmd, kvRmCmd, kvClearCmd)
	kvSetCmd.Flags().Duration("ttl", time.Duration(0), "Expire the entry after this duration (0 never expires)")
}
