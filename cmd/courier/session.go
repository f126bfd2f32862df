package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/courier/internal/cli"
	"github.com/spf13/cobra"
)

type conversationLister interface {
	List(ctx context.Context) ([]string, error)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and end chat sessions",
	Long:  `List, inspect, and end the sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List sessions with a dialogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		lister, ok := a.States.(conversationLister)
		if !ok {
			return fmt.Errorf("the %s store does not support listing sessions", a.Config.Store.Backend)
		}
		ids, err := lister.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No active sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Active Sessions:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the session and its dialogue state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Sessions.Lookup(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		conv, err := a.Engine.Conversation(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(map[string]any{
			"session":      s,
			"conversation": conv,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "End one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := cli.CreateAssistant(cmd.Context(), globals)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, id := range args {
			existed, err := a.Sessions.End(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error removing '%s': %w", id, err)
			}
			if err := a.States.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("error removing '%s': %w", id, err)
			}
			if existed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' not found\n", id)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
}
