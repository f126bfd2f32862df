package main

import (
	"os"

	"github.com/aretw0/courier"
	"github.com/aretw0/courier/internal/cli"
	"github.com/aretw0/courier/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Starts an interactive session. Type a tracking number to look a package up;
lost packages can be claimed right away. /new starts over and /quit exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		a, logger, err := cli.CreateAssistant(sigCtx, globals)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := cli.ChatOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			Logger:    logger,
			Render:    tui.Plain,
		}
		if !jsonMode && cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, courier.Version)
			opts.Render = cli.TerminalRenderer(os.Stdout)
		}

		err = cli.RunChat(sigCtx, a.Engine, os.Stdin, os.Stdout, opts)
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Resume this session id if it is still live")
	chatCmd.Flags().Bool("json", false, "Emit one JSON object per reply")
}
