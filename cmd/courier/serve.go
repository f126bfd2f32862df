package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/courier/internal/cli"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the assistant as a JSON API over HTTP, including the chat, claim and
key/value endpoints plus /health, /info, /openapi.yaml and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		a, logger, err := cli.CreateAssistant(sigCtx, globals)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.Config.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		handler, err := a.Handler()
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go a.RunJanitor(sigCtx, a.Config.SweepInterval)

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting Courier Server", "addr", addr, "store", a.Config.Store.Backend, "claims", a.Config.Claims.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			logger.Info("Start shutdown", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("Courier Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8000", "Address to listen on (overrides addr from config)")
}
