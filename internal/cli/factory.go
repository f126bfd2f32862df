package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/courier"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Debug      bool
}

// LoadConfig reads the configuration file and the process environment.
func LoadConfig(opts GlobalOptions) (courier.Config, error) {
	cfg, err := courier.LoadConfig(opts.ConfigPath, os.Environ())
	if err != nil {
		return cfg, fmt.Errorf("error loading configuration: %w", err)
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// CreateAssistant loads the configuration and wires an Assistant with standard CLI conventions.
func CreateAssistant(ctx context.Context, opts GlobalOptions) (*courier.Assistant, *slog.Logger, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	logger, err := CreateLogger(opts.Debug, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	a, err := courier.New(ctx, cfg, courier.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing courier: %w", err)
	}
	return a, logger, nil
}
