package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"netlens/internal/config"
	"netlens/internal/logging"
)

var version = "0.1.0"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "netlens",
		Short:         "netlens - animated routing topology diagrams",
		Long:          "Render, inspect and serve network topologies with live routing tables.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("netlens {{ .Version }}\n")

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: search path)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format override (text, json)")

	cmd.AddCommand(
		serveCmd(opts),
		renderCmd(opts),
		statsCmd(opts),
		topologiesCmd(),
		exportCmd(opts),
	)
	return cmd
}

// load reads the configuration and builds the logger it describes
func (o *rootOptions) load() (*config.Config, string, logging.Logger, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if o.configPath != "" {
		cfg, path, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, path, nil, fmt.Errorf("load config: %w", err)
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	log := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	return cfg, path, log, nil
}
