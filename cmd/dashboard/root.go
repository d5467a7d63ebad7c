package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/config"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/logger"
)

// app holds state shared by all subcommands once the root pre-run has loaded it
type app struct {
	cfg       *config.Config
	logCloser io.Closer
}

// Execute builds the command tree and runs it
func Execute(ctx context.Context) error {
	a := &app{}

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Team standings and daily intake dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				a.logCloser.Close()
			}
		},
	}

	root.AddCommand(
		serveCmd(a),
		standingsCmd(a),
		simulateCmd(a),
		intakeCmd(a),
	)

	return root.ExecuteContext(ctx)
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	closer, err := logger.Setup(logger.Options{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		log.Warn().Err(err).Msg("file logging disabled")
	}
	a.logCloser = closer
	return nil
}

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
