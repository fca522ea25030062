// Package cli implements the spotify-social command line.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-social/internal/app"
	"github.com/justestif/go-spotify-social/internal/config"
	"github.com/justestif/go-spotify-social/internal/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "spotify-social",
		Short: "Spotify listening stats and social companion",
		Long: `spotify-social connects a Spotify account, summarizes listening
habits per time range and serves them, with reviews and favorites, over HTTP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.config/spotify-social/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		NewServeCmd(opts),
		NewConnectCmd(opts),
		NewStatusCmd(opts),
		NewStatsCmd(opts),
		NewRefreshCmd(opts),
		NewDisconnectCmd(opts),
	)

	return cmd
}

// load reads the configuration and builds the logger from it.
func (o *rootOptions) load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log.Level, logging.Format(cfg.Log.Format))
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// build loads the configuration and wires the application.
func (o *rootOptions) build(ctx context.Context) (*app.App, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, err
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("starting: %w", err)
	}
	return a, nil
}
