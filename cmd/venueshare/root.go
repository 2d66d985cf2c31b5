// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/venueshare/venueshare/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the VenueShare CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venueshare",
		Short: "VenueShare - share FFXIV housing locations with venue directories",
		Long: `VenueShare works out which housing ward and plot a player is standing in,
shares it with a chat bot endpoint, and looks up the venues listed there.
The webhook receiver that posts search results to Discord runs under "serve".`,
		SilenceUsage: true,
	}

	defaults := config.Default()
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/venueshare/config.yaml)")
	cmd.PersistentFlags().String("log-format", defaults.LogFormat, "log format (json or text)")
	cmd.PersistentFlags().String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("zones-file", "", "zone table replacing the built-in one")
	cmd.PersistentFlags().String("snapshot", "", "world-state snapshot file (default: XDG_STATE_HOME/venueshare/snapshot.yaml)")

	cmd.AddCommand(NewLocateCmd())
	cmd.AddCommand(NewShareCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewZonesCmd())
	cmd.AddCommand(NewServeCmd())

	return cmd
}
