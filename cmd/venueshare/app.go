// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/venueshare/venueshare/internal/config"
	"github.com/venueshare/venueshare/internal/housing"
	"github.com/venueshare/venueshare/internal/logging"
	"github.com/venueshare/venueshare/internal/venue"
	"github.com/venueshare/venueshare/internal/worldstate"
)

// app holds what every subcommand builds from configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	table  *housing.ZoneTable
	// httpClient is shared by the dispatcher and the Discord poster.
	httpClient *http.Client
}

// loadApp reads configuration and sets up logging and the zone table.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(config.LoadOptions{Path: configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, oops.Wrapf(err, "load configuration")
	}

	// Already checked by Validate.
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.Setup(logging.Options{
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})

	table := housing.DefaultZoneTable()
	if cfg.ZonesFile != "" {
		table, err = housing.LoadZoneTableFile(cfg.ZonesFile)
		if err != nil {
			return nil, oops.Wrapf(err, "load zone table")
		}
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		table:      table,
		httpClient: &http.Client{},
	}, nil
}

func (a *app) openWorld() (*worldstate.FileProvider, error) {
	world, err := worldstate.NewFileProvider(a.cfg.SnapshotFile)
	if err != nil {
		return nil, oops.Wrapf(err, "open world-state snapshot")
	}
	return world, nil
}

// newService wires the resolution engine over world. The snapshot doubles as
// the authoritative housing state when it carries housing indices.
func (a *app) newService(world *worldstate.FileProvider, onChange, onLeave func(housing.Location)) *housing.Service {
	return housing.NewService(housing.ServiceConfig{
		World:      world,
		Classifier: housing.NewClassifier(a.table, a.logger),
		Resolver:   housing.NewResolver(a.logger, housing.DefaultStrategies(a.table, world)...),
		Logger:     a.logger,
		OnChange:   onChange,
		OnLeave:    onLeave,
	})
}

// resolve opens the snapshot and resolves the location once.
func (a *app) resolve() (housing.Location, *worldstate.FileProvider, bool, error) {
	world, err := a.openWorld()
	if err != nil {
		return housing.Location{}, nil, false, err
	}
	loc, ok := a.newService(world, nil, nil).ResolveCurrentLocation()
	return loc, world, ok, nil
}

func (a *app) newClient() *venue.Client {
	return venue.NewClient(venue.ClientConfig{
		Enabled:          a.cfg.Sharing.Enabled,
		BaseURL:          a.cfg.Sharing.BaseURL,
		Token:            a.cfg.Sharing.Token,
		Timeout:          a.cfg.Sharing.Timeout,
		DirectoryURL:     a.cfg.Directory.BaseURL,
		DirectoryTimeout: a.cfg.Directory.Timeout,
		HTTPClient:       a.httpClient,
		Logger:           a.logger,
	})
}

// share submits loc and reports the outcome; a failed share is a warning.
func (a *app) share(ctx context.Context, cmd *cobra.Command, dispatcher venue.Dispatcher, loc housing.Location, requestedBy string) bool {
	ok := dispatcher.Submit(ctx, venue.NotificationRequest{
		Location:             loc,
		DestinationChannelID: a.cfg.Sharing.ChannelID,
		RequestedBy:          requestedBy,
	})
	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "shared %s\n", loc)
	} else {
		cmd.PrintErrf("warning: %s was not shared\n", loc)
	}
	return ok
}
