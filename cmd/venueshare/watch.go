// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/venueshare/venueshare/internal/housing"
	"github.com/venueshare/venueshare/internal/worldstate"
	"github.com/venueshare/venueshare/pkg/errutil"
)

const defaultWatchInterval = 2 * time.Second

// NewWatchCmd creates the watch subcommand.
func NewWatchCmd() *cobra.Command {
	var (
		interval  time.Duration
		autoShare bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the world-state snapshot and report housing location changes",
		Long: `Re-read the world-state snapshot on an interval and print a line each
time the player arrives at a new plot or leaves the housing districts.
With --share every new location is sent to the notification endpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return oops.Code("CONFIG_INVALID").With("interval", interval.String()).Errorf("interval must be positive")
			}
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			world, err := a.openWorld()
			if err != nil {
				return err
			}

			var (
				client  = a.newClient()
				out     = cmd.OutOrStdout()
				pending []housing.Location
			)
			svc := a.newService(world,
				func(loc housing.Location) {
					fmt.Fprintf(out, "entered %s\n", loc)
					if autoShare {
						pending = append(pending, loc)
					}
				},
				func(loc housing.Location) {
					fmt.Fprintf(out, "left %s\n", loc)
				},
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.logger.Info("watching snapshot", "path", world.Path(), "interval", interval.String())
			watch(ctx, world, svc, interval, a.logger, func(pollCtx context.Context) {
				for _, loc := range pending {
					a.share(pollCtx, cmd, client, loc, world.PlayerName())
				}
				pending = pending[:0]
			})
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "snapshot poll interval")
	cmd.Flags().BoolVar(&autoShare, "share", false, "share every new location")
	addShareFlags(cmd)
	return cmd
}

// watch polls until ctx is done. A snapshot that fails to load is logged and
// the previous one is used for that tick. afterPoll, if set, runs after each
// resolution with ctx.
func watch(ctx context.Context, world *worldstate.FileProvider, svc *housing.Service, interval time.Duration, logger *slog.Logger, afterPoll func(context.Context)) {
	poll := func() {
		if err := world.Refresh(); err != nil {
			errutil.LogWarn(logger, "snapshot refresh failed", err)
		}
		svc.ResolveCurrentLocation()
		if afterPoll != nil {
			afterPoll(ctx)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
