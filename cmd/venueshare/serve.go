// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/venueshare/venueshare/internal/housing"
	"github.com/venueshare/venueshare/internal/observability"
	"github.com/venueshare/venueshare/internal/venue"
	"github.com/venueshare/venueshare/internal/webhook"
	"github.com/venueshare/venueshare/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook receiver that posts venue searches to Discord",
		Long: `Run the HTTP receiver for shared locations. Each POST /venue-search is
matched against a cached copy of the venue directory and the result is
posted to the Discord webhook configured for the request's channel.
Metrics and health probes are served on a separate address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().String("listen-addr", "", "webhook listen address")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("server-token", "", "bearer token required from callers")
	cmd.Flags().Duration("refresh", 0, "directory refresh interval")
	cmd.Flags().String("directory-url", "", "venue directory base URL")
	return cmd
}

// serve runs until ctx is cancelled or a server fails.
func (a *app) serve(ctx context.Context) error {
	cache := webhook.NewCache(webhook.CacheConfig{
		Loader: a.newClient(),
		Logger: a.logger,
	})

	var poster webhook.Poster = webhook.NewLogPoster(a.logger)
	if len(a.cfg.Server.Channels) > 0 {
		poster = webhook.NewDiscordWebhookPoster(a.cfg.Server.Channels, a.httpClient)
	}

	var limiter *webhook.RateLimiter
	if rl := a.cfg.Server.RateLimit; rl.Burst > 0 {
		limiter = webhook.NewRateLimiter(webhook.RateLimiterConfig{BurstCapacity: rl.Burst, SustainedRate: rl.Rate})
	}

	server := webhook.NewServer(webhook.Config{
		Addr:      a.cfg.Server.ListenAddr,
		Cache:     cache,
		Poster:    poster,
		Token:     a.cfg.Server.Token,
		RateLimit: limiter,
		Logger:    a.logger,
	})
	serverErrs, err := server.Start()
	if err != nil {
		return oops.Code("SERVE_FAILED").Wrapf(err, "start webhook server")
	}

	var (
		metrics     *observability.Server
		metricsErrs <-chan error
	)
	if a.cfg.Server.MetricsAddr != "" {
		metrics = observability.NewServer(a.cfg.Server.MetricsAddr,
			func() bool { return !cache.UpdatedAt().IsZero() },
			housing.RegisterMetrics, venue.RegisterMetrics, webhook.RegisterMetrics,
		).WithLogger(a.logger)
		metricsErrs, err = metrics.Start()
		if err != nil {
			stopServer(a, server)
			return oops.Code("SERVE_FAILED").Wrapf(err, "start observability server")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := cache.Load(gctx); err != nil {
			// Serve with an empty directory; the refresher keeps trying.
			errutil.LogWarn(a.logger, "initial directory load failed", err)
		}
		return cache.Run(gctx, a.cfg.Server.RefreshInterval)
	})
	g.Go(func() error { return waitServer(gctx, serverErrs) })
	if metricsErrs != nil {
		g.Go(func() error { return waitServer(gctx, metricsErrs) })
	}
	g.Go(func() error {
		<-gctx.Done()
		stopServer(a, server)
		if metrics != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metrics.Stop(shutdownCtx); err != nil {
				errutil.LogError(a.logger, "observability server shutdown failed", err)
			}
		}
		return nil
	})

	err = g.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// waitServer returns the server's error, or nil once ctx is done.
func waitServer(ctx context.Context, errs <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case err, ok := <-errs:
		if ok && err != nil {
			return oops.Code("SERVE_FAILED").Wrap(err)
		}
		return nil
	}
}

func stopServer(a *app, server *webhook.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		errutil.LogError(a.logger, "webhook server shutdown failed", err)
	}
}
