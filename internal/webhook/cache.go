// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/venueshare/venueshare/internal/venue"
	"github.com/venueshare/venueshare/pkg/errutil"
)

// DirectoryLoader fetches the whole venue directory.
type DirectoryLoader interface {
	FetchDirectory(ctx context.Context) ([]venue.VenueRecord, error)
}

// CacheConfig configures Cache.
type CacheConfig struct {
	Loader DirectoryLoader
	Logger *slog.Logger
	// InitialBackoff is the first retry delay of Load. Defaults to 1s.
	InitialBackoff time.Duration
	// MaxRetries bounds the retries of Load. Defaults to 5.
	MaxRetries uint64
}

// Cache holds an in-memory copy of the venue directory. It is safe for
// concurrent use.
type Cache struct {
	loader         DirectoryLoader
	logger         *slog.Logger
	initialBackoff time.Duration
	maxRetries     uint64

	mu        sync.RWMutex
	venues    []venue.VenueRecord
	updatedAt time.Time
}

// NewCache creates an empty cache.
func NewCache(cfg CacheConfig) *Cache {
	c := &Cache{
		loader:         cfg.Loader,
		logger:         cfg.Logger,
		initialBackoff: cfg.InitialBackoff,
		maxRetries:     cfg.MaxRetries,
		venues:         []venue.VenueRecord{},
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = time.Second
	}
	if c.maxRetries == 0 {
		c.maxRetries = 5
	}
	return c
}

// Load fills the cache, retrying with exponential backoff.
func (c *Cache) Load(ctx context.Context) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.initialBackoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn("directory load failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DIRECTORY_FAILED").With("attempts", attempt).Wrapf(err, "load venue directory")
	}
	return nil
}

// Refresh replaces the cached venues with a fresh copy of the directory. On
// failure the previous copy is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	if c.loader == nil {
		return oops.Code("DIRECTORY_FAILED").Errorf("no directory loader configured")
	}
	records, err := c.loader.FetchDirectory(ctx)
	if err != nil {
		return err
	}
	c.Replace(records)
	c.logger.Info("venue directory refreshed", "venues", len(records))
	return nil
}

// Replace sets the cached venues directly.
func (c *Cache) Replace(records []venue.VenueRecord) {
	if records == nil {
		records = []venue.VenueRecord{}
	}
	c.mu.Lock()
	c.venues = records
	c.updatedAt = time.Now()
	c.mu.Unlock()
	venuesCached.Set(float64(len(records)))
}

// Run refreshes the cache every interval until ctx is cancelled. Refresh
// failures are logged and do not stop the loop.
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				errutil.LogWarn(c.logger, "venue directory refresh failed", err)
			}
		}
	}
}

// Snapshot returns the cached venues. Callers must not modify the slice.
func (c *Cache) Snapshot() []venue.VenueRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.venues
}

// Len returns the number of cached venues.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.venues)
}

// UpdatedAt returns when the cache was last filled, or the zero time.
func (c *Cache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}
