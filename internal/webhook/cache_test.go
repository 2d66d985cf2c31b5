// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package webhook_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/venueshare/venueshare/internal/venue"
	"github.com/venueshare/venueshare/internal/webhook"
	"github.com/venueshare/venueshare/pkg/errutil"
)

// flakyLoader fails a fixed number of times before succeeding.
type flakyLoader struct {
	failures int32
	calls    atomic.Int32
	records  []venue.VenueRecord
}

func (l *flakyLoader) FetchDirectory(_ context.Context) ([]venue.VenueRecord, error) {
	n := l.calls.Add(1)
	if n <= l.failures {
		return nil, errors.New("directory unavailable")
	}
	return l.records, nil
}

func TestCache_LoadRetries(t *testing.T) {
	loader := &flakyLoader{failures: 2, records: []venue.VenueRecord{{ID: "a"}, {ID: "b"}}}
	c := webhook.NewCache(webhook.CacheConfig{
		Loader:         loader,
		Logger:         quietLogger(),
		InitialBackoff: time.Millisecond,
		MaxRetries:     5,
	})

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, int32(3), loader.calls.Load())
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.UpdatedAt().IsZero())
}

func TestCache_LoadGivesUp(t *testing.T) {
	loader := &flakyLoader{failures: 100}
	c := webhook.NewCache(webhook.CacheConfig{
		Loader:         loader,
		Logger:         quietLogger(),
		InitialBackoff: time.Millisecond,
		MaxRetries:     2,
	})

	err := c.Load(context.Background())
	errutil.AssertErrorCode(t, err, "DIRECTORY_FAILED")
	assert.Equal(t, int32(3), loader.calls.Load(), "one attempt plus two retries")
	assert.Equal(t, 0, c.Len())
	assert.NotNil(t, c.Snapshot())
}

func TestCache_RefreshKeepsPreviousOnFailure(t *testing.T) {
	loader := &flakyLoader{records: []venue.VenueRecord{{ID: "a"}}}
	c := webhook.NewCache(webhook.CacheConfig{Loader: loader, Logger: quietLogger()})
	require.NoError(t, c.Refresh(context.Background()))

	loader.failures = 100
	assert.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, c.Len())
}

func TestCache_NoLoader(t *testing.T) {
	c := webhook.NewCache(webhook.CacheConfig{Logger: quietLogger()})
	errutil.AssertErrorCode(t, c.Refresh(context.Background()), "DIRECTORY_FAILED")
}

func TestCache_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	loader := &flakyLoader{records: []venue.VenueRecord{{ID: "a"}}}
	c := webhook.NewCache(webhook.CacheConfig{Loader: loader, Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- c.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return loader.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, 1, c.Len())
}
