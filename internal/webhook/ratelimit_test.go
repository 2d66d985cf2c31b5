// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package webhook

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 2, 21, 0, 0, 0, time.UTC)}
}

func TestNewRateLimiter(t *testing.T) {
	t.Run("creates limiter with default values", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{})
		assert.Equal(t, DefaultBurstCapacity, rl.burstCapacity)
		assert.Equal(t, DefaultSustainedRate, rl.sustainedRate)
		assert.Equal(t, DefaultClientMaxAge, rl.clientMaxAge)
	})

	t.Run("negative values use defaults", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: -5, SustainedRate: -1})
		assert.Equal(t, DefaultBurstCapacity, rl.burstCapacity)
		assert.Equal(t, DefaultSustainedRate, rl.sustainedRate)
	})

	t.Run("tiny sustained rate is raised to the minimum", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{SustainedRate: 0.01})
		assert.Equal(t, MinSustainedRate, rl.sustainedRate)
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows requests up to burst capacity", func(t *testing.T) {
		clock := newClock()
		rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 3, SustainedRate: 1, Now: clock.Now})

		for range 3 {
			allowed, cooldown := rl.Allow("10.0.0.1")
			assert.True(t, allowed)
			assert.Zero(t, cooldown)
		}

		allowed, cooldown := rl.Allow("10.0.0.1")
		assert.False(t, allowed)
		assert.Equal(t, time.Second, cooldown)
	})

	t.Run("refills at the sustained rate", func(t *testing.T) {
		clock := newClock()
		rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 1, SustainedRate: 2, Now: clock.Now})

		allowed, _ := rl.Allow("a")
		assert.True(t, allowed)
		allowed, cooldown := rl.Allow("a")
		assert.False(t, allowed)
		assert.Equal(t, 500*time.Millisecond, cooldown)

		clock.Advance(500 * time.Millisecond)
		allowed, _ = rl.Allow("a")
		assert.True(t, allowed)
	})

	t.Run("refill is capped at burst capacity", func(t *testing.T) {
		clock := newClock()
		rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 2, SustainedRate: 1, Now: clock.Now})

		rl.Allow("a")
		clock.Advance(time.Minute)
		for range 2 {
			allowed, _ := rl.Allow("a")
			assert.True(t, allowed)
		}
		allowed, _ := rl.Allow("a")
		assert.False(t, allowed)
	})

	t.Run("clients have separate buckets", func(t *testing.T) {
		clock := newClock()
		rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 1, SustainedRate: 1, Now: clock.Now})

		allowed, _ := rl.Allow("a")
		assert.True(t, allowed)
		allowed, _ = rl.Allow("b")
		assert.True(t, allowed)
		allowed, _ = rl.Allow("a")
		assert.False(t, allowed)
		assert.Equal(t, 2, rl.ClientCount())
	})
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(RateLimiterConfig{ClientMaxAge: time.Minute, Now: clock.Now})

	rl.Allow("idle")
	clock.Advance(30 * time.Second)
	rl.Allow("busy")
	assert.Equal(t, 2, rl.ClientCount())

	clock.Advance(40 * time.Second)
	rl.Allow("busy")
	assert.Equal(t, 1, rl.ClientCount(), "idle client dropped after max age")
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("POST", "/venue-search", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	assert.Equal(t, "192.0.2.7", clientKey(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientKey(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientKey(req))
}
