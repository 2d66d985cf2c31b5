// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package webhook

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Default rate limiting values.
const (
	// DefaultBurstCapacity is the number of searches a client can make in a
	// burst before it is limited.
	DefaultBurstCapacity = 10

	// DefaultSustainedRate is the token refill rate, in searches per second.
	DefaultSustainedRate = 2.0

	// MinSustainedRate keeps the cooldown finite.
	MinSustainedRate = 0.1

	// DefaultClientMaxAge is how long an idle client's bucket is kept.
	DefaultClientMaxAge = time.Hour
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// BurstCapacity defaults to DefaultBurstCapacity if zero or negative.
	BurstCapacity int
	// SustainedRate defaults to DefaultSustainedRate if zero or negative.
	SustainedRate float64
	// ClientMaxAge defaults to DefaultClientMaxAge if zero.
	ClientMaxAge time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// clientBucket tracks rate limiting state for a single client using the
// token bucket algorithm.
type clientBucket struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter implements per-client rate limiting using a token bucket
// algorithm. It is safe for concurrent use.
//
// Idle buckets are swept during Allow, at most once per ClientMaxAge, so the
// limiter needs no goroutine of its own.
type RateLimiter struct {
	mu            sync.Mutex
	clients       map[string]*clientBucket
	burstCapacity int
	sustainedRate float64 // tokens per second
	clientMaxAge  time.Duration
	now           func() time.Time
	lastSweep     time.Time
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	burstCapacity := cfg.BurstCapacity
	if burstCapacity <= 0 {
		burstCapacity = DefaultBurstCapacity
	}

	sustainedRate := cfg.SustainedRate
	if sustainedRate <= 0 {
		sustainedRate = DefaultSustainedRate
	}
	if sustainedRate < MinSustainedRate {
		sustainedRate = MinSustainedRate
	}

	maxAge := cfg.ClientMaxAge
	if maxAge <= 0 {
		maxAge = DefaultClientMaxAge
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &RateLimiter{
		clients:       make(map[string]*clientBucket),
		burstCapacity: burstCapacity,
		sustainedRate: sustainedRate,
		clientMaxAge:  maxAge,
		now:           now,
		lastSweep:     now(),
	}
}

// Allow reports whether client may make a request now, and otherwise how long
// until it may. Each allowed call consumes one token.
func (rl *RateLimiter) Allow(client string) (allowed bool, cooldown time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.clientMaxAge {
		rl.sweep(now)
	}

	bucket, exists := rl.clients[client]
	if !exists {
		// New client starts with full bucket
		bucket = &clientBucket{
			tokens:    float64(rl.burstCapacity),
			lastCheck: now,
		}
		rl.clients[client] = bucket
	}

	// Refill tokens based on elapsed time
	elapsed := now.Sub(bucket.lastCheck).Seconds()
	bucket.tokens += elapsed * rl.sustainedRate
	if bucket.tokens > float64(rl.burstCapacity) {
		bucket.tokens = float64(rl.burstCapacity)
	}
	bucket.lastCheck = now

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true, 0
	}

	deficit := 1.0 - bucket.tokens
	return false, time.Duration(deficit / rl.sustainedRate * float64(time.Second))
}

// ClientCount returns the number of tracked clients.
func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// sweep drops clients idle for longer than clientMaxAge. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	threshold := now.Add(-rl.clientMaxAge)
	for client, bucket := range rl.clients {
		if bucket.lastCheck.Before(threshold) {
			delete(rl.clients, client)
		}
	}
	rl.lastSweep = now
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
