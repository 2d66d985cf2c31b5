// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

// Package webhook serves the venue-search endpoint that shared locations are
// posted to. It matches the location against a cached copy of the venue
// directory and posts the results to a chat channel.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/venueshare/venueshare/internal/venue"
	"github.com/venueshare/venueshare/pkg/errutil"
)

// DefaultRequestedBy names the requester when a share request has none.
const DefaultRequestedBy = "Unknown Player"

// maxRequestBody bounds a share request body.
const maxRequestBody = 1 << 20

// Error messages returned in ErrorResponse bodies.
const (
	msgInvalidJSON     = "Invalid JSON in request body"
	msgMissingFields   = "Missing required fields: location and discordChannelId"
	msgInvalidRequest  = "Invalid request body"
	msgInvalidChannel  = "Invalid Discord channel ID"
	msgChannelNotFound = "Discord channel not found"
	msgInternal        = "Internal server error"
	msgUnauthorized    = "Unauthorized"
	msgTooManyRequests = "Too many requests"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	VenuesCached int    `json:"venues_cached"`
}

// Config configures Server.
type Config struct {
	// Addr is the listen address in "host:port" form.
	Addr  string
	Cache *Cache
	// Poster defaults to a LogPoster.
	Poster Poster
	// Token, when set, must be presented as a bearer token.
	Token string
	// RateLimit, if set, limits venue searches per client IP.
	RateLimit *RateLimiter
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the venue-search HTTP server.
type Server struct {
	addr       string
	cache      *Cache
	poster     Poster
	token      string
	limiter    *RateLimiter
	logger     *slog.Logger
	now        func() time.Time
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a server. It does not listen until Start.
func NewServer(cfg Config) *Server {
	s := &Server{
		addr:    cfg.Addr,
		cache:   cfg.Cache,
		poster:  cfg.Poster,
		token:   cfg.Token,
		limiter: cfg.RateLimit,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.cache == nil {
		s.cache = NewCache(CacheConfig{Logger: s.logger})
	}
	if s.poster == nil {
		s.poster = NewLogPoster(s.logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /venue-search", s.handleVenueSearch)
	return mux
}

// Start begins serving. The returned channel receives a serve error, if any,
// and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("webhook server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("webhook server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("webhook server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_webhook_server").Wrap(err)
		}
	}
	s.logger.Info("webhook server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, RouteHealth, http.StatusOK, HealthResponse{
		Status:       "OK",
		Timestamp:    s.now().UTC().Format(time.RFC3339),
		VenuesCached: s.cache.Len(),
	})
}

func (s *Server) handleVenueSearch(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	if s.limiter != nil {
		if ok, cooldown := s.limiter.Allow(clientKey(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(cooldown.Seconds()))))
			s.writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil || !json.Valid(body) {
		s.writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if !hasRequiredFields(body) {
		s.writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	if err := venue.ValidateShareRequest(body); err != nil {
		s.logger.Debug("share request rejected", "error", err)
		s.writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var req venue.ShareRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if _, err := strconv.ParseUint(strings.TrimSpace(req.DiscordChannelID), 10, 64); err != nil {
		s.writeError(w, http.StatusBadRequest, msgInvalidChannel)
		return
	}
	requestedBy := strings.TrimSpace(req.RequestedBy)
	if requestedBy == "" {
		requestedBy = DefaultRequestedBy
	}

	matches := venue.Match(s.cache.Snapshot(), *req.Location)
	msg := venue.BuildMessage(*req.Location, matches, requestedBy, s.now())

	if err := s.poster.Post(r.Context(), req.DiscordChannelID, msg); err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			s.writeError(w, http.StatusNotFound, msgChannelNotFound)
			return
		}
		errutil.LogError(s.logger, "post venue search result failed", err)
		s.writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	s.logger.Info("venue search posted",
		"channel_id", req.DiscordChannelID,
		"requested_by", requestedBy,
		"district", req.Location.District,
		"venues_found", len(matches),
	)
	s.writeJSON(w, RouteVenueSearch, http.StatusOK, venue.ShareResponse{
		Success:     true,
		VenuesFound: len(matches),
		Message:     "Venue information posted to Discord",
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.token == "" {
		return true
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) == 1
}

// hasRequiredFields reports whether body carries a non-empty location and
// channel ID.
func hasRequiredFields(body []byte) bool {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	return truthy(fields["location"]) && truthy(fields["discordChannelId"])
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case map[string]any:
		return len(val) > 0
	case float64:
		return val != 0
	case bool:
		return val
	default:
		return true
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, RouteVenueSearch, status, venue.ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, status int, v any) {
	recordRequest(route, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "route", route, "error", fmt.Errorf("encode JSON response: %w", err))
	}
}
