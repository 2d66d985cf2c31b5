// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/venueshare/venueshare/internal/venue"
)

// ErrChannelNotFound is returned by a Poster that cannot reach the channel.
var ErrChannelNotFound = errors.New("channel not found")

// Poster delivers a formatted message to a chat channel.
type Poster interface {
	Post(ctx context.Context, channelID string, msg venue.Message) error
}

// DiscordWebhookPoster posts messages through per-channel Discord webhooks.
type DiscordWebhookPoster struct {
	webhooks map[string]string
	http     *http.Client
}

// NewDiscordWebhookPoster creates a poster for the given channel ID to webhook
// URL map. A nil client uses a client with a 10s timeout.
func NewDiscordWebhookPoster(webhooks map[string]string, client *http.Client) *DiscordWebhookPoster {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	hooks := make(map[string]string, len(webhooks))
	for id, url := range webhooks {
		hooks[id] = url
	}
	return &DiscordWebhookPoster{webhooks: hooks, http: client}
}

// Post implements Poster.
func (p *DiscordWebhookPoster) Post(ctx context.Context, channelID string, msg venue.Message) error {
	url, ok := p.webhooks[channelID]
	if !ok {
		return oops.With("channel_id", channelID).Wrap(ErrChannelNotFound)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return oops.Code("POST_FAILED").With("channel_id", channelID).Wrapf(err, "encode message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return oops.Code("POST_FAILED").With("channel_id", channelID).Wrapf(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return oops.Code("POST_FAILED").With("channel_id", channelID).Wrapf(err, "post message")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return oops.Code("POST_FAILED").
			With("channel_id", channelID).
			With("status", resp.StatusCode).
			With("body", string(snippet)).
			Errorf("discord returned %s", resp.Status)
	}
	return nil
}

// LogPoster writes messages to a logger instead of a chat service.
type LogPoster struct {
	logger *slog.Logger
}

// NewLogPoster creates a LogPoster.
func NewLogPoster(logger *slog.Logger) *LogPoster {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPoster{logger: logger}
}

// Post implements Poster.
func (p *LogPoster) Post(_ context.Context, channelID string, msg venue.Message) error {
	for _, e := range msg.Embeds {
		fields := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, f.Name)
		}
		p.logger.Info("venue search result",
			"channel_id", channelID,
			"title", e.Title,
			"description", e.Description,
			"fields", fields,
		)
	}
	return nil
}
