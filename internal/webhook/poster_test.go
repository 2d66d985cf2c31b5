// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venueshare/venueshare/internal/venue"
	"github.com/venueshare/venueshare/internal/webhook"
	"github.com/venueshare/venueshare/pkg/errutil"
)

func sampleMessage() venue.Message {
	loc := venue.LocationPayload{Server: "Gilgamesh", District: "Mist", Ward: 5, Plot: 12}
	return venue.BuildMessage(loc, nil, "Urianger", fixedNow)
}

func TestDiscordWebhookPoster_Post(t *testing.T) {
	var got venue.Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := webhook.NewDiscordWebhookPoster(map[string]string{"42": srv.URL + "/api/webhooks/42/token"}, srv.Client())
	require.NoError(t, p.Post(context.Background(), "42", sampleMessage()))

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, sampleMessage().Embeds[0].Description, got.Embeds[0].Description)
}

func TestDiscordWebhookPoster_UnknownChannel(t *testing.T) {
	p := webhook.NewDiscordWebhookPoster(map[string]string{"42": "http://127.0.0.1:1"}, nil)
	err := p.Post(context.Background(), "43", sampleMessage())
	assert.True(t, errors.Is(err, webhook.ErrChannelNotFound))
}

func TestDiscordWebhookPoster_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid Form Body"}`))
	}))
	defer srv.Close()

	p := webhook.NewDiscordWebhookPoster(map[string]string{"42": srv.URL}, srv.Client())
	err := p.Post(context.Background(), "42", sampleMessage())
	errutil.AssertErrorCode(t, err, "POST_FAILED")
	errutil.AssertErrorContext(t, err, "status", http.StatusBadRequest)
	assert.False(t, errors.Is(err, webhook.ErrChannelNotFound))
}

func TestLogPoster_Post(t *testing.T) {
	var buf bytes.Buffer
	p := webhook.NewLogPoster(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, p.Post(context.Background(), "42", sampleMessage()))
	assert.Contains(t, buf.String(), `"channel_id":"42"`)
	assert.Contains(t, buf.String(), "No Venues Found")
}
