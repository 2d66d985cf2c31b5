// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/venueshare/venueshare/internal/config"
	"github.com/venueshare/venueshare/internal/housing"
)

func serveApp(t *testing.T, directoryURL, listenAddr string) (*app, *syncBuffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Directory.BaseURL = directoryURL
	cfg.Server.ListenAddr = listenAddr
	cfg.Server.MetricsAddr = "127.0.0.1:0"
	cfg.Server.RefreshInterval = time.Hour

	logs := &syncBuffer{}
	return &app{
		cfg:        &cfg,
		logger:     slog.New(slog.NewJSONHandler(logs, nil)),
		table:      housing.DefaultZoneTable(),
		httpClient: &http.Client{Transport: &http.Transport{DisableKeepAlives: true}},
	}, logs
}

func TestServe_StopsOnCancel(t *testing.T) {
	directory := directoryServer(t, http.StatusOK, directoryJSON)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	a, logs := serveApp(t, directory.URL, "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.Contains(t, logs.String(), "webhook server started")
	assert.Contains(t, logs.String(), "observability server stopped")
}

func TestServe_ListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = busy.Close() }()

	a, _ := serveApp(t, "http://127.0.0.1:1", busy.Addr().String())
	err = a.serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start webhook server")
}
