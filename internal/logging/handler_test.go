// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/venueshare/venueshare/pkg/errutil"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Version: "1.0.0", Format: FormatJSON, Writer: &buf})

	logger.Info("location changed", "district", "Mist")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "Failed to parse JSON: %s", buf.String())

	assert.Equal(t, "location changed", entry["msg"])
	assert.Equal(t, "Mist", entry["district"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "level")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "venueshare-serve", Format: FormatText, Writer: &buf})

	logger.Info("webhook server started")

	output := buf.String()
	assert.Contains(t, output, "webhook server started")
	assert.Contains(t, output, "service=venueshare-serve")
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Writer: &buf})

	logger.Debug("hidden")
	assert.Empty(t, buf.String(), "info is the default level")

	buf.Reset()
	logger = Setup(Options{Writer: &buf, Level: slog.LevelDebug})
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Writer: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "shared location")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_NoTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Writer: &buf})

	logger.Info("no trace")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Writer: &buf}).With("component", "dispatcher").WithGroup("req")

	logger.Info("submit", "status", 200)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispatcher", entry["component"])
	group, ok := entry["req"].(map[string]any)
	require.True(t, ok, "expected req group in %s", buf.String())
	assert.EqualValues(t, 200, group["status"])
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat(""))
	assert.NoError(t, ValidateFormat(FormatJSON))
	assert.NoError(t, ValidateFormat(FormatText))
	errutil.AssertErrorCode(t, ValidateFormat("xml"), "CONFIG_INVALID")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
