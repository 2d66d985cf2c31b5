// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/venueshare/venueshare/internal/housing"
	"github.com/venueshare/venueshare/pkg/errutil"
)

// DefaultDirectoryURL is the public venue directory.
const DefaultDirectoryURL = "https://ffxivvenues.com"

// DefaultTimeout bounds a single dispatcher call.
const DefaultTimeout = 10 * time.Second

// maxErrorBody is how much of a failed response body is kept for diagnostics.
const maxErrorBody = 4 << 10

// maxDirectoryBody bounds a directory response.
const maxDirectoryBody = 32 << 20

// RequestIDHeader carries a per-request ULID.
const RequestIDHeader = "X-Request-ID"

// Dispatcher hands resolved locations to the notification endpoint and
// queries the venue directory. Both operations are best effort: they report
// failure through their return value and never return an error.
type Dispatcher interface {
	// Submit makes a single attempt to deliver req. It returns false when
	// sharing is disabled or the endpoint did not accept the request.
	Submit(ctx context.Context, req NotificationRequest) bool
	// QueryDirectory returns the directory venues at loc. The result is
	// empty, never nil, on failure.
	QueryDirectory(ctx context.Context, loc housing.Location) []VenueRecord
}

// ClientConfig configures Client.
type ClientConfig struct {
	// Enabled gates Submit. QueryDirectory ignores it.
	Enabled bool
	// BaseURL is the notification endpoint; requests go to {BaseURL}/venue-search.
	BaseURL string
	// Token, when set, is sent as a bearer token to the notification endpoint
	// only. The directory is a third party and never receives it.
	Token string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// DirectoryURL defaults to DefaultDirectoryURL.
	DirectoryURL     string
	DirectoryTimeout time.Duration
	HTTPClient       *http.Client
	Logger           *slog.Logger
}

// Client is the HTTP Dispatcher.
type Client struct {
	enabled          bool
	baseURL          string
	token            string
	timeout          time.Duration
	directoryURL     string
	directoryTimeout time.Duration
	http             *http.Client
	logger           *slog.Logger
}

var _ Dispatcher = (*Client)(nil)

// NewClient creates a Client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		enabled:          cfg.Enabled,
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		token:            cfg.Token,
		timeout:          cfg.Timeout,
		directoryURL:     strings.TrimRight(cfg.DirectoryURL, "/"),
		directoryTimeout: cfg.DirectoryTimeout,
		http:             cfg.HTTPClient,
		logger:           cfg.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.directoryURL == "" {
		c.directoryURL = DefaultDirectoryURL
	}
	if c.directoryTimeout <= 0 {
		c.directoryTimeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Submit implements Dispatcher.
func (c *Client) Submit(ctx context.Context, req NotificationRequest) bool {
	if !c.enabled || c.baseURL == "" {
		c.logger.Warn("venue sharing is disabled or the endpoint is not configured")
		recordDispatch(OperationSubmit, StatusDisabled)
		return false
	}

	requestID := ulid.Make().String()
	endpoint := c.baseURL + "/venue-search"
	errb := oops.Code("DISPATCH_FAILED").
		With("url", endpoint).
		With("request_id", requestID)

	body, err := json.Marshal(NewShareRequest(req))
	if err != nil {
		errutil.LogError(c.logger, "share location failed", errb.Wrapf(err, "encode share request"))
		recordDispatch(OperationSubmit, StatusError)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		errutil.LogError(c.logger, "share location failed", errb.Wrapf(err, "build request"))
		recordDispatch(OperationSubmit, StatusError)
		return false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		errutil.LogError(c.logger, "share location failed", errb.Wrapf(err, "post share request"))
		recordDispatch(OperationSubmit, StatusError)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := readSnippet(resp.Body)
		err := errb.
			With("status", resp.StatusCode).
			With("body", snippet).
			Errorf("endpoint returned %s", resp.Status)
		errutil.LogError(c.logger, "share location failed", err)
		recordDispatch(OperationSubmit, StatusRejected)
		return false
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	c.logger.Info("shared location",
		"request_id", requestID,
		"district", req.Location.District.String(),
		"ward", req.Location.Ward,
		"plot", req.Location.Plot,
		"channel_id", req.DestinationChannelID,
	)
	recordDispatch(OperationSubmit, StatusOK)
	return true
}

// QueryDirectory implements Dispatcher.
func (c *Client) QueryDirectory(ctx context.Context, loc housing.Location) []VenueRecord {
	q := url.Values{}
	q.Set("server", loc.Server)
	q.Set("district", loc.District.String())
	q.Set("ward", strconv.Itoa(loc.Ward))
	q.Set("plot", strconv.Itoa(loc.Plot))

	records, err := c.fetch(ctx, q)
	if err != nil {
		errutil.LogError(c.logger, "directory query failed", err)
		return []VenueRecord{}
	}
	return records
}

// FetchDirectory returns every venue in the directory. Unlike QueryDirectory
// it reports failures so callers can retry.
func (c *Client) FetchDirectory(ctx context.Context) ([]VenueRecord, error) {
	return c.fetch(ctx, nil)
}

func (c *Client) fetch(ctx context.Context, q url.Values) ([]VenueRecord, error) {
	requestID := ulid.Make().String()
	endpoint := c.directoryURL + "/api/venues"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	errb := oops.Code("DIRECTORY_FAILED").
		With("url", endpoint).
		With("request_id", requestID)

	ctx, cancel := context.WithTimeout(ctx, c.directoryTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		recordDispatch(OperationDirectory, StatusError)
		return []VenueRecord{}, errb.Wrapf(err, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		recordDispatch(OperationDirectory, StatusError)
		return []VenueRecord{}, errb.Wrapf(err, "query directory")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		recordDispatch(OperationDirectory, StatusRejected)
		return []VenueRecord{}, errb.
			With("status", resp.StatusCode).
			With("body", readSnippet(resp.Body)).
			Errorf("directory returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectoryBody))
	if err != nil {
		recordDispatch(OperationDirectory, StatusError)
		return []VenueRecord{}, errb.Wrapf(err, "read directory response")
	}
	records, err := DecodeDirectory(data)
	if err != nil {
		recordDispatch(OperationDirectory, StatusError)
		return []VenueRecord{}, errb.Wrapf(err, "decode directory response")
	}

	c.logger.Debug("directory query complete", "request_id", requestID, "venues", len(records))
	recordDispatch(OperationDirectory, StatusOK)
	return records, nil
}

// readSnippet reads at most maxErrorBody bytes of r for diagnostics.
func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil && len(data) == 0 {
		return ""
	}
	return string(data)
}
