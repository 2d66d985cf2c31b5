// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directoryJSON = `{"venues": [
  {"id": "a", "name": "Moonlit Cafe", "tags": ["Cafe", "Music"],
   "location": {"world": "Gilgamesh", "district": "Lavender Beds", "ward": 12, "plot": 30}},
  {"id": "b", "name": "Crystal Lounge",
   "location": {"world": "Gilgamesh", "district": "Lavender Beds", "ward": 12, "plot": 30}},
  {"id": "c", "name": "Elsewhere Cafe",
   "location": {"world": "Gilgamesh", "district": "Mist", "ward": 3, "plot": 7}}
]}`

func directoryServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/venues", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch(t *testing.T) {
	dir := isolate(t)
	snapshot := writeFile(t, dir, "snapshot.yaml", lavenderBedsSnapshot)
	directory := directoryServer(t, http.StatusOK, directoryJSON)

	out, _, err := run(t, context.Background(), "search", "--snapshot", snapshot, "--directory-url", directory.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Moonlit Cafe")
	assert.Contains(t, out, "Cafe, Music")
	assert.Contains(t, out, "Crystal Lounge")
	assert.NotContains(t, out, "Elsewhere Cafe", "venues at other plots are dropped")
}

func TestSearch_NameFilter(t *testing.T) {
	dir := isolate(t)
	snapshot := writeFile(t, dir, "snapshot.yaml", lavenderBedsSnapshot)
	directory := directoryServer(t, http.StatusOK, directoryJSON)

	out, _, err := run(t, context.Background(), "search", "--snapshot", snapshot, "--directory-url", directory.URL, "--name", "*CAFE*")
	require.NoError(t, err)
	assert.Contains(t, out, "Moonlit Cafe")
	assert.NotContains(t, out, "Crystal Lounge")
}

func TestSearch_DirectoryDown(t *testing.T) {
	dir := isolate(t)
	snapshot := writeFile(t, dir, "snapshot.yaml", lavenderBedsSnapshot)
	directory := directoryServer(t, http.StatusServiceUnavailable, "maintenance")

	out, stderr, err := run(t, context.Background(), "search", "--snapshot", snapshot, "--directory-url", directory.URL)
	require.NoError(t, err)
	assert.Equal(t, "no venues found at Lavender Beds Ward 12, Plot 30 (Gilgamesh)\n", out)
	assert.Contains(t, stderr, "DIRECTORY_FAILED")
}
