// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/venueshare/venueshare/internal/housing"
	"github.com/venueshare/venueshare/internal/venue"
	"github.com/venueshare/venueshare/internal/webhook"
	"github.com/venueshare/venueshare/internal/worldstate"
)

const channelID = "998877665544332211"

const directoryJSON = `{"venues": [
  {"id": "v1", "name": "The Starlight Stage", "tags": ["Music", "Bar"], "website": "https://starlight.example",
   "location": {"world": "Balmung", "district": "Mist", "ward": 5, "plot": 12}},
  {"id": "v2", "name": "Tidewater Tea", "sfw": true,
   "location": {"world": "Balmung", "district": "Mist", "ward": 5, "plot": 12}},
  {"id": "v3", "name": "Goblet Grill",
   "location": {"world": "Balmung", "district": "Goblet", "ward": 1, "plot": 1}}
]}`

// snapshotYAML describes a player standing at 0-indexed ward and plot.
func snapshotYAML(zone, ward, plot int) string {
	return fmt.Sprintf(`player: {present: true, name: Alphinaud Leveilleur}
server: Balmung
zone_id: %d
position: {x: 10, y: 0, z: 10}
housing: {ward: %d, plot: %d}
`, zone, ward, plot)
}

// discordStub records the bodies Discord webhooks receive.
type discordStub struct {
	mu       sync.Mutex
	messages []venue.Message
}

func (d *discordStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer GinkgoRecover()
	body, err := io.ReadAll(r.Body)
	Expect(err).NotTo(HaveOccurred())
	var msg venue.Message
	Expect(json.Unmarshal(body, &msg)).To(Succeed())

	d.mu.Lock()
	d.messages = append(d.messages, msg)
	d.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (d *discordStub) received() []venue.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]venue.Message(nil), d.messages...)
}

var _ = Describe("Sharing a housing location", func() {
	var (
		ctx          context.Context
		logger       *slog.Logger
		directory    *httptest.Server
		discord      *discordStub
		discordSrv   *httptest.Server
		receiver     *httptest.Server
		snapshotPath string
		world        *worldstate.FileProvider
		client       *venue.Client
		shared       []bool
		svc          *housing.Service
	)

	newReceiver := func(token string) {
		cache := webhook.NewCache(webhook.CacheConfig{
			Loader: venue.NewClient(venue.ClientConfig{DirectoryURL: directory.URL, Logger: logger}),
			Logger: logger,
		})
		Expect(cache.Load(ctx)).To(Succeed())
		Expect(cache.Len()).To(Equal(3))

		server := webhook.NewServer(webhook.Config{
			Cache:  cache,
			Poster: webhook.NewDiscordWebhookPoster(map[string]string{channelID: discordSrv.URL}, nil),
			Token:  token,
			Logger: logger,
		})
		receiver = httptest.NewServer(server.Handler())
		DeferCleanup(receiver.Close)
	}

	newEngine := func(token string) {
		var err error
		world, err = worldstate.NewFileProvider(snapshotPath)
		Expect(err).NotTo(HaveOccurred())

		client = venue.NewClient(venue.ClientConfig{
			Enabled:      true,
			BaseURL:      receiver.URL,
			Token:        token,
			DirectoryURL: directory.URL,
			Logger:       logger,
		})

		table := housing.DefaultZoneTable()
		svc = housing.NewService(housing.ServiceConfig{
			World:      world,
			Classifier: housing.NewClassifier(table, logger),
			Resolver:   housing.NewResolver(logger, housing.DefaultStrategies(table, world)...),
			Logger:     logger,
			OnChange: func(loc housing.Location) {
				shared = append(shared, client.Submit(ctx, venue.NotificationRequest{
					Location:             loc,
					DestinationChannelID: channelID,
					RequestedBy:          world.PlayerName(),
				}))
			},
		})
	}

	writeSnapshot := func(content string) {
		tmp := snapshotPath + ".tmp"
		Expect(os.WriteFile(tmp, []byte(content), 0o600)).To(Succeed())
		Expect(os.Rename(tmp, snapshotPath)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		shared = nil

		directory = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(directoryJSON))
		}))
		DeferCleanup(directory.Close)

		discord = &discordStub{}
		discordSrv = httptest.NewServer(discord)
		DeferCleanup(discordSrv.Close)

		snapshotPath = filepath.Join(GinkgoT().TempDir(), "snapshot.yaml")
		writeSnapshot(snapshotYAML(339, 4, 11))
	})

	Context("with an open receiver", func() {
		BeforeEach(func() {
			newReceiver("")
			newEngine("")
		})

		It("posts the venues at the player's plot to Discord", func() {
			loc, ok := svc.ResolveCurrentLocation()
			Expect(ok).To(BeTrue())
			Expect(loc.District).To(Equal(housing.Mist))
			Expect(loc.WardPlot()).To(Equal(housing.WardPlot{Ward: 5, Plot: 12}))
			Expect(shared).To(Equal([]bool{true}))

			msgs := discord.received()
			Expect(msgs).To(HaveLen(1))
			embed := msgs[0].Embeds[0]
			Expect(embed.Description).To(ContainSubstring("**Location:** Mist Ward 5, Plot 12"))
			Expect(embed.Footer.Text).To(Equal("Requested by Alphinaud Leveilleur via VenueShare plugin"))
			Expect(embed.Fields[0].Name).To(Equal("✅ Found 2 Venue(s)"))
			Expect(embed.Fields[1].Name).To(Equal("Venue 1: The Starlight Stage"))
			Expect(embed.Fields[2].Name).To(Equal("Venue 2: Tidewater Tea"))
		})

		It("shares each distinct location once", func() {
			svc.ResolveCurrentLocation()
			svc.ResolveCurrentLocation()
			Expect(discord.received()).To(HaveLen(1))

			writeSnapshot(snapshotYAML(345, 0, 0))
			Expect(world.Refresh()).To(Succeed())
			loc, ok := svc.ResolveCurrentLocation()
			Expect(ok).To(BeTrue())
			Expect(loc.District).To(Equal(housing.Goblet))

			msgs := discord.received()
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[1].Embeds[0].Fields[0].Name).To(Equal("✅ Found 1 Venue(s)"))
			Expect(shared).To(Equal([]bool{true, true}))
		})

		It("lists the same venues through the directory query", func() {
			loc, ok := svc.ResolveCurrentLocation()
			Expect(ok).To(BeTrue())

			here := venue.Match(client.QueryDirectory(ctx, loc), venue.NewLocationPayload(loc))
			Expect(here).To(HaveLen(2))
		})
	})

	Context("with a receiver that requires a token", func() {
		BeforeEach(func() {
			newReceiver("letmein")
		})

		It("delivers with the right token", func() {
			newEngine("letmein")
			_, ok := svc.ResolveCurrentLocation()
			Expect(ok).To(BeTrue())
			Expect(shared).To(Equal([]bool{true}))
			Expect(discord.received()).To(HaveLen(1))
		})

		It("reports the share as failed without it", func() {
			newEngine("")
			_, ok := svc.ResolveCurrentLocation()
			Expect(ok).To(BeTrue(), "resolution does not depend on delivery")
			Expect(shared).To(Equal([]bool{false}))
			Expect(discord.received()).To(BeEmpty())
		})
	})
})
