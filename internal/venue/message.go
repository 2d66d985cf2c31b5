// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package venue

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message limits.
const (
	MaxListedVenues      = 3
	MaxListedTags        = 3
	MaxDescriptionLength = 100
)

// EmbedColor is the accent color of search result embeds.
const EmbedColor = 0x3498DB

// Message is a chat message with rich embeds, in Discord webhook form.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds"`
}

// Embed is a rich message block.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// EmbedFooter is the small text under an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// EmbedField is a titled section of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// BuildMessage formats the venue search results for loc.
func BuildMessage(loc LocationPayload, venues []VenueRecord, requestedBy string, now time.Time) Message {
	server := orDefault(loc.Server, "Unknown")
	district := orDefault(loc.District, "Unknown")
	territory := orDefault(loc.TerritoryName, district)

	embed := Embed{
		Title: "🏠 FFXIV Venue Location Search",
		Description: fmt.Sprintf("**Location:** %s Ward %s, Plot %s\n**Server:** %s\n**Territory:** %s",
			district, indexOrUnknown(loc.Ward), indexOrUnknown(loc.Plot), server, territory),
		Color:     EmbedColor,
		Timestamp: now.UTC().Format(time.RFC3339),
		Footer:    &EmbedFooter{Text: fmt.Sprintf("Requested by %s via VenueShare plugin", requestedBy)},
	}

	if len(venues) == 0 {
		embed.Fields = append(embed.Fields, EmbedField{
			Name: "❌ No Venues Found",
			Value: "No venues were found at this location in the FFXIVVenues database.\n\n" +
				"This could mean:\n" +
				"• No venues are registered at this exact location\n" +
				"• The venue may be in a different ward/plot\n" +
				"• The venue might not be listed on FFXIVVenues.com",
		})
		return Message{Embeds: []Embed{embed}}
	}

	embed.Fields = append(embed.Fields, EmbedField{
		Name:  fmt.Sprintf("✅ Found %d Venue(s)", len(venues)),
		Value: "Here are the venues found at or near this location:",
	})
	for i, v := range venues {
		if i == MaxListedVenues {
			break
		}
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  fmt.Sprintf("Venue %d: %s", i+1, v.Name),
			Value: venueSummary(v),
		})
	}
	if extra := len(venues) - MaxListedVenues; extra > 0 {
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  "Additional Results",
			Value: fmt.Sprintf("... and %d more venue(s) found.", extra),
		})
	}
	return Message{Embeds: []Embed{embed}}
}

func venueSummary(v VenueRecord) string {
	var b strings.Builder

	label := "✅ SFW"
	if !v.SFW {
		label = "🔞 NSFW"
	}
	fmt.Fprintf(&b, "**%s** %s\n", v.Name, label)

	if v.Description != "" {
		b.WriteString(Truncate(string(v.Description), MaxDescriptionLength))
		b.WriteString("\n\n")
	}

	l := v.Location
	if l != (VenueLocation{}) {
		fmt.Fprintf(&b, "**Location:** %s / %s - %s, Ward %s, Plot %s\n",
			orDefault(l.DataCenter, "?"), orDefault(l.World, "?"), orDefault(l.District, "?"),
			indexOrUnknown(l.Ward), indexOrUnknown(l.Plot))
	}

	if len(v.Tags) > 0 {
		tags := v.Tags
		if len(tags) > MaxListedTags {
			tags = tags[:MaxListedTags]
		}
		fmt.Fprintf(&b, "**Tags:** %s\n", strings.Join(tags, ", "))
	}

	var links []string
	if v.Website != "" {
		links = append(links, fmt.Sprintf("[Website](%s)", v.Website))
	}
	if v.Discord != "" {
		links = append(links, fmt.Sprintf("[Discord](%s)", v.Discord))
	}
	if len(links) > 0 {
		fmt.Fprintf(&b, "**Links:** %s\n", strings.Join(links, " • "))
	}

	if v.MareCode != "" && v.MarePassword != "" {
		fmt.Fprintf(&b, "**SynchShell:** `%s` / `%s`", v.MareCode, v.MarePassword)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Truncate shortens s to at most limit runes, ending in "..." when cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func indexOrUnknown(n int) string {
	if n <= 0 {
		return "?"
	}
	return strconv.Itoa(n)
}
