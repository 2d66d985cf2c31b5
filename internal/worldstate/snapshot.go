// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

// Package worldstate provides a world state backed by a YAML snapshot file,
// for driving the location engine outside a game client.
package worldstate

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/venueshare/venueshare/internal/housing"
)

// Snapshot is one tick of world state.
//
//	player:
//	  present: true
//	  name: Y'shtola Rhul
//	server: Gilgamesh
//	zone_id: 342
//	zone_names:
//	  342: The Lavender Beds
//	position: {x: 12.5, y: 0, z: -140}
//	map_id: 0
//	label: "Lavender Beds, Ward 12"
//	housing: {ward: 11, plot: 29}
type Snapshot struct {
	Player    Player                    `yaml:"player"`
	Server    string                    `yaml:"server"`
	ZoneID    housing.ZoneID            `yaml:"zone_id"`
	ZoneNames map[housing.ZoneID]string `yaml:"zone_names,omitempty"`
	Position  Coordinates               `yaml:"position"`
	MapID     uint32                    `yaml:"map_id,omitempty"`
	Label     string                    `yaml:"label,omitempty"`
	// Housing is the authoritative 0-indexed ward and plot, when known.
	Housing *HousingIndex `yaml:"housing,omitempty"`
}

// Player describes the local player.
type Player struct {
	Present bool   `yaml:"present"`
	Name    string `yaml:"name,omitempty"`
}

// Coordinates is a world position.
type Coordinates struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// HousingIndex is a 0-indexed ward and plot.
type HousingIndex struct {
	Ward int `yaml:"ward"`
	Plot int `yaml:"plot"`
}

// ParseSnapshot decodes a YAML snapshot. Unknown keys are rejected.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Snapshot
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, oops.Code("SNAPSHOT_INVALID").Wrapf(err, "parse snapshot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the snapshot for values no world state could report.
func (s *Snapshot) Validate() error {
	if s.Housing != nil && (s.Housing.Ward < 0 || s.Housing.Plot < 0) {
		return oops.Code("SNAPSHOT_INVALID").
			With("ward", s.Housing.Ward).
			With("plot", s.Housing.Plot).
			Errorf("housing indices must not be negative")
	}
	if s.Player.Present && s.ZoneID == 0 {
		return oops.Code("SNAPSHOT_INVALID").Errorf("zone_id is required when the player is present")
	}
	return nil
}

// FileProvider serves the snapshot stored in a file. Refresh re-reads it.
// It is safe for concurrent use.
type FileProvider struct {
	path string

	mu   sync.RWMutex
	snap *Snapshot
}

var (
	_ housing.WorldState   = (*FileProvider)(nil)
	_ housing.MapSource    = (*FileProvider)(nil)
	_ housing.LabelSource  = (*FileProvider)(nil)
	_ housing.HousingState = (*FileProvider)(nil)
)

// NewFileProvider loads the snapshot at path.
func NewFileProvider(path string) (*FileProvider, error) {
	p := &FileProvider{path: path}
	if err := p.Refresh(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewStaticProvider serves a fixed snapshot. Refresh is a no-op.
func NewStaticProvider(s *Snapshot) *FileProvider {
	if s == nil {
		s = &Snapshot{}
	}
	return &FileProvider{snap: s}
}

// Path returns the snapshot file path, or "" for a static provider.
func (p *FileProvider) Path() string { return p.path }

// Refresh re-reads the snapshot file. On failure the previous snapshot is kept.
func (p *FileProvider) Refresh() error {
	if p.path == "" {
		return nil
	}
	//nolint:gosec // path comes from the operator's command line
	data, err := os.ReadFile(p.path)
	if err != nil {
		return oops.Code("SNAPSHOT_INVALID").With("path", p.path).Wrapf(err, "read snapshot")
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return oops.With("path", p.path).Wrap(err)
	}
	p.mu.Lock()
	p.snap = snap
	p.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current snapshot.
func (p *FileProvider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.snap
}

func (p *FileProvider) current() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// PlayerName returns the local player's name.
func (p *FileProvider) PlayerName() string { return p.current().Player.Name }

// LocalPlayerPresent implements housing.WorldState.
func (p *FileProvider) LocalPlayerPresent() bool { return p.current().Player.Present }

// ZoneID implements housing.WorldState.
func (p *FileProvider) ZoneID() housing.ZoneID { return p.current().ZoneID }

// Position implements housing.WorldState.
func (p *FileProvider) Position() housing.Position {
	c := p.current().Position
	return housing.Position{X: c.X, Y: c.Y, Z: c.Z}
}

// ServerName implements housing.WorldState.
func (p *FileProvider) ServerName() string { return p.current().Server }

// ZoneName implements housing.WorldState.
func (p *FileProvider) ZoneName(id housing.ZoneID) string { return p.current().ZoneNames[id] }

// MapID implements housing.MapSource.
func (p *FileProvider) MapID() uint32 { return p.current().MapID }

// HousingLabel implements housing.LabelSource.
func (p *FileProvider) HousingLabel() string { return p.current().Label }

// CurrentWardPlot implements housing.HousingState.
func (p *FileProvider) CurrentWardPlot() (housing.WardPlot, error) {
	h := p.current().Housing
	if h == nil {
		return housing.WardPlot{}, housing.ErrNoHousingState
	}
	return housing.WardPlot{Ward: h.Ward, Plot: h.Plot}, nil
}
