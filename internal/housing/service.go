// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package housing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/venueshare/venueshare/pkg/errutil"
)

// WorldState is the host's read-only view of the player and the world.
// It is polled synchronously; values are only expected to be consistent
// within a single ResolveCurrentLocation call.
type WorldState interface {
	LocalPlayerPresent() bool
	ZoneID() ZoneID
	Position() Position
	ServerName() string
	ZoneName(id ZoneID) string
}

// MapSource is implemented by world states that know the current map identifier.
type MapSource interface {
	MapID() uint32
}

// LabelSource is implemented by world states that can read on-screen location text.
type LabelSource interface {
	HousingLabel() string
}

// ServiceConfig holds dependencies for Service.
type ServiceConfig struct {
	World      WorldState
	Classifier *Classifier
	// Resolver defaults to the DefaultStrategies chain over the classifier's table.
	Resolver *Resolver
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// OnChange is called once per distinct location observed.
	OnChange func(Location)
	// OnLeave is called with the last location when the player leaves all
	// trackable zones.
	OnLeave func(Location)
}

// Service resolves the player's current housing location and tracks the last
// location it reported.
//
// Service keeps mutable state and takes no locks; callers polling from more
// than one goroutine should use Locked.
type Service struct {
	world      WorldState
	classifier *Classifier
	resolver   *Resolver
	logger     *slog.Logger
	now        func() time.Time
	onChange   func(Location)
	onLeave    func(Location)

	lastSeen *Location
}

// NewService creates a Service with the given configuration.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = NewClassifier(DefaultZoneTable(), logger)
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewResolver(logger, DefaultStrategies(classifier.Table(), nil)...)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		world:      cfg.World,
		classifier: classifier,
		resolver:   resolver,
		logger:     logger,
		now:        now,
		onChange:   cfg.OnChange,
		onLeave:    cfg.OnLeave,
	}
}

// ResolveCurrentLocation returns the player's current housing location, or
// false when the player is absent or outside every trackable zone. It never
// panics: a fault in the world state provider is logged and reported as no
// location, and a fault in OnChange or OnLeave is logged and ignored.
func (s *Service) ResolveCurrentLocation() (Location, bool) {
	obs := s.observe()
	switch {
	case obs.changed:
		s.notify("on_change", s.onChange, obs.loc)
	case obs.left != nil:
		s.notify("on_leave", s.onLeave, *obs.left)
	}
	return obs.loc, obs.ok
}

// observation is the outcome of one poll of the world state provider.
type observation struct {
	loc     Location
	ok      bool
	changed bool
	// left is the location the player just left, if any.
	left *Location
}

// observe reads the provider and updates the last-seen location. Callbacks
// are not run here.
func (s *Service) observe() (obs observation) {
	defer func() {
		if p := recover(); p != nil {
			err := oops.Code("WORLD_STATE_FAULT").Errorf("world state provider panicked: %v", p)
			errutil.LogError(s.logger, "resolve current location failed", err)
			recordResolution(ResultProviderFault)
			obs = observation{}
		}
	}()

	if s.world == nil || !s.world.LocalPlayerPresent() {
		s.logger.Debug("local player not available")
		recordResolution(ResultNoPlayer)
		return observation{}
	}

	zoneID := s.world.ZoneID()
	district, trackable := s.classifier.Classify(zoneID)
	if !trackable {
		obs.left = s.leave(zoneID)
		recordResolution(ResultUntrackable)
		return obs
	}

	q := Query{
		ZoneID:   zoneID,
		District: district,
		Position: s.world.Position(),
	}
	if ms, ok := s.world.(MapSource); ok {
		q.MapID = ms.MapID()
	}
	if ls, ok := s.world.(LabelSource); ok {
		q.Label = ls.HousingLabel()
	}

	res := s.resolver.Resolve(q)
	loc := Location{
		Server:     s.world.ServerName(),
		District:   district,
		ZoneName:   s.world.ZoneName(zoneID),
		ZoneID:     zoneID,
		Ward:       res.Ward,
		Plot:       res.Plot,
		ObservedAt: s.now().UTC(),
	}

	if s.lastSeen == nil || !s.lastSeen.Equal(loc) {
		s.logger.Info("location changed",
			"server", loc.Server,
			"district", loc.District.String(),
			"ward", loc.Ward,
			"plot", loc.Plot,
			"zone_id", uint32(loc.ZoneID),
			"strategy", res.Strategy,
		)
		LocationChanges.Inc()
		cached := loc
		s.lastSeen = &cached
		obs.changed = true
	}

	recordResolution(ResultLocated)
	obs.loc, obs.ok = loc, true
	return obs
}

// leave clears the last-seen location the first time the player is seen
// outside every trackable zone and returns it; nil if nothing was cached.
func (s *Service) leave(zoneID ZoneID) *Location {
	if s.lastSeen == nil {
		return nil
	}
	prev := s.lastSeen
	s.lastSeen = nil
	s.logger.Info("left housing district",
		"district", prev.District.String(),
		"ward", prev.Ward,
		"plot", prev.Plot,
		"zone_id", uint32(zoneID),
	)
	return prev
}

// notify runs a host callback. A panic is logged as CALLBACK_FAILED and does
// not affect the resolved location or the cache.
func (s *Service) notify(callback string, fn func(Location), loc Location) {
	if fn == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			err := oops.Code("CALLBACK_FAILED").
				With("callback", callback).
				With("zone_id", uint32(loc.ZoneID)).
				Errorf("location callback panicked: %v", p)
			errutil.LogError(s.logger, "location callback failed", err)
		}
	}()
	fn(loc)
}

// IsInTrackableZone reports whether the current zone belongs to a housing
// district. It does not touch the last-seen location.
func (s *Service) IsInTrackableZone() (trackable bool) {
	defer func() {
		if p := recover(); p != nil {
			err := oops.Code("WORLD_STATE_FAULT").Errorf("world state provider panicked: %v", p)
			errutil.LogError(s.logger, "zone check failed", err)
			trackable = false
		}
	}()

	if s.world == nil {
		return false
	}
	_, trackable = s.classifier.Classify(s.world.ZoneID())
	return trackable
}

// LastSeen returns the cached last location, if any.
func (s *Service) LastSeen() (Location, bool) {
	if s.lastSeen == nil {
		return Location{}, false
	}
	return *s.lastSeen, true
}

// Locked serializes access to a Service for hosts that poll from several
// goroutines.
type Locked struct {
	mu  sync.Mutex
	svc *Service
}

// NewLocked wraps svc.
func NewLocked(svc *Service) *Locked {
	return &Locked{svc: svc}
}

// ResolveCurrentLocation calls Service.ResolveCurrentLocation under the lock.
func (l *Locked) ResolveCurrentLocation() (Location, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.ResolveCurrentLocation()
}

// IsInTrackableZone calls Service.IsInTrackableZone under the lock.
func (l *Locked) IsInTrackableZone() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.IsInTrackableZone()
}

// LastSeen calls Service.LastSeen under the lock.
func (l *Locked) LastSeen() (Location, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.svc.LastSeen()
}
