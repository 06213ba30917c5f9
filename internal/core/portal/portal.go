// Package portal implements linked portals: trigger tracking, plane crossing
// detection, teleportation of travelers and the registry that owns portal
// lifetimes and links.
package portal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
)

// Portal is one side of a portal pair. The link to its partner is a handle
// resolved through the owning Registry, so neither side keeps the other alive.
type Portal struct {
	id   uuid.UUID
	name string
	pose geom.Pose

	linkedID       uuid.UUID
	recursionLimit int

	trigger         geom.Box
	screen          *display.Screen
	attachedSurface string
	forceExitRatio  float64

	tracked   []*tracking
	destroyed bool

	registry *Registry
	physics  PhysicsSync
	events   bus.EventBus
	logger   log.Log
}

func (p *Portal) ID() uuid.UUID           { return p.id }
func (p *Portal) Name() string            { return p.name }
func (p *Portal) Pose() geom.Pose         { return p.pose }
func (p *Portal) RecursionLimit() int     { return p.recursionLimit }
func (p *Portal) Screen() *display.Screen { return p.screen }
func (p *Portal) Trigger() geom.Box       { return p.trigger }
func (p *Portal) AttachedSurface() string { return p.attachedSurface }
func (p *Portal) Destroyed() bool         { return p.destroyed }

// SetPose moves the portal, e.g. when the surface it is attached to moves.
func (p *Portal) SetPose(pose geom.Pose) { p.pose = pose }

// SetRecursionLimit clamps the limit to at least one.
func (p *Portal) SetRecursionLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	p.recursionLimit = limit
}

// Linked returns the partner portal, or nil when unlinked or when the
// partner no longer exists.
func (p *Portal) Linked() *Portal {
	if p.linkedID == uuid.Nil || p.registry == nil {
		return nil
	}
	q, ok := p.registry.portals[p.linkedID]
	if !ok || q.destroyed {
		return nil
	}
	return q
}

// LinkedID is the handle of the partner portal, uuid.Nil when unlinked.
func (p *Portal) LinkedID() uuid.UUID { return p.linkedID }

// Forward is the portal's facing direction in world space.
func (p *Portal) Forward() mgl64.Vec3 { return p.pose.Forward() }

// SignedOffset of a world point along the portal's forward axis.
func (p *Portal) SignedOffset(point mgl64.Vec3) float64 {
	return geom.SignedOffset(p.pose, point)
}

// Tracked returns the tracked travelers in tracking order.
func (p *Portal) Tracked() []Traveler {
	out := make([]Traveler, len(p.tracked))
	for i, e := range p.tracked {
		out[i] = e.traveler
	}
	return out
}

// IsTracking reports whether t is inside this portal's trigger.
func (p *Portal) IsTracking(t Traveler) bool {
	return p.find(t) >= 0
}

// State returns the crossing state of t relative to this portal.
func (p *Portal) State(t Traveler) CrossingState {
	i := p.find(t)
	if i < 0 {
		return Outside
	}
	return p.tracked[i].state()
}

// Clone returns the clone visual currently managed for t, or nil.
func (p *Portal) Clone(t Traveler) display.Visual {
	i := p.find(t)
	if i < 0 {
		return nil
	}
	return p.tracked[i].clone
}

func (p *Portal) find(t Traveler) int {
	for i, e := range p.tracked {
		if e.traveler.ID() == t.ID() {
			return i
		}
	}
	return -1
}

func (p *Portal) removeAt(i int) {
	p.tracked = append(p.tracked[:i], p.tracked[i+1:]...)
}
