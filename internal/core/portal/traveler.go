package portal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/geom"
)

// Traveler is anything a portal can carry to its partner.
type Traveler interface {
	ID() uuid.UUID
	Pose() geom.Pose
	SetPose(geom.Pose)
	Velocity() mgl64.Vec3
	SetVelocity(mgl64.Vec3)
	// Bounds is the world-space collision volume.
	Bounds() geom.AABB
	// Visual is the traveler's renderable form, the source for its clone.
	Visual() display.Visual
	IgnoreCollisionWith(volume string, ignore bool)
}

// TeleportHook is implemented by travelers that carry extra state across a
// portal (the player's view rig). It runs after pose and velocity were
// overwritten. m is the portal matrix and prev the pose before the teleport.
type TeleportHook interface {
	OnTeleport(from, to geom.Pose, m mgl64.Mat4, prev geom.Pose)
}

// PhysicsSync pushes teleported poses into the collision broad phase.
type PhysicsSync interface {
	SyncTransforms()
}

// CrossingState is where a traveler stands relative to one portal.
type CrossingState uint8

const (
	Outside CrossingState = iota
	InsideFront
	InsideBack
)

func (s CrossingState) String() string {
	switch s {
	case Outside:
		return "outside"
	case InsideFront:
		return "inside_front"
	case InsideBack:
		return "inside_back"
	default:
		return "unknown"
	}
}

// tracking is a traveler inside a portal's trigger volume.
type tracking struct {
	traveler   Traveler
	prevOffset float64
	clone      display.Visual
}

func (e *tracking) state() CrossingState {
	if e.prevOffset >= 0 {
		return InsideFront
	}
	return InsideBack
}
