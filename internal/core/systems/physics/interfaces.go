// Package physics is a small kinematic world: axis-aligned bodies moving
// against static colliders, plus trigger volumes that report enter and exit.
// It is just enough physics to drive portal crossings headless.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/geom"
)

// Body is a dynamic object moved by the world.
type Body interface {
	ID() uuid.UUID
	Pose() geom.Pose
	SetPose(geom.Pose)
	Velocity() mgl64.Vec3
	SetVelocity(mgl64.Vec3)
	HalfExtents() mgl64.Vec3
	UsesGravity() bool
	SetGrounded(bool)
	// Ignores reports whether collision with the named static collider is
	// currently disabled for this body.
	Ignores(collider string) bool
}

// Collider is a named static box.
type Collider struct {
	Name   string
	Bounds geom.AABB
}

// Trigger is a volume that reports bodies entering and leaving it. Frame is
// queried every step so triggers follow moving owners.
type Trigger struct {
	Name    string
	Box     geom.Box
	Frame   func() geom.Pose
	OnEnter func(Body)
	OnExit  func(Body)
}
