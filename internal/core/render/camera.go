// Package render drives the recursive portal views: for every linked pair it
// builds the chain of virtual cameras, clips each one at the portal plane and
// issues the draws into the partner's screen texture.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/portals/internal/core/geom"
)

// Camera is a perspective camera. The view matrix is the inverse of Pose.
type Camera struct {
	Pose   geom.Pose
	FovY   float64 // degrees
	Aspect float64
	Near   float64
	Far    float64

	projection *mgl64.Mat4
}

func NewCamera(pose geom.Pose, fovY, aspect, near, far float64) *Camera {
	return &Camera{Pose: pose, FovY: fovY, Aspect: aspect, Near: near, Far: far}
}

// WithPose returns a copy of the camera moved to pose, keeping lens settings
// but not a projection override.
func (c *Camera) WithPose(pose geom.Pose) *Camera {
	return &Camera{Pose: pose, FovY: c.FovY, Aspect: c.Aspect, Near: c.Near, Far: c.Far}
}

func (c *Camera) View() mgl64.Mat4 {
	return c.Pose.InverseMatrix()
}

// BaseProjection is the ordinary perspective projection, ignoring overrides.
func (c *Camera) BaseProjection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

func (c *Camera) Projection() mgl64.Mat4 {
	if c.projection != nil {
		return *c.projection
	}
	return c.BaseProjection()
}

// SetProjection overrides the projection, e.g. with an oblique one.
func (c *Camera) SetProjection(m mgl64.Mat4) { c.projection = &m }

// ResetProjection drops any override.
func (c *Camera) ResetProjection() { c.projection = nil }

func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

func (c *Camera) Frustum() geom.Frustum {
	return geom.ExtractFrustum(c.ViewProjection())
}

// NearPlaneHalfExtents is the half width and half height of the near plane.
func (c *Camera) NearPlaneHalfExtents() (halfW, halfH float64) {
	return geom.PerspectiveNearHalfExtents(c.FovY, c.Aspect, c.Near)
}

// WorldToViewport maps a world point to viewport space: x and y in [0, 1]
// across the view, z the distance in front of the camera. Points behind the
// camera come out mirrored, as with any perspective divide.
func (c *Camera) WorldToViewport(p mgl64.Vec3) mgl64.Vec3 {
	view := c.View().Mul4x1(p.Vec4(1))
	clip := c.Projection().Mul4x1(view)
	w := clip.W()
	if math.Abs(w) < 1e-12 {
		w = math.Copysign(1e-12, w)
	}
	return mgl64.Vec3{
		(clip.X()/w + 1) / 2,
		(clip.Y()/w + 1) / 2,
		-view.Z(),
	}
}
