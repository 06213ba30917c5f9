package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CameraSpaceClipPlane expresses the portal plane in the view space of a
// camera at camPos. The normal is flipped so that the camera sits on the
// negative side, which is what ObliqueProjection expects. offset moves the
// plane from the portal surface towards the camera.
func CameraSpaceClipPlane(view mgl64.Mat4, portal Pose, camPos mgl64.Vec3, offset float64) mgl64.Vec4 {
	side := float64(Sign(portal.Forward().Dot(portal.Position.Sub(camPos))))
	if side == 0 {
		side = 1
	}
	p := mgl64.TransformCoordinate(portal.Position, view)
	n := mgl64.TransformNormal(portal.Forward(), view).Mul(side)
	d := -p.Dot(n) + offset
	return n.Vec4(d)
}

// ObliqueProjection replaces the near plane of an OpenGL style projection
// matrix with clip, given in view space as (nx, ny, nz, d). The far plane is
// skewed accordingly and depth precision is preserved as well as possible.
func ObliqueProjection(proj mgl64.Mat4, clip mgl64.Vec4) mgl64.Mat4 {
	q := mgl64.Vec4{
		(signOrOne(clip.X()) + proj[8]) / proj[0],
		(signOrOne(clip.Y()) + proj[9]) / proj[5],
		-1,
		(1 + proj[10]) / proj[14],
	}
	c := clip.Mul(2 / clip.Dot(q))
	out := proj
	out[2] = c.X()
	out[6] = c.Y()
	out[10] = c.Z() + 1
	out[14] = c.W()
	return out
}

func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// PerspectiveNearHalfExtents returns the half width and half height of the
// near plane rectangle for a vertical field of view in degrees.
func PerspectiveNearHalfExtents(fovYDeg, aspect, near float64) (halfW, halfH float64) {
	halfH = near * math.Tan(mgl64.DegToRad(fovYDeg)/2)
	return halfH * aspect, halfH
}
