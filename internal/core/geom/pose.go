// Package geom holds the rigid-transform algebra shared by portals, travelers
// and the render orchestrator.
//
// Conventions: right-handed world, +Y up. A pose looks along its local -Z
// axis (the OpenGL convention used by mgl64), so a camera's view matrix is the
// inverse of its pose matrix.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	localForward = mgl64.Vec3{0, 0, -1}
	localUp      = mgl64.Vec3{0, 1, 0}
	localRight   = mgl64.Vec3{1, 0, 0}
)

// Pose is a rigid transform: a position and an orientation in world space.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity returns the pose at the origin with no rotation.
func Identity() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// NewPose builds a pose from a position and a yaw (degrees, about +Y).
func NewPose(position mgl64.Vec3, yawDeg float64) Pose {
	return Pose{
		Position: position,
		Rotation: mgl64.QuatRotate(mgl64.DegToRad(yawDeg), localUp),
	}
}

// LookAt builds a pose at eye whose forward axis points at target.
func LookAt(eye, target, up mgl64.Vec3) Pose {
	return Pose{
		Position: eye,
		Rotation: mgl64.QuatLookAtV(eye, target, up).Normalize(),
	}
}

// Matrix is the local-to-world matrix.
func (p Pose) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).Mul4(p.rotation().Mat4())
}

// InverseMatrix is the world-to-local matrix. It is built from the conjugate
// rotation rather than a general 4x4 inverse.
func (p Pose) InverseMatrix() mgl64.Mat4 {
	inv := p.rotation().Inverse()
	t := inv.Rotate(p.Position).Mul(-1)
	return mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(inv.Mat4())
}

// PoseFromMatrix extracts the rigid part of m. Any scale in m is discarded.
func PoseFromMatrix(m mgl64.Mat4) Pose {
	var r mgl64.Mat4
	for c := 0; c < 3; c++ {
		col := m.Col(c).Vec3()
		if l := col.Len(); l > 0 {
			col = col.Mul(1 / l)
		}
		r.SetCol(c, col.Vec4(0))
	}
	r.Set(3, 3, 1)
	return Pose{
		Position: m.Col(3).Vec3(),
		Rotation: mgl64.Mat4ToQuat(r).Normalize(),
	}
}

func (p Pose) Forward() mgl64.Vec3 { return p.rotation().Rotate(localForward) }
func (p Pose) Up() mgl64.Vec3      { return p.rotation().Rotate(localUp) }
func (p Pose) Right() mgl64.Vec3   { return p.rotation().Rotate(localRight) }

// TransformPoint maps a point from this pose's local frame into world space.
func (p Pose) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return p.rotation().Rotate(local).Add(p.Position)
}

// InverseTransformPoint maps a world point into this pose's local frame.
func (p Pose) InverseTransformPoint(world mgl64.Vec3) mgl64.Vec3 {
	return p.rotation().Inverse().Rotate(world.Sub(p.Position))
}

// Translate returns the pose moved by d in world space.
func (p Pose) Translate(d mgl64.Vec3) Pose {
	return Pose{Position: p.Position.Add(d), Rotation: p.Rotation}
}

// ApproxEqual compares positions component-wise and orientations up to sign
// (q and -q are the same rotation).
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	if !Near(p.Position, o.Position, eps) {
		return false
	}
	return p.rotation().OrientationEqualThreshold(o.rotation(), eps)
}

// rotation treats the zero quaternion as identity so zero-value poses are usable.
func (p Pose) rotation() mgl64.Quat {
	if p.Rotation.W == 0 && p.Rotation.V.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return p.Rotation
}

// YawPitch returns the yaw (about +Y) and pitch (about local +X) of the
// forward axis, both in degrees. Roll is ignored.
func (p Pose) YawPitch() (yaw, pitch float64) {
	f := p.Forward()
	yaw = mgl64.RadToDeg(math.Atan2(-f.X(), -f.Z()))
	pitch = mgl64.RadToDeg(math.Asin(mgl64.Clamp(f.Y(), -1, 1)))
	return yaw, pitch
}

// FromYawPitch builds a rotation from yaw and pitch in degrees, matching YawPitch.
func FromYawPitch(yaw, pitch float64) mgl64.Quat {
	qYaw := mgl64.QuatRotate(mgl64.DegToRad(yaw), localUp)
	qPitch := mgl64.QuatRotate(mgl64.DegToRad(pitch), localRight)
	return qYaw.Mul(qPitch).Normalize()
}

// Near compares two vectors by absolute distance. mgl64's ApproxEqual family
// is relative and rejects tiny residues around zero.
func Near(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

// MatNear compares two matrices element-wise by absolute difference.
func MatNear(a, b mgl64.Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
