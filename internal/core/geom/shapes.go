package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// cubeCorners are the eight sign combinations of a box's half extents.
var cubeCorners = [8]mgl64.Vec3{
	{1, 1, 1},
	{-1, 1, 1},
	{-1, -1, 1},
	{-1, -1, -1},
	{-1, 1, -1},
	{1, -1, -1},
	{1, 1, -1},
	{1, -1, 1},
}

// AABB is an axis aligned box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// AABBFromCenter builds a box from its center and half extents.
func AABBFromCenter(center, half mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// AABBFromPoints returns the smallest box enclosing pts. An empty slice
// yields the zero box.
func AABBFromPoints(pts []mgl64.Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	b := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = math.Min(b.Min[i], p[i])
			b.Max[i] = math.Max(b.Max[i], p[i])
		}
	}
	return b
}

func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) HalfExtents() mgl64.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Overlaps reports whether the two boxes intersect or touch.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

// Translate returns the box moved by d.
func (b AABB) Translate(d mgl64.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]mgl64.Vec3 {
	c, h := b.Center(), b.HalfExtents()
	var out [8]mgl64.Vec3
	for i, s := range cubeCorners {
		out[i] = c.Add(mgl64.Vec3{h[0] * s[0], h[1] * s[1], h[2] * s[2]})
	}
	return out
}

// Box is an oriented box: a center and half extents expressed in the frame of
// an owning pose.
type Box struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// Corners returns the box corners in world space for the given frame.
func (b Box) Corners(frame Pose) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	h := b.HalfExtents
	for i, s := range cubeCorners {
		local := b.Center.Add(mgl64.Vec3{h[0] * s[0], h[1] * s[1], h[2] * s[2]})
		out[i] = frame.TransformPoint(local)
	}
	return out
}

// WorldBounds is the world AABB enclosing the oriented box.
func (b Box) WorldBounds(frame Pose) AABB {
	c := b.Corners(frame)
	return AABBFromPoints(c[:])
}

// Scaled returns the box with its half extents multiplied per axis.
func (b Box) Scaled(s mgl64.Vec3) Box {
	return Box{
		Center:      b.Center,
		HalfExtents: mgl64.Vec3{b.HalfExtents[0] * s[0], b.HalfExtents[1] * s[1], b.HalfExtents[2] * s[2]},
	}
}

// ContainsPoint tests a world-space point against the box in the given frame.
func (b Box) ContainsPoint(frame Pose, p mgl64.Vec3) bool {
	local := frame.InverseTransformPoint(p).Sub(b.Center)
	for i := 0; i < 3; i++ {
		if math.Abs(local[i]) > b.HalfExtents[i] {
			return false
		}
	}
	return true
}

// OverlapsAABB runs a separating axis test between the oriented box and a
// world AABB. Only the six face axes are checked, which may report a touch for
// some edge-on configurations. That is acceptable for trigger queries.
func (b Box) OverlapsAABB(frame Pose, a AABB) bool {
	axes := [6]mgl64.Vec3{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		frame.Right(), frame.Up(), frame.Forward(),
	}
	boxCorners := b.Corners(frame)
	aabbCorners := a.Corners()
	for _, axis := range axes {
		minA, maxA := project(boxCorners[:], axis)
		minB, maxB := project(aabbCorners[:], axis)
		if maxA < minB || maxB < minA {
			return false
		}
	}
	return true
}

func project(pts []mgl64.Vec3, axis mgl64.Vec3) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// Plane is n.p + d = 0 with a unit normal.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// PlaneFromPoint builds the plane through point with the given normal.
func PlaneFromPoint(point, normal mgl64.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(point)}
}

// Distance is the signed distance from p to the plane.
func (pl Plane) Distance(p mgl64.Vec3) float64 {
	return pl.Normal.Dot(p) + pl.D
}

// Vec4 packs the plane as (nx, ny, nz, d).
func (pl Plane) Vec4() mgl64.Vec4 {
	return pl.Normal.Vec4(pl.D)
}
