package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const segmentEpsilon = 1e-9

// SegmentPlane intersects the segment a->b with the plane. t is the fraction
// along the segment. Segments parallel to the plane never intersect.
func SegmentPlane(a, b mgl64.Vec3, pl Plane) (point mgl64.Vec3, t float64, ok bool) {
	dir := b.Sub(a)
	denom := pl.Normal.Dot(dir)
	if math.Abs(denom) < segmentEpsilon {
		return mgl64.Vec3{}, 0, false
	}
	t = -pl.Distance(a) / denom
	if t < 0 || t > 1 {
		return mgl64.Vec3{}, t, false
	}
	return a.Add(dir.Mul(t)), t, true
}

// SegmentQuad intersects the segment a->b with a rectangle lying in the
// local XY plane of frame, centered on it, with the given half extents.
func SegmentQuad(a, b mgl64.Vec3, frame Pose, halfW, halfH float64) (mgl64.Vec3, bool) {
	pl := PlaneFromPoint(frame.Position, frame.Forward())
	hit, _, ok := SegmentPlane(a, b, pl)
	if !ok {
		return mgl64.Vec3{}, false
	}
	local := frame.InverseTransformPoint(hit)
	if math.Abs(local.X()) > halfW || math.Abs(local.Y()) > halfH {
		return mgl64.Vec3{}, false
	}
	return hit, true
}
