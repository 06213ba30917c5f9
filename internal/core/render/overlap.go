package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ScreenRect is a viewport-space box: x and y in viewport units, z in
// distance from the camera.
type ScreenRect struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

func emptyAccumulator() ScreenRect {
	inf := math.Inf(1)
	return ScreenRect{XMin: inf, XMax: -inf, YMin: inf, YMax: -inf, ZMin: inf, ZMax: -inf}
}

func (r *ScreenRect) add(p mgl64.Vec3) {
	r.XMin, r.XMax = math.Min(r.XMin, p.X()), math.Max(r.XMax, p.X())
	r.YMin, r.YMax = math.Min(r.YMin, p.Y()), math.Max(r.YMax, p.Y())
	r.ZMin, r.ZMax = math.Min(r.ZMin, p.Z()), math.Max(r.ZMax, p.Z())
}

// ScreenRectFromPoints projects world points into the camera's viewport and
// returns their bounds. A point behind the camera is pushed to the opposite
// viewport edge, undoing the mirror of the perspective divide. When every
// point is behind the camera the zero rect is returned.
func ScreenRectFromPoints(pts []mgl64.Vec3, cam *Camera) ScreenRect {
	r := emptyAccumulator()
	inFront := false
	for _, p := range pts {
		v := cam.WorldToViewport(p)
		if v.Z() > 0 {
			inFront = true
		} else {
			v[0] = oppositeEdge(v.X())
			v[1] = oppositeEdge(v.Y())
		}
		r.add(v)
	}
	if !inFront {
		return ScreenRect{}
	}
	return r
}

func oppositeEdge(v float64) float64 {
	if v <= 0.5 {
		return 1
	}
	return 0
}

// OverlapFunc decides whether far is visible through near from cam.
type OverlapFunc func(near, far []mgl64.Vec3, cam *Camera) bool

// BoundsOverlap reports whether the far object's viewport rect overlaps the
// near object's while lying at least partly behind it.
func BoundsOverlap(near, far []mgl64.Vec3, cam *Camera) bool {
	n := ScreenRectFromPoints(near, cam)
	f := ScreenRectFromPoints(far, cam)

	if f.ZMax <= n.ZMin {
		return false
	}
	if f.XMax < n.XMin || f.XMin > n.XMax {
		return false
	}
	if f.YMax < n.YMin || f.YMin > n.YMax {
		return false
	}
	return true
}
