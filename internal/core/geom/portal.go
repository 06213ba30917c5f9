package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Flip180 turns a pose half way around its local up axis. Applied between
// the two portal frames it makes travelers leave the exit portal facing away
// from its surface instead of walking back into it.
var Flip180 = mgl64.HomogRotate3DY(math.Pi)

// PortalMatrix maps world-space transforms seen relative to from into the
// matching world-space transforms relative to to:
//
//	to.localToWorld * Flip180 * from.worldToLocal
func PortalMatrix(from, to Pose) mgl64.Mat4 {
	return to.Matrix().Mul4(Flip180).Mul4(from.InverseMatrix())
}

// MapAcrossPortal carries source through the portal pair.
func MapAcrossPortal(from, to, source Pose) Pose {
	return PoseFromMatrix(PortalMatrix(from, to).Mul4(source.Matrix()))
}

// MapPointAcrossPortal carries a single point through the pair.
func MapPointAcrossPortal(from, to Pose, p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, PortalMatrix(from, to))
}

// MapVectorAcrossPortal carries a direction (velocity, normal) through the
// pair. Translation is ignored.
func MapVectorAcrossPortal(from, to Pose, v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformNormal(v, PortalMatrix(from, to))
}

// PlaneEpsilon is the distance within which a point counts as lying on a
// portal plane.
const PlaneEpsilon = 1e-9

// SignedOffset is the distance of point from the portal plane, positive on the
// side the portal's forward axis points to. Offsets within PlaneEpsilon are
// exactly zero, so rotation round-off never decides a side.
func SignedOffset(portal Pose, point mgl64.Vec3) float64 {
	d := portal.Forward().Dot(point.Sub(portal.Position))
	if math.Abs(d) <= PlaneEpsilon {
		return 0
	}
	return d
}

// SideOfPortal returns +1 for the front half-space, -1 for the back and 0 on
// the plane itself.
func SideOfPortal(portal Pose, point mgl64.Vec3) int {
	return Sign(SignedOffset(portal, point))
}

// SameSideOfPortal reports whether a and b lie on the same side of the plane.
func SameSideOfPortal(portal Pose, a, b mgl64.Vec3) bool {
	return SideOfPortal(portal, a) == SideOfPortal(portal, b)
}

// Sign returns -1, 0 or +1.
func Sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
