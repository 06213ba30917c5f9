package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/geom"
)

// ObliqueClipPlane returns the projection a virtual camera should draw with
// so that nothing between it and the source portal's plane is rendered. When
// the camera is closer to the plane than cfg.NearClipLimit the oblique matrix
// degenerates, so the ordinary projection is returned and oblique is false.
func ObliqueClipPlane(vcam *Camera, source geom.Pose, cfg Config) (proj mgl64.Mat4, oblique bool) {
	base := vcam.BaseProjection()
	clip := geom.CameraSpaceClipPlane(vcam.View(), source, vcam.Pose.Position, cfg.NearClipOffset)
	if math.Abs(clip.W()) > cfg.NearClipLimit {
		return geom.ObliqueProjection(base, clip), true
	}
	return base, false
}

// ProtectScreenFromClipping gives the portal's screen enough depth that the
// camera's near plane cannot cut through it while the camera passes the
// portal. The box is pushed to the side of the plane facing away from the
// camera. Returns the new thickness.
func ProtectScreenFromClipping(screen *display.Screen, portalPose geom.Pose, cam *Camera) float64 {
	halfW, halfH := cam.NearPlaneHalfExtents()
	thickness := mgl64.Vec3{halfW, halfH, cam.Near}.Len()

	offset := thickness / 2
	if portalPose.Forward().Dot(portalPose.Position.Sub(cam.Pose.Position)) <= 0 {
		offset = -offset
	}
	screen.Thickness = thickness
	screen.Offset = offset
	return thickness
}
