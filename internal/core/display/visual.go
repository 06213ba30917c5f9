package display

import "github.com/zeusync/portals/internal/core/geom"

// Visual is a renderable representation that can be posed, hidden and
// duplicated. Portals use a duplicate ("clone") to show a traveler on the far
// side while it straddles the portal plane.
type Visual interface {
	Name() string
	Pose() geom.Pose
	SetPose(geom.Pose)
	Active() bool
	SetActive(bool)
	// Destroyed reports whether the visual was torn down by its owner. A
	// destroyed clone is replaced on next use rather than revived.
	Destroyed() bool
	Clone() Visual
}
