// Package display models the renderable surface a portal shows its nested
// view on, and the render-target textures bound to it.
package display

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/portals/internal/core/geom"
)

// ShadowMode mirrors the cast-shadow setting of a mesh renderer.
type ShadowMode uint8

const (
	ShadowsOn ShadowMode = iota
	ShadowsOnly
)

func (m ShadowMode) String() string {
	switch m {
	case ShadowsOn:
		return "on"
	case ShadowsOnly:
		return "shadows_only"
	default:
		return "unknown"
	}
}

// Screen is the thin box a portal draws its linked view on. It is expressed in
// the portal's local frame: width along X, height along Y and thickness along
// the forward axis.
type Screen struct {
	Width     float64
	Height    float64
	Thickness float64
	// Offset moves the box along the portal's forward axis. Together with
	// Thickness it keeps the primary camera's near plane inside the screen.
	Offset float64

	Shadow ShadowMode

	displayEnabled bool
	texture        Texture
}

// NewScreen returns a screen of the given size with a flat box and the
// display enabled.
func NewScreen(width, height float64) *Screen {
	return &Screen{
		Width:          width,
		Height:         height,
		Thickness:      0,
		displayEnabled: true,
	}
}

// DisplayEnabled reports whether the bound texture is shown. A disabled
// screen is drawn solid, which is how an "inactive" portal looks.
func (s *Screen) DisplayEnabled() bool { return s.displayEnabled }

// SetDisplayEnabled toggles the display mask.
func (s *Screen) SetDisplayEnabled(enabled bool) { s.displayEnabled = enabled }

// Texture returns the bound texture, or nil.
func (s *Screen) Texture() Texture { return s.texture }

// Bind replaces the bound texture. A previously bound, different texture is
// released first so at most one allocation is ever held.
func (s *Screen) Bind(tex Texture) {
	if s.texture != nil && s.texture != tex {
		s.texture.Release()
	}
	s.texture = tex
}

// Unbind releases and clears the bound texture.
func (s *Screen) Unbind() {
	s.Bind(nil)
}

// LocalBounds is the screen box in the portal's local frame.
func (s *Screen) LocalBounds() geom.Box {
	return geom.Box{
		Center: mgl64.Vec3{0, 0, -s.Offset},
		HalfExtents: mgl64.Vec3{
			s.Width / 2,
			s.Height / 2,
			s.Thickness / 2,
		},
	}
}

// Corners returns the eight world-space corners of the screen box.
func (s *Screen) Corners(portal geom.Pose) [8]mgl64.Vec3 {
	return s.LocalBounds().Corners(portal)
}

// WorldBounds is the world AABB of the screen box.
func (s *Screen) WorldBounds(portal geom.Pose) geom.AABB {
	return s.LocalBounds().WorldBounds(portal)
}
