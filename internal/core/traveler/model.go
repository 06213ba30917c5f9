// Package traveler provides the teleportable entities: a generic kinematic
// body and the controlled player, which layers a view rig on top of a body.
package traveler

import (
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/geom"
)

var _ display.Visual = (*Model)(nil)

// Model is a lightweight visual: a named pose that can be shown, hidden,
// cloned and destroyed.
type Model struct {
	name      string
	pose      geom.Pose
	active    bool
	destroyed bool
}

func NewModel(name string, pose geom.Pose) *Model {
	return &Model{name: name, pose: pose, active: true}
}

func (m *Model) Name() string          { return m.name }
func (m *Model) Pose() geom.Pose       { return m.pose }
func (m *Model) SetPose(p geom.Pose)   { m.pose = p }
func (m *Model) Active() bool          { return m.active && !m.destroyed }
func (m *Model) SetActive(active bool) { m.active = active }
func (m *Model) Destroyed() bool       { return m.destroyed }
func (m *Model) Destroy()              { m.destroyed, m.active = true, false }
func (m *Model) Clone() display.Visual { return &Model{name: m.name + "-clone", pose: m.pose, active: true} }
