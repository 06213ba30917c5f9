package traveler

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/portals/internal/core/geom"
)

func TestBodyMovesModel(t *testing.T) {
	offset := geom.Pose{Position: mgl64.Vec3{0, 0.5, 0}, Rotation: mgl64.QuatIdent()}
	b := NewBody("crate", geom.NewPose(mgl64.Vec3{1, 0, 0}, 90), mgl64.Vec3{0.5, 0.5, 0.5}, WithModelOffset(offset))

	assert.True(t, geom.Near(b.Visual().Pose().Position, mgl64.Vec3{1, 0.5, 0}, 1e-12))

	b.SetPose(geom.NewPose(mgl64.Vec3{0, 0, 3}, 0))
	assert.True(t, geom.Near(b.Model().Pose().Position, mgl64.Vec3{0, 0.5, 3}, 1e-12))

	bounds := b.Bounds()
	assert.Equal(t, mgl64.Vec3{-0.5, -0.5, 2.5}, bounds.Min)
	assert.Equal(t, mgl64.Vec3{0.5, 0.5, 3.5}, bounds.Max)
}

func TestBodyOptions(t *testing.T) {
	b := NewBody("ball", geom.Identity(), mgl64.Vec3{1, 1, 1}, WithoutGravity(), WithVelocity(mgl64.Vec3{1, 2, 3}))
	assert.False(t, b.UsesGravity())
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, b.Velocity())
	assert.NotEqual(t, b.ID(), NewBody("ball", geom.Identity(), mgl64.Vec3{}).ID())
}

func TestIgnoreCollisionWith(t *testing.T) {
	b := NewBody("crate", geom.Identity(), mgl64.Vec3{1, 1, 1})
	b.IgnoreCollisionWith("wall-b", true)
	b.IgnoreCollisionWith("wall-a", true)
	b.IgnoreCollisionWith("", true)

	assert.True(t, b.Ignores("wall-a"))
	assert.Equal(t, []string{"wall-a", "wall-b"}, b.IgnoredVolumes())

	b.IgnoreCollisionWith("wall-a", false)
	assert.False(t, b.Ignores("wall-a"))
	assert.Equal(t, []string{"wall-b"}, b.IgnoredVolumes())
}

func TestModelClone(t *testing.T) {
	m := NewModel("crate", geom.NewPose(mgl64.Vec3{1, 2, 3}, 45))
	c := m.Clone()
	require.NotNil(t, c)
	assert.Equal(t, "crate-clone", c.Name())
	assert.True(t, c.Pose().ApproxEqual(m.Pose(), 1e-12))

	c.SetPose(geom.Identity())
	assert.False(t, m.Pose().ApproxEqual(c.Pose(), 1e-6), "clone is independent")

	m.Destroy()
	assert.True(t, m.Destroyed())
	assert.False(t, m.Active())
	m.SetActive(true)
	assert.False(t, m.Active(), "destroyed models stay hidden")
}

func TestPlayerLookClampsPitch(t *testing.T) {
	p := NewPlayer(mgl64.Vec3{0, 1, 0}, 30, -9.81)
	p.Look(15, 120)
	assert.InDelta(t, 45, p.Rig.Yaw, 1e-12)
	assert.InDelta(t, 90, p.Rig.Pitch, 1e-12)

	yaw, _ := p.Pose().YawPitch()
	assert.InDelta(t, 45, yaw, 1e-9, "body yaws with the view")
	_, bodyPitch := p.Pose().YawPitch()
	assert.InDelta(t, 0, bodyPitch, 1e-9, "body never pitches")

	assert.True(t, geom.Near(p.Eye().Position, mgl64.Vec3{0, 1 + defaultEyeHeight, 0}, 1e-12))
}

func TestPlayerOnTeleportIdentityKeepsView(t *testing.T) {
	p := NewPlayer(mgl64.Vec3{0, 0, 0}, 20, -9.81)
	p.Look(0, -30)
	prev := p.Pose()

	p.OnTeleport(geom.Identity(), geom.Identity(), mgl64.Ident4(), prev)
	assert.InDelta(t, 20, p.Rig.Yaw, 1e-6)
	assert.InDelta(t, -30, p.Rig.Pitch, 1e-6)
}

func TestDeltaAngle(t *testing.T) {
	assert.InDelta(t, 20, deltaAngle(350, 10), 1e-12)
	assert.InDelta(t, -20, deltaAngle(10, 350), 1e-12)
	assert.InDelta(t, 180, deltaAngle(0, 180), 1e-12)
	assert.InDelta(t, 90, deltaAngle(720, 90), 1e-12)
}

func TestWrapPitch(t *testing.T) {
	assert.InDelta(t, 10, wrapPitch(10, -90, 90), 1e-12)
	assert.InDelta(t, -10, wrapPitch(350, -90, 90), 1e-12)
	assert.InDelta(t, 90, wrapPitch(100, -90, 90), 1e-12)
	assert.False(t, math.IsNaN(wrapPitch(-720, -90, 90)))
}
