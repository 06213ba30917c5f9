package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/traveler"
)

func floor() Collider {
	return Collider{Name: "floor", Bounds: geom.AABB{Min: mgl64.Vec3{-10, -1, -10}, Max: mgl64.Vec3{10, 0, 10}}}
}

func TestGravityLandsOnFloor(t *testing.T) {
	w := NewWorld(DefaultGravity, nil)
	w.AddCollider(floor())
	b := traveler.NewBody("crate", geom.NewPose(mgl64.Vec3{0, 2, 0}, 0), mgl64.Vec3{0.5, 0.5, 0.5})
	require.NoError(t, w.AddBody(b))

	for i := 0; i < 200; i++ {
		w.Step(0.02)
	}
	assert.InDelta(t, 0.5, b.Pose().Position.Y(), 1e-9)
	assert.Zero(t, b.Velocity().Y())
	assert.True(t, b.Grounded())
}

func TestIgnoredColliderIsPassable(t *testing.T) {
	w := NewWorld(DefaultGravity, nil)
	w.AddCollider(floor())
	b := traveler.NewBody("crate", geom.NewPose(mgl64.Vec3{0, 0.6, 0}, 0), mgl64.Vec3{0.5, 0.5, 0.5})
	b.IgnoreCollisionWith("floor", true)
	require.NoError(t, w.AddBody(b))

	for i := 0; i < 20; i++ {
		w.Step(0.02)
	}
	assert.Less(t, b.Pose().Position.Y(), 0.5)
	assert.False(t, b.Grounded())
}

func TestWallStopsHorizontalMotion(t *testing.T) {
	w := NewWorld(0, nil)
	w.AddCollider(Collider{Name: "wall", Bounds: geom.AABB{Min: mgl64.Vec3{2, -5, -5}, Max: mgl64.Vec3{3, 5, 5}}})
	b := traveler.NewBody("ball", geom.Identity(), mgl64.Vec3{0.5, 0.5, 0.5}, drifting(mgl64.Vec3{10, 0, 0})...)
	require.NoError(t, w.AddBody(b))

	w.Step(0.2)
	assert.InDelta(t, 1.5, b.Pose().Position.X(), 1e-12)
	assert.Zero(t, b.Velocity().X())
}

// drifting makes a body that only moves with its initial velocity.
func drifting(v mgl64.Vec3) []traveler.BodyOption {
	return []traveler.BodyOption{traveler.WithoutGravity(), traveler.WithVelocity(v)}
}

func TestTriggerEnterExitOrder(t *testing.T) {
	w := NewWorld(0, nil)
	var seen []string
	box := geom.Box{HalfExtents: mgl64.Vec3{1, 1, 0.5}}

	for _, name := range []string{"a", "b"} {
		name := name
		require.NoError(t, w.AddTrigger(&Trigger{
			Name:    name,
			Box:     box,
			Frame:   geom.Identity,
			OnEnter: func(Body) { seen = append(seen, "enter "+name) },
			OnExit:  func(Body) { seen = append(seen, "exit "+name) },
		}))
	}
	assert.ErrorIs(t, w.AddTrigger(&Trigger{Name: "a"}), ErrDuplicateTrigger)

	b := traveler.NewBody("ball", geom.NewPose(mgl64.Vec3{0, 0, -3}, 0), mgl64.Vec3{0.25, 0.25, 0.25},
		drifting(mgl64.Vec3{0, 0, 5})...)
	require.NoError(t, w.AddBody(b))

	w.Step(0.5) // z = -0.5, overlapping
	assert.Empty(t, seen, "callbacks wait for dispatch")
	assert.Equal(t, 2, w.DispatchTriggers())
	assert.Equal(t, []string{"enter a", "enter b"}, seen)
	assert.True(t, w.Inside("a", b.ID()))

	w.Step(0.5) // z = 2
	w.DispatchTriggers()
	assert.Equal(t, []string{"enter a", "enter b", "exit a", "exit b"}, seen)
	assert.Zero(t, w.DispatchTriggers())
}

func TestSyncTransformsRefreshesBounds(t *testing.T) {
	w := NewWorld(0, nil)
	b := traveler.NewBody("ball", geom.Identity(), mgl64.Vec3{1, 1, 1})
	require.NoError(t, w.AddBody(b))
	assert.ErrorIs(t, w.AddBody(b), ErrDuplicateBody)

	b.SetPose(geom.NewPose(mgl64.Vec3{5, 0, 0}, 0))
	bounds, _ := w.Bounds(b.ID())
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, bounds.Max, "stale until synced")

	w.SyncTransforms()
	bounds, ok := w.Bounds(b.ID())
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{6, 1, 1}, bounds.Max)
}

func TestRemoveBodyAndTrigger(t *testing.T) {
	w := NewWorld(0, nil)
	entered := 0
	require.NoError(t, w.AddTrigger(&Trigger{Name: "t", Box: geom.Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, OnEnter: func(Body) { entered++ }}))
	b := traveler.NewBody("ball", geom.Identity(), mgl64.Vec3{0.1, 0.1, 0.1})
	require.NoError(t, w.AddBody(b))

	w.Step(0.02)
	assert.True(t, w.RemoveBody(b.ID()))
	assert.False(t, w.RemoveBody(b.ID()))
	assert.Zero(t, w.DispatchTriggers(), "queued events of removed bodies are dropped")
	assert.Zero(t, entered)

	require.NoError(t, w.RemoveTrigger("t"))
	assert.ErrorIs(t, w.RemoveTrigger("t"), ErrUnknownTrigger)
	assert.Empty(t, w.Bodies())
}
