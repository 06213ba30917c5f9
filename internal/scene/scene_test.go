package scene

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/portals/internal/core/config"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/portal"
	"github.com/zeusync/portals/internal/core/render"
	"github.com/zeusync/portals/internal/core/traveler"
)

const dt = 0.02

type counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *counter) handle(ev bus.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[ev.Type()]++
	return nil
}

func (c *counter) get(typ string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[typ]
}

// newCanonical builds P at the origin facing +Z linked to Q at (0,0,10)
// facing -Z.
func newCanonical(t *testing.T) (*Scene, *render.Recorder, *counter, *portal.Portal, *portal.Portal) {
	t.Helper()
	events := bus.New()
	c := &counter{counts: make(map[string]int)}
	for _, typ := range portal.EventTypes {
		_, err := events.Subscribe(typ, c.handle)
		require.NoError(t, err)
	}

	rec := render.NewRecorder(320, 240)
	s, err := New(config.Default(), rec, events, nil)
	require.NoError(t, err)

	p, err := s.SpawnPortal(portal.SpawnOptions{
		Name: "P",
		Pose: geom.Pose{Rotation: mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0})},
	})
	require.NoError(t, err)
	q, err := s.SpawnPortal(portal.SpawnOptions{
		Name:   "Q",
		Pose:   geom.Pose{Position: mgl64.Vec3{0, 0, 10}, Rotation: mgl64.QuatIdent()},
		LinkTo: p.ID(),
	})
	require.NoError(t, err)
	return s, rec, c, p, q
}

func drifter(pos, vel mgl64.Vec3) *traveler.Body {
	return traveler.NewBody("crate", geom.Pose{Position: pos, Rotation: mgl64.QuatIdent()},
		mgl64.Vec3{0.25, 0.25, 0.25}, traveler.WithoutGravity(), traveler.WithVelocity(vel))
}

func TestBodyCrossesPortalPair(t *testing.T) {
	s, _, events, p, q := newCanonical(t)
	body := drifter(mgl64.Vec3{0, 0, 3}, mgl64.Vec3{0, 0, -5})
	require.NoError(t, s.AddTraveler(body))

	for i := 0; i < 60; i++ {
		require.NoError(t, s.Step(dt))
	}

	assert.Equal(t, 1, events.get(portal.EventTeleported))
	assert.GreaterOrEqual(t, s.Events().Metrics().Published, uint64(3), "entered P, teleported, exited Q")
	assert.True(t, geom.Near(body.Pose().Position, mgl64.Vec3{0, 0, 7}, 1e-6), "got %v", body.Pose().Position)
	assert.True(t, geom.Near(body.Velocity(), mgl64.Vec3{0, 0, -5}, 1e-9))
	assert.False(t, p.IsTracking(body))
	assert.False(t, q.IsTracking(body), "left Q's trigger long ago")
}

func TestFastBodyIsSwept(t *testing.T) {
	s, _, events, _, _ := newCanonical(t)
	body := drifter(mgl64.Vec3{0, 0, 1.5}, mgl64.Vec3{0, 0, -100})
	require.NoError(t, s.AddTraveler(body))

	require.NoError(t, s.Step(dt))
	assert.Equal(t, 1, events.get(portal.EventTeleported))
	assert.True(t, geom.Near(body.Pose().Position, mgl64.Vec3{0, 0, 9.5}, 1e-9), "got %v", body.Pose().Position)
}

func TestPlayerDrivesCameraAndRendering(t *testing.T) {
	s, rec, _, _, q := newCanonical(t)
	// Standing between the pair, looking at Q.
	player := traveler.NewPlayer(mgl64.Vec3{0, -0.7, 5}, 180, -9.81)
	require.NoError(t, s.AddTraveler(player))

	s.AddCollider("floor", geom.AABB{Min: mgl64.Vec3{-20, -3, -20}, Max: mgl64.Vec3{20, -1.6, 20}})
	require.NoError(t, s.Step(dt))

	assert.True(t, geom.Near(s.Camera().Pose.Position, player.Eye().Position, 1e-12))
	stats := s.LastFrame()
	assert.Equal(t, 1, stats.Rendered)
	assert.Equal(t, 3, stats.Draws)
	require.NotEmpty(t, rec.Calls())
	assert.NotNil(t, q.Screen().Texture())
	assert.True(t, q.Screen().DisplayEnabled())
}

func TestDestroyAndRemove(t *testing.T) {
	s, _, _, p, q := newCanonical(t)
	body := drifter(mgl64.Vec3{0, 0, 0.3}, mgl64.Vec3{})
	require.NoError(t, s.AddTraveler(body))
	assert.ErrorIs(t, s.AddTraveler(body), ErrDuplicateTraveler)

	require.NoError(t, s.Step(dt))
	require.True(t, p.IsTracking(body))

	require.NoError(t, s.DestroyPortal(q.ID()))
	assert.Nil(t, p.Linked())
	require.NoError(t, s.Step(dt), "an unlinked portal is inert")

	require.NoError(t, s.RemoveTraveler(body.ID()))
	assert.False(t, p.IsTracking(body))
	assert.Empty(t, s.Travelers())
	assert.ErrorIs(t, s.RemoveTraveler(body.ID()), ErrUnknownTraveler)
	assert.Error(t, s.DestroyPortal(q.ID()))
}

func TestDigestIsDeterministic(t *testing.T) {
	run := func() uint64 {
		s, _, _, _, _ := newCanonical(t)
		require.NoError(t, s.AddTraveler(drifter(mgl64.Vec3{0.2, 0, 2}, mgl64.Vec3{0, 0, -4})))
		require.NoError(t, s.AddTraveler(traveler.NewPlayer(mgl64.Vec3{1, 5, 4}, 90, -9.81)))
		for i := 0; i < 50; i++ {
			require.NoError(t, s.Step(dt))
		}
		return s.Digest()
	}
	first := run()
	assert.Equal(t, first, run())

	s, _, _, _, _ := newCanonical(t)
	assert.NotEqual(t, first, s.Digest())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RecursionLimit = 0
	_, err := New(cfg, render.NewRecorder(1, 1), nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
