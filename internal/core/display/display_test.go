package display

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/portals/internal/core/geom"
)

type failingAllocator struct{}

func (failingAllocator) CreateTexture(int, int) (Texture, error) {
	return nil, errors.New("out of video memory")
}

func TestEnsureTextureRecreatesOnResize(t *testing.T) {
	alloc := NewMemoryAllocator()
	screen := NewScreen(2, 3)

	first, created, err := EnsureTexture(screen, alloc, 800, 600)
	require.NoError(t, err)
	assert.True(t, created)

	same, created, err := EnsureTexture(screen, alloc, 800, 600)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID(), same.ID())

	resized, created, err := EnsureTexture(screen, alloc, 1024, 768)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID(), resized.ID())
	assert.True(t, first.(*MemoryTexture).Released(), "old texture released before replacement")
	assert.Equal(t, 1, alloc.Live())

	c, r := alloc.Stats()
	assert.Equal(t, 2, c)
	assert.Equal(t, 1, r)
}

func TestEnsureTextureErrors(t *testing.T) {
	screen := NewScreen(1, 1)

	_, _, err := EnsureTexture(screen, NewMemoryAllocator(), 0, 600)
	assert.ErrorIs(t, err, ErrZeroViewport)

	_, _, err = EnsureTexture(screen, failingAllocator{}, 10, 10)
	assert.ErrorIs(t, err, ErrTextureAllocation)
	assert.Nil(t, screen.Texture())
}

func TestScreenUnbindReleases(t *testing.T) {
	alloc := NewMemoryAllocator()
	screen := NewScreen(1, 1)
	_, _, err := EnsureTexture(screen, alloc, 4, 4)
	require.NoError(t, err)

	screen.Unbind()
	assert.Nil(t, screen.Texture())
	assert.Zero(t, alloc.Live())
}

func TestScreenBounds(t *testing.T) {
	screen := NewScreen(2, 4)
	screen.Thickness = 0.5
	screen.Offset = 0.25

	// The offset moves the box along the portal's forward axis (-Z locally).
	b := screen.WorldBounds(geom.Identity())
	assert.InDelta(t, -1, b.Min.X(), 1e-12)
	assert.InDelta(t, 2, b.Max.Y(), 1e-12)
	assert.InDelta(t, -0.5, b.Min.Z(), 1e-12)
	assert.InDelta(t, 0, b.Max.Z(), 1e-12)

	corners := screen.Corners(geom.Pose{Position: mgl64.Vec3{0, 0, 5}})
	for _, c := range corners {
		assert.True(t, c.Z() <= 5 && c.Z() >= 4.5)
	}
}

func TestScreenDisplayFlag(t *testing.T) {
	screen := NewScreen(1, 1)
	assert.True(t, screen.DisplayEnabled())
	screen.SetDisplayEnabled(false)
	assert.False(t, screen.DisplayEnabled())
	assert.Equal(t, "shadows_only", ShadowsOnly.String())
}
