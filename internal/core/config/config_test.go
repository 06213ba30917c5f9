package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 3, c.RecursionLimit)
	assert.InDelta(t, 0.05, c.NearClipOffset, 1e-12)
	assert.InDelta(t, 0.2, c.NearClipLimit, 1e-12)
	assert.Equal(t, 4, c.ChainWorkers)
	assert.Equal(t, "json", c.LogFormat)
	assert.InDelta(t, 2, c.ForceExitThicknessRatio, 1e-12)
	assert.InDelta(t, 1280.0/720.0, c.Viewport.Aspect(), 1e-12)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	src := `
recursion_limit: 5
near_clip_limit: 0.3
camera:
  fov: 75
viewport:
  width: 800
  height: 600
physics:
  gravity: -20
telemetry:
  enabled: true
  addr: ":9000"
`
	c, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 5, c.RecursionLimit)
	assert.InDelta(t, 0.3, c.NearClipLimit, 1e-12)
	assert.InDelta(t, 0.05, c.NearClipOffset, 1e-12, "untouched keys keep defaults")
	assert.InDelta(t, 75, c.Camera.FovY, 1e-12)
	assert.InDelta(t, 0.05, c.Camera.Near, 1e-12)
	assert.Equal(t, 800, c.Viewport.Width)
	assert.InDelta(t, -20, c.Physics.Gravity, 1e-12)
	assert.True(t, c.Telemetry.Enabled)
	assert.Equal(t, ":9000", c.Telemetry.Addr)
}

func TestLoadEmptyYAMLGivesDefaults(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	c := Default()
	c.RecursionLimit = 0
	c.Camera.Far = c.Camera.Near
	c.Telemetry = TelemetryConfig{Enabled: true}
	c.LogFormat = "xml"

	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "recursion_limit")
	assert.Contains(t, err.Error(), "camera.far")
	assert.Contains(t, err.Error(), "telemetry.addr")
	assert.Contains(t, err.Error(), "log_format")

	_, err = LoadYAML(strings.NewReader("recursion_limit: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadYAML(strings.NewReader("recursion_limit: [\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("recursion_limit: 2\n"), 0o600))
	c, err := LoadFile(yml)
	require.NoError(t, err)
	assert.Equal(t, 2, c.RecursionLimit)

	js := filepath.Join(dir, "sim.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"recursion_limit": 4, "camera": {"fov": 90}}`), 0o600))
	c, err = LoadFile(js)
	require.NoError(t, err)
	assert.Equal(t, 4, c.RecursionLimit)
	assert.InDelta(t, 90, c.Camera.FovY, 1e-12)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
