// Package config loads simulation settings from JSON or YAML.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	RecursionLimit          int     `json:"recursion_limit" yaml:"recursion_limit"`
	NearClipOffset          float64 `json:"near_clip_offset" yaml:"near_clip_offset"`
	NearClipLimit           float64 `json:"near_clip_limit" yaml:"near_clip_limit"`
	ForceExitThicknessRatio float64 `json:"force_exit_thickness_ratio" yaml:"force_exit_thickness_ratio"`
	ChainWorkers            int     `json:"chain_workers" yaml:"chain_workers"`

	Camera    CameraConfig    `json:"camera" yaml:"camera"`
	Viewport  ViewportConfig  `json:"viewport" yaml:"viewport"`
	Physics   PhysicsConfig   `json:"physics" yaml:"physics"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

type CameraConfig struct {
	FovY float64 `json:"fov" yaml:"fov"`
	Near float64 `json:"near" yaml:"near"`
	Far  float64 `json:"far" yaml:"far"`
}

type ViewportConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Aspect is width over height, or 1 for a degenerate viewport.
func (v ViewportConfig) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

type PhysicsConfig struct {
	Gravity float64 `json:"gravity" yaml:"gravity"`

	// FixedStep is the simulation step in seconds.
	FixedStep float64 `json:"fixed_step" yaml:"fixed_step"`
}

type TelemetryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`

	// Token, when set, is required from websocket clients.
	Token string `json:"token" yaml:"token"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "json",
		RecursionLimit:          3,
		NearClipOffset:          0.05,
		NearClipLimit:           0.2,
		ForceExitThicknessRatio: 2,
		ChainWorkers:            4,
		Camera:                  CameraConfig{FovY: 60, Near: 0.05, Far: 500},
		Viewport:                ViewportConfig{Width: 1280, Height: 720},
		Physics:                 PhysicsConfig{Gravity: -9.81, FixedStep: 0.02},
		Telemetry:               TelemetryConfig{Addr: "127.0.0.1:8089"},
	}
}

// LoadYAML reads YAML over the defaults and validates the result.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadJSON reads JSON over the defaults and validates the result.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile picks the decoder from the file extension. Anything that is not
// .json is read as YAML.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.LogFormat == "json" || c.LogFormat == "console", "log_format must be json or console, got %q", c.LogFormat)
	check(c.RecursionLimit >= 1, "recursion_limit must be at least 1, got %d", c.RecursionLimit)
	check(c.NearClipOffset >= 0, "near_clip_offset must not be negative, got %g", c.NearClipOffset)
	check(c.NearClipLimit >= 0, "near_clip_limit must not be negative, got %g", c.NearClipLimit)
	check(c.ForceExitThicknessRatio >= 1, "force_exit_thickness_ratio must be at least 1, got %g", c.ForceExitThicknessRatio)
	check(c.ChainWorkers >= 1, "chain_workers must be at least 1, got %d", c.ChainWorkers)
	check(c.Camera.FovY > 0 && c.Camera.FovY < 180, "camera.fov must be in (0, 180), got %g", c.Camera.FovY)
	check(c.Camera.Near > 0, "camera.near must be positive, got %g", c.Camera.Near)
	check(c.Camera.Far > c.Camera.Near, "camera.far must exceed camera.near, got %g", c.Camera.Far)
	check(c.Viewport.Width >= 0 && c.Viewport.Height >= 0, "viewport must not be negative, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	check(c.Physics.FixedStep > 0, "physics.fixed_step must be positive, got %g", c.Physics.FixedStep)
	check(!c.Telemetry.Enabled || c.Telemetry.Addr != "", "telemetry.addr is required when telemetry is enabled")

	return errors.Join(errs...)
}
