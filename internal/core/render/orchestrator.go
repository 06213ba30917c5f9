package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
	"github.com/zeusync/portals/internal/core/portal"
	"github.com/zeusync/portals/pkg/concurrent"
)

const (
	DefaultNearClipOffset = 0.05
	DefaultNearClipLimit  = 0.2
)

// Config tunes the oblique near plane.
type Config struct {
	// NearClipOffset moves the clip plane from the portal surface towards
	// the virtual camera.
	NearClipOffset float64 `yaml:"near_clip_offset"`

	// NearClipLimit is the camera to plane distance under which the ordinary
	// projection is used instead of the oblique one.
	NearClipLimit float64 `yaml:"near_clip_limit"`

	// ChainWorkers bounds the goroutines building recursion chains. One or
	// less builds them inline.
	ChainWorkers int `yaml:"chain_workers"`
}

func DefaultConfig() Config {
	return Config{
		NearClipOffset: DefaultNearClipOffset,
		NearClipLimit:  DefaultNearClipLimit,
		ChainWorkers:   1,
	}
}

// DrawCall is one virtual camera render into a portal texture.
type DrawCall struct {
	Source uuid.UUID // portal the virtual camera looks through
	Target uuid.UUID // portal whose screen shows the result

	// Depth is 1 for the shallowest view and grows with recursion.
	Depth      int
	Pose       geom.Pose
	View       mgl64.Mat4
	Projection mgl64.Mat4
	Oblique    bool
	Texture    display.Texture
}

// Renderer is the host's rendering backend.
type Renderer interface {
	display.TextureAllocator
	Viewport() (width, height int)
	RenderCamera(call DrawCall) error
}

// FrameStats summarizes one RenderFrame.
type FrameStats struct {
	Portals         int
	Rendered        int
	Draws           int
	Culled          int
	BackFacing      int
	Skipped         int
	TexturesCreated int
	MaxDepth        int
}

// Orchestrator renders every linked portal pair once per frame from the
// primary camera.
type Orchestrator struct {
	registry *portal.Registry
	renderer Renderer
	camera   *Camera
	config   Config
	overlap  OverlapFunc
	logger   log.Log
}

type Option func(*Orchestrator)

// WithOverlap replaces the viewport overlap test used to stop recursion.
func WithOverlap(fn OverlapFunc) Option {
	return func(o *Orchestrator) { o.overlap = fn }
}

func WithRenderLogger(logger log.Log) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func NewOrchestrator(registry *portal.Registry, renderer Renderer, camera *Camera, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		renderer: renderer,
		camera:   camera,
		config:   cfg,
		overlap:  BoundsOverlap,
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("render")
	return o
}

func (o *Orchestrator) Camera() *Camera { return o.camera }

// RenderFrame runs the pre-render, render and post-render passes.
func (o *Orchestrator) RenderFrame() FrameStats {
	var stats FrameStats
	portals := o.registry.Portals()

	chains := concurrent.ParallelMap(portals, o.config.ChainWorkers, o.chainFor)

	o.preRender(portals)
	for i, p := range portals {
		stats.Portals++
		o.renderPair(p, chains[i], &stats)
	}
	o.postRender(portals)

	return stats
}

// preRender resets the per-frame screen state. Unlinked portals have nothing
// to show and are drawn solid.
func (o *Orchestrator) preRender(portals []*portal.Portal) {
	for _, p := range portals {
		s := p.Screen()
		if s == nil {
			continue
		}
		s.Shadow = display.ShadowsOn
		s.SetDisplayEnabled(p.Linked() != nil)
	}
}

func (o *Orchestrator) postRender(portals []*portal.Portal) {
	for _, p := range portals {
		if p.Linked() == nil || p.Screen() == nil {
			continue
		}
		ProtectScreenFromClipping(p.Screen(), p.Pose(), o.camera)
	}
}

// chainFor builds the recursion chain of p's pair. It only reads portal
// poses, so chains for different pairs may be built concurrently.
func (o *Orchestrator) chainFor(p *portal.Portal) []geom.Pose {
	q := p.Linked()
	if q == nil || p.Screen() == nil || q.Screen() == nil {
		return nil
	}
	return BuildRecursionChain(o.camera, p, q, p.RecursionLimit(), o.overlap)
}

// renderPair draws the view through q, the partner of p, into q's screen.
func (o *Orchestrator) renderPair(p *portal.Portal, chain []geom.Pose, stats *FrameStats) {
	q := p.Linked()
	if q == nil {
		stats.Skipped++
		o.logger.Debug("Portal has no link, skipping render", log.String("portal", p.Name()))
		return
	}
	if p.Screen() == nil || q.Screen() == nil {
		stats.Skipped++
		o.logger.Warn("Portal has no screen, skipping render", log.String("portal", p.Name()))
		return
	}

	frustum := o.camera.Frustum()
	if !frustum.IntersectsAABB(q.Screen().WorldBounds(q.Pose())) {
		stats.Culled++
		return
	}
	if geom.SideOfPortal(q.Pose(), o.camera.Pose.Position) <= 0 {
		q.Screen().SetDisplayEnabled(false)
		stats.BackFacing++
		return
	}

	w, h := o.renderer.Viewport()
	tex, created, err := display.EnsureTexture(q.Screen(), o.renderer, w, h)
	if err != nil {
		stats.Skipped++
		o.logger.Warn("Failed to prepare portal texture",
			log.String("portal", p.Name()),
			log.Int("width", w),
			log.Int("height", h),
			log.Error(err),
		)
		return
	}
	if created {
		stats.TexturesCreated++
	}

	p.Screen().Shadow = display.ShadowsOnly
	q.Screen().SetDisplayEnabled(false)
	defer func() { p.Screen().Shadow = display.ShadowsOn }()

	for i, pose := range chain {
		vcam := o.camera.WithPose(pose)
		proj, oblique := ObliqueClipPlane(vcam, p.Pose(), o.config)
		vcam.SetProjection(proj)

		call := DrawCall{
			Source:     p.ID(),
			Target:     q.ID(),
			Depth:      len(chain) - i,
			Pose:       pose,
			View:       vcam.View(),
			Projection: proj,
			Oblique:    oblique,
			Texture:    tex,
		}
		if err := o.renderer.RenderCamera(call); err != nil {
			o.logger.Warn("Portal draw failed",
				log.String("portal", p.Name()),
				log.Int("depth", call.Depth),
				log.Error(err),
			)
			return
		}
		stats.Draws++
		if i == 0 {
			q.Screen().SetDisplayEnabled(true)
		}
	}

	if len(chain) > 0 {
		stats.Rendered++
		stats.MaxDepth = max(stats.MaxDepth, len(chain))
	}
}
