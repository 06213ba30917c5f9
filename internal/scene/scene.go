// Package scene wires the portal registry, the physics world, the render
// orchestrator and the event bus into one frame pipeline.
package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/config"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
	"github.com/zeusync/portals/internal/core/portal"
	"github.com/zeusync/portals/internal/core/render"
	"github.com/zeusync/portals/internal/core/systems"
	"github.com/zeusync/portals/internal/core/systems/physics"
	"github.com/zeusync/portals/internal/core/traveler"
	"github.com/zeusync/portals/pkg/generic"
)

var (
	ErrUnknownTraveler   = errors.New("unknown traveler")
	ErrDuplicateTraveler = errors.New("traveler already in scene")
)

var digests = generic.NewPool(func() *xxhash.Digest { return xxhash.New() })

// Actor is a traveler the physics world can move.
type Actor interface {
	portal.Traveler
	physics.Body
}

// Scene is the composition root of a simulation. It is driven from a single
// goroutine; only the event bus may be shared.
type Scene struct {
	cfg    *config.Config
	logger log.Log
	events bus.EventBus

	world        *physics.World
	registry     *portal.Registry
	camera       *render.Camera
	orchestrator *render.Orchestrator
	pipeline     *systems.Pipeline

	actors   []Actor
	previous map[uuid.UUID]mgl64.Vec3
	player   *traveler.Player

	lastFrame render.FrameStats
}

// New builds a scene from cfg. renderer receives the portal draws; events may
// be nil, in which case a private bus is created.
func New(cfg *config.Config, renderer render.Renderer, events bus.EventBus, logger log.Log) (*Scene, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if events == nil {
		events = bus.New()
	}

	s := &Scene{
		cfg:      cfg,
		logger:   logger.Named("scene"),
		events:   events,
		previous: make(map[uuid.UUID]mgl64.Vec3),
	}
	events.AddObserver(eventLog{logger: s.logger})

	s.world = physics.NewWorld(cfg.Physics.Gravity, logger)
	s.registry = portal.NewRegistry(
		portal.WithPhysics(s.world),
		portal.WithEventBus(events),
		portal.WithLogger(logger),
		portal.WithDefaults(portal.Defaults{
			RecursionLimit:          cfg.RecursionLimit,
			ForceExitThicknessRatio: cfg.ForceExitThicknessRatio,
		}),
	)
	s.camera = render.NewCamera(geom.Identity(), cfg.Camera.FovY, cfg.Viewport.Aspect(), cfg.Camera.Near, cfg.Camera.Far)
	s.orchestrator = render.NewOrchestrator(s.registry, renderer, s.camera,
		render.Config{
			NearClipOffset: cfg.NearClipOffset,
			NearClipLimit:  cfg.NearClipLimit,
			ChainWorkers:   cfg.ChainWorkers,
		},
		render.WithRenderLogger(logger),
	)

	s.pipeline = systems.NewPipeline(logger)
	for _, sys := range []systems.System{
		systems.NewFunc("physics", systems.PhaseFixedUpdate, s.stepPhysics),
		systems.NewFunc("triggers", systems.PhaseTrigger, s.dispatchTriggers),
		systems.NewFunc("sweep", systems.PhaseLateUpdate, s.sweep),
		systems.NewFunc("crossing", systems.PhaseLateUpdate, s.handleTravelers),
		systems.NewFunc("camera", systems.PhasePreRender, s.followPlayer),
		systems.NewFunc("render", systems.PhaseRender, s.render),
	} {
		if err := s.pipeline.Register(sys); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scene) Registry() *portal.Registry   { return s.registry }
func (s *Scene) World() *physics.World        { return s.world }
func (s *Scene) Camera() *render.Camera       { return s.camera }
func (s *Scene) Events() bus.EventBus         { return s.events }
func (s *Scene) Pipeline() *systems.Pipeline  { return s.pipeline }
func (s *Scene) LastFrame() render.FrameStats { return s.lastFrame }
func (s *Scene) Config() *config.Config       { return s.cfg }

// SpawnPortal creates a portal and its trigger volume.
func (s *Scene) SpawnPortal(opts portal.SpawnOptions) (*portal.Portal, error) {
	p, err := s.registry.Spawn(opts)
	if err != nil {
		return nil, err
	}
	err = s.world.AddTrigger(&physics.Trigger{
		Name:  triggerName(p.ID()),
		Box:   p.Trigger(),
		Frame: p.Pose,
		OnEnter: func(b physics.Body) {
			if t, ok := b.(portal.Traveler); ok {
				p.OnTriggerEnter(t)
			}
		},
		OnExit: func(b physics.Body) {
			if t, ok := b.(portal.Traveler); ok {
				p.OnTriggerExit(t)
			}
		},
	})
	if err != nil {
		_ = s.registry.Destroy(p.ID())
		return nil, err
	}
	return p, nil
}

// DestroyPortal removes a portal and its trigger.
func (s *Scene) DestroyPortal(id uuid.UUID) error {
	if err := s.registry.Destroy(id); err != nil {
		return err
	}
	return s.world.RemoveTrigger(triggerName(id))
}

func (s *Scene) LinkPortals(a, b uuid.UUID) error {
	return s.registry.Link(a, b)
}

// AddCollider adds static level geometry. Name it after a portal's
// AttachedSurface to let travelers pass through that surface.
func (s *Scene) AddCollider(name string, bounds geom.AABB) {
	s.world.AddCollider(physics.Collider{Name: name, Bounds: bounds})
}

// AddTraveler puts an actor into the physics world. A *traveler.Player also
// becomes the camera's owner.
func (s *Scene) AddTraveler(a Actor) error {
	if _, ok := s.previous[a.ID()]; ok {
		return fmt.Errorf("%s: %w", a.ID(), ErrDuplicateTraveler)
	}
	if err := s.world.AddBody(a); err != nil {
		return err
	}
	s.actors = append(s.actors, a)
	s.previous[a.ID()] = a.Pose().Position
	if p, ok := a.(*traveler.Player); ok {
		s.player = p
		s.camera.Pose = p.Eye()
	}
	return nil
}

// RemoveTraveler takes an actor out of the scene and off every portal.
func (s *Scene) RemoveTraveler(id uuid.UUID) error {
	for i, a := range s.actors {
		if a.ID() != id {
			continue
		}
		s.registry.Release(a)
		s.world.RemoveBody(id)
		s.actors = append(s.actors[:i], s.actors[i+1:]...)
		delete(s.previous, id)
		if s.player != nil && s.player.ID() == id {
			s.player = nil
		}
		return nil
	}
	return fmt.Errorf("%s: %w", id, ErrUnknownTraveler)
}

func (s *Scene) Travelers() []Actor {
	out := make([]Actor, len(s.actors))
	copy(out, s.actors)
	return out
}

// Step advances one frame: physics, trigger callbacks, crossings and
// teleports, then rendering.
func (s *Scene) Step(dt float64) error {
	return s.pipeline.Update(dt)
}

func (s *Scene) stepPhysics(dt float64) error {
	for _, a := range s.actors {
		s.previous[a.ID()] = a.Pose().Position
	}
	s.world.Step(dt)
	return nil
}

func (s *Scene) dispatchTriggers(float64) error {
	s.world.DispatchTriggers()
	return nil
}

func (s *Scene) sweep(float64) error {
	for _, a := range s.actors {
		from, to := s.previous[a.ID()], a.Pose().Position
		if from == to {
			continue
		}
		for _, p := range s.registry.Portals() {
			if p.Sweep(a, from, to) {
				break
			}
		}
	}
	return nil
}

func (s *Scene) handleTravelers(float64) error {
	s.registry.HandleTravelers()
	return nil
}

func (s *Scene) followPlayer(float64) error {
	if s.player != nil {
		s.camera.Pose = s.player.Eye()
	}
	return nil
}

func (s *Scene) render(float64) error {
	s.lastFrame = s.orchestrator.RenderFrame()
	return nil
}

// Digest hashes the quantized pose and velocity of every traveler, in
// insertion order. Two runs of the same inputs yield the same digest.
func (s *Scene) Digest() uint64 {
	h := digests.Get()
	defer digests.Put(h)
	h.Reset()

	var buf [8]byte
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(math.Round(v*1e6))))
		_, _ = h.Write(buf[:])
	}
	for _, a := range s.actors {
		pose := a.Pose()
		for _, v := range pose.Position {
			put(v)
		}
		r := pose.Rotation.Normalize()
		if r.W < 0 {
			r = r.Scale(-1)
		}
		put(r.W)
		for _, v := range r.V {
			put(v)
		}
		for _, v := range a.Velocity() {
			put(v)
		}
	}
	return h.Sum64()
}

// eventLog traces every portal event at debug level.
type eventLog struct {
	logger log.Log
}

func (l eventLog) OnDelivered(ev bus.Event, handlers int, err error) {
	fields := []log.Field{
		log.String("event", ev.Type()),
		log.String("source", ev.Source()),
		log.Int("handlers", handlers),
	}
	if err != nil {
		fields = append(fields, log.Error(err))
	}
	l.logger.Debug("Event published", fields...)
}

func triggerName(id uuid.UUID) string {
	return "portal:" + id.String()
}
