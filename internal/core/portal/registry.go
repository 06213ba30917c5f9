package portal

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
)

const (
	DefaultRecursionLimit          = 3
	DefaultScreenWidth             = 2.0
	DefaultScreenHeight            = 3.0
	DefaultTriggerDepth            = 1.0
	DefaultForceExitThicknessRatio = 2.0
)

// SpawnOptions describe a new portal. Zero values fall back to the registry
// defaults.
type SpawnOptions struct {
	Name string
	Pose geom.Pose
	// LinkTo links the new portal to an existing one. The existing portal's
	// previous partner, if any, is unlinked.
	LinkTo uuid.UUID

	RecursionLimit int
	ScreenWidth    float64
	ScreenHeight   float64
	// TriggerDepth is the full thickness of the trigger box, centred on the
	// portal plane.
	TriggerDepth float64
	// AttachedSurface names the static collider the portal sits on. Travelers
	// stop colliding with it while tracked.
	AttachedSurface string
}

// Defaults are registry-wide settings applied to every spawned portal.
type Defaults struct {
	RecursionLimit          int
	ForceExitThicknessRatio float64
}

// Pair is a portal and its partner as seen from the first one.
type Pair struct {
	P *Portal
	Q *Portal
}

// Registry owns portals and resolves the handles they use to refer to each
// other. It is driven from the simulation goroutine only.
type Registry struct {
	portals  map[uuid.UUID]*Portal
	order    []uuid.UUID
	defaults Defaults

	physics PhysicsSync
	events  bus.EventBus
	logger  log.Log
}

type RegistryOption func(*Registry)

func WithPhysics(sync PhysicsSync) RegistryOption {
	return func(r *Registry) { r.physics = sync }
}

func WithEventBus(events bus.EventBus) RegistryOption {
	return func(r *Registry) { r.events = events }
}

func WithLogger(logger log.Log) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

func WithDefaults(d Defaults) RegistryOption {
	return func(r *Registry) { r.defaults = d }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		portals: make(map[uuid.UUID]*Portal),
		defaults: Defaults{
			RecursionLimit:          DefaultRecursionLimit,
			ForceExitThicknessRatio: DefaultForceExitThicknessRatio,
		},
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Spawn creates a portal and optionally links it.
func (r *Registry) Spawn(opts SpawnOptions) (*Portal, error) {
	if opts.RecursionLimit < 0 || opts.ScreenWidth < 0 || opts.ScreenHeight < 0 || opts.TriggerDepth < 0 {
		return nil, fmt.Errorf("%w: negative size or limit", ErrInvalidOptions)
	}
	if opts.LinkTo != uuid.Nil {
		if _, ok := r.portals[opts.LinkTo]; !ok {
			return nil, fmt.Errorf("link target %s: %w", opts.LinkTo, ErrPortalNotFound)
		}
	}

	limit := orInt(opts.RecursionLimit, r.defaults.RecursionLimit)
	width := orFloat(opts.ScreenWidth, DefaultScreenWidth)
	height := orFloat(opts.ScreenHeight, DefaultScreenHeight)
	depth := orFloat(opts.TriggerDepth, DefaultTriggerDepth)

	id := uuid.New()
	name := opts.Name
	if name == "" {
		name = "portal-" + id.String()[:8]
	}

	p := &Portal{
		id:              id,
		name:            name,
		pose:            opts.Pose,
		recursionLimit:  max(limit, 1),
		trigger:         geom.Box{HalfExtents: mgl64.Vec3{width / 2, height / 2, depth / 2}},
		screen:          display.NewScreen(width, height),
		attachedSurface: opts.AttachedSurface,
		forceExitRatio:  orFloat(r.defaults.ForceExitThicknessRatio, DefaultForceExitThicknessRatio),
		registry:        r,
		physics:         r.physics,
		events:          r.events,
		logger:          r.logger.Named("portal").With(log.String("portal", name)),
	}
	r.portals[id] = p
	r.order = append(r.order, id)

	if opts.LinkTo != uuid.Nil {
		if err := r.Link(id, opts.LinkTo); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("Portal spawned", log.String("portal", name), log.Vec3("position", opts.Pose.Position))
	return p, nil
}

// Destroy releases everything a portal holds: tracked travelers get their
// clones hidden and collision restored, the partner's link is cleared and
// both render targets of the pair are released.
func (r *Registry) Destroy(id uuid.UUID) error {
	p, ok := r.portals[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrPortalNotFound)
	}
	for i := len(p.tracked) - 1; i >= 0; i-- {
		t := p.tracked[i].traveler
		p.release(i)
		p.publish(EventExited, t)
	}
	r.unlink(p)
	p.screen.Unbind()
	p.destroyed = true
	p.registry = nil

	delete(r.portals, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("Portal destroyed", log.String("portal", p.name))
	return nil
}

// Link pairs two portals symmetrically. Previous partners of either side are
// unlinked first.
func (r *Registry) Link(a, b uuid.UUID) error {
	if a == b {
		return ErrSelfLink
	}
	pa, ok := r.portals[a]
	if !ok {
		return fmt.Errorf("%s: %w", a, ErrPortalNotFound)
	}
	pb, ok := r.portals[b]
	if !ok {
		return fmt.Errorf("%s: %w", b, ErrPortalNotFound)
	}
	if pa.linkedID == b && pb.linkedID == a {
		return nil
	}
	r.unlink(pa)
	r.unlink(pb)
	pa.linkedID = b
	pb.linkedID = a
	return nil
}

// Unlink clears a portal's link and its partner's.
func (r *Registry) Unlink(id uuid.UUID) error {
	p, ok := r.portals[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrPortalNotFound)
	}
	r.unlink(p)
	return nil
}

func (r *Registry) unlink(p *Portal) {
	if p.linkedID == uuid.Nil {
		return
	}
	if q, ok := r.portals[p.linkedID]; ok && q.linkedID == p.id {
		q.linkedID = uuid.Nil
		q.screen.Unbind()
		q.hideClones()
	}
	p.linkedID = uuid.Nil
	p.screen.Unbind()
	p.hideClones()
}

// hideClones deactivates clones that no longer have a far side to stand on.
func (p *Portal) hideClones() {
	for _, e := range p.tracked {
		if e.clone != nil {
			e.clone.SetActive(false)
		}
	}
}

func (r *Registry) Get(id uuid.UUID) (*Portal, bool) {
	p, ok := r.portals[id]
	return p, ok
}

// Portals returns live portals in spawn order.
func (r *Registry) Portals() []*Portal {
	out := make([]*Portal, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.portals[id])
	}
	return out
}

// Pairs returns every linked portal with its partner, in spawn order. Each
// link appears twice, once from each side, since each side renders the view
// through its partner.
func (r *Registry) Pairs() []Pair {
	var out []Pair
	for _, p := range r.Portals() {
		if q := p.Linked(); q != nil {
			out = append(out, Pair{P: p, Q: q})
		}
	}
	return out
}

// HandleTravelers runs the crossing pass of every portal in spawn order.
func (r *Registry) HandleTravelers() {
	for _, p := range r.Portals() {
		p.HandleTravelers()
	}
}

// Release drops a traveler from whichever portal tracks it, e.g. when the
// traveler is removed from the scene.
func (r *Registry) Release(t Traveler) {
	for _, p := range r.Portals() {
		if i := p.find(t); i >= 0 {
			p.release(i)
		}
	}
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
