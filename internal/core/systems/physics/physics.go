package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
)

const DefaultGravity = -9.81

// contactSlop is the penetration depth below which boxes only touch.
const contactSlop = 1e-9

var (
	ErrDuplicateBody    = errors.New("body already in world")
	ErrDuplicateTrigger = errors.New("trigger already in world")
	ErrUnknownTrigger   = errors.New("unknown trigger")
)

type triggerEvent struct {
	trigger *Trigger
	body    Body
	enter   bool
}

// World owns bodies, colliders and triggers. It is not safe for concurrent
// use.
type World struct {
	gravity   mgl64.Vec3
	bodies    []Body
	bounds    map[uuid.UUID]geom.AABB
	colliders []Collider
	triggers  []*Trigger
	inside    map[*Trigger]map[uuid.UUID]bool
	pending   []triggerEvent
	logger    log.Log
}

func NewWorld(gravity float64, logger log.Log) *World {
	if logger == nil {
		logger = log.NewNop()
	}
	return &World{
		gravity: mgl64.Vec3{0, gravity, 0},
		bounds:  make(map[uuid.UUID]geom.AABB),
		inside:  make(map[*Trigger]map[uuid.UUID]bool),
		logger:  logger.Named("physics"),
	}
}

func (w *World) Gravity() mgl64.Vec3 { return w.gravity }

// AddBody inserts a body. Bodies are stepped in insertion order.
func (w *World) AddBody(b Body) error {
	if _, ok := w.bounds[b.ID()]; ok {
		return fmt.Errorf("%s: %w", b.ID(), ErrDuplicateBody)
	}
	w.bodies = append(w.bodies, b)
	w.bounds[b.ID()] = bodyBounds(b)
	return nil
}

// RemoveBody drops a body without firing exit callbacks.
func (w *World) RemoveBody(id uuid.UUID) bool {
	for i, b := range w.bodies {
		if b.ID() == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			delete(w.bounds, id)
			for _, set := range w.inside {
				delete(set, id)
			}
			pending := w.pending[:0]
			for _, ev := range w.pending {
				if ev.body.ID() != id {
					pending = append(pending, ev)
				}
			}
			w.pending = pending
			return true
		}
	}
	return false
}

func (w *World) Bodies() []Body {
	out := make([]Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) AddCollider(c Collider) {
	w.colliders = append(w.colliders, c)
}

func (w *World) Colliders() []Collider {
	out := make([]Collider, len(w.colliders))
	copy(out, w.colliders)
	return out
}

func (w *World) AddTrigger(t *Trigger) error {
	for _, cur := range w.triggers {
		if cur == t || cur.Name == t.Name {
			return fmt.Errorf("%s: %w", t.Name, ErrDuplicateTrigger)
		}
	}
	w.triggers = append(w.triggers, t)
	w.inside[t] = make(map[uuid.UUID]bool)
	return nil
}

// RemoveTrigger drops a trigger. Bodies inside it are not sent exit events.
func (w *World) RemoveTrigger(name string) error {
	for i, t := range w.triggers {
		if t.Name != name {
			continue
		}
		w.triggers = append(w.triggers[:i], w.triggers[i+1:]...)
		delete(w.inside, t)
		pending := w.pending[:0]
		for _, ev := range w.pending {
			if ev.trigger != t {
				pending = append(pending, ev)
			}
		}
		w.pending = pending
		return nil
	}
	return fmt.Errorf("%s: %w", name, ErrUnknownTrigger)
}

// Bounds returns the cached world bounds of a body as of the last step or
// SyncTransforms.
func (w *World) Bounds(id uuid.UUID) (geom.AABB, bool) {
	b, ok := w.bounds[id]
	return b, ok
}

// Step integrates every body over dt, resolves collisions and queues trigger
// transitions for DispatchTriggers.
func (w *World) Step(dt float64) {
	for _, b := range w.bodies {
		w.move(b, dt)
	}
	w.SyncTransforms()
	w.diffTriggers()
}

func (w *World) move(b Body, dt float64) {
	v := b.Velocity()
	if b.UsesGravity() {
		v = v.Add(w.gravity.Mul(dt))
	}
	pose := b.Pose()
	half := b.HalfExtents()
	grounded := false

	for axis := 0; axis < 3; axis++ {
		delta := v[axis] * dt
		if delta == 0 {
			continue
		}
		pose.Position[axis] += delta
		box := geom.AABBFromCenter(pose.Position, half)
		for _, c := range w.colliders {
			if b.Ignores(c.Name) || !penetrates(box, c.Bounds) {
				continue
			}
			if delta > 0 {
				pose.Position[axis] = c.Bounds.Min[axis] - half[axis]
			} else {
				pose.Position[axis] = c.Bounds.Max[axis] + half[axis]
				if axis == 1 {
					grounded = true
				}
			}
			v[axis] = 0
			box = geom.AABBFromCenter(pose.Position, half)
		}
	}

	b.SetPose(pose)
	b.SetVelocity(v)
	b.SetGrounded(grounded)
}

func penetrates(a, b geom.AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i]-b.Min[i] <= contactSlop || b.Max[i]-a.Min[i] <= contactSlop {
			return false
		}
	}
	return true
}

// SyncTransforms refreshes cached bounds from the bodies' current poses, so
// that a pose set outside Step is visible to the next trigger pass.
func (w *World) SyncTransforms() {
	for _, b := range w.bodies {
		w.bounds[b.ID()] = bodyBounds(b)
	}
}

func (w *World) diffTriggers() {
	for _, t := range w.triggers {
		frame := geom.Identity()
		if t.Frame != nil {
			frame = t.Frame()
		}
		set := w.inside[t]
		for _, b := range w.bodies {
			now := t.Box.OverlapsAABB(frame, w.bounds[b.ID()])
			if now == set[b.ID()] {
				continue
			}
			if now {
				set[b.ID()] = true
			} else {
				delete(set, b.ID())
			}
			w.pending = append(w.pending, triggerEvent{trigger: t, body: b, enter: now})
		}
	}
}

// DispatchTriggers delivers the transitions queued by Step, triggers in
// insertion order and bodies in insertion order within each trigger.
// Returns the number of callbacks fired.
func (w *World) DispatchTriggers() int {
	events := w.pending
	w.pending = nil
	fired := 0
	for _, ev := range events {
		cb := ev.trigger.OnExit
		if ev.enter {
			cb = ev.trigger.OnEnter
		}
		if cb == nil {
			continue
		}
		w.logger.Debug("Trigger transition",
			log.String("trigger", ev.trigger.Name),
			log.String("body", ev.body.ID().String()),
			log.Bool("enter", ev.enter),
		)
		cb(ev.body)
		fired++
	}
	return fired
}

// Inside reports whether the body was inside the trigger at the last step.
func (w *World) Inside(trigger string, id uuid.UUID) bool {
	for _, t := range w.triggers {
		if t.Name == trigger {
			return w.inside[t][id]
		}
	}
	return false
}

func bodyBounds(b Body) geom.AABB {
	return geom.AABBFromCenter(b.Pose().Position, b.HalfExtents())
}
