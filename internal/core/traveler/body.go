package traveler

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/geom"
)

// Body is a generic rigid body traveler. Its pose and velocity are integrated
// by the physics world; portals overwrite them on teleport.
type Body struct {
	id       uuid.UUID
	name     string
	pose     geom.Pose
	velocity mgl64.Vec3
	half     mgl64.Vec3

	gravity  bool
	grounded bool

	model       *Model
	modelOffset geom.Pose

	ignored map[string]struct{}
}

// BodyOption customises a Body at construction.
type BodyOption func(*Body)

// WithModelOffset places the visual model relative to the body origin.
func WithModelOffset(offset geom.Pose) BodyOption {
	return func(b *Body) { b.modelOffset = offset }
}

// WithoutGravity marks the body as floating.
func WithoutGravity() BodyOption {
	return func(b *Body) { b.gravity = false }
}

// WithVelocity sets the initial velocity.
func WithVelocity(v mgl64.Vec3) BodyOption {
	return func(b *Body) { b.velocity = v }
}

func NewBody(name string, pose geom.Pose, halfExtents mgl64.Vec3, opts ...BodyOption) *Body {
	b := &Body{
		id:          uuid.New(),
		name:        name,
		pose:        pose,
		half:        halfExtents,
		gravity:     true,
		modelOffset: geom.Identity(),
		ignored:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.model = NewModel(name, geom.Identity())
	b.syncModel()
	return b
}

func (b *Body) ID() uuid.UUID            { return b.id }
func (b *Body) Name() string             { return b.name }
func (b *Body) Pose() geom.Pose          { return b.pose }
func (b *Body) Velocity() mgl64.Vec3     { return b.velocity }
func (b *Body) SetVelocity(v mgl64.Vec3) { b.velocity = v }
func (b *Body) HalfExtents() mgl64.Vec3  { return b.half }
func (b *Body) UsesGravity() bool        { return b.gravity }
func (b *Body) Grounded() bool           { return b.grounded }
func (b *Body) SetGrounded(g bool)       { b.grounded = g }
func (b *Body) Model() *Model            { return b.model }

// Visual returns the body's model. It is the source pose for portal clones.
func (b *Body) Visual() display.Visual { return b.model }

// SetPose moves the body and its model together.
func (b *Body) SetPose(p geom.Pose) {
	b.pose = p
	b.syncModel()
}

// Bounds is the world AABB of the collider. The collider is axis aligned and
// does not rotate with the body.
func (b *Body) Bounds() geom.AABB {
	return geom.AABBFromCenter(b.pose.Position, b.half)
}

// IgnoreCollisionWith toggles collision against a named static volume.
func (b *Body) IgnoreCollisionWith(volume string, ignore bool) {
	if volume == "" {
		return
	}
	if ignore {
		b.ignored[volume] = struct{}{}
		return
	}
	delete(b.ignored, volume)
}

// Ignores reports whether collision against volume is suppressed.
func (b *Body) Ignores(volume string) bool {
	_, ok := b.ignored[volume]
	return ok
}

// IgnoredVolumes lists suppressed volumes in sorted order.
func (b *Body) IgnoredVolumes() []string {
	out := make([]string, 0, len(b.ignored))
	for v := range b.ignored {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (b *Body) syncModel() {
	if b.model == nil {
		return
	}
	b.model.SetPose(geom.PoseFromMatrix(b.pose.Matrix().Mul4(b.modelOffset.Matrix())))
}
