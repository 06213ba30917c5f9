package portal

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
)

// Teleport carries a tracked traveler to the linked portal and returns its
// new pose and velocity. HandleTravelers calls this on a detected crossing;
// it is exported for collaborators that force a teleport.
func (p *Portal) Teleport(t Traveler) (geom.Pose, mgl64.Vec3, error) {
	if p.destroyed {
		return geom.Pose{}, mgl64.Vec3{}, ErrPortalDestroyed
	}
	q := p.Linked()
	if q == nil {
		return geom.Pose{}, mgl64.Vec3{}, fmt.Errorf("%s: %w", p.name, ErrNoLinkedPortal)
	}
	i := p.find(t)
	if i < 0 {
		return geom.Pose{}, mgl64.Vec3{}, fmt.Errorf("%s: %w", p.name, ErrTravelerNotTracked)
	}
	p.teleport(i, q)
	return t.Pose(), t.Velocity(), nil
}

// teleport runs every step of the hand-over within the current frame: the
// traveler is never observable half moved.
func (p *Portal) teleport(i int, q *Portal) {
	e := p.tracked[i]
	t := e.traveler

	m := geom.PortalMatrix(p.pose, q.pose)
	prev := t.Pose()
	var prevVisual geom.Pose
	if v := t.Visual(); v != nil {
		prevVisual = v.Pose()
	}

	t.SetPose(geom.PoseFromMatrix(m.Mul4(prev.Matrix())))
	t.SetVelocity(mgl64.TransformNormal(t.Velocity(), m))
	if hook, ok := t.(TeleportHook); ok {
		hook.OnTeleport(p.pose, q.pose, m, prev)
	}

	// The old clone stands where the traveler was so the exit has no pop.
	clone := e.clone
	if clone != nil && !clone.Destroyed() {
		clone.SetPose(prevVisual)
	}

	p.removeAt(i)
	j := q.find(t)
	// Ignored volumes are a set: keep the surface ignored while Q, sitting
	// on the same surface, still tracks the traveler.
	if j < 0 || q.attachedSurface != p.attachedSurface {
		t.IgnoreCollisionWith(p.attachedSurface, false)
	}
	if j >= 0 {
		q.tracked[j].prevOffset = q.SignedOffset(t.Pose().Position)
		if clone != nil {
			clone.SetActive(false)
		}
	} else {
		q.track(t, clone)
	}

	if p.physics != nil {
		p.physics.SyncTransforms()
	}

	p.logger.Debug("Traveler teleported",
		log.String("from", p.name),
		log.String("to", q.name),
		log.String("traveler", t.ID().String()),
		log.Vec3("position", t.Pose().Position),
		log.Quat("rotation", t.Pose().Rotation),
		log.Vec3("velocity", t.Velocity()),
	)
	p.publish(EventTeleported, t)
}
