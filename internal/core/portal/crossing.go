package portal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/portals/internal/core/display"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
)

// OnTriggerEnter starts tracking a traveler that entered the trigger volume.
// Entering twice is a no-op.
func (p *Portal) OnTriggerEnter(t Traveler) {
	if p.destroyed || p.find(t) >= 0 {
		return
	}
	p.track(t, nil)
	p.publish(EventEntered, t)
}

// OnTriggerExit stops tracking a traveler that left the trigger volume
// without crossing. Exiting an untracked traveler is a no-op, which is the
// normal case right after a teleport handed the traveler to the partner.
func (p *Portal) OnTriggerExit(t Traveler) {
	i := p.find(t)
	if i < 0 {
		return
	}
	p.release(i)
	p.publish(EventExited, t)
}

// track adds t with its offset measured now. clone is reused when given.
func (p *Portal) track(t Traveler, clone display.Visual) *tracking {
	e := &tracking{
		traveler:   t,
		prevOffset: p.SignedOffset(t.Pose().Position),
		clone:      clone,
	}
	p.tracked = append(p.tracked, e)
	t.IgnoreCollisionWith(p.attachedSurface, true)
	if q := p.Linked(); q != nil {
		p.placeClone(e, q)
	}
	return e
}

// release untracks entry i, hides its clone and restores collision.
func (p *Portal) release(i int) {
	e := p.tracked[i]
	p.removeAt(i)
	if e.clone != nil {
		e.clone.SetActive(false)
	}
	e.traveler.IgnoreCollisionWith(p.attachedSurface, false)
}

// HandleTravelers is the late-update pass. It detects front to back crossings
// and teleports, keeps clones posed on the far side and releases travelers
// whose exit event was missed.
func (p *Portal) HandleTravelers() {
	if p.destroyed {
		return
	}
	linked := p.Linked()
	for i := len(p.tracked) - 1; i >= 0; i-- {
		e := p.tracked[i]
		cur := p.SignedOffset(e.traveler.Pose().Position)

		if linked != nil && e.prevOffset >= 0 && cur < 0 {
			p.teleport(i, linked)
			continue
		}

		e.prevOffset = cur
		if linked != nil {
			p.placeClone(e, linked)
		}
		if p.missedExit(e, cur) {
			t := e.traveler
			p.release(i)
			p.logger.Info("Forced portal exit",
				log.String("portal", p.name),
				log.String("traveler", t.ID().String()),
				log.Float64("offset", cur),
			)
			p.publish(EventForcedExit, t)
		}
	}
}

// missedExit is the safety net for a lost exit event: the traveler is past
// the trigger's back face and its collider no longer touches the trigger,
// even with the trigger stretched along its thickness.
func (p *Portal) missedExit(e *tracking, offset float64) bool {
	if offset >= p.backFaceOffset() {
		return false
	}
	ratio := p.forceExitRatio
	if ratio <= 0 {
		ratio = 1
	}
	expanded := p.trigger.Scaled(mgl64.Vec3{1, 1, ratio})
	return !expanded.OverlapsAABB(p.pose, e.traveler.Bounds())
}

// backFaceOffset is the signed offset of the trigger's back face.
func (p *Portal) backFaceOffset() float64 {
	// Local -Z is forward, so a local z maps to offset -z.
	return -(p.trigger.Center.Z() + p.trigger.HalfExtents.Z())
}

// placeClone poses the clone on the far side of the pair, creating it again
// if it was never made or its owner destroyed it.
func (p *Portal) placeClone(e *tracking, linked *Portal) {
	src := e.traveler.Visual()
	if src == nil {
		return
	}
	if e.clone == nil || e.clone.Destroyed() {
		e.clone = src.Clone()
	}
	e.clone.SetPose(geom.MapAcrossPortal(p.pose, linked.pose, src.Pose()))
	e.clone.SetActive(true)
}

// Sweep catches travelers that crossed the portal plane within one physics
// step. If the segment from from to to pierces the screen rectangle front to
// back, the traveler's pre-step offset is recorded so the next
// HandleTravelers teleports it. This covers travelers that tunnelled past the
// trigger entirely as well as ones the trigger only picked up once they were
// already behind the plane.
func (p *Portal) Sweep(t Traveler, from, to mgl64.Vec3) bool {
	if p.destroyed || p.Linked() == nil {
		return false
	}
	if p.SignedOffset(from) < 0 || p.SignedOffset(to) >= 0 {
		return false
	}
	halfW, halfH := p.screen.Width/2, p.screen.Height/2
	if _, hit := geom.SegmentQuad(from, to, p.pose, halfW, halfH); !hit {
		return false
	}
	if i := p.find(t); i >= 0 {
		p.tracked[i].prevOffset = p.SignedOffset(from)
		return true
	}
	e := p.track(t, nil)
	e.prevOffset = p.SignedOffset(from)
	p.logger.Debug("Traveler swept through portal",
		log.String("portal", p.name),
		log.String("traveler", t.ID().String()),
	)
	p.publish(EventEntered, t)
	return true
}
