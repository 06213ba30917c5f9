package portal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/observability/log"
)

// Event types published on the bus.
const (
	EventEntered    = "portal.entered"
	EventExited     = "portal.exited"
	EventTeleported = "portal.teleported"
	EventForcedExit = "portal.forced_exit"
)

// EventTypes lists every event type a portal publishes.
var EventTypes = []string{EventEntered, EventExited, EventTeleported, EventForcedExit}

// TravelerEvent is the payload of every portal event.
type TravelerEvent struct {
	Portal   uuid.UUID  `json:"portal"`
	Name     string     `json:"name"`
	Linked   uuid.UUID  `json:"linked"`
	Traveler uuid.UUID  `json:"traveler"`
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
}

func (p *Portal) publish(kind string, t Traveler) {
	if p.events == nil {
		return
	}
	payload := TravelerEvent{
		Portal:   p.id,
		Name:     p.name,
		Linked:   p.linkedID,
		Traveler: t.ID(),
		Position: t.Pose().Position,
		Velocity: t.Velocity(),
	}
	if err := p.events.Publish(bus.NewEvent(kind, p.name, payload)); err != nil {
		p.logger.Warn("Portal event handler failed",
			log.String("event", kind),
			log.String("portal", p.name),
			log.Error(err),
		)
	}
}
