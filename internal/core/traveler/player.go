package traveler

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/portals/internal/core/geom"
)

const (
	defaultEyeHeight = 0.7
	// exitLiftFactor scales gravity into the minimum upward speed given to a
	// player leaving a floor-facing portal.
	exitLiftFactor = -0.2
	// upFacingTolerance is how far an exit portal's forward axis may stray
	// from +Y and still count as facing up.
	upFacingTolerance = 0.1
)

// ViewRig is the player's head: an eye height above the body origin and a
// yaw/pitch pair in degrees.
type ViewRig struct {
	EyeHeight float64
	Yaw       float64
	Pitch     float64
	MinPitch  float64
	MaxPitch  float64
}

// Player composes a Body with a ViewRig. The body only ever yaws; pitch lives
// on the eye.
type Player struct {
	*Body
	Rig     ViewRig
	Gravity float64
}

func NewPlayer(position mgl64.Vec3, yaw, gravity float64) *Player {
	p := &Player{
		Body: NewBody("player", geom.Identity(), mgl64.Vec3{0.4, 0.9, 0.4}),
		Rig: ViewRig{
			EyeHeight: defaultEyeHeight,
			Yaw:       yaw,
			MinPitch:  -90,
			MaxPitch:  90,
		},
		Gravity: gravity,
	}
	p.Body.SetPose(geom.Pose{Position: position, Rotation: geom.FromYawPitch(yaw, 0)})
	return p
}

// Eye is the world pose of the player's view.
func (p *Player) Eye() geom.Pose {
	return p.eyeAt(p.Pose().Position)
}

func (p *Player) eyeAt(bodyPos mgl64.Vec3) geom.Pose {
	return geom.Pose{
		Position: bodyPos.Add(mgl64.Vec3{0, p.Rig.EyeHeight, 0}),
		Rotation: geom.FromYawPitch(p.Rig.Yaw, p.Rig.Pitch),
	}
}

// Look turns the view by the given deltas in degrees.
func (p *Player) Look(dYaw, dPitch float64) {
	p.Rig.Yaw += dYaw
	p.Rig.Pitch = mgl64.Clamp(p.Rig.Pitch+dPitch, p.Rig.MinPitch, p.Rig.MaxPitch)
	p.Body.SetPose(geom.Pose{Position: p.Pose().Position, Rotation: geom.FromYawPitch(p.Rig.Yaw, 0)})
}

// OnTeleport re-aims the view rig after the body was carried through a
// portal. prev is the body pose before the teleport.
func (p *Player) OnTeleport(from, to geom.Pose, m mgl64.Mat4, prev geom.Pose) {
	eye := geom.PoseFromMatrix(m.Mul4(p.eyeAt(prev.Position).Matrix()))
	yaw, pitch := eye.YawPitch()

	p.Rig.Pitch = wrapPitch(p.Rig.Pitch+deltaAngle(p.Rig.Pitch, pitch), p.Rig.MinPitch, p.Rig.MaxPitch)
	p.Rig.Yaw += deltaAngle(p.Rig.Yaw, yaw)
	p.Body.SetPose(geom.Pose{Position: p.Pose().Position, Rotation: geom.FromYawPitch(p.Rig.Yaw, 0)})

	if to.Forward().Sub(mgl64.Vec3{0, 1, 0}).Len() < upFacingTolerance {
		v := p.Velocity()
		v[1] = math.Max(v[1], exitLiftFactor*p.Gravity)
		p.SetVelocity(v)
		p.SetGrounded(false)
	}
}

// deltaAngle is the shortest signed difference target-current in degrees.
func deltaAngle(current, target float64) float64 {
	d := math.Mod(target-current, 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d -= 360
	}
	return d
}

// wrapPitch folds pitch into [-180, 180) and clamps it.
func wrapPitch(pitch, lo, hi float64) float64 {
	p := math.Mod(pitch+180, 360)
	if p < 0 {
		p += 360
	}
	return mgl64.Clamp(p-180, lo, hi)
}
