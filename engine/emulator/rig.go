package emulator

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// rig is a first-person pose driven by yaw and pitch angles and planar movement along the yaw
// heading. It is not safe for concurrent use.
type rig struct {
	position mgl32.Vec3
	yaw      float32
	pitch    float32

	maxPitch float32
}

func newRig(position mgl32.Vec3, maxPitch float32) *rig {
	return &rig{position: position, maxPitch: maxPitch}
}

// heading is the rotation about +Y only.
func (r *rig) heading() mgl32.Quat {
	return mgl32.QuatRotate(r.yaw, mgl32.Vec3{0, 1, 0})
}

func (r *rig) orientation() mgl32.Quat {
	return r.heading().Mul(mgl32.QuatRotate(r.pitch, mgl32.Vec3{1, 0, 0})).Normalize()
}

func (r *rig) pose() xr.Pose {
	return xr.Pose{Position: r.position, Orientation: r.orientation()}
}

// look turns the rig, clamping pitch to maxPitch either way.
func (r *rig) look(dYaw, dPitch float32) {
	r.yaw = wrapAngle(r.yaw + dYaw)
	r.pitch = mgl32.Clamp(r.pitch+dPitch, -r.maxPitch, r.maxPitch)
}

// move translates by a local (right, up, forward) vector. Forward and right follow the yaw
// heading so looking down does not move the rig into the floor.
func (r *rig) move(local mgl32.Vec3) {
	r.position = r.position.Add(r.heading().Rotate(mgl32.Vec3{local[0], local[1], -local[2]}))
}

// attach returns the world pose of a point held at a heading-relative offset.
func (r *rig) attach(offset mgl32.Vec3) xr.Pose {
	h := r.heading()
	return xr.Pose{Position: r.position.Add(h.Rotate(offset)), Orientation: h}
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	for a > math.Pi {
		a -= twoPi
	}
	for a < -math.Pi {
		a += twoPi
	}
	return a
}
