package xr

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Point is a read-only point reported by the platform: four doubles that hold either a position
// (W = 1) or an orientation quaternion.
type Point struct {
	X, Y, Z, W float64
}

// PointToVec3 reads a platform point as a position, dropping W.
func PointToVec3(p Point) mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}

// PointToQuat reads a platform point as a rotation quaternion.
func PointToQuat(p Point) mgl32.Quat {
	return mgl32.Quat{W: float32(p.W), V: mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}}
}

// RigidTransform is a platform transform as reported: a position point and an orientation point.
type RigidTransform struct {
	Position    Point
	Orientation Point
}

// Pose converts the platform transform into engine vector types.
func (t RigidTransform) Pose() Pose {
	return Pose{
		Position:    PointToVec3(t.Position),
		Orientation: PointToQuat(t.Orientation),
	}
}

// Pose is a position and orientation in engine types.
type Pose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// IdentityPose is the pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Orientation: mgl32.QuatIdent()}
}

// Transform converts the pose back into the platform representation.
func (p Pose) Transform() RigidTransform {
	return RigidTransform{
		Position: Point{X: float64(p.Position[0]), Y: float64(p.Position[1]), Z: float64(p.Position[2]), W: 1},
		Orientation: Point{
			X: float64(p.Orientation.V[0]),
			Y: float64(p.Orientation.V[1]),
			Z: float64(p.Orientation.V[2]),
			W: float64(p.Orientation.W),
		},
	}
}

// Mat4 returns the pose as a column-major model matrix.
func (p Pose) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Orientation.Normalize().Mat4())
}

// Mul composes the pose with a child pose expressed in this pose's space.
func (p Pose) Mul(child Pose) Pose {
	return Pose{
		Position:    p.Position.Add(p.Orientation.Rotate(child.Position)),
		Orientation: p.Orientation.Mul(child.Orientation).Normalize(),
	}
}

// Inverse returns the pose that undoes p.
func (p Pose) Inverse() Pose {
	inv := p.Orientation.Inverse()
	return Pose{
		Position:    inv.Rotate(p.Position.Mul(-1)),
		Orientation: inv,
	}
}

// RelativeTo expresses p in the space of base.
func (p Pose) RelativeTo(base Pose) Pose {
	return base.Inverse().Mul(p)
}
