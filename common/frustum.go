package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a plane ax + by + cz + d = 0 with unit normal (a, b, c).
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum holds the six planes of a view frustum, oriented so the inside is the positive
// half-space of every plane.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts the frustum planes of a combined projection * view matrix using the
// Gribb/Hartmann method.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the view-projection matrix
//
// Returns:
//   - Frustum: the frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Rows()

	planes := [6]mgl32.Vec4{
		FrustumLeft:   r3.Add(r0),
		FrustumRight:  r3.Sub(r0),
		FrustumBottom: r3.Add(r1),
		FrustumTop:    r3.Sub(r1),
		FrustumNear:   r3.Add(r2),
		FrustumFar:    r3.Sub(r2),
	}

	var f Frustum
	for i, p := range planes {
		n := p.Vec3()
		length := n.Len()
		if length > 0 {
			f.Planes[i] = Plane{Normal: n.Mul(1 / length), Distance: p[3] / length}
		}
	}
	return f
}

// IntersectsSphere reports whether a sphere is at least partly inside the frustum.
//
// Parameters:
//   - center: the sphere center in world space
//   - radius: the sphere radius
//
// Returns:
//   - bool: false only if the sphere lies entirely outside one plane
func (f Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.Normal.Dot(center)+p.Distance < -radius {
			return false
		}
	}
	return true
}
