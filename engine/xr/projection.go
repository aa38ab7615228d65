package xr

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultFar is the far plane distance reported for platform projections, which do not expose
// their clip planes directly.
const DefaultFar float32 = 1000

// Projection is a per-view projection matrix supplied by the platform each frame.
// The platform's clip space has Y pointing the opposite way to the engine's, so the Y scale
// term of every incoming matrix is negated.
type Projection struct {
	Matrix mgl32.Mat4
}

// NewProjection builds a Projection from 16 column-major floats as delivered by the platform.
//
// Parameters:
//   - values: the platform matrix, column-major
//
// Returns:
//   - Projection: the flipped projection
//   - error: error if values does not hold exactly 16 elements
func NewProjection(values []float32) (Projection, error) {
	var p Projection
	if err := p.Update(values); err != nil {
		return Projection{}, err
	}
	return p, nil
}

// DefaultProjection is the infinite perspective used before the first platform matrix arrives.
func DefaultProjection() Projection {
	return Projection{Matrix: mgl32.Mat4{
		2.4142134, 0, 0, 0,
		0, 2.4142134, 0, 0,
		0, 0, 0, -1,
		0, 0, 0.1, 0,
	}}
}

// Update replaces the matrix with a new platform matrix, applying the Y flip.
// The matrix is left untouched on error.
//
// Parameters:
//   - values: the platform matrix, column-major
//
// Returns:
//   - error: error if values does not hold exactly 16 elements
func (p *Projection) Update(values []float32) error {
	if len(values) != 16 {
		return fmt.Errorf("projection matrix needs 16 values, got %d", len(values))
	}
	var m mgl32.Mat4
	copy(m[:], values)
	m[5] = -m[5]
	p.Matrix = m
	return nil
}

// Near returns the near plane distance recovered from the matrix. Infinite reversed-Z matrices
// carry it directly in element [14].
func (p Projection) Near() float32 {
	if p.Matrix[10] == 0 || p.Matrix[10] == 1 {
		return p.Matrix[14]
	}
	return p.Matrix[14] / (p.Matrix[10] - 1)
}

// Far returns the far plane distance.
func (p Projection) Far() float32 {
	return DefaultFar
}

// Inverse returns the inverse projection, or the zero matrix when the projection is singular.
func (p Projection) Inverse() mgl32.Mat4 {
	return p.Matrix.Inv()
}
