package xr

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "want %v, got %v", want, got)
	}
}

func TestPointConversion(t *testing.T) {
	p := Point{X: 1, Y: 2, Z: 3, W: 4}
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, PointToVec3(p))

	q := PointToQuat(p)
	assert.Equal(t, float32(4), q.W)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, q.V)
}

func TestRigidTransformRoundTrip(t *testing.T) {
	pose := Pose{
		Position:    mgl32.Vec3{0.5, 1.6, -2},
		Orientation: mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0}),
	}
	got := pose.Transform().Pose()
	assertNear(t, pose.Position, got.Position)
	assert.True(t, pose.Orientation.OrientationEqualThreshold(got.Orientation, 1e-5))
}

func TestPoseRelativeTo(t *testing.T) {
	base := Pose{
		Position:    mgl32.Vec3{1, 0, 0},
		Orientation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
	}
	child := Pose{Position: mgl32.Vec3{0, 0, -1}, Orientation: mgl32.QuatIdent()}
	world := base.Mul(child)

	rel := world.RelativeTo(base)
	assertNear(t, child.Position, rel.Position)
	assert.True(t, rel.Orientation.OrientationEqualThreshold(child.Orientation, 1e-5))

	m := IdentityPose().Mat4()
	assert.Equal(t, mgl32.Ident4(), m)
}

func TestProjectionFlipsY(t *testing.T) {
	values := []float32{
		1, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, -1.0002, -1,
		0, 0, -0.0020002, 0,
	}
	p, err := NewProjection(values)
	require.NoError(t, err)
	assert.Equal(t, float32(-2), p.Matrix[5])
	assert.Equal(t, float32(1), p.Matrix[0])
	assert.Equal(t, float32(-1), p.Matrix[11])
	assert.Equal(t, float32(2), values[5], "input must not be modified")
	assert.Equal(t, DefaultFar, p.Far())
}

func TestProjectionRejectsShortMatrix(t *testing.T) {
	_, err := NewProjection([]float32{1, 2, 3})
	assert.Error(t, err)

	p := DefaultProjection()
	before := p.Matrix
	assert.Error(t, p.Update(nil))
	assert.Equal(t, before, p.Matrix)
	assert.Equal(t, float32(0.1), p.Matrix[14])
}

func TestProjectionNear(t *testing.T) {
	assert.InDelta(t, 0.1, DefaultProjection().Near(), 1e-6)

	m := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.05, 100)
	p, err := NewProjection(m[:])
	require.NoError(t, err)
	assert.InDelta(t, 0.05, p.Near(), 1e-4)
	assert.Equal(t, DefaultFar, p.Far())
}
