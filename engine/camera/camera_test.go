package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func glPerspective() []float32 {
	m := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	return m[:]
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.Active())
	assert.Equal(t, xr.EyeNone, c.Eye())
	assert.Equal(t, xr.DefaultProjection().Matrix, c.ProjectionMatrix())
	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())
	assert.Equal(t, xr.DefaultFar, c.Far())
}

func TestCameraFollowsPose(t *testing.T) {
	proj, err := xr.NewProjection(glPerspective())
	require.NoError(t, err)

	c := NewCamera(WithEye(xr.EyeLeft), WithOrder(0), WithProjection(proj))
	c.SetPose(xr.Pose{Position: mgl32.Vec3{0, 1.6, 0}, Orientation: mgl32.QuatIdent()})

	// A point at the eye maps to the view-space origin.
	p := mgl32.TransformCoordinate(mgl32.Vec3{0, 1.6, 0}, c.ViewMatrix())
	for i := range p {
		assert.InDelta(t, 0, p[i], 1e-5, "got %v", p)
	}

	assert.Equal(t, proj.Matrix.Mul4(c.ViewMatrix()), c.ViewProjectionMatrix())
	id := c.InverseProjectionMatrix().Mul4(c.ProjectionMatrix())
	want := mgl32.Ident4()
	for i := range id {
		assert.InDelta(t, want[i], id[i], 1e-4, "element %d", i)
	}
}

func TestCameraFrustum(t *testing.T) {
	proj, err := xr.NewProjection(glPerspective())
	require.NoError(t, err)
	c := NewCamera(WithProjection(proj), WithPose(xr.IdentityPose()))

	f := c.Frustum()
	assert.True(t, f.IntersectsSphere(mgl32.Vec3{0, 0, -5}, 0.1), "point ahead is visible")
	assert.False(t, f.IntersectsSphere(mgl32.Vec3{0, 0, 5}, 0.1), "point behind is culled")
	assert.False(t, f.IntersectsSphere(mgl32.Vec3{0, 0, -500}, 0.1), "point past far plane is culled")
}

func TestCameraSetters(t *testing.T) {
	c := NewCamera(WithActive(false), WithTarget(7))
	assert.False(t, c.Active())
	assert.Equal(t, RenderTarget(7), c.Target())

	vp := xr.Viewport{X: 1024, Width: 1024, Height: 1024}
	c.SetViewport(vp)
	c.SetOrder(1)
	c.SetActive(true)
	assert.Equal(t, vp, c.Viewport())
	assert.Equal(t, 1, c.Order())
	assert.True(t, c.Active())
}

func TestGPUCameraUniform(t *testing.T) {
	proj, err := xr.NewProjection(glPerspective())
	require.NoError(t, err)
	c := NewCamera(WithProjection(proj), WithPose(xr.Pose{Position: mgl32.Vec3{1, 2, 3}, Orientation: mgl32.QuatIdent()}))

	u := NewGPUCameraUniform(c)
	assert.Equal(t, 80, u.Size())
	assert.Equal(t, [3]float32{1, 2, 3}, u.CameraPosition)
	assert.Equal(t, [16]float32(c.ViewProjectionMatrix()), u.ViewProj)

	b := u.Marshal()
	require.Len(t, b, 80)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[64:68], "position x is 1.0 little endian")
}
