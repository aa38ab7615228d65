package gpu

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func TestGridVertices(t *testing.T) {
	verts := GridVertices(2, 0.5)
	// 5 lines per direction, 2 directions, 2 points each, plus 3 axes.
	require.Len(t, verts, 5*2*2+6)

	first := verts[0]
	assert.Equal(t, [3]float32{-1, 0, -1}, first.Position)
	assert.Equal(t, [3]float32{-1, 0, 1}, verts[1].Position)

	x := verts[len(verts)-6:]
	assert.Equal(t, float32(1), x[1].Position[0], "x axis ends one meter out")
	assert.Equal(t, float32(1), x[0].Color[0])
	assert.Equal(t, float32(1), x[5].Position[2], "z axis ends one meter out")
}

func TestGridVertexLayout(t *testing.T) {
	assert.Equal(t, uintptr(28), unsafe.Sizeof(GridVertex{}), "matches the pipeline array stride")
	assert.Len(t, common.SliceToBytes(GridVertices(1, 1)), 28*(3*2*2+6))
}

func TestGridBoundsEncloseVertices(t *testing.T) {
	for _, tt := range []struct {
		halfExtent int
		spacing    float32
	}{{10, 0.5}, {1, 0.25}, {4, 2}} {
		center, radius := GridBounds(tt.halfExtent, tt.spacing)
		for _, v := range GridVertices(tt.halfExtent, tt.spacing) {
			d := mgl32.Vec3(v.Position).Sub(center).Len()
			assert.LessOrEqual(t, d, radius, "extent %d spacing %v", tt.halfExtent, tt.spacing)
		}
	}
}

func TestGridCulledOutsideFrustum(t *testing.T) {
	center, radius := GridBounds(10, 0.5)
	at := func(pitchDegrees float32) camera.Camera {
		return camera.NewCamera(camera.WithPose(xr.Pose{
			Position:    mgl32.Vec3{0, 20, 0},
			Orientation: mgl32.QuatRotate(mgl32.DegToRad(pitchDegrees), mgl32.Vec3{1, 0, 0}),
		}))
	}

	assert.True(t, inView(at(-90), center, radius), "looking down at the floor")
	assert.False(t, inView(at(90), center, radius), "looking up at the sky")
}
