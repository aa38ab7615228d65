package camera

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

// GPUCameraUniformSource is the WGSL declaration matching GPUCameraUniform.
const GPUCameraUniformSource = `struct CameraUniform {
    view_proj: mat4x4<f32>,
    position: vec3<f32>,
    _pad: f32,
};
`

// GPUCameraUniform is the GPU layout of one camera: 80 bytes, WGSL uniform aligned.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset  0
	CameraPosition [3]float32  // offset 64
	_pad           float32     // offset 76
}

// NewGPUCameraUniform captures the current matrices of c.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - GPUCameraUniform: the uniform
func NewGPUCameraUniform(c Camera) GPUCameraUniform {
	pos := c.Pose().Position
	return GPUCameraUniform{
		ViewProj:       c.ViewProjectionMatrix(),
		CameraPosition: [3]float32{pos[0], pos[1], pos[2]},
	}
}

// Size returns the size of the uniform in bytes.
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal returns the uniform as bytes for a buffer write. The slice is a copy.
func (g *GPUCameraUniform) Marshal() []byte {
	return append([]byte(nil), common.StructToBytes(g)...)
}
