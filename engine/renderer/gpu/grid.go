package gpu

import (
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
)

const gridShaderSource = camera.GPUCameraUniformSource + `
@group(0) @binding(0) var<uniform> camera: CameraUniform;

struct VertexOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) color: vec4<f32>) -> VertexOut {
    var out: VertexOut;
    out.clip = camera.view_proj * vec4<f32>(position, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return in.color;
}
`

// uniformSlots is how many cameras can be drawn per submission before slots are reused.
const uniformSlots = 16

// uniformStride is the minimum dynamic uniform offset alignment WebGPU guarantees.
const uniformStride = 256

// GridVertex is one vertex of the floor grid.
type GridVertex struct {
	Position [3]float32
	Color    [4]float32
}

// Grid draws a floor grid around the reference space origin with colored axes. It is the scene
// of the desktop emulator: enough to judge head and eye poses without loading assets.
type Grid struct {
	mu     *sync.Mutex
	device *Device
	logger *logrus.Logger

	shader   *wgpu.ShaderModule
	layout   *wgpu.BindGroupLayout
	pipeLay  *wgpu.PipelineLayout
	uniforms *wgpu.Buffer
	group    *wgpu.BindGroup
	vertices *wgpu.Buffer
	count    uint32

	center mgl32.Vec3
	radius float32

	pipelines map[wgpu.TextureFormat]*wgpu.RenderPipeline
	slot      int
}

// GridOption is a functional option for configuring a Grid.
type GridOption func(*gridConfig)

type gridConfig struct {
	halfExtent int
	spacing    float32
	logger     *logrus.Logger
}

// WithGridExtent sets how many cells the grid spans on each side of the origin and their size in
// meters.
func WithGridExtent(halfExtent int, spacing float32) GridOption {
	return func(c *gridConfig) {
		if halfExtent > 0 {
			c.halfExtent = halfExtent
		}
		if spacing > 0 {
			c.spacing = spacing
		}
	}
}

// WithGridLogger sets the logger.
func WithGridLogger(l *logrus.Logger) GridOption {
	return func(c *gridConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewGrid uploads the grid geometry and creates the shared shader and bindings. Pipelines are
// created per target format on first use.
//
// Parameters:
//   - device: the device to draw with
//   - options: functional options for the grid
//
// Returns:
//   - *Grid: the grid
//   - error: error if a GPU resource could not be created
func NewGrid(device *Device, options ...GridOption) (*Grid, error) {
	cfg := &gridConfig{halfExtent: 10, spacing: 0.5, logger: logrus.StandardLogger()}
	for _, opt := range options {
		opt(cfg)
	}

	g := &Grid{
		mu:        &sync.Mutex{},
		device:    device,
		logger:    cfg.logger,
		pipelines: make(map[wgpu.TextureFormat]*wgpu.RenderPipeline),
	}
	dev := device.Device()

	var err error
	g.shader, err = dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Grid Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: gridShaderSource},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create grid shader: %w", err)
	}

	g.layout, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Grid Camera Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   80,
				},
			},
		},
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("failed to create grid bind group layout: %w", err)
	}

	g.pipeLay, err = dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Grid Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{g.layout},
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("failed to create grid pipeline layout: %w", err)
	}

	g.uniforms, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Grid Camera Uniforms",
		Size:  uniformSlots * uniformStride,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("failed to create grid uniform buffer: %w", err)
	}

	g.group, err = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Grid Camera Bind Group",
		Layout: g.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: g.uniforms, Offset: 0, Size: 80},
		},
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("failed to create grid bind group: %w", err)
	}

	verts := GridVertices(cfg.halfExtent, cfg.spacing)
	data := common.SliceToBytes(verts)
	g.vertices, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Grid Vertices",
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("failed to create grid vertex buffer: %w", err)
	}
	device.Queue().WriteBuffer(g.vertices, 0, data)
	g.count = uint32(len(verts))
	g.center, g.radius = GridBounds(cfg.halfExtent, cfg.spacing)

	return g, nil
}

// Draw records the grid for c. It satisfies DrawFunc.
func (g *Grid) Draw(pass *wgpu.RenderPassEncoder, c camera.Camera, format wgpu.TextureFormat) {
	if !inView(c, g.center, g.radius) {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.pipeline(format)
	if err != nil {
		g.logger.WithError(err).WithField("format", format).Error("grid pipeline unavailable")
		return
	}

	offset := uint32(g.slot * uniformStride)
	g.slot = (g.slot + 1) % uniformSlots
	u := camera.NewGPUCameraUniform(c)
	g.device.Queue().WriteBuffer(g.uniforms, uint64(offset), u.Marshal())

	pass.SetPipeline(p)
	pass.SetBindGroup(0, g.group, []uint32{offset})
	pass.SetVertexBuffer(0, g.vertices, 0, wgpu.WholeSize)
	pass.Draw(g.count, 1, 0, 0)
}

// pipeline returns the line pipeline for a target format. Caller must hold the mutex.
func (g *Grid) pipeline(format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	if p, ok := g.pipelines[format]; ok {
		return p, nil
	}
	p, err := g.device.Device().CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Grid Render Pipeline",
		Layout: g.pipeLay,
		Vertex: wgpu.VertexState{
			Module:     g.shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 28,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     g.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: format, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyLineList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	g.pipelines[format] = p
	return p, nil
}

// Release releases every GPU resource of the grid.
func (g *Grid) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for f, p := range g.pipelines {
		p.Release()
		delete(g.pipelines, f)
	}
	if g.vertices != nil {
		g.vertices.Release()
		g.vertices = nil
	}
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
	if g.uniforms != nil {
		g.uniforms.Release()
		g.uniforms = nil
	}
	if g.pipeLay != nil {
		g.pipeLay.Release()
		g.pipeLay = nil
	}
	if g.layout != nil {
		g.layout.Release()
		g.layout = nil
	}
	if g.shader != nil {
		g.shader.Release()
		g.shader = nil
	}
}

// GridVertices builds the line list of a floor grid of halfExtent cells on each side of the
// origin, followed by a red X axis, green Y axis and blue Z axis of one meter.
//
// Parameters:
//   - halfExtent: cells on each side of the origin
//   - spacing: the cell size in meters
//
// Returns:
//   - []GridVertex: pairs of line end points
func GridVertices(halfExtent int, spacing float32) []GridVertex {
	lineColor := [4]float32{0.45, 0.45, 0.5, 1}
	edge := float32(halfExtent) * spacing

	verts := make([]GridVertex, 0, (2*halfExtent+1)*4+6)
	for i := -halfExtent; i <= halfExtent; i++ {
		d := float32(i) * spacing
		verts = append(verts,
			GridVertex{Position: [3]float32{d, 0, -edge}, Color: lineColor},
			GridVertex{Position: [3]float32{d, 0, edge}, Color: lineColor},
			GridVertex{Position: [3]float32{-edge, 0, d}, Color: lineColor},
			GridVertex{Position: [3]float32{edge, 0, d}, Color: lineColor},
		)
	}

	axes := [3][4]float32{{1, 0.2, 0.2, 1}, {0.2, 1, 0.2, 1}, {0.2, 0.4, 1, 1}}
	for i, color := range axes {
		var end [3]float32
		end[i] = 1
		verts = append(verts,
			GridVertex{Position: [3]float32{0, 0.001, 0}, Color: color},
			GridVertex{Position: [3]float32{end[0], end[1] + 0.001, end[2]}, Color: color},
		)
	}
	return verts
}

// GridBounds returns a sphere enclosing the grid and its axes.
//
// Parameters:
//   - halfExtent: cells on each side of the origin
//   - spacing: the cell size in meters
//
// Returns:
//   - mgl32.Vec3: the sphere center
//   - float32: the sphere radius
func GridBounds(halfExtent int, spacing float32) (mgl32.Vec3, float32) {
	// The axes reach one meter out and up, so the grid never shrinks below them.
	m := max(float32(halfExtent)*spacing, 1)
	r := float32(math.Sqrt(float64(2*m*m + 1.001*1.001)))
	return mgl32.Vec3{}, r
}

// inView reports whether a bounding sphere touches the view frustum of c.
func inView(c camera.Camera, center mgl32.Vec3, radius float32) bool {
	return c.Frustum().IntersectsSphere(center, radius)
}
