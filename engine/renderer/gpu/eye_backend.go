package gpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
)

// DrawFunc records the scene for one camera into a pass whose viewport and scissor are already set
// to the camera's viewport. format is the color format of the pass target.
type DrawFunc func(pass *wgpu.RenderPassEncoder, c camera.Camera, format wgpu.TextureFormat)

type eyeBackend struct {
	mu *sync.Mutex

	device *Device
	draw   DrawFunc
	clear  wgpu.Color
	logger *logrus.Logger

	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	targetW uint32
	targetH uint32

	// drawn holds the cameras and their target sizes for the mirror pass
	drawn []mirroredCamera
}

type mirroredCamera struct {
	camera  camera.Camera
	targetW uint32
	targetH uint32
}

var _ renderer.RendererBackend = &eyeBackend{}

// EyeBackendOption is a functional option for configuring the eye backend.
type EyeBackendOption func(*eyeBackend)

// WithDrawFunc sets the function that records each camera's scene.
func WithDrawFunc(fn DrawFunc) EyeBackendOption {
	return func(b *eyeBackend) {
		b.draw = fn
	}
}

// WithClearColor sets the color targets are cleared to.
func WithClearColor(r, g, bl, a float64) EyeBackendOption {
	return func(b *eyeBackend) {
		b.clear = wgpu.Color{R: r, G: g, B: bl, A: a}
	}
}

// WithBackendLogger sets the backend logger.
func WithBackendLogger(l *logrus.Logger) EyeBackendOption {
	return func(b *eyeBackend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewEyeBackend creates a renderer backend that renders each camera into its viewport of a
// framebuffer view. When the device has a mirror surface, the frame is also drawn to the window.
//
// Parameters:
//   - device: the device to record on
//   - options: functional options for the backend
//
// Returns:
//   - renderer.RendererBackend: the backend
func NewEyeBackend(device *Device, options ...EyeBackendOption) renderer.RendererBackend {
	b := &eyeBackend{
		mu:     &sync.Mutex{},
		device: device,
		clear:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		logger: logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *eyeBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder != nil {
		return fmt.Errorf("previous frame not yet submitted")
	}
	encoder, err := b.device.Device().CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.encoder = encoder
	b.drawn = b.drawn[:0]
	return nil
}

func (b *eyeBackend) BeginTarget(view renderer.ManualTextureView) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fv, ok := view.View.(*FramebufferView)
	if !ok || fv.View == nil {
		return fmt.Errorf("texture view %T is not a framebuffer view", view.View)
	}

	b.pass = b.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       fv.View,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clear,
			},
		},
	})
	b.targetW = view.Width
	b.targetH = view.Height
	return nil
}

func (b *eyeBackend) DrawCamera(c camera.Camera) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return
	}
	vp := clampViewport(c, b.targetW, b.targetH)
	if vp.Width == 0 || vp.Height == 0 {
		return
	}
	b.pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
	b.pass.SetScissorRect(vp.X, vp.Y, vp.Width, vp.Height)
	if b.draw != nil {
		b.draw(b.pass, c, FramebufferFormat)
	}
	b.drawn = append(b.drawn, mirroredCamera{camera: c, targetW: b.targetW, targetH: b.targetH})
}

func (b *eyeBackend) EndTarget() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass != nil {
		b.pass.End()
		b.pass.Release()
		b.pass = nil
	}
}

func (b *eyeBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return nil
	}
	encoder := b.encoder
	b.encoder = nil
	defer encoder.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.device.Queue().Submit(commandBuffer)
	commandBuffer.Release()

	if b.device.HasMirror() && len(b.drawn) > 0 {
		if err := b.presentMirror(); err != nil {
			b.logger.WithError(err).Debug("skipped mirror frame")
		}
	}
	return nil
}

// presentMirror redraws the frame's cameras onto the window surface, scaling each viewport from its
// framebuffer to the window.
func (b *eyeBackend) presentMirror() error {
	w, h, format := b.device.mirrorSize()
	if w == 0 || h == 0 {
		return fmt.Errorf("mirror surface not configured")
	}

	surfaceTexture, err := b.device.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.Device().CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clear,
			},
		},
	})
	for _, m := range b.drawn {
		vp := clampViewport(m.camera, m.targetW, m.targetH)
		if vp.Width == 0 || vp.Height == 0 || m.targetW == 0 || m.targetH == 0 {
			continue
		}
		sx := float32(w) / float32(m.targetW)
		sy := float32(h) / float32(m.targetH)
		x, y := float32(vp.X)*sx, float32(vp.Y)*sy
		vw, vh := float32(vp.Width)*sx, float32(vp.Height)*sy
		pass.SetViewport(x, y, vw, vh, 0, 1)
		pass.SetScissorRect(uint32(x), uint32(y), uint32(vw), uint32(vh))
		if b.draw != nil {
			b.draw(pass, m.camera, format)
		}
	}
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.device.Queue().Submit(commandBuffer)
	commandBuffer.Release()
	b.device.surface.Present()
	return nil
}
