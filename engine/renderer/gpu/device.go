// Package gpu implements the renderer backend and compositor framebuffer views on WebGPU.
package gpu

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device owns the WebGPU instance, adapter, device and queue shared by the framebuffer view factory
// and the eye backend. A Device created with a surface can also present a desktop mirror of the
// eye views.
type Device struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat
	surfaceWidth  uint32
	surfaceHeight uint32
	presentMode   wgpu.PresentMode

	forceFallbackAdapter bool
}

// DeviceOption is a functional option for configuring a Device.
type DeviceOption func(*deviceConfig)

type deviceConfig struct {
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool
	vsync                bool
}

// WithSurfaceDescriptor requests an adapter compatible with the given window surface and keeps the
// surface for mirroring.
//
// Parameters:
//   - d: the surface descriptor of the mirror window
//
// Returns:
//   - DeviceOption: option function to apply
func WithSurfaceDescriptor(d *wgpu.SurfaceDescriptor) DeviceOption {
	return func(c *deviceConfig) {
		c.surfaceDescriptor = d
	}
}

// WithFallbackAdapter forces the software fallback adapter.
func WithFallbackAdapter() DeviceOption {
	return func(c *deviceConfig) {
		c.forceFallbackAdapter = true
	}
}

// WithVSync presents the mirror in FIFO mode instead of immediate mode.
func WithVSync(enabled bool) DeviceOption {
	return func(c *deviceConfig) {
		c.vsync = enabled
	}
}

// NewDevice acquires an adapter and device.
//
// Parameters:
//   - options: functional options for the device
//
// Returns:
//   - *Device: the device
//   - error: error if no adapter or device could be acquired
func NewDevice(options ...DeviceOption) (*Device, error) {
	cfg := &deviceConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	d := &Device{
		mu:                   &sync.Mutex{},
		instance:             wgpu.CreateInstance(nil),
		presentMode:          wgpu.PresentModeImmediate,
		forceFallbackAdapter: cfg.forceFallbackAdapter,
	}
	if cfg.vsync {
		d.presentMode = wgpu.PresentModeFifo
	}
	if cfg.surfaceDescriptor != nil {
		d.surface = d.instance.CreateSurface(cfg.surfaceDescriptor)
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "XR Device",
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	return d, nil
}

// Device returns the WebGPU device.
func (d *Device) Device() *wgpu.Device {
	return d.device
}

// Queue returns the device queue.
func (d *Device) Queue() *wgpu.Queue {
	return d.queue
}

// HasMirror reports whether the device was created with a window surface.
func (d *Device) HasMirror() bool {
	return d.surface != nil
}

// ConfigureMirror (re)configures the mirror surface for a window size. It is a no-op without a
// surface.
//
// Parameters:
//   - width: the window framebuffer width
//   - height: the window framebuffer height
func (d *Device) ConfigureMirror(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.surface == nil || width <= 0 || height <= 0 {
		return
	}

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]
	d.surfaceWidth = uint32(width)
	d.surfaceHeight = uint32(height)

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       d.surfaceWidth,
		Height:      d.surfaceHeight,
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (d *Device) mirrorSize() (uint32, uint32, wgpu.TextureFormat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surfaceWidth, d.surfaceHeight, d.surfaceFormat
}

// Release releases the device and everything acquired with it.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
