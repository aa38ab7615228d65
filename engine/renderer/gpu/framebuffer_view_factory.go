package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
)

// FramebufferFormat is the texture format compositor framebuffers are wrapped with.
const FramebufferFormat = wgpu.TextureFormatRGBA8UnormSrgb

// FramebufferUsage is the texture usage compositor framebuffers are wrapped with.
const FramebufferUsage = wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc

// TextureImporter is implemented by framebuffers that can be imported as a WebGPU texture directly.
// Framebuffers that cannot are backed by a device texture of the same size.
type TextureImporter interface {
	ImportTexture(device *wgpu.Device, desc *wgpu.TextureDescriptor) (*wgpu.Texture, error)
}

// FramebufferView is the texture and view a compositor framebuffer is wrapped in.
type FramebufferView struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

// Release releases the view and its texture.
func (f *FramebufferView) Release() {
	if f.View != nil {
		f.View.Release()
		f.View = nil
	}
	if f.Texture != nil {
		f.Texture.Release()
		f.Texture = nil
	}
}

type framebufferViewFactory struct {
	device *Device
}

var _ renderer.FramebufferViewFactory = &framebufferViewFactory{}

// NewFramebufferViewFactory creates a factory that wraps framebuffers on device.
//
// Parameters:
//   - device: the device the textures are created on
//
// Returns:
//   - renderer.FramebufferViewFactory: the factory
func NewFramebufferViewFactory(device *Device) renderer.FramebufferViewFactory {
	return &framebufferViewFactory{device: device}
}

func (f *framebufferViewFactory) CreateFramebufferView(fb platform.Framebuffer, width, height uint32) (renderer.ManualTextureView, error) {
	if width == 0 || height == 0 {
		return renderer.ManualTextureView{}, fmt.Errorf("framebuffer has empty size %dx%d", width, height)
	}

	desc := &wgpu.TextureDescriptor{
		Label: "XR Framebuffer",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        FramebufferFormat,
		Usage:         FramebufferUsage,
	}

	var (
		texture *wgpu.Texture
		err     error
	)
	if importer, ok := fb.(TextureImporter); ok {
		texture, err = importer.ImportTexture(f.device.Device(), desc)
	} else {
		texture, err = f.device.Device().CreateTexture(desc)
	}
	if err != nil {
		return renderer.ManualTextureView{}, fmt.Errorf("failed to create framebuffer texture: %w", err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return renderer.ManualTextureView{}, fmt.Errorf("failed to create framebuffer view: %w", err)
	}

	return renderer.ManualTextureView{
		View:   &FramebufferView{Texture: texture, View: view},
		Width:  width,
		Height: height,
	}, nil
}
