package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
)

// FramebufferHandle is the handle the compositor framebuffer view is registered under.
const FramebufferHandle camera.RenderTarget = 5724242

// TextureView is a GPU texture view owned by the registry.
type TextureView interface {
	Release()
}

// ManualTextureView is a render target created outside the renderer's own swapchain.
type ManualTextureView struct {
	View   TextureView
	Width  uint32
	Height uint32
}

// Release releases the underlying view if there is one.
func (m ManualTextureView) Release() {
	if m.View != nil {
		m.View.Release()
	}
}

// FramebufferViewFactory wraps a foreign-owned compositor framebuffer as an engine render target.
// The caller must keep the framebuffer alive for as long as the returned view is registered.
type FramebufferViewFactory interface {
	// CreateFramebufferView builds a render target for the framebuffer.
	//
	// Parameters:
	//   - fb: the compositor framebuffer of the current frame
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	//
	// Returns:
	//   - ManualTextureView: the view
	//   - error: error if the view could not be created
	CreateFramebufferView(fb platform.Framebuffer, width, height uint32) (ManualTextureView, error)
}

// TextureViews is the registry of manual render targets, keyed by handle.
type TextureViews interface {
	// Insert registers a view under handle, releasing any view it replaces.
	//
	// Parameters:
	//   - handle: the handle cameras target
	//   - view: the view to register
	Insert(handle camera.RenderTarget, view ManualTextureView)

	// Get returns the view registered under handle.
	//
	// Returns:
	//   - ManualTextureView: the view
	//   - bool: false if nothing is registered
	Get(handle camera.RenderTarget) (ManualTextureView, bool)

	// Remove releases and unregisters the view under handle.
	Remove(handle camera.RenderTarget)

	// Len returns the number of registered views.
	Len() int
}

type textureViews struct {
	mu    *sync.Mutex
	views map[camera.RenderTarget]ManualTextureView
}

var _ TextureViews = &textureViews{}

// NewTextureViews creates an empty registry.
func NewTextureViews() TextureViews {
	return &textureViews{
		mu:    &sync.Mutex{},
		views: make(map[camera.RenderTarget]ManualTextureView),
	}
}

func (t *textureViews) Insert(handle camera.RenderTarget, view ManualTextureView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.views[handle]; ok {
		old.Release()
	}
	t.views[handle] = view
}

func (t *textureViews) Get(handle camera.RenderTarget) (ManualTextureView, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.views[handle]
	return v, ok
}

func (t *textureViews) Remove(handle camera.RenderTarget) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.views[handle]; ok {
		old.Release()
		delete(t.views, handle)
	}
}

func (t *textureViews) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.views)
}
