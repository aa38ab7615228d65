package webxr

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// PluginBuilderOption is a functional option for configuring a Plugin.
type PluginBuilderOption func(*plugin)

// WithSettings sets the xr settings, typically from xr.LoadSettingsFromEnv.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - PluginBuilderOption: option function to apply
func WithSettings(s xr.Settings) PluginBuilderOption {
	return func(p *plugin) {
		p.settings = s
	}
}

// WithLogger sets the logger shared by every XR component the plugin creates.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - PluginBuilderOption: option function to apply
func WithLogger(l *logrus.Logger) PluginBuilderOption {
	return func(p *plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithContext bounds every session request the plugin makes.
func WithContext(ctx context.Context) PluginBuilderOption {
	return func(p *plugin) {
		if ctx != nil {
			p.ctx = ctx
		}
	}
}

// WithFramebufferViewFactory sets how the compositor framebuffer becomes a render target.
//
// Parameters:
//   - f: the factory
//
// Returns:
//   - PluginBuilderOption: option function to apply
func WithFramebufferViewFactory(f renderer.FramebufferViewFactory) PluginBuilderOption {
	return func(p *plugin) {
		p.factory = f
	}
}

// WithTextureViews shares a texture view registry with the plugin.
func WithTextureViews(v renderer.TextureViews) PluginBuilderOption {
	return func(p *plugin) {
		p.views = v
	}
}

// WithRenderer registers a post-update system that renders the XR cameras through r. The plugin
// shares r's texture view registry unless WithTextureViews is given.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - PluginBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) PluginBuilderOption {
	return func(p *plugin) {
		p.renderer = r
	}
}

// WithDecoder sets the controller input decoder.
func WithDecoder(d input.Decoder) PluginBuilderOption {
	return func(p *plugin) {
		p.decoder = d
	}
}

// WithCreateCanvas creates the session canvas when the page has none.
func WithCreateCanvas(create bool) PluginBuilderOption {
	return func(p *plugin) {
		p.createCanvas = create
	}
}

// WithResultHandler receives every finished activation request. The default logs failures.
//
// Parameters:
//   - fn: called on the engine goroutine during the pre-input stage
//
// Returns:
//   - PluginBuilderOption: option function to apply
func WithResultHandler(fn func(session.Result)) PluginBuilderOption {
	return func(p *plugin) {
		p.onResult = fn
	}
}
