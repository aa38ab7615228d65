package renderer

import (
	"github.com/sirupsen/logrus"
)

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*renderer)

// WithTextureViews shares an existing texture view registry with the renderer.
//
// Parameters:
//   - views: the registry
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithTextureViews(views TextureViews) RendererBuilderOption {
	return func(r *renderer) {
		r.views = views
	}
}

// WithLogger sets the logger the renderer reports skipped targets to.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithLogger(l *logrus.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if l != nil {
			r.logger = l
		}
	}
}
