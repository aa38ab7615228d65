package session

import (
	"github.com/sirupsen/logrus"
)

// BinderBuilderOption is a functional option for configuring a Binder.
type BinderBuilderOption func(*binder)

// WithCreateCanvas makes Bind create and append a canvas when the selector matches nothing,
// instead of failing with xr.ErrCanvasNotFound.
//
// Parameters:
//   - create: whether to create missing canvases
//
// Returns:
//   - BinderBuilderOption: option function to apply
func WithCreateCanvas(create bool) BinderBuilderOption {
	return func(b *binder) {
		b.createCanvas = create
	}
}

// WithDepthNear sets the near plane installed into the render state.
//
// Parameters:
//   - near: the near plane distance in meters
//
// Returns:
//   - BinderBuilderOption: option function to apply
func WithDepthNear(near float64) BinderBuilderOption {
	return func(b *binder) {
		if near > 0 {
			b.depthNear = near
		}
	}
}

// WithBinderLogger sets the binder's logger.
func WithBinderLogger(l *logrus.Logger) BinderBuilderOption {
	return func(b *binder) {
		if l != nil {
			b.logger = l
		}
	}
}
