package camera

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithEye sets the eye the camera renders for.
//
// Parameters:
//   - eye: the eye, EyeNone for the inline window
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithEye(eye xr.Eye) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.eye = eye
	}
}

// WithOrder sets the render order.
//
// Parameters:
//   - order: the render order, usually the platform view index
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithOrder(order int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.order = order
	}
}

// WithActive sets whether the camera starts active.
//
// Parameters:
//   - active: true to render the camera
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithActive(active bool) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.active = active
	}
}

// WithViewport sets the initial viewport.
//
// Parameters:
//   - v: the viewport in pixels
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithViewport(v xr.Viewport) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewport = v
	}
}

// WithTarget sets the texture view the camera renders into.
//
// Parameters:
//   - t: the registered view handle
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithTarget(t RenderTarget) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = t
	}
}

// WithProjection sets the initial projection.
//
// Parameters:
//   - p: the projection
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithProjection(p xr.Projection) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = p
	}
}

// WithPose sets the initial eye pose.
//
// Parameters:
//   - p: the eye pose in the reference space
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithPose(p xr.Pose) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pose = p
	}
}
