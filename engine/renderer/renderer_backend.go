package renderer

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
)

// RendererBackend is the graphics API a Renderer draws through. Calls arrive in the order
// BeginFrame, then for each target BeginTarget, DrawCamera for each of its cameras and
// EndTarget, then EndFrame.
type RendererBackend interface {
	// BeginFrame starts recording a frame.
	//
	// Returns:
	//   - error: error if recording could not start
	BeginFrame() error

	// BeginTarget starts a pass over a render target, clearing it.
	//
	// Parameters:
	//   - view: the render target
	//
	// Returns:
	//   - error: error if the view cannot be rendered to
	BeginTarget(view ManualTextureView) error

	// DrawCamera renders one camera into its viewport of the current target.
	//
	// Parameters:
	//   - c: the camera
	DrawCamera(c camera.Camera)

	// EndTarget ends the current pass.
	EndTarget()

	// EndFrame submits the recorded frame.
	//
	// Returns:
	//   - error: error if submission failed
	EndFrame() error
}
