// Package platform declares the capabilities the XR layer consumes from the host: the XR runtime
// (session support, sessions, frames, spaces, input sources), the page document (buttons and
// canvases) and the drawing context that produces the compositor base layer.
//
// Implementations live in sub-packages: webxr binds the browser through syscall/js and sim is a
// deterministic in-process runtime used by tests and the desktop emulator.
package platform

import (
	"context"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Platform bundles the capabilities of one host.
type Platform interface {
	// XR returns the XR runtime, or nil when the host has none.
	XR() XR

	// Document returns the page document, or nil when the host has none.
	Document() Document
}

// XR is the runtime entry point, navigator.xr in a browser.
type XR interface {
	// IsSessionSupported asks whether sessions of mode can be created.
	//
	// Parameters:
	//   - ctx: cancels the wait for the platform's answer
	//   - mode: the session mode to probe
	//
	// Returns:
	//   - bool: true if the mode is supported
	//   - error: xr.ErrNotABool if the answer was not a boolean, or a platform rejection
	IsSessionSupported(ctx context.Context, mode xr.Mode) (bool, error)

	// RequestSession creates a session of the given mode.
	//
	// Parameters:
	//   - ctx: cancels the wait for the platform's answer
	//   - mode: the session mode
	//   - opts: required and optional features
	//
	// Returns:
	//   - Session: the new session
	//   - error: a platform rejection if the session could not be created
	RequestSession(ctx context.Context, mode xr.Mode, opts SessionOptions) (Session, error)
}

// SessionOptions lists the features requested with a session.
type SessionOptions struct {
	RequiredFeatures []string
	OptionalFeatures []string
}

// FrameCallback receives one device-paced frame. frame is only valid until the callback returns.
type FrameCallback func(time float64, frame Frame)

// Session is one connection to the XR runtime.
type Session interface {
	// Mode returns the mode the session was created with.
	Mode() xr.Mode

	// RequestReferenceSpace resolves the reference space poses are reported against.
	RequestReferenceSpace(ctx context.Context, t xr.ReferenceSpaceType) (Space, error)

	// UpdateRenderState installs a new render state, applied from the next frame.
	UpdateRenderState(state RenderState) error

	// RenderState returns the render state in effect.
	RenderState() RenderState

	// InputSources returns the input sources connected this frame, in platform order.
	InputSources() []InputSource

	// RequestAnimationFrame registers cb for the next device frame and returns a handle that
	// can cancel it.
	RequestAnimationFrame(cb FrameCallback) uint32

	// CancelAnimationFrame cancels a pending frame request.
	CancelAnimationFrame(handle uint32)

	// OnEnd registers a function called once when the session ends, whoever ended it.
	OnEnd(fn func())

	// End ends the session.
	End(ctx context.Context) error
}

// RenderState is the state the compositor reads each frame.
type RenderState struct {
	BaseLayer BaseLayer
	DepthNear float64
	DepthFar  float64
}

// BaseLayer is the compositor-visible swap target a session renders into.
type BaseLayer interface {
	// Framebuffer returns the compositor framebuffer for the current frame. The platform may
	// reallocate it between frames; nil means the layer has no framebuffer of its own.
	Framebuffer() Framebuffer

	// FramebufferWidth is the framebuffer width in pixels.
	FramebufferWidth() uint32

	// FramebufferHeight is the framebuffer height in pixels.
	FramebufferHeight() uint32

	// Viewport returns the sub-rectangle of the framebuffer a view renders into.
	Viewport(v View) (xr.Viewport, bool)
}

// Framebuffer is an opaque handle to a foreign-owned framebuffer object.
type Framebuffer any

// Space is an opaque handle to a platform space that poses are resolved in.
type Space any

// Frame is the pose-query handle of one device frame.
type Frame interface {
	// Session returns the session the frame belongs to.
	Session() Session

	// ViewerPose resolves the viewer and its views in the reference space.
	ViewerPose(ref Space) (ViewerPose, bool)

	// Pose resolves space relative to base.
	Pose(space, base Space) (xr.Pose, bool)

	// JointPose resolves a hand joint space relative to base.
	JointPose(joint Space, base Space) (JointPose, bool)
}

// ViewerPose is the head pose and the views rendered from it.
type ViewerPose struct {
	Transform xr.RigidTransform
	Views     []View
}

// View is one eye's (or the inline window's) pose and projection for a frame.
type View struct {
	Eye              xr.Eye
	Transform        xr.RigidTransform
	ProjectionMatrix []float32
	// Handle lets the platform recover its own view object in BaseLayer.Viewport.
	Handle any
}

// JointPose is a hand joint pose with the joint's radius.
type JointPose struct {
	Pose   xr.Pose
	Radius float64
}

// InputSource is a controller or tracked hand.
type InputSource interface {
	// Handedness is the hand the source is held in or belongs to.
	Handedness() xr.Handedness

	// GripSpace is the space of the grip pose, absent for sources that cannot be held.
	GripSpace() (Space, bool)

	// Gamepad returns the source's button and axis state, if it has one.
	Gamepad() (Gamepad, bool)

	// Hand returns the source's hand skeleton, if it tracks one.
	Hand() (Hand, bool)

	// Profiles lists the input profile names, most specific first.
	Profiles() []string
}

// GamepadButton is one button reading.
type GamepadButton struct {
	Pressed bool
	Touched bool
	Value   float64
}

// Gamepad is the button and axis state of an input source.
type Gamepad interface {
	Buttons() []GamepadButton
	Axes() []float64
}

// Hand is the joint set of a tracked hand.
type Hand interface {
	// Joint returns the space of one joint.
	Joint(j xr.HandJoint) (Space, bool)
}
