package sim

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// RuntimeBuilderOption is a functional option for configuring a Runtime.
type RuntimeBuilderOption func(*Runtime)

// WithSupportedModes replaces the set of supported session modes.
//
// Parameters:
//   - modes: the modes the runtime supports; all others are unsupported
//
// Returns:
//   - RuntimeBuilderOption: option function to apply
func WithSupportedModes(modes ...xr.Mode) RuntimeBuilderOption {
	return func(r *Runtime) {
		r.supported = make(map[xr.Mode]bool, len(xr.Modes))
		for _, m := range xr.Modes {
			r.supported[m] = false
		}
		for _, m := range modes {
			r.supported[m] = true
		}
	}
}

// WithoutXR makes the runtime report no XR object at all.
func WithoutXR() RuntimeBuilderOption {
	return func(r *Runtime) {
		r.hasXR = false
	}
}

// WithProbeError makes every support probe fail with err.
func WithProbeError(err error) RuntimeBuilderOption {
	return func(r *Runtime) {
		r.probeErr = err
	}
}

// WithRequestError makes every session request fail with err.
func WithRequestError(err error) RuntimeBuilderOption {
	return func(r *Runtime) {
		r.requestErr = err
	}
}

// WithDocument replaces the default document.
func WithDocument(d *Document) RuntimeBuilderOption {
	return func(r *Runtime) {
		r.document = d
	}
}

// WithFramebufferSize sets the size of the compositor framebuffer base layers report.
func WithFramebufferSize(width, height uint32) RuntimeBuilderOption {
	return func(r *Runtime) {
		r.framebufferWidth = width
		r.framebufferHeight = height
	}
}
