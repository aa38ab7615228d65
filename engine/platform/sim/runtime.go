// Package sim is an in-process XR runtime. It implements the platform capabilities with plain Go
// state so the XR layer can run without a browser: tests script poses, views and input sources
// frame by frame, and the desktop emulator drives it from keyboard input.
package sim

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Runtime is a simulated XR host. It is safe for concurrent use.
type Runtime struct {
	mu *sync.Mutex

	hasXR      bool
	supported  map[xr.Mode]bool
	probeErr   error
	requestErr error

	framebufferWidth  uint32
	framebufferHeight uint32

	document *Document
	session  *Session
	sessions int
}

var _ platform.Platform = &Runtime{}
var _ platform.XR = &Runtime{}

// NewRuntime creates a runtime that supports VR and inline sessions with a document that has a
// body and a canvas matching "canvas[data-raw-handle]".
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - *Runtime: the runtime
func NewRuntime(options ...RuntimeBuilderOption) *Runtime {
	r := &Runtime{
		mu:    &sync.Mutex{},
		hasXR: true,
		supported: map[xr.Mode]bool{
			xr.ModeInline: true,
			xr.ModeVR:     true,
			xr.ModeAR:     false,
		},
		framebufferWidth:  2048,
		framebufferHeight: 1024,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.document == nil {
		r.document = NewDocument()
		r.document.AddCanvas("", map[string]string{"data-raw-handle": "1"})
	}
	return r
}

func (r *Runtime) XR() platform.XR {
	if !r.hasXR {
		return nil
	}
	return r
}

func (r *Runtime) Document() platform.Document {
	if r.document == nil {
		return nil
	}
	return r.document
}

// Doc returns the simulated document for scripting.
func (r *Runtime) Doc() *Document {
	return r.document
}

func (r *Runtime) IsSessionSupported(ctx context.Context, mode xr.Mode) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.probeErr != nil {
		return false, r.probeErr
	}
	return r.supported[mode], nil
}

func (r *Runtime) RequestSession(ctx context.Context, mode xr.Mode, opts platform.SessionOptions) (platform.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.requestErr != nil {
		return nil, r.requestErr
	}
	if !r.supported[mode] {
		return nil, xr.Reject("requestSession", "NotSupportedError: "+mode.SessionMode())
	}
	for _, f := range opts.RequiredFeatures {
		if f == "hand-tracking" && mode == xr.ModeInline {
			return nil, xr.Reject("requestSession", "NotSupportedError: hand-tracking")
		}
	}
	r.sessions++
	s := newSession(mode, r.framebufferWidth, r.framebufferHeight, opts)
	r.session = s
	return s, nil
}

// Session returns the most recently created session, nil before the first request.
func (r *Runtime) Session() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// SessionCount returns how many sessions have been created.
func (r *Runtime) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions
}

// SetSupported changes whether a mode is supported.
func (r *Runtime) SetSupported(mode xr.Mode, supported bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supported[mode] = supported
}

// SetRequestError makes every following session request fail with err. Pass nil to clear it.
func (r *Runtime) SetRequestError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestErr = err
}

// Tick delivers one device frame at time t to the current session.
//
// Returns:
//   - int: the number of frame callbacks that ran
func (r *Runtime) Tick(t float64) int {
	s := r.Session()
	if s == nil {
		return 0
	}
	return s.Tick(t)
}
