//go:build js

// Package webxr implements the platform capabilities on top of the browser: navigator.xr for the
// WebXR Device API and the page document for buttons and canvases. It only builds for js/wasm.
package webxr

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Platform is the browser window.
type Platform struct {
	window js.Value
}

var _ platform.Platform = &Platform{}

// NewPlatform binds the global window.
//
// Returns:
//   - *Platform: the platform
//   - error: xr.ErrNoWindow outside a browser window
func NewPlatform() (*Platform, error) {
	w := js.Global().Get("window")
	if !truthy(w) {
		return nil, xr.ErrNoWindow
	}
	return &Platform{window: w}, nil
}

func (p *Platform) XR() platform.XR {
	nav := p.window.Get("navigator")
	if !truthy(nav) {
		return nil
	}
	v := nav.Get("xr")
	if !truthy(v) {
		return nil
	}
	return &runtime{v: v}
}

func (p *Platform) Document() platform.Document {
	d := p.window.Get("document")
	if !truthy(d) {
		return nil
	}
	return &document{v: d}
}

// runtime is navigator.xr.
type runtime struct {
	v js.Value
}

func (r *runtime) IsSessionSupported(ctx context.Context, mode xr.Mode) (bool, error) {
	var promise js.Value
	if err := catch("isSessionSupported", func() {
		promise = r.v.Call("isSessionSupported", mode.SessionMode())
	}); err != nil {
		return false, err
	}
	result, err := await(ctx, "isSessionSupported", promise)
	if err != nil {
		return false, err
	}
	if result.Type() != js.TypeBoolean {
		return false, xr.ErrNotABool
	}
	return result.Bool(), nil
}

func (r *runtime) RequestSession(ctx context.Context, mode xr.Mode, opts platform.SessionOptions) (platform.Session, error) {
	init := js.Global().Get("Object").New()
	if len(opts.RequiredFeatures) > 0 {
		init.Set("requiredFeatures", stringArray(opts.RequiredFeatures))
	}
	if len(opts.OptionalFeatures) > 0 {
		init.Set("optionalFeatures", stringArray(opts.OptionalFeatures))
	}

	var promise js.Value
	if err := catch("requestSession", func() {
		promise = r.v.Call("requestSession", mode.SessionMode(), init)
	}); err != nil {
		return nil, err
	}
	v, err := await(ctx, "requestSession", promise)
	if err != nil {
		return nil, err
	}
	return newSession(v, mode), nil
}

// await waits for a promise to settle, like an await expression. Values that are not thenable
// are returned as they are.
func await(ctx context.Context, op string, v js.Value) (js.Value, error) {
	if v.Type() != js.TypeObject || v.Get("then").Type() != js.TypeFunction {
		return v, nil
	}

	type settled struct {
		value js.Value
		ok    bool
	}
	done := make(chan settled, 1)

	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- settled{value: arg0(args), ok: true}
		return nil
	})
	defer onResolve.Release()

	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- settled{value: arg0(args), ok: false}
		return nil
	})
	defer onReject.Release()

	v.Call("then", onResolve, onReject)
	select {
	case s := <-done:
		if !s.ok {
			return js.Undefined(), xr.Reject(op, js.Error{Value: s.value})
		}
		return s.value, nil
	case <-ctx.Done():
		return js.Undefined(), fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// catch runs fn, turning a thrown JS exception into a platform rejection of op.
func catch(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			jsErr, ok := r.(js.Error)
			if !ok {
				panic(r)
			}
			err = xr.Reject(op, jsErr)
		}
	}()
	fn()
	return nil
}

func arg0(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}

func truthy(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

func stringArray(values []string) js.Value {
	arr := js.Global().Get("Array").New(len(values))
	for i, s := range values {
		arr.SetIndex(i, s)
	}
	return arr
}

func readPoint(v js.Value) xr.Point {
	return xr.Point{
		X: v.Get("x").Float(),
		Y: v.Get("y").Float(),
		Z: v.Get("z").Float(),
		W: v.Get("w").Float(),
	}
}

// readTransform reads an XRRigidTransform.
func readTransform(v js.Value) xr.RigidTransform {
	return xr.RigidTransform{
		Position:    readPoint(v.Get("position")),
		Orientation: readPoint(v.Get("orientation")),
	}
}

func readFloats(v js.Value) []float32 {
	n := v.Length()
	out := make([]float32, n)
	for i := range n {
		out[i] = float32(v.Index(i).Float())
	}
	return out
}
