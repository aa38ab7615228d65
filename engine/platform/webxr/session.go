//go:build js

package webxr

import (
	"context"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// session wraps an XRSession.
type session struct {
	mu   *sync.Mutex
	v    js.Value
	mode xr.Mode

	callbacks map[uint32]js.Func
}

var _ platform.Session = &session{}

func newSession(v js.Value, mode xr.Mode) *session {
	return &session{
		mu:        &sync.Mutex{},
		v:         v,
		mode:      mode,
		callbacks: make(map[uint32]js.Func),
	}
}

func (s *session) Mode() xr.Mode {
	return s.mode
}

func (s *session) RequestReferenceSpace(ctx context.Context, t xr.ReferenceSpaceType) (platform.Space, error) {
	var promise js.Value
	if err := catch("requestReferenceSpace", func() {
		promise = s.v.Call("requestReferenceSpace", t.String())
	}); err != nil {
		return nil, err
	}
	v, err := await(ctx, "requestReferenceSpace", promise)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *session) UpdateRenderState(state platform.RenderState) error {
	init := js.Global().Get("Object").New()
	if state.BaseLayer != nil {
		layer, ok := state.BaseLayer.(*baseLayer)
		if !ok {
			return fmt.Errorf("base layer %T was not created by the browser", state.BaseLayer)
		}
		init.Set("baseLayer", layer.v)
	}
	if state.DepthNear > 0 {
		init.Set("depthNear", state.DepthNear)
	}
	if state.DepthFar > 0 {
		init.Set("depthFar", state.DepthFar)
	}
	return catch("updateRenderState", func() {
		s.v.Call("updateRenderState", init)
	})
}

func (s *session) RenderState() platform.RenderState {
	rs := s.v.Get("renderState")
	state := platform.RenderState{
		DepthNear: rs.Get("depthNear").Float(),
		DepthFar:  rs.Get("depthFar").Float(),
	}
	if layer := rs.Get("baseLayer"); truthy(layer) {
		state.BaseLayer = &baseLayer{v: layer}
	}
	return state
}

func (s *session) InputSources() []platform.InputSource {
	arr := s.v.Get("inputSources")
	n := arr.Length()
	out := make([]platform.InputSource, 0, n)
	for i := range n {
		out = append(out, &inputSource{v: arr.Index(i)})
	}
	return out
}

func (s *session) RequestAnimationFrame(cb platform.FrameCallback) uint32 {
	var handle uint32
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		s.mu.Lock()
		delete(s.callbacks, handle)
		s.mu.Unlock()
		defer fn.Release()

		if len(args) < 2 {
			return nil
		}
		cb(args[0].Float(), &frame{v: args[1], session: s})
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	handle = uint32(s.v.Call("requestAnimationFrame", fn).Int())
	s.callbacks[handle] = fn
	return handle
}

func (s *session) CancelAnimationFrame(handle uint32) {
	s.mu.Lock()
	fn, ok := s.callbacks[handle]
	delete(s.callbacks, handle)
	s.mu.Unlock()

	s.v.Call("cancelAnimationFrame", handle)
	if ok {
		fn.Release()
	}
}

func (s *session) OnEnd(fn func()) {
	var once sync.Once
	s.v.Call("addEventListener", "end", js.FuncOf(func(this js.Value, args []js.Value) any {
		once.Do(func() { go fn() })
		return nil
	}))
}

func (s *session) End(ctx context.Context) error {
	var promise js.Value
	if err := catch("end", func() {
		promise = s.v.Call("end")
	}); err != nil {
		return fmt.Errorf("%w: %v", xr.ErrSessionLost, err)
	}
	if _, err := await(ctx, "end", promise); err != nil {
		return fmt.Errorf("%w: %v", xr.ErrSessionLost, err)
	}
	return nil
}

// frame wraps an XRFrame. It is only valid during its animation frame callback.
type frame struct {
	v       js.Value
	session *session
}

var _ platform.Frame = &frame{}

func (f *frame) Session() platform.Session {
	return f.session
}

func (f *frame) ViewerPose(ref platform.Space) (platform.ViewerPose, bool) {
	refSpace, ok := ref.(js.Value)
	if !ok {
		return platform.ViewerPose{}, false
	}
	var pose js.Value
	if err := catch("getViewerPose", func() {
		pose = f.v.Call("getViewerPose", refSpace)
	}); err != nil || !truthy(pose) {
		return platform.ViewerPose{}, false
	}

	views := pose.Get("views")
	n := views.Length()
	out := platform.ViewerPose{
		Transform: readTransform(pose.Get("transform")),
		Views:     make([]platform.View, 0, n),
	}
	for i := range n {
		v := views.Index(i)
		out.Views = append(out.Views, platform.View{
			Eye:              readEye(v.Get("eye").String()),
			Transform:        readTransform(v.Get("transform")),
			ProjectionMatrix: readFloats(v.Get("projectionMatrix")),
			Handle:           v,
		})
	}
	return out, true
}

func (f *frame) Pose(space, base platform.Space) (xr.Pose, bool) {
	sv, ok1 := space.(js.Value)
	bv, ok2 := base.(js.Value)
	if !ok1 || !ok2 {
		return xr.Pose{}, false
	}
	var pose js.Value
	if err := catch("getPose", func() {
		pose = f.v.Call("getPose", sv, bv)
	}); err != nil || !truthy(pose) {
		return xr.Pose{}, false
	}
	return readTransform(pose.Get("transform")).Pose(), true
}

func (f *frame) JointPose(joint, base platform.Space) (platform.JointPose, bool) {
	jv, ok1 := joint.(js.Value)
	bv, ok2 := base.(js.Value)
	if !ok1 || !ok2 {
		return platform.JointPose{}, false
	}
	var pose js.Value
	if err := catch("getJointPose", func() {
		pose = f.v.Call("getJointPose", jv, bv)
	}); err != nil || !truthy(pose) {
		return platform.JointPose{}, false
	}
	return platform.JointPose{
		Pose:   readTransform(pose.Get("transform")).Pose(),
		Radius: pose.Get("radius").Float(),
	}, true
}

func readEye(eye string) xr.Eye {
	switch eye {
	case "left":
		return xr.EyeLeft
	case "right":
		return xr.EyeRight
	default:
		return xr.EyeNone
	}
}

// baseLayer wraps an XRWebGLLayer.
type baseLayer struct {
	v js.Value
}

var _ platform.BaseLayer = &baseLayer{}

func (l *baseLayer) Framebuffer() platform.Framebuffer {
	fb := l.v.Get("framebuffer")
	if !truthy(fb) {
		return nil
	}
	return fb
}

func (l *baseLayer) FramebufferWidth() uint32 {
	return uint32(l.v.Get("framebufferWidth").Int())
}

func (l *baseLayer) FramebufferHeight() uint32 {
	return uint32(l.v.Get("framebufferHeight").Int())
}

func (l *baseLayer) Viewport(view platform.View) (xr.Viewport, bool) {
	handle, ok := view.Handle.(js.Value)
	if !ok {
		return xr.Viewport{}, false
	}
	var vp js.Value
	if err := catch("getViewport", func() {
		vp = l.v.Call("getViewport", handle)
	}); err != nil || !truthy(vp) {
		return xr.Viewport{}, false
	}
	return xr.Viewport{
		X:      uint32(vp.Get("x").Int()),
		Y:      uint32(vp.Get("y").Int()),
		Width:  uint32(vp.Get("width").Int()),
		Height: uint32(vp.Get("height").Int()),
	}, true
}

// inputSource wraps an XRInputSource.
type inputSource struct {
	v js.Value
}

var _ platform.InputSource = &inputSource{}

func (i *inputSource) Handedness() xr.Handedness {
	switch i.v.Get("handedness").String() {
	case "left":
		return xr.HandednessLeft
	case "right":
		return xr.HandednessRight
	default:
		return xr.HandednessNone
	}
}

func (i *inputSource) GripSpace() (platform.Space, bool) {
	g := i.v.Get("gripSpace")
	if !truthy(g) {
		return nil, false
	}
	return g, true
}

func (i *inputSource) Gamepad() (platform.Gamepad, bool) {
	g := i.v.Get("gamepad")
	if !truthy(g) {
		return nil, false
	}
	return &gamepad{v: g}, true
}

func (i *inputSource) Hand() (platform.Hand, bool) {
	h := i.v.Get("hand")
	if !truthy(h) {
		return nil, false
	}
	return &hand{v: h}, true
}

func (i *inputSource) Profiles() []string {
	arr := i.v.Get("profiles")
	if !truthy(arr) {
		return nil
	}
	out := make([]string, arr.Length())
	for k := range out {
		out[k] = arr.Index(k).String()
	}
	return out
}

// gamepad wraps the Gamepad of an input source.
type gamepad struct {
	v js.Value
}

func (g *gamepad) Buttons() []platform.GamepadButton {
	arr := g.v.Get("buttons")
	out := make([]platform.GamepadButton, arr.Length())
	for i := range out {
		b := arr.Index(i)
		out[i] = platform.GamepadButton{
			Pressed: b.Get("pressed").Bool(),
			Touched: b.Get("touched").Bool(),
			Value:   b.Get("value").Float(),
		}
	}
	return out
}

func (g *gamepad) Axes() []float64 {
	arr := g.v.Get("axes")
	out := make([]float64, arr.Length())
	for i := range out {
		out[i] = arr.Index(i).Float()
	}
	return out
}

// hand wraps an XRHand.
type hand struct {
	v js.Value
}

func (h *hand) Joint(j xr.HandJoint) (platform.Space, bool) {
	space := h.v.Call("get", j.String())
	if !truthy(space) {
		return nil, false
	}
	return space, true
}
