package sim

import (
	"context"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Space is a simulated space with a world pose. Untracked spaces never resolve.
type Space struct {
	name    string
	pose    xr.Pose
	tracked bool
}

func newSpace(name string, pose xr.Pose) *Space {
	return &Space{name: name, pose: pose, tracked: true}
}

// ViewSpec describes one simulated view relative to the head.
type ViewSpec struct {
	Eye        xr.Eye
	Offset     xr.Pose
	Projection []float32
}

// Framebuffer is the simulated compositor framebuffer. A new one is allocated every frame.
type Framebuffer struct {
	ID     int
	Width  uint32
	Height uint32
}

type viewHandle struct {
	index int
	count int
}

// Session is a simulated XR session.
type Session struct {
	mu *sync.Mutex

	mode     xr.Mode
	features platform.SessionOptions

	framebufferWidth  uint32
	framebufferHeight uint32
	framebufferID     int

	renderState platform.RenderState
	refSpaces   map[xr.ReferenceSpaceType]*Space

	head          xr.Pose
	viewerTracked bool
	views         []ViewSpec

	sources []*InputSource

	callbacks  map[uint32]platform.FrameCallback
	nextHandle uint32
	frames     int

	ended bool
	onEnd []func()
}

var _ platform.Session = &Session{}

func newSession(mode xr.Mode, fbWidth, fbHeight uint32, opts platform.SessionOptions) *Session {
	s := &Session{
		mu:                &sync.Mutex{},
		mode:              mode,
		features:          opts,
		framebufferWidth:  fbWidth,
		framebufferHeight: fbHeight,
		refSpaces:         make(map[xr.ReferenceSpaceType]*Space),
		head:              xr.Pose{Position: mgl32.Vec3{0, 1.6, 0}, Orientation: mgl32.QuatIdent()},
		viewerTracked:     true,
		callbacks:         make(map[uint32]platform.FrameCallback),
	}
	if mode == xr.ModeInline {
		s.views = []ViewSpec{{Eye: xr.EyeNone, Offset: xr.IdentityPose(), Projection: PerspectiveMatrix(70, 16.0/9.0)}}
	} else {
		s.views = StereoViews(0.064)
	}
	return s
}

// PerspectiveMatrix builds a GL-style projection as a platform would report it.
func PerspectiveMatrix(fovYDegrees, aspect float32) []float32 {
	m := mgl32.Perspective(mgl32.DegToRad(fovYDegrees), aspect, 0.1, 1000)
	out := make([]float32, 16)
	copy(out, m[:])
	return out
}

// StereoViews returns a left and right view separated by ipd meters.
func StereoViews(ipd float32) []ViewSpec {
	half := ipd / 2
	return []ViewSpec{
		{Eye: xr.EyeLeft, Offset: xr.Pose{Position: mgl32.Vec3{-half, 0, 0}, Orientation: mgl32.QuatIdent()}, Projection: PerspectiveMatrix(90, 1)},
		{Eye: xr.EyeRight, Offset: xr.Pose{Position: mgl32.Vec3{half, 0, 0}, Orientation: mgl32.QuatIdent()}, Projection: PerspectiveMatrix(90, 1)},
	}
}

func (s *Session) Mode() xr.Mode {
	return s.mode
}

// Features returns the features the session was requested with.
func (s *Session) Features() platform.SessionOptions {
	return s.features
}

func (s *Session) RequestReferenceSpace(ctx context.Context, t xr.ReferenceSpaceType) (platform.Space, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, xr.ErrSessionLost
	}
	if t == xr.ReferenceSpaceBoundedFloor {
		return nil, xr.Reject("requestReferenceSpace", "NotSupportedError: "+t.String())
	}
	space, ok := s.refSpaces[t]
	if !ok {
		space = newSpace(t.String(), xr.IdentityPose())
		s.refSpaces[t] = space
	}
	return space, nil
}

func (s *Session) UpdateRenderState(state platform.RenderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return xr.ErrSessionLost
	}
	if state.BaseLayer == nil {
		state.BaseLayer = s.renderState.BaseLayer
	}
	if state.DepthFar == 0 {
		state.DepthFar = 1000
	}
	s.renderState = state
	return nil
}

func (s *Session) RenderState() platform.RenderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderState
}

func (s *Session) InputSources() []platform.InputSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]platform.InputSource, len(s.sources))
	for i, src := range s.sources {
		out[i] = src
	}
	return out
}

func (s *Session) RequestAnimationFrame(cb platform.FrameCallback) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	if !s.ended {
		s.callbacks[s.nextHandle] = cb
	}
	return s.nextHandle
}

func (s *Session) CancelAnimationFrame(handle uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.callbacks, handle)
}

// PendingFrames returns the number of registered frame callbacks.
func (s *Session) PendingFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

// Frames returns the number of frames delivered so far.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Session) OnEnd(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		go fn()
		return
	}
	s.onEnd = append(s.onEnd, fn)
}

func (s *Session) End(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return xr.ErrSessionLost
	}
	s.ended = true
	s.callbacks = make(map[uint32]platform.FrameCallback)
	fns := s.onEnd
	s.onEnd = nil
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

// Ended reports whether the session has ended.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Tick delivers one device frame: every callback registered before the call runs once, in
// registration order, with a frame that stops resolving poses once the callback returns.
// Callbacks registered during the tick run on the next one.
//
// Returns:
//   - int: the number of callbacks that ran
func (s *Session) Tick(t float64) int {
	s.mu.Lock()
	if s.ended || len(s.callbacks) == 0 {
		s.mu.Unlock()
		return 0
	}
	handles := make([]uint32, 0, len(s.callbacks))
	for h := range s.callbacks {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	cbs := make([]platform.FrameCallback, len(handles))
	for i, h := range handles {
		cbs[i] = s.callbacks[h]
		delete(s.callbacks, h)
	}
	s.frames++
	s.framebufferID++
	s.mu.Unlock()

	for _, cb := range cbs {
		f := &Frame{session: s, valid: true}
		cb(t, f)
		f.invalidate()
	}
	return len(cbs)
}

// SetHeadPose moves the viewer.
func (s *Session) SetHeadPose(p xr.Pose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head = p
}

// HeadPose returns the viewer pose in the world.
func (s *Session) HeadPose() xr.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head
}

// SetViewerTracked makes the viewer pose resolvable or not.
func (s *Session) SetViewerTracked(tracked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewerTracked = tracked
}

// SetViews replaces the views reported with the viewer pose.
func (s *Session) SetViews(views []ViewSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append([]ViewSpec(nil), views...)
}

// AddInputSource connects an input source.
func (s *Session) AddInputSource(src *InputSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src.mu = s.mu
	s.sources = append(s.sources, src)
}

// RemoveInputSource disconnects an input source.
func (s *Session) RemoveInputSource(src *InputSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.sources {
		if cur == src {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
			return
		}
	}
}

// Frame is one simulated device frame.
type Frame struct {
	session *Session
	mu      sync.Mutex
	valid   bool
}

var _ platform.Frame = &Frame{}

func (f *Frame) invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = false
}

func (f *Frame) isValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid
}

func (f *Frame) Session() platform.Session {
	return f.session
}

func (f *Frame) ViewerPose(ref platform.Space) (platform.ViewerPose, bool) {
	if !f.isValid() {
		return platform.ViewerPose{}, false
	}
	base, ok := ref.(*Space)
	if !ok {
		return platform.ViewerPose{}, false
	}
	s := f.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.viewerTracked || !base.tracked {
		return platform.ViewerPose{}, false
	}
	head := s.head.RelativeTo(base.pose)
	vp := platform.ViewerPose{Transform: head.Transform()}
	for i, v := range s.views {
		vp.Views = append(vp.Views, platform.View{
			Eye:              v.Eye,
			Transform:        head.Mul(v.Offset).Transform(),
			ProjectionMatrix: append([]float32(nil), v.Projection...),
			Handle:           viewHandle{index: i, count: len(s.views)},
		})
	}
	return vp, true
}

func (f *Frame) Pose(space, base platform.Space) (xr.Pose, bool) {
	if !f.isValid() {
		return xr.Pose{}, false
	}
	sp, ok1 := space.(*Space)
	bp, ok2 := base.(*Space)
	if !ok1 || !ok2 || sp == nil || bp == nil {
		return xr.Pose{}, false
	}
	f.session.mu.Lock()
	defer f.session.mu.Unlock()
	if !sp.tracked || !bp.tracked {
		return xr.Pose{}, false
	}
	return sp.pose.RelativeTo(bp.pose), true
}

func (f *Frame) JointPose(joint, base platform.Space) (platform.JointPose, bool) {
	p, ok := f.Pose(joint, base)
	if !ok {
		return platform.JointPose{}, false
	}
	return platform.JointPose{Pose: p, Radius: 0.01}, true
}

// BaseLayer is the simulated compositor layer.
type BaseLayer struct {
	session *Session
}

var _ platform.BaseLayer = &BaseLayer{}

func (l *BaseLayer) Framebuffer() platform.Framebuffer {
	l.session.mu.Lock()
	defer l.session.mu.Unlock()
	return &Framebuffer{ID: l.session.framebufferID, Width: l.session.framebufferWidth, Height: l.session.framebufferHeight}
}

func (l *BaseLayer) FramebufferWidth() uint32 {
	return l.session.framebufferWidth
}

func (l *BaseLayer) FramebufferHeight() uint32 {
	return l.session.framebufferHeight
}

// Viewport splits the framebuffer horizontally into equal slices, one per view.
func (l *BaseLayer) Viewport(v platform.View) (xr.Viewport, bool) {
	h, ok := v.Handle.(viewHandle)
	if !ok || h.count == 0 {
		return xr.Viewport{}, false
	}
	w := l.session.framebufferWidth / uint32(h.count)
	return xr.Viewport{X: uint32(h.index) * w, Y: 0, Width: w, Height: l.session.framebufferHeight}, true
}
