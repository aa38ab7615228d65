package tracked

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform/sim"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func assertNear(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "want %v, got %v", want, got)
	}
}

type countingView struct{ released int }

func (v *countingView) Release() { v.released++ }

type fakeFactory struct {
	calls int
	last  platform.Framebuffer
	err   error
}

func (f *fakeFactory) CreateFramebufferView(fb platform.Framebuffer, width, height uint32) (renderer.ManualTextureView, error) {
	f.calls++
	f.last = fb
	if f.err != nil {
		return renderer.ManualTextureView{}, f.err
	}
	return renderer.ManualTextureView{View: &countingView{}, Width: width, Height: height}, nil
}

// fixture is a bound simulated session driving an engine that has no systems until a test adds
// them.
type fixture struct {
	t       *testing.T
	logger  *logrus.Logger
	rt      *sim.Runtime
	session *sim.Session
	ref     platform.Space
	eng     engine.Engine
	store   ecs.Store
	origin  ecs.Entity
	now     float64

	states []input.ControllerStateChanged
}

func newFixture(t *testing.T, mode xr.Mode) *fixture {
	t.Helper()
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	rt := sim.NewRuntime()
	s, err := rt.RequestSession(ctx, mode, platform.SessionOptions{OptionalFeatures: []string{"hand-tracking"}})
	require.NoError(t, err)
	ref, err := s.RequestReferenceSpace(ctx, xr.ReferenceSpaceFor(mode, xr.OriginRoom))
	require.NoError(t, err)

	el, err := rt.Doc().QuerySelector("canvas[data-raw-handle]")
	require.NoError(t, err)
	canvas, ok := el.(*sim.CanvasElement)
	require.True(t, ok)
	require.NoError(t, canvas.Drawing().MakeXRCompatible(ctx))
	layer, err := canvas.Drawing().NewBaseLayer(s)
	require.NoError(t, err)
	require.NoError(t, s.UpdateRenderState(platform.RenderState{BaseLayer: layer, DepthNear: 0.001}))

	eng := engine.NewEngine(engine.WithLogger(logger), engine.WithoutPacing())
	f := &fixture{
		t:       t,
		logger:  logger,
		rt:      rt,
		session: s.(*sim.Session),
		ref:     ref,
		eng:     eng,
		store:   eng.Store(),
	}
	f.origin = f.store.Spawn(xr.OriginRole())

	input.ControllerStateChangedEvent.Subscribe(eng.World(), func(_ donburi.World, e input.ControllerStateChanged) {
		f.states = append(f.states, e)
	})
	return f
}

// step delivers one device frame and runs one engine update inside its callback.
func (f *fixture) step() {
	f.t.Helper()
	f.session.RequestAnimationFrame(func(t float64, frame platform.Frame) {
		require.NoError(f.t, f.eng.Update(&engine.XRFrame{Time: t, Frame: frame, ReferenceSpace: f.ref}))
	})
	f.now += 11.1
	require.Equal(f.t, 1, f.session.Tick(f.now))
}

// stepWithoutFrame runs one engine update with no frame published.
func (f *fixture) stepWithoutFrame() {
	f.t.Helper()
	require.NoError(f.t, f.eng.Update(nil))
}

func (f *fixture) takeStates() []input.ControllerStateChanged {
	out := f.states
	f.states = nil
	return out
}

func (f *fixture) activeCount(entities []ecs.Entity) int {
	n := 0
	for _, e := range entities {
		if f.store.Active(e) {
			n++
		}
	}
	return n
}

func (f *fixture) parentOf(e ecs.Entity) ecs.Entity {
	f.t.Helper()
	p, ok := f.store.Parent(e)
	require.True(f.t, ok, "entity has a parent")
	return p
}
