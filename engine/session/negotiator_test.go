package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform/sim"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// gatedBinder blocks every Bind until release is closed.
type gatedBinder struct {
	inner   Binder
	release chan struct{}
}

func (g *gatedBinder) Bind(ctx context.Context, s platform.Session, selector string) error {
	<-g.release
	return g.inner.Bind(ctx, s, selector)
}

type negotiatorFixture struct {
	rt          *sim.Runtime
	eng         engine.Engine
	n           Negotiator
	initialized chan xr.SessionInitialized
}

func newNegotiatorFixture(t *testing.T, rt *sim.Runtime, options ...NegotiatorBuilderOption) *negotiatorFixture {
	t.Helper()
	logger := newTestLogger()
	eng := engine.NewEngine(engine.WithLogger(logger), engine.WithoutPacing())
	f := &negotiatorFixture{
		rt:          rt,
		eng:         eng,
		initialized: make(chan xr.SessionInitialized, 8),
	}
	xr.SessionInitializedEvent.Subscribe(eng.World(), func(_ donburi.World, e xr.SessionInitialized) {
		f.initialized <- e
	})
	runEngine(t, eng)

	opts := append([]NegotiatorBuilderOption{WithNegotiatorLogger(logger)}, options...)
	f.n = NewNegotiator(rt, eng, opts...)
	return f
}

func TestProbe(t *testing.T) {
	t.Run("supported modes", func(t *testing.T) {
		f := newNegotiatorFixture(t, sim.NewRuntime(sim.WithSupportedModes(xr.ModeVR, xr.ModeAR)))
		support, err := f.n.Probe(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Support{Inline: false, VR: true, AR: true}, support)
		assert.True(t, support.Supported(xr.ModeAR))
		assert.False(t, support.Supported(xr.ModeInline))
	})

	t.Run("no xr runtime", func(t *testing.T) {
		f := newNegotiatorFixture(t, sim.NewRuntime(sim.WithoutXR()))
		_, err := f.n.Probe(context.Background())
		assert.ErrorIs(t, err, xr.ErrNotSupported)
		assert.Equal(t, xr.KindPlatformUnsupported, xr.KindOf(err))
	})

	t.Run("answer is not a boolean", func(t *testing.T) {
		f := newNegotiatorFixture(t, sim.NewRuntime(sim.WithProbeError(xr.ErrNotABool)))
		_, err := f.n.Probe(context.Background())
		assert.ErrorIs(t, err, xr.ErrNotABool)
		assert.Equal(t, xr.KindPlatformUnsupported, xr.KindOf(err))
	})

	t.Run("platform rejection", func(t *testing.T) {
		f := newNegotiatorFixture(t, sim.NewRuntime(sim.WithProbeError(errors.New("SecurityError"))))
		_, err := f.n.Probe(context.Background())
		assert.Equal(t, xr.KindPlatformRejection, xr.KindOf(err))
	})
}

func TestActivateRunsSession(t *testing.T) {
	f := newNegotiatorFixture(t, sim.NewRuntime())

	require.NoError(t, f.n.Activate(xr.ModeVR))
	r := waitResult(t, f.n)
	require.NoError(t, r.Err)
	assert.Equal(t, xr.ModeVR, r.Mode)
	require.NotNil(t, r.Session)

	s := f.rt.Session()
	assert.Same(t, s, r.Session)
	assert.Equal(t, []string{HandTrackingFeature}, s.Features().OptionalFeatures)
	assert.NotNil(t, s.RenderState().BaseLayer, "bound before the loop starts")
	assert.Equal(t, 0.001, s.RenderState().DepthNear)

	select {
	case e := <-f.initialized:
		assert.Equal(t, xr.SessionInitialized{Mode: xr.ModeVR, Origin: xr.OriginRoom}, e)
	case <-time.After(waitFor):
		t.Fatal("session initialized event was not published")
	}

	d := f.n.Driver()
	require.NotNil(t, d)
	assert.Equal(t, DriverRunning, d.State())
	assert.Same(t, s, f.n.Session())
	assert.Equal(t, 1, f.rt.Tick(11.1))
	assert.Equal(t, uint64(1), d.Frames())

	_, again := f.n.Poll()
	assert.False(t, again, "a result is returned once")
}

func TestActivateWithoutHandTracking(t *testing.T) {
	settings := xr.DefaultSettings()
	settings.HandTracking = false
	f := newNegotiatorFixture(t, sim.NewRuntime(), WithSettings(settings))

	require.NoError(t, f.n.Activate(xr.ModeVR))
	require.NoError(t, waitResult(t, f.n).Err)
	assert.Empty(t, f.rt.Session().Features().OptionalFeatures)
}

func TestActivateRejectsConcurrentRequest(t *testing.T) {
	rt := sim.NewRuntime()
	gate := &gatedBinder{inner: NewBinder(rt.Document()), release: make(chan struct{})}
	f := newNegotiatorFixture(t, rt, WithBinder(gate))

	require.NoError(t, f.n.Activate(xr.ModeVR))
	err := f.n.Activate(xr.ModeVR)
	assert.ErrorIs(t, err, xr.ErrRequestPending)
	assert.Equal(t, xr.KindRequestPending, xr.KindOf(err))

	_, ok := f.n.Poll()
	assert.False(t, ok, "nothing to poll while the request is pending")

	close(gate.release)
	require.NoError(t, waitResult(t, f.n).Err)
	assert.Equal(t, 1, rt.SessionCount())

	assert.NoError(t, f.n.Activate(xr.ModeVR), "a new request is accepted once the last one finished")
	require.NoError(t, waitResult(t, f.n).Err)
}

func TestActivateEndsPreviousSession(t *testing.T) {
	f := newNegotiatorFixture(t, sim.NewRuntime())

	require.NoError(t, f.n.Activate(xr.ModeVR))
	first := waitResult(t, f.n)
	require.NoError(t, first.Err)
	firstDriver := f.n.Driver()

	require.NoError(t, f.n.Activate(xr.ModeInline))
	second := waitResult(t, f.n)
	require.NoError(t, second.Err)

	assert.True(t, first.Session.(*sim.Session).Ended())
	assert.Equal(t, DriverEnded, firstDriver.State())
	assert.False(t, second.Session.(*sim.Session).Ended())
	assert.Equal(t, xr.ModeInline, f.n.Session().Mode())
	assert.Equal(t, 2, f.rt.SessionCount())
	onEngine(t, f.eng, func(e engine.Engine) {
		assert.False(t, e.Paced(), "the new session keeps pacing suspended")
	})
	assert.Equal(t, 1, f.rt.Tick(11.1))
}

func TestActivateFailures(t *testing.T) {
	t.Run("request rejected", func(t *testing.T) {
		rt := sim.NewRuntime(sim.WithRequestError(errors.New("NotAllowedError")))
		f := newNegotiatorFixture(t, rt)

		require.NoError(t, f.n.Activate(xr.ModeVR))
		r := waitResult(t, f.n)
		assert.Equal(t, xr.KindPlatformRejection, xr.KindOf(r.Err))
		assert.Nil(t, r.Session)
		assert.Nil(t, f.n.Session())
	})

	t.Run("mode not supported", func(t *testing.T) {
		f := newNegotiatorFixture(t, sim.NewRuntime())

		require.NoError(t, f.n.Activate(xr.ModeAR))
		r := waitResult(t, f.n)
		assert.Equal(t, xr.KindPlatformRejection, xr.KindOf(r.Err))
		assert.Equal(t, xr.ModeAR, r.Mode)
	})

	t.Run("bind failure ends the session", func(t *testing.T) {
		rt := sim.NewRuntime()
		el, _ := rt.Doc().QuerySelector(defaultCanvas)
		el.(*sim.CanvasElement).DisableContext()
		f := newNegotiatorFixture(t, rt)

		require.NoError(t, f.n.Activate(xr.ModeVR))
		r := waitResult(t, f.n)
		assert.ErrorIs(t, r.Err, xr.ErrContextNotFound)
		assert.True(t, rt.Session().Ended())
		assert.Nil(t, f.n.Driver())
	})

	t.Run("no xr runtime", func(t *testing.T) {
		f := newNegotiatorFixture(t, sim.NewRuntime(sim.WithoutXR()))

		require.NoError(t, f.n.Activate(xr.ModeVR))
		assert.ErrorIs(t, waitResult(t, f.n).Err, xr.ErrNotSupported)
	})
}

func TestInstallButtons(t *testing.T) {
	t.Run("creates missing buttons", func(t *testing.T) {
		rt := sim.NewRuntime(sim.WithSupportedModes(xr.ModeVR, xr.ModeAR))
		f := newNegotiatorFixture(t, rt)

		require.NoError(t, f.n.InstallButtons(context.Background(), Support{VR: true, AR: true}))

		vr, ok := rt.Doc().ElementByID("vr_button").(*sim.ButtonElement)
		require.True(t, ok)
		assert.Equal(t, "Enter VR", vr.Text())
		ar, ok := rt.Doc().ElementByID("ar_button").(*sim.ButtonElement)
		require.True(t, ok)
		assert.Equal(t, "Enter AR", ar.Text())
	})

	t.Run("click activates the mode", func(t *testing.T) {
		rt := sim.NewRuntime()
		f := newNegotiatorFixture(t, rt)

		require.NoError(t, f.n.InstallButtons(context.Background(), Support{Inline: true, VR: true}))
		assert.Nil(t, rt.Doc().ElementByID("ar_button"), "unsupported modes get no button")

		require.True(t, rt.Doc().Click("vr_button"))
		r := waitResult(t, f.n)
		require.NoError(t, r.Err)
		assert.Equal(t, xr.ModeVR, r.Mode)
	})

	t.Run("reuses an existing button", func(t *testing.T) {
		rt := sim.NewRuntime()
		existing := rt.Doc().AddButton("vr_button")
		f := newNegotiatorFixture(t, rt)

		require.NoError(t, f.n.InstallButtons(context.Background(), Support{VR: true}))
		assert.Same(t, existing, rt.Doc().ElementByID("vr_button"))
		assert.Empty(t, existing.Text(), "existing buttons keep their content")
	})

	t.Run("disabled in settings", func(t *testing.T) {
		settings := xr.DefaultSettings()
		settings.VRSupported = false
		rt := sim.NewRuntime()
		f := newNegotiatorFixture(t, rt, WithSettings(settings))

		require.NoError(t, f.n.InstallButtons(context.Background(), Support{VR: true}))
		assert.Nil(t, rt.Doc().ElementByID("vr_button"))
	})

	t.Run("element is not a button", func(t *testing.T) {
		rt := sim.NewRuntime()
		rt.Doc().AddElement("div", "vr_button")
		f := newNegotiatorFixture(t, rt)

		err := f.n.InstallButtons(context.Background(), Support{VR: true})
		assert.ErrorIs(t, err, xr.ErrElementWrongType)
		assert.Equal(t, xr.KindElementWrongType, xr.KindOf(err))
	})

	t.Run("no body", func(t *testing.T) {
		rt := sim.NewRuntime(sim.WithDocument(sim.NewBodylessDocument()))
		f := newNegotiatorFixture(t, rt)

		err := f.n.InstallButtons(context.Background(), Support{VR: true})
		assert.ErrorIs(t, err, xr.ErrNoBody)
	})
}

func TestStart(t *testing.T) {
	t.Run("activates inline when enabled", func(t *testing.T) {
		settings := xr.DefaultSettings()
		settings.InlineSupported = true
		rt := sim.NewRuntime()
		f := newNegotiatorFixture(t, rt, WithSettings(settings))

		support, err := f.n.Start(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Support{Inline: true, VR: true}, support)
		assert.NotNil(t, rt.Doc().ElementByID("vr_button"))

		r := waitResult(t, f.n)
		require.NoError(t, r.Err)
		assert.Equal(t, xr.ModeInline, r.Mode)
		assert.Equal(t, xr.ModeInline, rt.Session().Mode())
	})

	t.Run("waits for a button by default", func(t *testing.T) {
		rt := sim.NewRuntime()
		f := newNegotiatorFixture(t, rt)

		_, err := f.n.Start(context.Background())
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
		_, ok := f.n.Poll()
		assert.False(t, ok)
		assert.Zero(t, rt.SessionCount())
	})

	t.Run("probe failure", func(t *testing.T) {
		f := newNegotiatorFixture(t, sim.NewRuntime(sim.WithoutXR()))
		_, err := f.n.Start(context.Background())
		assert.ErrorIs(t, err, xr.ErrNotSupported)
	})
}
