package webxr

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform/sim"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

const waitFor = 2 * time.Second

type recordingRenderer struct {
	views  renderer.TextureViews
	frames []int
}

func (r *recordingRenderer) TextureViews() renderer.TextureViews { return r.views }

func (r *recordingRenderer) RenderCameras(cameras []camera.Camera) (int, error) {
	n := 0
	for _, c := range cameras {
		if c.Active() {
			n++
		}
	}
	r.frames = append(r.frames, n)
	return n, nil
}

type pluginFixture struct {
	rt          *sim.Runtime
	eng         engine.Engine
	plugin      Plugin
	initialized chan xr.SessionInitialized
	ended       chan xr.SessionEnded
	results     chan session.Result
}

func newPluginFixture(t *testing.T, rt *sim.Runtime, options ...PluginBuilderOption) *pluginFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	eng := engine.NewEngine(engine.WithLogger(logger), engine.WithoutPacing())
	f := &pluginFixture{
		rt:          rt,
		eng:         eng,
		initialized: make(chan xr.SessionInitialized, 4),
		ended:       make(chan xr.SessionEnded, 4),
		results:     make(chan session.Result, 4),
	}
	xr.SessionInitializedEvent.Subscribe(eng.World(), func(_ donburi.World, e xr.SessionInitialized) {
		f.initialized <- e
	})
	xr.SessionEndedEvent.Subscribe(eng.World(), func(_ donburi.World, e xr.SessionEnded) {
		f.ended <- e
	})

	opts := append([]PluginBuilderOption{
		WithLogger(logger),
		WithResultHandler(func(r session.Result) { f.results <- r }),
	}, options...)
	f.plugin = NewPlugin(rt, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return f
}

func (f *pluginFixture) waitInitialized(t *testing.T) xr.SessionInitialized {
	t.Helper()
	select {
	case e := <-f.initialized:
		return e
	case <-time.After(waitFor):
		t.Fatal("session was not initialized")
		return xr.SessionInitialized{}
	}
}

// inspect runs fn on the engine goroutine and waits for it.
func (f *pluginFixture) inspect(t *testing.T, fn func(e engine.Engine)) {
	t.Helper()
	done := make(chan struct{})
	require.True(t, f.eng.Post(engine.Call{Fn: func(e engine.Engine) {
		defer close(done)
		fn(e)
	}}))
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("engine call timed out")
	}
}

func TestPluginImmersiveSession(t *testing.T) {
	rt := sim.NewRuntime()
	r := &recordingRenderer{views: renderer.NewTextureViews()}
	f := newPluginFixture(t, rt, WithRenderer(r))

	require.NoError(t, f.plugin.Build(f.eng))
	assert.Same(t, r.views, f.plugin.TextureViews())
	require.True(t, rt.Doc().Click("vr_button"), "the VR button is installed")

	e := f.waitInitialized(t)
	assert.Equal(t, xr.ModeVR, e.Mode)

	s := rt.Session()
	require.NotNil(t, s)
	left := sim.NewController(xr.HandednessLeft, xr.Pose{Position: mgl32.Vec3{-0.2, 1.2, -0.3}, Orientation: mgl32.QuatIdent()})
	s.AddInputSource(left)

	require.Equal(t, 1, rt.Tick(11.1))

	select {
	case res := <-f.results:
		require.NoError(t, res.Err)
		assert.Equal(t, xr.ModeVR, res.Mode)
	case <-time.After(waitFor):
		t.Fatal("activation result was not handed to the handler")
	}

	f.inspect(t, func(e engine.Engine) {
		store := e.Store()
		origins := store.Query(xr.OriginRole())
		require.Len(t, origins, 1)
		assert.True(t, store.Active(origins[0]))

		for _, eye := range []xr.Eye{xr.EyeLeft, xr.EyeRight} {
			cams := store.Query(xr.EyeRole(eye))
			require.Len(t, cams, 1, "eye %s", eye)
			assert.True(t, store.Active(cams[0]))
		}
		ctrl := store.Query(xr.ControllerRole(xr.HandednessLeft))
		require.Len(t, ctrl, 1)
		assert.True(t, store.Active(ctrl[0]))
	})

	_, ok := f.plugin.TextureViews().Get(renderer.FramebufferHandle)
	assert.True(t, ok, "the framebuffer is registered")
	assert.Equal(t, []int{2}, r.frames)
}

func TestPluginSessionEnd(t *testing.T) {
	rt := sim.NewRuntime()
	f := newPluginFixture(t, rt)
	require.NoError(t, f.plugin.Build(f.eng))
	require.True(t, rt.Doc().Click("vr_button"))
	f.waitInitialized(t)
	require.Equal(t, 1, rt.Tick(11.1))

	require.NoError(t, rt.Session().End(context.Background()))
	select {
	case e := <-f.ended:
		assert.Equal(t, xr.ModeVR, e.Mode)
	case <-time.After(waitFor):
		t.Fatal("session end was not published")
	}

	f.inspect(t, func(e engine.Engine) {
		origins := e.Store().Query(xr.OriginRole())
		require.Len(t, origins, 1)
		assert.False(t, e.Store().Active(origins[0]))
		assert.True(t, e.Paced())
	})

	// A second session reuses the origin.
	require.True(t, rt.Doc().Click("vr_button"))
	f.waitInitialized(t)
	f.inspect(t, func(e engine.Engine) {
		origins := e.Store().Query(xr.OriginRole())
		require.Len(t, origins, 1)
		assert.True(t, e.Store().Active(origins[0]))
	})
}

func TestPluginInlineAtStartup(t *testing.T) {
	settings := xr.DefaultSettings()
	settings.InlineSupported = true
	rt := sim.NewRuntime()
	f := newPluginFixture(t, rt, WithSettings(settings))

	require.NoError(t, f.plugin.Build(f.eng))
	assert.Equal(t, xr.ModeInline, f.waitInitialized(t).Mode)
	require.Equal(t, 1, rt.Tick(16.6))

	f.inspect(t, func(e engine.Engine) {
		windows := e.Store().Query(xr.WindowRole())
		require.Len(t, windows, 1)
		c, ok := e.Store().Camera(windows[0])
		require.True(t, ok)
		assert.True(t, c.Active())
		assert.Equal(t, renderer.FramebufferHandle, c.Target())
	})
}

func TestPluginBuildFailures(t *testing.T) {
	t.Run("no xr runtime", func(t *testing.T) {
		f := newPluginFixture(t, sim.NewRuntime(sim.WithoutXR()))
		err := f.plugin.Build(f.eng)
		assert.ErrorIs(t, err, xr.ErrNotSupported)
	})

	t.Run("built twice", func(t *testing.T) {
		f := newPluginFixture(t, sim.NewRuntime())
		require.NoError(t, f.plugin.Build(f.eng))
		assert.Error(t, f.plugin.Build(f.eng))
		assert.NotNil(t, f.plugin.Negotiator())
	})
}

func TestDescriptorViewFactory(t *testing.T) {
	v, err := descriptorViewFactory{}.CreateFramebufferView(nil, 2048, 1024)
	require.NoError(t, err)
	assert.Nil(t, v.View)
	assert.Equal(t, uint32(2048), v.Width)
	assert.Equal(t, uint32(1024), v.Height)
}
