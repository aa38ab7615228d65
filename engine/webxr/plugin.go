// Package webxr plugs the XR layer into an engine. Build registers the tracking synchronizers in
// their stages, keeps the XR origin entity in step with the session lifecycle and starts the
// session negotiator against the host platform.
package webxr

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/session"
	"github.com/Carmen-Shannon/oxy-xr/engine/tracked"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// plugin implements the Plugin interface.
type plugin struct {
	mu *sync.Mutex

	platform platform.Platform
	settings xr.Settings
	logger   *logrus.Logger
	ctx      context.Context

	factory      renderer.FramebufferViewFactory
	views        renderer.TextureViews
	decoder      input.Decoder
	renderer     renderer.Renderer
	createCanvas bool
	onResult     func(session.Result)

	negotiator session.Negotiator
	built      bool
}

// Plugin installs the XR layer into an engine.
type Plugin interface {
	// Build registers the XR systems and event handlers on eng and starts session negotiation.
	//
	// Parameters:
	//   - eng: the engine to install into
	//
	// Returns:
	//   - error: error if the plugin was already built or the platform could not be probed
	Build(eng engine.Engine) error

	// Negotiator returns the session negotiator, nil before Build.
	Negotiator() session.Negotiator

	// Decoder returns the controller input decoder.
	Decoder() input.Decoder

	// TextureViews returns the registry the compositor framebuffer is registered in.
	TextureViews() renderer.TextureViews

	// Settings returns the settings the plugin was built with.
	Settings() xr.Settings
}

var _ Plugin = &plugin{}

// NewPlugin creates a plugin for the host platform p.
//
// Parameters:
//   - p: the host platform
//   - options: functional options for the plugin
//
// Returns:
//   - Plugin: the plugin
func NewPlugin(p platform.Platform, options ...PluginBuilderOption) Plugin {
	pl := &plugin{
		mu:       &sync.Mutex{},
		platform: p,
		settings: xr.DefaultSettings(),
		logger:   logrus.StandardLogger(),
		ctx:      context.Background(),
	}
	for _, opt := range options {
		opt(pl)
	}
	if pl.views == nil {
		if pl.renderer != nil {
			pl.views = pl.renderer.TextureViews()
		} else {
			pl.views = renderer.NewTextureViews()
		}
	}
	if pl.factory == nil {
		pl.factory = descriptorViewFactory{}
	}
	if pl.decoder == nil {
		pl.decoder = input.NewDecoder(input.WithLogger(pl.logger))
	}
	if pl.onResult == nil {
		pl.onResult = pl.logResult
	}
	return pl
}

func (p *plugin) Build(eng engine.Engine) error {
	p.mu.Lock()
	if p.built {
		p.mu.Unlock()
		return fmt.Errorf("xr plugin already built")
	}
	p.built = true

	cameras := tracked.NewCameraSync(p.factory, p.views, tracked.WithCameraLogger(p.logger))
	controllers := tracked.NewControllerSync(p.decoder,
		tracked.WithControllerLogger(p.logger),
		tracked.WithEvictAfter(p.settings.EvictAfter),
	)
	hands := tracked.NewHandSync(tracked.WithHandLogger(p.logger))

	binder := session.NewBinder(p.platform.Document(),
		session.WithCreateCanvas(p.createCanvas),
		session.WithDepthNear(p.settings.DepthNear),
		session.WithBinderLogger(p.logger),
	)
	p.negotiator = session.NewNegotiator(p.platform, eng,
		session.WithSettings(p.settings),
		session.WithBinder(binder),
		session.WithContext(p.ctx),
		session.WithNegotiatorLogger(p.logger),
	)
	negotiator := p.negotiator
	p.mu.Unlock()

	xr.SessionInitializedEvent.Subscribe(eng.World(), p.onSessionInitialized(eng.Store()))
	xr.SessionEndedEvent.Subscribe(eng.World(), p.onSessionEnded)

	eng.AddSystem(engine.StagePreInput, "xr.session", p.pollSession)
	eng.AddSystem(engine.StagePreInput, "xr.controllers", controllers.Run)
	eng.AddSystem(engine.StagePreInput, "xr.cameras", cameras.Run)
	eng.AddSystem(engine.StageInput, "xr.hands", hands.Run)
	if p.renderer != nil {
		eng.AddSystem(engine.StagePostUpdate, "xr.render", p.render)
	}

	support, err := negotiator.Start(p.ctx)
	if err != nil {
		return fmt.Errorf("failed to start xr session negotiation: %w", err)
	}
	p.logger.WithFields(logrus.Fields{
		"inline": support.Inline,
		"vr":     support.VR,
		"ar":     support.AR,
	}).Info("xr plugin built")
	return nil
}

// onSessionInitialized activates the XR origin, spawning it on the first session.
func (p *plugin) onSessionInitialized(store ecs.Store) func(donburi.World, xr.SessionInitialized) {
	return func(_ donburi.World, e xr.SessionInitialized) {
		origins := store.Query(xr.OriginRole())
		if len(origins) == 0 {
			origin := store.Spawn(xr.OriginRole())
			store.SetTracked(origin, ecs.Tracked{Role: xr.OriginRole(), SourceIndex: -1, Name: "Xr Origin"})
			origins = append(origins, origin)
		}
		store.SetActive(origins[0], true)
		p.logger.WithFields(logrus.Fields{
			"mode":   e.Mode,
			"origin": e.Origin,
			"entity": origins[0],
		}).Info("xr origin active")
	}
}

func (p *plugin) onSessionEnded(_ donburi.World, e xr.SessionEnded) {
	p.logger.WithField("mode", e.Mode).Info("xr session ended")
}

// pollSession hands finished activation requests to the result handler.
func (p *plugin) pollSession(_ *engine.UpdateContext) {
	if r, ok := p.negotiator.Poll(); ok {
		p.onResult(r)
	}
}

func (p *plugin) logResult(r session.Result) {
	if r.Err != nil {
		p.logger.WithError(r.Err).WithFields(logrus.Fields{
			"mode": r.Mode,
			"kind": xr.KindOf(r.Err),
		}).Error("xr session activation failed")
	}
}

// render draws the XR cameras of this update.
func (p *plugin) render(ctx *engine.UpdateContext) {
	store := ctx.Store
	var cameras []camera.Camera
	for _, kind := range []xr.RoleKind{xr.RoleEye, xr.RoleWindow} {
		for _, e := range store.QueryKind(kind) {
			if c, ok := store.Camera(e); ok {
				cameras = append(cameras, c)
			}
		}
	}
	if _, err := p.renderer.RenderCameras(cameras); err != nil {
		p.logger.WithError(err).Error("failed to render xr cameras")
	}
}

func (p *plugin) Negotiator() session.Negotiator {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.negotiator
}

func (p *plugin) Decoder() input.Decoder {
	return p.decoder
}

func (p *plugin) TextureViews() renderer.TextureViews {
	return p.views
}

func (p *plugin) Settings() xr.Settings {
	return p.settings
}

// descriptorViewFactory registers the compositor framebuffer by size only, for hosts that draw
// into the framebuffer themselves.
type descriptorViewFactory struct{}

func (descriptorViewFactory) CreateFramebufferView(_ platform.Framebuffer, width, height uint32) (renderer.ManualTextureView, error) {
	return renderer.ManualTextureView{Width: width, Height: height}, nil
}
