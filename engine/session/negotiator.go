// Package session negotiates XR sessions with the platform, binds them to a render context and
// drives the engine from the device frame loop.
//
// The negotiator is the entry point: it probes which session modes the platform supports,
// installs the activation buttons and, when asked to activate a mode, ends any previous session,
// requests the new one, binds it through the Binder and starts a Driver for it. Negotiation runs
// on a worker pool and touches the engine only through messages on its queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi/features/events"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// HandTrackingFeature is the optional session feature requested for hand tracking.
const HandTrackingFeature = "hand-tracking"

// Support records which session modes the platform can create.
type Support struct {
	Inline bool
	VR     bool
	AR     bool
}

// Supported reports whether mode is supported.
func (s Support) Supported(mode xr.Mode) bool {
	switch mode {
	case xr.ModeVR:
		return s.VR
	case xr.ModeAR:
		return s.AR
	default:
		return s.Inline
	}
}

// Result is the outcome of one activation request.
type Result struct {
	Mode    xr.Mode
	Session platform.Session
	Err     error
}

// negotiator implements the Negotiator interface.
type negotiator struct {
	mu *sync.Mutex

	platform platform.Platform
	eng      engine.Engine
	binder   Binder
	settings xr.Settings
	logger   *logrus.Logger

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int

	ctx     context.Context
	pending bool
	result  *Result

	session platform.Session
	driver  Driver
}

// Negotiator owns the session lifecycle of one engine. At most one session is live and at most
// one activation request is in flight at a time.
type Negotiator interface {
	// Probe asks the platform which session modes it supports.
	//
	// Parameters:
	//   - ctx: cancels the wait for the platform's answers
	//
	// Returns:
	//   - Support: the supported modes
	//   - error: xr.ErrNotSupported without an XR runtime, xr.ErrNotABool or a platform rejection
	Probe(ctx context.Context) (Support, error)

	// Activate requests a session of mode in the background. The outcome is collected with Poll.
	//
	// Parameters:
	//   - mode: the session mode
	//
	// Returns:
	//   - error: xr.ErrRequestPending while another request is in flight
	Activate(mode xr.Mode) error

	// Poll returns the outcome of the last finished activation, once.
	//
	// Returns:
	//   - Result: the outcome
	//   - bool: false if no outcome is waiting
	Poll() (Result, bool)

	// InstallButtons wires an activation button for every immersive mode that is both supported
	// and enabled, creating missing buttons in the document body.
	//
	// Parameters:
	//   - ctx: unused by the document calls, kept for hosts whose document is remote
	//   - support: the probed support
	//
	// Returns:
	//   - error: a classified xr error for the first button that could not be installed
	InstallButtons(ctx context.Context, support Support) error

	// Start probes, installs buttons and activates an inline session when one is supported and
	// enabled. ctx bounds every request the negotiator makes afterwards.
	//
	// Returns:
	//   - Support: the probed support
	//   - error: the probe error; button failures are logged
	Start(ctx context.Context) (Support, error)

	// Session returns the live session, nil when none is running.
	Session() platform.Session

	// Driver returns the driver of the live session, nil when none is running.
	Driver() Driver
}

var _ Negotiator = &negotiator{}

// NewNegotiator creates a negotiator for the platform's runtime feeding eng.
//
// Parameters:
//   - p: the host platform
//   - eng: the engine sessions drive
//   - options: functional options for the negotiator
//
// Returns:
//   - Negotiator: the negotiator
func NewNegotiator(p platform.Platform, eng engine.Engine, options ...NegotiatorBuilderOption) Negotiator {
	n := &negotiator{
		mu:       &sync.Mutex{},
		platform: p,
		eng:      eng,
		settings: xr.DefaultSettings(),
		logger:   logrus.StandardLogger(),
		workers:  1,
		ctx:      context.Background(),
	}
	for _, opt := range options {
		opt(n)
	}
	if n.binder == nil {
		n.binder = NewBinder(p.Document(), WithDepthNear(n.settings.DepthNear), WithBinderLogger(n.logger))
	}
	n.pool = worker.NewDynamicWorkerPool(n.workers, 4, 1*time.Second)
	return n
}

func (n *negotiator) Probe(ctx context.Context) (Support, error) {
	rt := n.platform.XR()
	if rt == nil {
		return Support{}, xr.ErrNotSupported
	}

	var s Support
	for _, mode := range xr.Modes {
		ok, err := rt.IsSessionSupported(ctx, mode)
		if err != nil {
			return Support{}, fmt.Errorf("failed to probe %s support: %w", mode, classify("isSessionSupported", err))
		}
		switch mode {
		case xr.ModeInline:
			s.Inline = ok
		case xr.ModeVR:
			s.VR = ok
		case xr.ModeAR:
			s.AR = ok
		}
	}
	n.logger.WithFields(logrus.Fields{
		"inline": s.Inline,
		"vr":     s.VR,
		"ar":     s.AR,
	}).Info("xr session support probed")
	return s, nil
}

func (n *negotiator) Activate(mode xr.Mode) error {
	n.mu.Lock()
	if n.pending {
		n.mu.Unlock()
		return fmt.Errorf("failed to activate %s session: %w", mode, xr.ErrRequestPending)
	}
	n.pending = true
	ctx := n.ctx
	id := n.taskID
	n.taskID++
	n.mu.Unlock()

	n.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			s, err := n.activate(ctx, mode)
			if err != nil {
				n.logger.WithError(err).WithFields(logrus.Fields{
					"mode": mode,
					"kind": xr.KindOf(err),
				}).Error("xr session activation failed")
			}

			n.mu.Lock()
			n.pending = false
			n.result = &Result{Mode: mode, Session: s, Err: err}
			n.mu.Unlock()

			if err == nil {
				n.announce(mode)
			}
			return s, err
		},
	})
	return nil
}

// activate runs one activation request to completion on a pool worker.
func (n *negotiator) activate(ctx context.Context, mode xr.Mode) (platform.Session, error) {
	rt := n.platform.XR()
	if rt == nil {
		return nil, xr.ErrNotSupported
	}

	n.endPrevious(ctx)

	var opts platform.SessionOptions
	if n.settings.HandTracking {
		opts.OptionalFeatures = append(opts.OptionalFeatures, HandTrackingFeature)
	}
	n.logger.WithField("mode", mode).Info("requesting xr session")
	s, err := rt.RequestSession(ctx, mode, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s session: %w", mode, classify("requestSession", err))
	}

	origin := n.settings.Origin
	spaceType := xr.ReferenceSpaceFor(mode, origin)
	ref, err := s.RequestReferenceSpace(ctx, spaceType)
	if err != nil {
		n.abandon(ctx, s)
		return nil, fmt.Errorf("failed to request %s reference space: %w", spaceType, classify("requestReferenceSpace", err))
	}

	if err := n.binder.Bind(ctx, s, n.settings.Canvas); err != nil {
		n.abandon(ctx, s)
		return nil, fmt.Errorf("failed to bind %s session: %w", mode, err)
	}

	d := NewDriver(n.eng, mode, WithDriverLogger(n.logger))
	if err := d.Start(s, ref); err != nil {
		n.abandon(ctx, s)
		return nil, err
	}

	n.mu.Lock()
	n.session = s
	n.driver = d
	n.mu.Unlock()

	n.logger.WithFields(logrus.Fields{
		"mode":            mode,
		"origin":          origin,
		"reference_space": spaceType,
	}).Info("xr session initialized")
	return s, nil
}

// announce publishes SessionInitialized on the engine goroutine. Results are stored first so a
// handler reacting to the event can already poll the outcome.
func (n *negotiator) announce(mode xr.Mode) {
	origin := n.settings.Origin
	n.eng.Post(engine.Call{Fn: func(e engine.Engine) {
		xr.SessionInitializedEvent.Publish(e.World(), xr.SessionInitialized{Mode: mode, Origin: origin})
		events.ProcessAllEvents(e.World())
	}})
}

// endPrevious ends the live session, if any, before a new one is requested.
func (n *negotiator) endPrevious(ctx context.Context) {
	n.mu.Lock()
	s, d := n.session, n.driver
	n.session, n.driver = nil, nil
	n.mu.Unlock()
	if s == nil {
		return
	}

	n.logger.WithField("mode", s.Mode()).Info("ending previous xr session")
	if err := s.End(ctx); err != nil && !errors.Is(err, xr.ErrSessionLost) {
		n.logger.WithError(err).Warn("failed to end previous xr session")
		return
	}
	if d != nil {
		select {
		case <-d.Ended():
		case <-ctx.Done():
		}
	}
}

// abandon ends a session whose setup failed so it does not hold the device.
func (n *negotiator) abandon(ctx context.Context, s platform.Session) {
	if err := s.End(ctx); err != nil && !errors.Is(err, xr.ErrSessionLost) {
		n.logger.WithError(err).Debug("failed to end abandoned xr session")
	}
}

func (n *negotiator) Poll() (Result, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.result == nil {
		return Result{}, false
	}
	r := *n.result
	n.result = nil
	return r, true
}

func (n *negotiator) InstallButtons(ctx context.Context, support Support) error {
	doc := n.platform.Document()
	if doc == nil {
		return xr.ErrNoDocument
	}

	for _, mode := range []xr.Mode{xr.ModeVR, xr.ModeAR} {
		if !support.Supported(mode) || !n.settings.Enabled(mode) {
			continue
		}
		id, _ := n.settings.Button(mode)
		b, err := n.button(doc, mode, id)
		if err != nil {
			return fmt.Errorf("failed to install %s button %q: %w", mode, id, err)
		}

		m := mode
		b.OnClick(func() {
			if err := n.Activate(m); err != nil {
				n.logger.WithError(err).WithField("mode", m).Warn("ignored xr activation click")
			}
		})
		n.logger.WithFields(logrus.Fields{
			"mode":   mode,
			"button": id,
		}).Info("xr activation button installed")
	}
	return nil
}

// button returns the button with the given id, creating and appending it when missing.
func (n *negotiator) button(doc platform.Document, mode xr.Mode, id string) (platform.Button, error) {
	if el := doc.ElementByID(id); el != nil {
		b, ok := el.(platform.Button)
		if !ok {
			return nil, fmt.Errorf("element is a %s: %w", el.TagName(), xr.ErrElementWrongType)
		}
		return b, nil
	}

	body := doc.Body()
	if body == nil {
		return nil, xr.ErrNoBody
	}
	el, err := doc.CreateElement("button")
	if err != nil {
		return nil, xr.Reject("createElement", err)
	}
	b, ok := el.(platform.Button)
	if !ok {
		return nil, xr.ErrElementWrongType
	}
	if err := b.SetAttribute("id", id); err != nil {
		return nil, xr.Reject("setAttribute", err)
	}
	b.SetText(buttonLabel(mode))
	if err := body.AppendChild(b); err != nil {
		return nil, xr.Reject("appendChild", err)
	}
	return b, nil
}

func buttonLabel(mode xr.Mode) string {
	if mode == xr.ModeAR {
		return "Enter AR"
	}
	return "Enter VR"
}

func (n *negotiator) Start(ctx context.Context) (Support, error) {
	n.mu.Lock()
	n.ctx = ctx
	n.mu.Unlock()

	support, err := n.Probe(ctx)
	if err != nil {
		return Support{}, err
	}
	if err := n.InstallButtons(ctx, support); err != nil {
		n.logger.WithError(err).WithField("kind", xr.KindOf(err)).Error("failed to install xr buttons")
	}
	if support.Inline && n.settings.InlineSupported {
		if err := n.Activate(xr.ModeInline); err != nil {
			return support, err
		}
	}
	return support, nil
}

func (n *negotiator) Session() platform.Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session
}

func (n *negotiator) Driver() Driver {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.driver
}

// classify leaves taxonomy errors and context errors alone and wraps anything else the platform
// returned as a rejection of op.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if xr.KindOf(err) != xr.KindUnknown {
		return err
	}
	return xr.Reject(op, err)
}
