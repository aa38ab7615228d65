package session

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi/features/events"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// DriverState is the lifecycle state of a frame-loop driver.
type DriverState uint8

const (
	// DriverIdle is a driver that has not started.
	DriverIdle DriverState = iota
	// DriverRunning re-arms a frame callback every device frame.
	DriverRunning
	// DriverEnded no longer re-arms. A driver never leaves this state.
	DriverEnded
)

func (s DriverState) String() string {
	switch s {
	case DriverRunning:
		return "running"
	case DriverEnded:
		return "ended"
	default:
		return "idle"
	}
}

// driver implements the Driver interface.
type driver struct {
	mu *sync.Mutex

	eng    engine.Engine
	mode   xr.Mode
	logger *logrus.Logger

	session platform.Session
	ref     platform.Space
	state   DriverState
	handle  uint32

	frames    atomic.Uint64
	endedChan chan struct{}
}

// Driver owns the device-paced frame loop of one session. Every device frame it re-arms the next
// callback, then hands the frame to the engine and waits until the engine has run exactly one
// update with it. While running, the engine's self-paced runner is suspended.
type Driver interface {
	// Start binds the driver to a session and arms the first frame callback. The session must
	// already be bound to a render context.
	//
	// Parameters:
	//   - s: the session to drive
	//   - ref: the reference space frames are resolved against
	//
	// Returns:
	//   - error: error if the driver was already started
	Start(s platform.Session, ref platform.Space) error

	// State returns the lifecycle state.
	State() DriverState

	// Frames returns the number of frames the engine has run an update for.
	Frames() uint64

	// Ended is closed once the driver reaches DriverEnded.
	Ended() <-chan struct{}
}

var _ Driver = &driver{}

// NewDriver creates an idle driver feeding frames of a mode-mode session to eng.
//
// Parameters:
//   - eng: the engine to drive
//   - mode: the mode of the session the driver will run
//   - options: functional options for the driver
//
// Returns:
//   - Driver: the idle driver
func NewDriver(eng engine.Engine, mode xr.Mode, options ...DriverBuilderOption) Driver {
	d := &driver{
		mu:        &sync.Mutex{},
		eng:       eng,
		mode:      mode,
		logger:    logrus.StandardLogger(),
		endedChan: make(chan struct{}),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *driver) Start(s platform.Session, ref platform.Space) error {
	d.mu.Lock()
	if d.state != DriverIdle {
		state := d.state
		d.mu.Unlock()
		return fmt.Errorf("failed to start frame loop: driver is %s", state)
	}
	d.session = s
	d.ref = ref
	d.state = DriverRunning
	// Queued so it lands after the resume of a previous session's driver.
	if !d.eng.Post(engine.Call{Fn: func(e engine.Engine) { e.SuspendPacing() }}) {
		d.eng.SuspendPacing()
	}
	d.handle = s.RequestAnimationFrame(d.onFrame)
	d.mu.Unlock()

	s.OnEnd(d.onSessionEnd)
	d.logger.WithField("mode", d.mode).Info("xr frame loop started")
	return nil
}

func (d *driver) State() DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *driver) Frames() uint64 {
	return d.frames.Load()
}

func (d *driver) Ended() <-chan struct{} {
	return d.endedChan
}

// onFrame is the recurring device frame callback.
func (d *driver) onFrame(t float64, frame platform.Frame) {
	select {
	case <-d.eng.Done():
		d.stop("engine quit")
		return
	default:
	}

	d.mu.Lock()
	if d.state != DriverRunning {
		d.mu.Unlock()
		return
	}
	d.handle = d.session.RequestAnimationFrame(d.onFrame)
	ref := d.ref
	d.mu.Unlock()

	msg := engine.NewDriveFrame(engine.XRFrame{Time: t, Frame: frame, ReferenceSpace: ref})
	if !d.eng.Post(msg) {
		d.stop("engine quit")
		return
	}
	// The frame is only valid until this callback returns.
	select {
	case <-msg.Done:
		d.frames.Add(1)
	case <-d.eng.Done():
	}
}

// stop moves a running driver to DriverEnded without touching the engine, for when the engine is
// gone. It reports whether this call made the transition.
func (d *driver) stop(reason string) bool {
	d.mu.Lock()
	if d.state == DriverEnded {
		d.mu.Unlock()
		return false
	}
	d.state = DriverEnded
	s, handle := d.session, d.handle
	d.mu.Unlock()

	if s != nil {
		s.CancelAnimationFrame(handle)
	}
	close(d.endedChan)
	d.logger.WithFields(logrus.Fields{
		"mode":   d.mode,
		"reason": reason,
		"frames": d.frames.Load(),
	}).Info("xr frame loop stopped")
	return true
}

// onSessionEnd hands control back to the engine once the platform ends the session.
func (d *driver) onSessionEnd() {
	if !d.stop("session ended") {
		return
	}
	mode := d.mode
	posted := d.eng.Post(engine.Call{Fn: func(e engine.Engine) {
		store := e.Store()
		for _, origin := range store.Query(xr.OriginRole()) {
			store.SetActive(origin, false)
		}
		xr.SessionEndedEvent.Publish(e.World(), xr.SessionEnded{Mode: mode})
		events.ProcessAllEvents(e.World())
		e.ResumePacing()
	}})
	if !posted {
		d.eng.ResumePacing()
	}
}
