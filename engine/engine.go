package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
	"github.com/Carmen-Shannon/oxy-xr/engine/profiler"
)

// ErrUpdatePanicked is returned by Update when a system panicked. The engine has quit.
var ErrUpdatePanicked = errors.New("update panicked")

// ErrStopped is returned by Run when the engine was already quit.
var ErrStopped = errors.New("engine stopped")

// UpdateContext is what systems see during one update.
type UpdateContext struct {
	Engine Engine
	Store  ecs.Store
	World  donburi.World
	// Frame is the published platform frame, nil for self-paced updates.
	Frame *XRFrame
	// Delta is the time since the previous update in seconds.
	Delta float32
	// Update is the number of this update, starting at 1.
	Update uint64
}

// engine implements the Engine interface.
// A single consumer goroutine drains the queue and runs every update.
type engine struct {
	mu *sync.Mutex

	store  ecs.Store
	logger *logrus.Logger

	queue           chan Message
	tickRateChannel chan time.Duration

	running atomic.Bool
	paced   atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	systems [stageCount][]namedSystem

	frame      *XRFrame
	lastUpdate time.Time
	updates    uint64

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	queueSize      int
}

// Engine hosts the entity store and runs updates. Updates are driven either by the self-paced
// ticker runner or, while an XR session is running, by DriveFrame messages from the XR frame loop.
type Engine interface {
	// Store returns the entity store.
	//
	// Returns:
	//   - ecs.Store: the store
	Store() ecs.Store

	// World returns the donburi world of the store.
	//
	// Returns:
	//   - donburi.World: the world
	World() donburi.World

	// Logger returns the engine logger.
	Logger() *logrus.Logger

	// AddSystem appends a system to a stage. Systems of a stage run in the order they were added.
	// Must not be called from inside an update.
	//
	// Parameters:
	//   - stage: the stage to run in
	//   - name: name used in logs
	//   - system: the system
	AddSystem(stage Stage, name string, system System)

	// Post enqueues a message for the consumer loop. It blocks while the queue is full.
	//
	// Parameters:
	//   - msg: the message
	//
	// Returns:
	//   - bool: false if the engine has quit and the message was dropped
	Post(msg Message) bool

	// Run runs the consumer loop and the self-paced runner until ctx is done or the engine quits.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ctx.Err() on cancellation, ErrStopped if already quit, nil after Quit
	Run(ctx context.Context) error

	// Update runs one update on the calling goroutine with frame published (nil for none).
	// Only the consumer loop, or a test owning the engine, may call it.
	//
	// Parameters:
	//   - frame: the frame to publish for this update
	//
	// Returns:
	//   - error: ErrUpdatePanicked if a system panicked
	Update(frame *XRFrame) error

	// Frame returns the frame published for the running update, or nil.
	Frame() *XRFrame

	// Updates returns the number of updates run so far.
	Updates() uint64

	// SuspendPacing stops the self-paced runner from posting ticks. The XR frame loop calls it
	// when it takes over driving updates.
	SuspendPacing()

	// ResumePacing hands pacing back to the self-paced runner.
	ResumePacing()

	// Paced reports whether the self-paced runner is driving updates.
	Paced() bool

	// SetTickRate sets the self-paced tick rate in updates per second.
	//
	// Parameters:
	//   - fps: target updates per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Quit signals the engine to stop. Safe to call multiple times.
	Quit()

	// Done is closed once the engine has quit.
	Done() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		logger:          logrus.StandardLogger(),
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		queueSize:       64,
	}
	e.paced.Store(true)

	for _, opt := range options {
		opt(e)
	}

	if e.store == nil {
		e.store = ecs.NewStore(ecs.WithLogger(e.logger))
	}
	e.queue = make(chan Message, e.queueSize)
	e.profiler = profiler.NewProfiler(e.logger, "paced")
	if !e.paced.Load() {
		e.profiler.SetLabel("xr")
	}

	return e
}

func (e *engine) Store() ecs.Store {
	return e.store
}

func (e *engine) World() donburi.World {
	return e.store.World()
}

func (e *engine) Logger() *logrus.Logger {
	return e.logger
}

func (e *engine) AddSystem(stage Stage, name string, system System) {
	if stage < 0 || stage >= stageCount || system == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.systems[stage] = append(e.systems[stage], namedSystem{name: name, run: system})
}

func (e *engine) Post(msg Message) bool {
	select {
	case <-e.quitChannel:
		return false
	default:
	}
	select {
	case e.queue <- msg:
		return true
	case <-e.quitChannel:
		return false
	}
}

func (e *engine) Run(ctx context.Context) error {
	select {
	case <-e.quitChannel:
		return ErrStopped
	default:
	}
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("engine already running")
	}
	defer e.running.Store(false)

	e.wg.Add(1)
	go e.handlePacing()
	defer e.wg.Wait()

	e.logger.Info("engine running")
	for {
		select {
		case <-ctx.Done():
			e.signalQuit()
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case msg := <-e.queue:
			e.handle(msg)
		}
	}
}

// handle dispatches one queued message on the consumer goroutine.
func (e *engine) handle(msg Message) {
	switch m := msg.(type) {
	case DriveFrame:
		frame := m.Frame
		_ = e.Update(&frame)
		if m.Done != nil {
			close(m.Done)
		}
	case Tick:
		if e.paced.Load() {
			_ = e.Update(nil)
		}
	case Call:
		if m.Fn != nil {
			e.call(m.Fn)
		}
	case Shutdown:
		e.signalQuit()
	default:
		e.logger.WithField("message", fmt.Sprintf("%T", msg)).Warn("dropped unknown engine message")
	}
}

func (e *engine) call(fn func(Engine)) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Error("engine call recovered from panic")
			e.signalQuit()
		}
	}()
	fn(e)
}

func (e *engine) Update(frame *XRFrame) (err error) {
	e.mu.Lock()
	systems := e.systems
	e.frame = frame
	e.updates++
	update := e.updates
	now := time.Now()
	var dt float32
	if !e.lastUpdate.IsZero() {
		dt = float32(now.Sub(e.lastUpdate).Seconds())
	}
	e.lastUpdate = now
	e.mu.Unlock()

	ctx := &UpdateContext{
		Engine: e,
		Store:  e.store,
		World:  e.store.World(),
		Frame:  frame,
		Delta:  dt,
		Update: update,
	}

	current := ""
	defer func() {
		// The frame is only valid for this update.
		e.mu.Lock()
		e.frame = nil
		e.mu.Unlock()

		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"system": current,
				"update": update,
				"panic":  r,
			}).Error("update recovered from panic")
			e.signalQuit()
			err = ErrUpdatePanicked
		}
	}()

	for stage := range systems {
		for _, s := range systems[stage] {
			current = s.name
			s.run(ctx)
		}
	}
	current = "events"
	events.ProcessAllEvents(ctx.World)

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Frame() *XRFrame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

func (e *engine) Updates() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updates
}

// handlePacing runs the fixed-rate ticker in its own goroutine, posting a Tick per period while
// pacing is not suspended. Ticks are dropped when the queue is full rather than piling up.
func (e *engine) handlePacing() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			if !e.paced.Load() {
				continue
			}
			select {
			case e.queue <- Tick{}:
			default:
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) SuspendPacing() {
	if e.paced.CompareAndSwap(true, false) {
		e.profiler.SetLabel("xr")
		e.logger.Debug("engine pacing suspended")
	}
}

func (e *engine) ResumePacing() {
	if e.paced.CompareAndSwap(false, true) {
		e.profiler.SetLabel("paced")
		e.logger.Debug("engine pacing resumed")
	}
}

func (e *engine) Paced() bool {
	return e.paced.Load()
}

// SetTickRate sets the self-paced tick rate.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// Quit signals the consumer loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.logger.Info("engine quitting")
		close(e.quitChannel)
	})
}
