package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the self-paced tick rate in updates per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithStore sets the entity store rather than letting the engine create one.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStore(s ecs.Store) EngineBuilderOption {
	return func(e *engine) {
		e.store = s
	}
}

// WithLogger sets the engine logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(l *logrus.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithQueueSize sets the capacity of the message queue.
//
// Parameters:
//   - n: the capacity, ignored if < 1
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithQueueSize(n int) EngineBuilderOption {
	return func(e *engine) {
		if n > 0 {
			e.queueSize = n
		}
	}
}

// WithoutPacing starts the engine with the self-paced runner suspended, so updates only happen
// when driven.
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithoutPacing() EngineBuilderOption {
	return func(e *engine) {
		e.paced.Store(false)
	}
}
