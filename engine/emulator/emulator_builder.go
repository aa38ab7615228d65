package emulator

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

// EmulatorBuilderOption is a functional option for configuring an emulator.
type EmulatorBuilderOption func(*emulator)

// WithMoveSpeed sets how fast held movement keys move the selected target, in meters per second.
//
// Parameters:
//   - speed: the speed, ignored unless positive
//
// Returns:
//   - EmulatorBuilderOption: option function to apply
func WithMoveSpeed(speed float32) EmulatorBuilderOption {
	return func(e *emulator) {
		if speed > 0 {
			e.moveSpeed = speed
		}
	}
}

// WithLookSensitivity sets the radians turned per pixel of middle mouse drag.
//
// Parameters:
//   - radiansPerPixel: the sensitivity, ignored unless positive
//
// Returns:
//   - EmulatorBuilderOption: option function to apply
func WithLookSensitivity(radiansPerPixel float32) EmulatorBuilderOption {
	return func(e *emulator) {
		if radiansPerPixel > 0 {
			e.sensitivity = radiansPerPixel
		}
	}
}

// WithHeadPosition sets where the head starts.
func WithHeadPosition(p mgl32.Vec3) EmulatorBuilderOption {
	return func(e *emulator) {
		e.head.position = p
	}
}

// WithTrackedHands emulates hand-tracking input sources instead of controllers.
func WithTrackedHands() EmulatorBuilderOption {
	return func(e *emulator) {
		e.trackHands = true
	}
}

// WithEnterButton sets the id of the button the V key presses.
func WithEnterButton(id string) EmulatorBuilderOption {
	return func(e *emulator) {
		e.enterButton = common.Coalesce(id, e.enterButton)
	}
}

// WithLogger sets the emulator logger.
func WithLogger(logger *logrus.Logger) EmulatorBuilderOption {
	return func(e *emulator) {
		if logger != nil {
			e.logger = logger
		}
	}
}
