package input

import (
	"github.com/yohamta/donburi/features/events"
)

// ControllerStateChanged reports a controller starting or stopping tracking.
type ControllerStateChanged struct {
	Controller Controller
	State      ControllerState
	Name       string
}

// TouchChanged reports a new touch value for a button.
type TouchChanged struct {
	Touch Touch
	Value float64
}

// PressChanged reports a new press value for a button.
type PressChanged struct {
	Press Press
	Value float64
}

// AxisChanged reports a new axis value.
type AxisChanged struct {
	Axis  Axis
	Value float64
}

var (
	ControllerStateChangedEvent = events.NewEventType[ControllerStateChanged]()
	TouchChangedEvent           = events.NewEventType[TouchChanged]()
	PressChangedEvent           = events.NewEventType[PressChanged]()
	AxisChangedEvent            = events.NewEventType[AxisChanged]()
)
