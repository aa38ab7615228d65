// Package input decodes XR gamepad state into debounced touch, press and axis change events.
package input

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Controller identifies an XR controller. Index is only meaningful for unclassified controllers,
// where it is the input source index.
type Controller struct {
	Hand  xr.Handedness
	Index int
}

// LeftController is the left-handed controller.
func LeftController() Controller {
	return Controller{Hand: xr.HandednessLeft}
}

// RightController is the right-handed controller.
func RightController() Controller {
	return Controller{Hand: xr.HandednessRight}
}

// OtherController is an unclassified controller at input source index i.
func OtherController(i int) Controller {
	return Controller{Hand: xr.HandednessNone, Index: i}
}

// Name is the display name of the controller.
func (c Controller) Name() string {
	switch c.Hand {
	case xr.HandednessLeft:
		return "Xr Controller Left"
	case xr.HandednessRight:
		return "Xr Controller Right"
	default:
		return fmt.Sprintf("Xr Controller %d", c.Index)
	}
}

func (c Controller) String() string {
	return c.Name()
}

// ControllerState is the tracking state of a controller.
type ControllerState uint8

const (
	NotTracking ControllerState = iota
	Tracking
)

func (s ControllerState) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "not-tracking"
}

// InputKind is the named role of a gamepad button.
type InputKind uint8

const (
	InputTrigger InputKind = iota
	InputGrip
	InputPad
	InputStick
	InputAorX
	InputBorY
	InputOther
)

// InputType is a gamepad button role. Index is the button index for InputOther.
type InputType struct {
	Kind  InputKind
	Index int
}

// InputTypeForIndex maps a standard XR gamepad button index to its role.
//
// Parameters:
//   - i: the button index
//
// Returns:
//   - InputType: the role
func InputTypeForIndex(i int) InputType {
	switch i {
	case 0:
		return InputType{Kind: InputTrigger}
	case 1:
		return InputType{Kind: InputGrip}
	case 2:
		return InputType{Kind: InputPad}
	case 3:
		return InputType{Kind: InputStick}
	case 4:
		return InputType{Kind: InputAorX}
	case 5:
		return InputType{Kind: InputBorY}
	default:
		return InputType{Kind: InputOther, Index: i}
	}
}

func (t InputType) String() string {
	switch t.Kind {
	case InputTrigger:
		return "trigger"
	case InputGrip:
		return "grip"
	case InputPad:
		return "pad"
	case InputStick:
		return "stick"
	case InputAorX:
		return "a-or-x"
	case InputBorY:
		return "b-or-y"
	default:
		return fmt.Sprintf("other(%d)", t.Index)
	}
}

// AxisKind is the named role of a gamepad axis.
type AxisKind uint8

const (
	AxisPadX AxisKind = iota
	AxisPadY
	AxisStickX
	AxisStickY
	AxisOther
)

// AxisType is a gamepad axis role. Index is the axis index for AxisOther.
type AxisType struct {
	Kind  AxisKind
	Index int
}

// AxisTypeForIndex maps a standard XR gamepad axis index to its role.
//
// Parameters:
//   - i: the axis index
//
// Returns:
//   - AxisType: the role
func AxisTypeForIndex(i int) AxisType {
	switch i {
	case 0:
		return AxisType{Kind: AxisPadX}
	case 1:
		return AxisType{Kind: AxisPadY}
	case 2:
		return AxisType{Kind: AxisStickX}
	case 3:
		return AxisType{Kind: AxisStickY}
	default:
		return AxisType{Kind: AxisOther, Index: i}
	}
}

func (t AxisType) String() string {
	switch t.Kind {
	case AxisPadX:
		return "pad-x"
	case AxisPadY:
		return "pad-y"
	case AxisStickX:
		return "stick-x"
	case AxisStickY:
		return "stick-y"
	default:
		return fmt.Sprintf("other(%d)", t.Index)
	}
}

// Touch keys the touch channel of one controller button.
type Touch struct {
	Controller Controller
	Input      InputType
}

// Press keys the press channel of one controller button.
type Press struct {
	Controller Controller
	Input      InputType
}

// Axis keys one controller axis.
type Axis struct {
	Controller Controller
	Axis       AxisType
}
