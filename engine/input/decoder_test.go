package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

type gamepad struct {
	buttons []platform.GamepadButton
	axes    []float64
}

func (g *gamepad) Buttons() []platform.GamepadButton { return g.buttons }
func (g *gamepad) Axes() []float64                   { return g.axes }

func (g *gamepad) press(i int, v float64) {
	g.buttons[i] = platform.GamepadButton{Value: v, Touched: v > 0, Pressed: v >= 1}
}

type recorder struct {
	touch []TouchChanged
	press []PressChanged
	axis  []AxisChanged
}

func record(w donburi.World) *recorder {
	r := &recorder{}
	TouchChangedEvent.Subscribe(w, func(_ donburi.World, e TouchChanged) { r.touch = append(r.touch, e) })
	PressChangedEvent.Subscribe(w, func(_ donburi.World, e PressChanged) { r.press = append(r.press, e) })
	AxisChangedEvent.Subscribe(w, func(_ donburi.World, e AxisChanged) { r.axis = append(r.axis, e) })
	return r
}

func (r *recorder) reset() {
	r.touch, r.press, r.axis = nil, nil, nil
}

func TestInputTypeForIndex(t *testing.T) {
	assert.Equal(t, InputType{Kind: InputTrigger}, InputTypeForIndex(0))
	assert.Equal(t, InputType{Kind: InputGrip}, InputTypeForIndex(1))
	assert.Equal(t, InputType{Kind: InputPad}, InputTypeForIndex(2))
	assert.Equal(t, InputType{Kind: InputStick}, InputTypeForIndex(3))
	assert.Equal(t, InputType{Kind: InputAorX}, InputTypeForIndex(4))
	assert.Equal(t, InputType{Kind: InputBorY}, InputTypeForIndex(5))
	assert.Equal(t, InputType{Kind: InputOther, Index: 9}, InputTypeForIndex(9))

	assert.Equal(t, AxisType{Kind: AxisPadX}, AxisTypeForIndex(0))
	assert.Equal(t, AxisType{Kind: AxisPadY}, AxisTypeForIndex(1))
	assert.Equal(t, AxisType{Kind: AxisStickX}, AxisTypeForIndex(2))
	assert.Equal(t, AxisType{Kind: AxisStickY}, AxisTypeForIndex(3))
	assert.Equal(t, AxisType{Kind: AxisOther, Index: 4}, AxisTypeForIndex(4))
	assert.Equal(t, "other(4)", AxisTypeForIndex(4).String())
}

func TestControllerNames(t *testing.T) {
	assert.Equal(t, "Xr Controller Left", LeftController().Name())
	assert.Equal(t, "Xr Controller Right", RightController().Name())
	assert.Equal(t, "Xr Controller 3", OtherController(3).Name())
}

func TestAxisSettingsFilter(t *testing.T) {
	s := AxisSettings{DeadZone: 0.1, LiveZone: 0.9, Threshold: 0.05}

	v, ok := s.Filter(0.08, 0)
	assert.False(t, ok)
	assert.Zero(t, v)

	v, ok = s.Filter(0.95, 0.5)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = s.Filter(-0.95, 0)
	assert.True(t, ok)
	assert.Equal(t, -1.0, v)

	_, ok = s.Filter(0.5, 0.46)
	assert.False(t, ok, "change equal to threshold is not reported")
}

func TestDecodeTriggerThreshold(t *testing.T) {
	w := donburi.NewWorld()
	rec := record(w)

	settings := NewSettings()
	threshold := AxisSettings{LiveZone: 1, Threshold: 0.1}
	settings.SetDefaults(threshold, threshold, threshold)
	d := NewDecoder(WithSettings(settings))

	pad := &gamepad{buttons: make([]platform.GamepadButton, 1)}
	c := RightController()

	pad.press(0, 0.05)
	assert.Zero(t, d.Decode(w, c, pad))
	pad.press(0, 0.06)
	assert.Zero(t, d.Decode(w, c, pad))
	events.ProcessAllEvents(w)
	assert.Empty(t, rec.touch)
	assert.Empty(t, rec.press)

	pad.press(0, 0.30)
	assert.Equal(t, 2, d.Decode(w, c, pad))
	events.ProcessAllEvents(w)

	require.Len(t, rec.touch, 1)
	require.Len(t, rec.press, 1)
	trigger := InputType{Kind: InputTrigger}
	assert.Equal(t, TouchChanged{Touch: Touch{Controller: c, Input: trigger}, Value: 0.30}, rec.touch[0])
	assert.Equal(t, PressChanged{Press: Press{Controller: c, Input: trigger}, Value: 0.30}, rec.press[0])
	assert.Equal(t, 0.30, d.PressValue(Press{Controller: c, Input: trigger}))
}

func TestDecodeIdenticalReadingsEmitNothing(t *testing.T) {
	w := donburi.NewWorld()
	rec := record(w)
	d := NewDecoder()

	pad := &gamepad{buttons: make([]platform.GamepadButton, 6), axes: []float64{0.5, -0.5, 0, 0}}
	pad.press(1, 1)
	c := LeftController()

	first := d.Decode(w, c, pad)
	assert.Equal(t, 4, first, "grip touch and press, pad x and y")
	events.ProcessAllEvents(w)
	rec.reset()

	assert.Zero(t, d.Decode(w, c, pad))
	events.ProcessAllEvents(w)
	assert.Empty(t, rec.touch)
	assert.Empty(t, rec.press)
	assert.Empty(t, rec.axis)
}

func TestDecodeAxesAndOverrides(t *testing.T) {
	w := donburi.NewWorld()
	rec := record(w)
	d := NewDecoder()

	c := OtherController(2)
	stickX := Axis{Controller: c, Axis: AxisType{Kind: AxisStickX}}
	d.Settings().SetAxis(stickX, AxisSettings{DeadZone: 0.2, LiveZone: 1, Threshold: 0.01})

	pad := &gamepad{axes: []float64{0, 0, 0.15, 0, 0.4}}
	assert.Equal(t, 1, d.Decode(w, c, pad), "stick x inside its dead zone")
	events.ProcessAllEvents(w)

	require.Len(t, rec.axis, 1)
	assert.Equal(t, AxisType{Kind: AxisOther, Index: 4}, rec.axis[0].Axis.Axis)
	assert.Equal(t, 0.4, rec.axis[0].Value)
	assert.Zero(t, d.AxisValue(stickX))
}

func TestDecodeKeepsControllersApart(t *testing.T) {
	w := donburi.NewWorld()
	d := NewDecoder()

	pad := &gamepad{buttons: make([]platform.GamepadButton, 1)}
	pad.press(0, 1)

	assert.Equal(t, 2, d.Decode(w, LeftController(), pad))
	assert.Equal(t, 2, d.Decode(w, RightController(), pad))
	assert.Zero(t, d.Decode(w, LeftController(), pad))

	d.Forget(LeftController())
	assert.Equal(t, 2, d.Decode(w, LeftController(), pad), "forgotten controller compares against 0")
	assert.Zero(t, d.Decode(w, Controller{Hand: xr.HandednessRight}, pad))
}

func TestDecodeNilGamepad(t *testing.T) {
	assert.Zero(t, NewDecoder().Decode(donburi.NewWorld(), LeftController(), nil))
}
