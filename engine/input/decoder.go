package input

import (
	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
)

type decoder struct {
	settings *Settings
	logger   *logrus.Logger

	touch *Analog[Touch]
	press *Analog[Press]
	axes  *Analog[Axis]
}

// Decoder turns gamepad readings into change events. Each reading is compared with the last value
// emitted for the same (controller, role) pair, and an event is published only when the change
// passes the pair's threshold.
type Decoder interface {
	// Decode reads one gamepad and publishes the resulting events into world.
	//
	// Parameters:
	//   - world: the world events are published to
	//   - c: the controller the gamepad belongs to
	//   - gamepad: the gamepad state for this frame
	//
	// Returns:
	//   - int: the number of events published
	Decode(world donburi.World, c Controller, gamepad platform.Gamepad) int

	// Forget drops the stored values of a controller so its next reading is compared against 0.
	//
	// Parameters:
	//   - c: the controller
	Forget(c Controller)

	// Settings returns the channel settings, which may be changed at any time.
	Settings() *Settings

	// TouchValue returns the last emitted touch value.
	TouchValue(key Touch) float64

	// PressValue returns the last emitted press value.
	PressValue(key Press) float64

	// AxisValue returns the last emitted axis value.
	AxisValue(key Axis) float64
}

var _ Decoder = &decoder{}

// NewDecoder creates a Decoder with empty analog stores.
//
// Parameters:
//   - options: functional options for the decoder
//
// Returns:
//   - Decoder: the decoder
func NewDecoder(options ...DecoderBuilderOption) Decoder {
	d := &decoder{
		logger: logrus.StandardLogger(),
		touch:  NewAnalog[Touch](),
		press:  NewAnalog[Press](),
		axes:   NewAnalog[Axis](),
	}
	for _, opt := range options {
		opt(d)
	}
	if d.settings == nil {
		d.settings = NewSettings()
	}
	return d
}

func (d *decoder) Decode(world donburi.World, c Controller, gamepad platform.Gamepad) int {
	if gamepad == nil {
		return 0
	}
	sent := 0

	for i, button := range gamepad.Buttons() {
		input := InputTypeForIndex(i)

		touch := Touch{Controller: c, Input: input}
		if v, ok := d.settings.Touch(touch).Filter(button.Value, d.touch.Get(touch)); ok {
			TouchChangedEvent.Publish(world, TouchChanged{Touch: touch, Value: v})
			d.touch.Set(touch, v)
			sent++
		}

		press := Press{Controller: c, Input: input}
		if v, ok := d.settings.Press(press).Filter(button.Value, d.press.Get(press)); ok {
			PressChangedEvent.Publish(world, PressChanged{Press: press, Value: v})
			d.press.Set(press, v)
			sent++
		}
	}

	for i, value := range gamepad.Axes() {
		axis := Axis{Controller: c, Axis: AxisTypeForIndex(i)}
		if v, ok := d.settings.Axis(axis).Filter(value, d.axes.Get(axis)); ok {
			AxisChangedEvent.Publish(world, AxisChanged{Axis: axis, Value: v})
			d.axes.Set(axis, v)
			sent++
		}
	}

	if sent > 0 {
		d.logger.WithFields(logrus.Fields{
			"controller": c.Name(),
			"events":     sent,
		}).Trace("decoded controller input")
	}
	return sent
}

func (d *decoder) Forget(c Controller) {
	d.touch.Clear(func(k Touch) bool { return k.Controller == c })
	d.press.Clear(func(k Press) bool { return k.Controller == c })
	d.axes.Clear(func(k Axis) bool { return k.Controller == c })
}

func (d *decoder) Settings() *Settings {
	return d.settings
}

func (d *decoder) TouchValue(key Touch) float64 {
	return d.touch.Get(key)
}

func (d *decoder) PressValue(key Press) float64 {
	return d.press.Get(key)
}

func (d *decoder) AxisValue(key Axis) float64 {
	return d.axes.Get(key)
}
