package input

import (
	"math"
	"sync"
)

// AxisSettings shapes and debounces one analog channel.
type AxisSettings struct {
	// DeadZone is the magnitude at or below which a reading is reported as 0.
	DeadZone float64
	// LiveZone is the magnitude at or above which a reading is reported as ±1.
	LiveZone float64
	// Threshold is the change a reading must exceed, relative to the stored value, to be reported.
	Threshold float64
}

// DefaultAxisSettings passes readings through unchanged and reports changes above 0.01.
func DefaultAxisSettings() AxisSettings {
	return AxisSettings{
		DeadZone:  0,
		LiveZone:  1,
		Threshold: 0.01,
	}
}

// Filter shapes a raw reading and reports whether it moved far enough from old to be emitted.
//
// Parameters:
//   - value: the raw reading
//   - old: the last emitted value
//
// Returns:
//   - float64: the shaped reading
//   - bool: true if |shaped - old| > Threshold
func (s AxisSettings) Filter(value, old float64) (float64, bool) {
	shaped := s.shape(value)
	if math.Abs(shaped-old) > s.Threshold {
		return shaped, true
	}
	return shaped, false
}

func (s AxisSettings) shape(value float64) float64 {
	abs := math.Abs(value)
	switch {
	case abs <= s.DeadZone && s.DeadZone > 0:
		return 0
	case s.LiveZone > 0 && abs >= s.LiveZone:
		return math.Copysign(1, value)
	default:
		return value
	}
}

// Settings holds the channel settings used by a Decoder, with per-key overrides.
type Settings struct {
	mu *sync.RWMutex

	defaultTouch AxisSettings
	defaultPress AxisSettings
	defaultAxis  AxisSettings

	touch map[Touch]AxisSettings
	press map[Press]AxisSettings
	axis  map[Axis]AxisSettings
}

// NewSettings creates settings where every channel uses DefaultAxisSettings.
func NewSettings() *Settings {
	return &Settings{
		mu:           &sync.RWMutex{},
		defaultTouch: DefaultAxisSettings(),
		defaultPress: DefaultAxisSettings(),
		defaultAxis:  DefaultAxisSettings(),
		touch:        make(map[Touch]AxisSettings),
		press:        make(map[Press]AxisSettings),
		axis:         make(map[Axis]AxisSettings),
	}
}

// SetDefaults replaces the fallback settings of all three channels.
func (s *Settings) SetDefaults(touch, press, axis AxisSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultTouch, s.defaultPress, s.defaultAxis = touch, press, axis
}

// SetTouch overrides the settings of one touch channel.
func (s *Settings) SetTouch(key Touch, a AxisSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch[key] = a
}

// SetPress overrides the settings of one press channel.
func (s *Settings) SetPress(key Press, a AxisSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.press[key] = a
}

// SetAxis overrides the settings of one axis.
func (s *Settings) SetAxis(key Axis, a AxisSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.axis[key] = a
}

// Touch returns the settings for a touch channel.
func (s *Settings) Touch(key Touch) AxisSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.touch[key]; ok {
		return a
	}
	return s.defaultTouch
}

// Press returns the settings for a press channel.
func (s *Settings) Press(key Press) AxisSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.press[key]; ok {
		return a
	}
	return s.defaultPress
}

// Axis returns the settings for an axis.
func (s *Settings) Axis(key Axis) AxisSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.axis[key]; ok {
		return a
	}
	return s.defaultAxis
}
