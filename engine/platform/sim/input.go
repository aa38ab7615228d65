package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func (s *Space) String() string {
	return s.name
}

// InputSource is a simulated controller or tracked hand. Once added to a session it shares the
// session's lock, so it can be scripted while frames are being delivered.
type InputSource struct {
	mu *sync.Mutex

	handedness xr.Handedness
	profiles   []string
	grip       *Space
	gamepad    *Gamepad
	hand       *Hand
}

var _ platform.InputSource = &InputSource{}

// NewController creates a tracked controller with a standard gamepad of 6 buttons and 4 axes.
//
// Parameters:
//   - handedness: the hand the controller is held in
//   - grip: the initial grip pose in the world
//
// Returns:
//   - *InputSource: the controller
func NewController(handedness xr.Handedness, grip xr.Pose) *InputSource {
	src := &InputSource{
		mu:         &sync.Mutex{},
		handedness: handedness,
		profiles:   []string{"generic-trigger-squeeze-thumbstick"},
		grip:       newSpace("grip", grip),
	}
	src.gamepad = &Gamepad{source: src, buttons: make([]platform.GamepadButton, 6), axes: make([]float64, 4)}
	return src
}

// NewTrackedHand creates a hand-tracking input source with a laid out skeleton whose wrist is
// at wrist.
func NewTrackedHand(handedness xr.Handedness, wrist xr.Pose) *InputSource {
	src := &InputSource{
		mu:         &sync.Mutex{},
		handedness: handedness,
		profiles:   []string{"generic-hand"},
	}
	src.hand = newHand(src, wrist)
	return src
}

func (i *InputSource) Handedness() xr.Handedness {
	return i.handedness
}

func (i *InputSource) GripSpace() (platform.Space, bool) {
	if i.grip == nil {
		return nil, false
	}
	return i.grip, true
}

func (i *InputSource) Gamepad() (platform.Gamepad, bool) {
	if i.gamepad == nil {
		return nil, false
	}
	return i.gamepad, true
}

func (i *InputSource) Hand() (platform.Hand, bool) {
	if i.hand == nil {
		return nil, false
	}
	return i.hand, true
}

func (i *InputSource) Profiles() []string {
	return i.profiles
}

// Pad returns the simulated gamepad for scripting, nil for hands.
func (i *InputSource) Pad() *Gamepad {
	return i.gamepad
}

// Skeleton returns the simulated hand for scripting, nil for controllers.
func (i *InputSource) Skeleton() *Hand {
	return i.hand
}

// SetGripPose moves the grip space.
func (i *InputSource) SetGripPose(p xr.Pose) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.grip != nil {
		i.grip.pose = p
	}
}

// SetGripTracked makes the grip pose resolvable or not.
func (i *InputSource) SetGripTracked(tracked bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.grip != nil {
		i.grip.tracked = tracked
	}
}

// Gamepad is a simulated button and axis state.
type Gamepad struct {
	source  *InputSource
	buttons []platform.GamepadButton
	axes    []float64
}

var _ platform.Gamepad = &Gamepad{}

func (g *Gamepad) Buttons() []platform.GamepadButton {
	g.source.mu.Lock()
	defer g.source.mu.Unlock()
	return append([]platform.GamepadButton(nil), g.buttons...)
}

func (g *Gamepad) Axes() []float64 {
	g.source.mu.Lock()
	defer g.source.mu.Unlock()
	return append([]float64(nil), g.axes...)
}

// SetButton sets the analog value of button i, growing the button array if needed.
// The button reads as touched above zero and pressed at full actuation.
func (g *Gamepad) SetButton(i int, value float64) {
	g.source.mu.Lock()
	defer g.source.mu.Unlock()
	for len(g.buttons) <= i {
		g.buttons = append(g.buttons, platform.GamepadButton{})
	}
	g.buttons[i] = platform.GamepadButton{Value: value, Touched: value > 0, Pressed: value >= 1}
}

// SetAxis sets axis i, growing the axis array if needed.
func (g *Gamepad) SetAxis(i int, value float64) {
	g.source.mu.Lock()
	defer g.source.mu.Unlock()
	for len(g.axes) <= i {
		g.axes = append(g.axes, 0)
	}
	g.axes[i] = value
}

// Hand is a simulated hand skeleton with one space per platform joint.
type Hand struct {
	source *InputSource
	joints [xr.HandJointCount]*Space
}

var _ platform.Hand = &Hand{}

// jointSpacing is the distance between consecutive joints of the laid out skeleton.
const jointSpacing = 0.025

func newHand(src *InputSource, wrist xr.Pose) *Hand {
	h := &Hand{source: src}
	h.joints[xr.HandJointWrist] = newSpace(xr.HandJointWrist.String(), wrist)

	for fi, f := range xr.Fingers() {
		// Fingers fan out along X and extend along -Z from the wrist.
		x := float32(fi-2) * 0.02
		for ji, key := range xr.FingerChain(f) {
			pj, _ := xr.PlatformJoint(key)
			local := xr.Pose{
				Position:    mgl32.Vec3{x, 0, -float32(ji+1) * jointSpacing},
				Orientation: mgl32.QuatIdent(),
			}
			h.joints[pj] = newSpace(pj.String(), wrist.Mul(local))
		}
	}
	return h
}

func (h *Hand) Joint(j xr.HandJoint) (platform.Space, bool) {
	if int(j) >= len(h.joints) || h.joints[j] == nil {
		return nil, false
	}
	return h.joints[j], true
}

// SetJointTracked makes one joint resolvable or not.
func (h *Hand) SetJointTracked(j xr.HandJoint, tracked bool) {
	h.source.mu.Lock()
	defer h.source.mu.Unlock()
	h.joints[j].tracked = tracked
}

// SetJointPose moves one joint in the world.
func (h *Hand) SetJointPose(j xr.HandJoint, p xr.Pose) {
	h.source.mu.Lock()
	defer h.source.mu.Unlock()
	h.joints[j].pose = p
}

// JointPose returns the world pose of one joint.
func (h *Hand) JointPose(j xr.HandJoint) xr.Pose {
	h.source.mu.Lock()
	defer h.source.mu.Unlock()
	return h.joints[j].pose
}

// MoveWrist translates the whole skeleton so the wrist lands at p.
func (h *Hand) MoveWrist(p xr.Pose) {
	h.source.mu.Lock()
	defer h.source.mu.Unlock()
	inv := h.joints[xr.HandJointWrist].pose.Inverse()
	for _, s := range h.joints {
		s.pose = p.Mul(inv.Mul(s.pose))
	}
}
