// Package emulator turns desktop keyboard and mouse input into a simulated XR device. It drives a
// sim.Runtime: the head and two controllers (or tracked hands) follow the keys, and Step delivers
// device frames at the pace of the host window.
//
// Controls:
//
//	W/S A/D Q/E   move forward/back, left/right, down/up
//	0 1 2         move the head, the left hand or the right hand
//	Space         trigger of the active hand
//	G             grip of the active hand
//	T             toggle tracking of the active hand
//	V             press the enter-VR button
//	X             end the session
//	middle drag   look around
//	scroll        thumbstick Y of the active hand
package emulator

import (
	"context"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform/sim"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Target is what movement keys act on.
type Target uint8

const (
	TargetHead Target = iota
	TargetLeft
	TargetRight
)

func (t Target) String() string {
	switch t {
	case TargetLeft:
		return "left"
	case TargetRight:
		return "right"
	default:
		return "head"
	}
}

// Gamepad indices of the xr-standard mapping.
const (
	buttonTrigger = 0
	buttonGrip    = 1
	axisStickY    = 3
)

// Emulator is a keyboard and mouse driven XR device. Its input methods match the window's input
// handler.
type Emulator interface {
	KeyDown(code uint32)
	KeyUp(code uint32)
	MouseButton(button uint32, pressed bool, x, y int32)
	MouseMove(x, y int32)
	Scroll(delta float32)

	// Step advances the device clock by dt, applies held keys and delivers one frame to the
	// current session.
	//
	// Parameters:
	//   - dt: time since the previous step
	//
	// Returns:
	//   - int: the number of frame callbacks that ran
	Step(dt time.Duration) int

	// Head returns the emulated head pose.
	Head() xr.Pose

	// GripPose returns the emulated pose of a hand.
	//
	// Returns:
	//   - xr.Pose: the grip (or wrist) pose in the world
	//   - bool: false for a handedness other than left or right
	GripPose(h xr.Handedness) (xr.Pose, bool)

	// Selected returns what movement keys act on.
	Selected() Target

	// Clock returns the device time of the last frame in milliseconds.
	Clock() float64

	Runtime() *sim.Runtime
}

type emulatedHand struct {
	handedness xr.Handedness
	offset     mgl32.Vec3
	tracked    bool
	src        *sim.InputSource
}

type emulator struct {
	mu     *sync.Mutex
	rt     *sim.Runtime
	logger *logrus.Logger

	moveSpeed   float32
	sensitivity float32
	trackHands  bool
	enterButton string

	head  *rig
	hands [2]*emulatedHand

	selected Target
	held     map[uint32]bool

	dragging     bool
	lastX, lastY int32

	scroll    float32
	stickHand *emulatedHand

	session *sim.Session
	clock   float64
}

var _ Emulator = &emulator{}

// NewEmulator creates an emulator for rt. The head starts 1.6 m above the origin looking down -Z
// with the hands held in front of it.
//
// Parameters:
//   - rt: the simulated runtime to drive
//   - options: functional options to configure the emulator
//
// Returns:
//   - Emulator: the emulator
func NewEmulator(rt *sim.Runtime, options ...EmulatorBuilderOption) Emulator {
	e := &emulator{
		mu:          &sync.Mutex{},
		rt:          rt,
		logger:      logrus.StandardLogger(),
		moveSpeed:   1.5,
		sensitivity: 0.005,
		enterButton: xr.DefaultSettings().VRButton,
		head:        newRig(mgl32.Vec3{0, 1.6, 0}, mgl32.DegToRad(85)),
		hands: [2]*emulatedHand{
			{handedness: xr.HandednessLeft, offset: mgl32.Vec3{-0.2, -0.35, -0.35}, tracked: true},
			{handedness: xr.HandednessRight, offset: mgl32.Vec3{0.2, -0.35, -0.35}, tracked: true},
		},
		held: make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *emulator) KeyDown(code uint32) {
	switch code {
	case common.KeyV:
		if !e.rt.Doc().Click(e.enterButton) {
			e.logger.WithField("button", e.enterButton).Warn("enter button not found")
		}
		return
	case common.KeyX:
		e.endSession()
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch code {
	case common.Key0:
		e.selected = TargetHead
	case common.Key1:
		e.selected = TargetLeft
	case common.Key2:
		e.selected = TargetRight
	case common.KeySpace:
		e.setButton(e.activeHand(), buttonTrigger, 1)
		return
	case common.KeyG:
		e.setButton(e.activeHand(), buttonGrip, 1)
		return
	case common.KeyT:
		h := e.activeHand()
		h.tracked = !h.tracked
		e.applyTracking(h)
		e.logger.WithFields(logrus.Fields{"hand": h.handedness, "tracked": h.tracked}).Debug("hand tracking toggled")
		return
	default:
		e.held[code] = true
		return
	}
	e.logger.WithField("target", e.selected).Debug("emulator target selected")
}

func (e *emulator) KeyUp(code uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch code {
	case common.KeySpace:
		e.setButton(e.activeHand(), buttonTrigger, 0)
	case common.KeyG:
		e.setButton(e.activeHand(), buttonGrip, 0)
	default:
		delete(e.held, code)
	}
}

func (e *emulator) MouseButton(button uint32, pressed bool, x, y int32) {
	if button != common.MouseButtonMiddle {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragging = pressed
	e.lastX, e.lastY = x, y
}

func (e *emulator) MouseMove(x, y int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dragging {
		return
	}
	dx := float32(x - e.lastX)
	dy := float32(y - e.lastY)
	e.head.look(-dx*e.sensitivity, -dy*e.sensitivity)
	e.lastX, e.lastY = x, y
}

func (e *emulator) Scroll(delta float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll += delta
}

func (e *emulator) Step(dt time.Duration) int {
	e.mu.Lock()
	e.applyHeld(float32(dt.Seconds()))
	e.syncSession()
	e.applyScroll()
	e.pushPoses()
	e.clock += float64(dt) / float64(time.Millisecond)
	t := e.clock
	e.mu.Unlock()

	return e.rt.Tick(t)
}

func (e *emulator) Head() xr.Pose {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.head.pose()
}

func (e *emulator) GripPose(h xr.Handedness) (xr.Pose, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, hand := range e.hands {
		if hand.handedness == h {
			return e.head.attach(hand.offset), true
		}
	}
	return xr.Pose{}, false
}

func (e *emulator) Selected() Target {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

func (e *emulator) Clock() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

func (e *emulator) Runtime() *sim.Runtime {
	return e.rt
}

// activeHand is the selected hand, or the right hand while the head is selected.
// Caller must hold the mutex.
func (e *emulator) activeHand() *emulatedHand {
	if e.selected == TargetLeft {
		return e.hands[0]
	}
	return e.hands[1]
}

// applyHeld moves the selected target by the held movement keys. Caller must hold the mutex.
func (e *emulator) applyHeld(seconds float32) {
	var local mgl32.Vec3
	if e.held[common.KeyD] {
		local[0]++
	}
	if e.held[common.KeyA] {
		local[0]--
	}
	if e.held[common.KeyE] {
		local[1]++
	}
	if e.held[common.KeyQ] {
		local[1]--
	}
	if e.held[common.KeyW] {
		local[2]++
	}
	if e.held[common.KeyS] {
		local[2]--
	}
	if local.Len() == 0 || seconds <= 0 {
		return
	}
	local = local.Normalize().Mul(e.moveSpeed * seconds)

	switch e.selected {
	case TargetHead:
		e.head.move(local)
	case TargetLeft, TargetRight:
		h := e.activeHand()
		h.offset = h.offset.Add(mgl32.Vec3{local[0], local[1], -local[2]})
	}
}

// syncSession follows the runtime's current session, connecting fresh input sources to every new
// one. Caller must hold the mutex.
func (e *emulator) syncSession() {
	s := e.rt.Session()
	if s != nil && s.Ended() {
		s = nil
	}
	if s == e.session {
		return
	}
	e.session = s
	e.stickHand = nil
	if s == nil {
		for _, h := range e.hands {
			h.src = nil
		}
		return
	}

	for _, h := range e.hands {
		pose := e.head.attach(h.offset)
		if e.trackHands {
			h.src = sim.NewTrackedHand(h.handedness, pose)
		} else {
			h.src = sim.NewController(h.handedness, pose)
		}
		s.AddInputSource(h.src)
		e.applyTracking(h)
	}
	e.logger.WithFields(logrus.Fields{
		"mode":  s.Mode(),
		"hands": e.trackHands,
	}).Info("emulated input sources connected")
}

// applyScroll holds the thumbstick for one step per scroll. Caller must hold the mutex.
func (e *emulator) applyScroll() {
	if e.stickHand != nil {
		e.setAxis(e.stickHand, axisStickY, 0)
		e.stickHand = nil
	}
	if e.scroll == 0 {
		return
	}
	h := e.activeHand()
	// Scrolling up pushes the stick forward, which is negative Y.
	e.setAxis(h, axisStickY, float64(mgl32.Clamp(-e.scroll, -1, 1)))
	e.stickHand = h
	e.scroll = 0
}

// pushPoses writes the head and hand poses into the session. Caller must hold the mutex.
func (e *emulator) pushPoses() {
	if e.session == nil {
		return
	}
	e.session.SetHeadPose(e.head.pose())
	for _, h := range e.hands {
		if h.src == nil {
			continue
		}
		pose := e.head.attach(h.offset)
		if skel := h.src.Skeleton(); skel != nil {
			skel.MoveWrist(pose)
		} else {
			h.src.SetGripPose(pose)
		}
	}
}

func (e *emulator) applyTracking(h *emulatedHand) {
	if h.src == nil {
		return
	}
	if skel := h.src.Skeleton(); skel != nil {
		for j := range xr.HandJointCount {
			skel.SetJointTracked(xr.HandJoint(j), h.tracked)
		}
		return
	}
	h.src.SetGripTracked(h.tracked)
}

func (e *emulator) setButton(h *emulatedHand, i int, value float64) {
	if h.src == nil || h.src.Pad() == nil {
		return
	}
	h.src.Pad().SetButton(i, value)
}

func (e *emulator) setAxis(h *emulatedHand, i int, value float64) {
	if h.src == nil || h.src.Pad() == nil {
		return
	}
	h.src.Pad().SetAxis(i, value)
}

func (e *emulator) endSession() {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()

	if s == nil {
		e.logger.Debug("no session to end")
		return
	}
	if err := s.End(context.Background()); err != nil {
		e.logger.WithError(err).Warn("failed to end session")
	}
}
