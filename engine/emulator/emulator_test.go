package emulator

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform/sim"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func newTestEmulator(t *testing.T, rt *sim.Runtime, options ...EmulatorBuilderOption) Emulator {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewEmulator(rt, append([]EmulatorBuilderOption{WithLogger(logger)}, options...)...)
}

func startSession(t *testing.T, rt *sim.Runtime) *sim.Session {
	t.Helper()
	_, err := rt.RequestSession(context.Background(), xr.ModeVR, platform.SessionOptions{})
	require.NoError(t, err)
	return rt.Session()
}

func source(t *testing.T, s *sim.Session, h xr.Handedness) *sim.InputSource {
	t.Helper()
	for _, src := range s.InputSources() {
		if src.Handedness() == h {
			return src.(*sim.InputSource)
		}
	}
	t.Fatalf("no %s input source", h)
	return nil
}

// resolveGrip reads a grip pose through a device frame, the way the engine sees it.
func resolveGrip(t *testing.T, e Emulator, s *sim.Session, src *sim.InputSource) (xr.Pose, bool) {
	t.Helper()
	ref, err := s.RequestReferenceSpace(context.Background(), xr.ReferenceSpaceLocal)
	require.NoError(t, err)

	var (
		pose xr.Pose
		ok   bool
	)
	s.RequestAnimationFrame(func(_ float64, f platform.Frame) {
		grip, _ := src.GripSpace()
		pose, ok = f.Pose(grip, ref)
	})
	require.Equal(t, 1, e.Step(time.Millisecond))
	return pose, ok
}

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "want %v, got %v", want, got)
	}
}

func TestStepWithoutSession(t *testing.T) {
	e := newTestEmulator(t, sim.NewRuntime())
	assert.Equal(t, 0, e.Step(16*time.Millisecond))
	assert.Equal(t, 0, e.Step(16*time.Millisecond))
	assert.InDelta(t, 32.0, e.Clock(), 1e-9)
}

func TestStepDeliversFrames(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt)
	s := startSession(t, rt)

	require.Equal(t, 0, e.Step(10*time.Millisecond))
	require.Len(t, s.InputSources(), 2, "controllers connect to a new session")
	left := source(t, s, xr.HandednessLeft)
	_, ok := left.Gamepad()
	assert.True(t, ok)

	var times []float64
	s.RequestAnimationFrame(func(t float64, _ platform.Frame) {
		times = append(times, t)
	})
	assert.Equal(t, 1, e.Step(10*time.Millisecond))
	assert.Equal(t, []float64{20}, times)
}

func TestHeadMovement(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt, WithMoveSpeed(1))
	s := startSession(t, rt)

	e.KeyDown(common.KeyW)
	e.Step(time.Second)
	e.KeyUp(common.KeyW)
	e.Step(time.Second)

	assertVec(t, mgl32.Vec3{0, 1.6, -1}, e.Head().Position)
	assertVec(t, e.Head().Position, s.HeadPose().Position)

	e.KeyDown(common.KeyE)
	e.KeyDown(common.KeyD)
	e.Step(time.Second)
	// Diagonal movement is normalized.
	d := float32(1 / 1.4142135)
	assertVec(t, mgl32.Vec3{d, 1.6 + d, -1}, e.Head().Position)
}

func TestMouseLook(t *testing.T) {
	e := newTestEmulator(t, sim.NewRuntime(), WithMoveSpeed(1), WithLookSensitivity(mgl32.DegToRad(1)))

	// Moving without the middle button does nothing.
	e.MouseMove(500, 500)
	assert.True(t, e.Head().Orientation.OrientationEqualThreshold(mgl32.QuatIdent(), 1e-6))

	e.MouseButton(common.MouseButtonMiddle, true, 0, 0)
	e.MouseMove(-90, 0)
	e.MouseButton(common.MouseButtonMiddle, false, -90, 0)

	forward := e.Head().Orientation.Rotate(mgl32.Vec3{0, 0, -1})
	assertVec(t, mgl32.Vec3{-1, 0, 0}, forward)

	e.KeyDown(common.KeyW)
	e.Step(time.Second)
	assertVec(t, mgl32.Vec3{-1, 1.6, 0}, e.Head().Position)
}

func TestMouseLookClampsPitch(t *testing.T) {
	e := newTestEmulator(t, sim.NewRuntime(), WithLookSensitivity(mgl32.DegToRad(1)))
	e.MouseButton(common.MouseButtonMiddle, true, 0, 0)
	e.MouseMove(0, -1000)

	forward := e.Head().Orientation.Rotate(mgl32.Vec3{0, 0, -1})
	assert.InDelta(t, math.Sin(85*math.Pi/180), float64(forward.Y()), 1e-4)

	// Looking down moves on the floor plane.
	e.MouseMove(0, 2000)
	e.MouseButton(common.MouseButtonMiddle, false, 0, 0)
	before := e.Head().Position
	e.KeyDown(common.KeyW)
	e.Step(time.Second)
	assert.InDelta(t, float64(before.Y()), float64(e.Head().Position.Y()), 1e-5)
}

func TestControllerSelectionAndMovement(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt, WithMoveSpeed(1))
	s := startSession(t, rt)
	e.Step(time.Millisecond)

	e.KeyDown(common.Key1)
	assert.Equal(t, TargetLeft, e.Selected())
	e.KeyDown(common.KeyD)
	e.Step(time.Second)
	e.KeyUp(common.KeyD)

	assertVec(t, mgl32.Vec3{0, 1.6, 0}, e.Head().Position)
	grip, ok := e.GripPose(xr.HandednessLeft)
	require.True(t, ok)
	assertVec(t, mgl32.Vec3{0.8, 1.25, -0.35}, grip.Position)

	got, ok := resolveGrip(t, e, s, source(t, s, xr.HandednessLeft))
	require.True(t, ok)
	assertVec(t, grip.Position, got.Position)

	e.KeyDown(common.Key0)
	assert.Equal(t, TargetHead, e.Selected())
	_, ok = e.GripPose(xr.HandednessNone)
	assert.False(t, ok)
}

func TestButtons(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt)
	s := startSession(t, rt)
	e.Step(time.Millisecond)

	right := source(t, s, xr.HandednessRight)
	left := source(t, s, xr.HandednessLeft)

	// With the head selected the right hand is active.
	e.KeyDown(common.KeySpace)
	assert.True(t, right.Pad().Buttons()[buttonTrigger].Pressed)
	e.KeyUp(common.KeySpace)
	assert.False(t, right.Pad().Buttons()[buttonTrigger].Pressed)

	e.KeyDown(common.Key1)
	e.KeyDown(common.KeyG)
	assert.True(t, left.Pad().Buttons()[buttonGrip].Pressed)
	assert.False(t, right.Pad().Buttons()[buttonGrip].Pressed)
}

func TestToggleTracking(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt)
	s := startSession(t, rt)
	e.Step(time.Millisecond)
	right := source(t, s, xr.HandednessRight)

	e.KeyDown(common.Key2)
	e.KeyDown(common.KeyT)
	_, ok := resolveGrip(t, e, s, right)
	assert.False(t, ok)

	e.KeyDown(common.KeyT)
	_, ok = resolveGrip(t, e, s, right)
	assert.True(t, ok)
}

func TestScrollHoldsStickForOneStep(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt)
	s := startSession(t, rt)
	e.Step(time.Millisecond)
	right := source(t, s, xr.HandednessRight)

	e.Scroll(3)
	e.Step(time.Millisecond)
	assert.Equal(t, -1.0, right.Pad().Axes()[axisStickY])

	e.Step(time.Millisecond)
	assert.Equal(t, 0.0, right.Pad().Axes()[axisStickY])
}

func TestEnterButton(t *testing.T) {
	rt := sim.NewRuntime()
	clicks := 0
	rt.Doc().AddButton("enter").OnClick(func() { clicks++ })

	e := newTestEmulator(t, rt, WithEnterButton("enter"))
	e.KeyDown(common.KeyV)
	assert.Equal(t, 1, clicks)

	other := newTestEmulator(t, rt)
	other.KeyDown(common.KeyV)
	assert.Equal(t, 1, clicks, "the default button id is not present")
}

func TestEndSessionAndReconnect(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt)
	first := startSession(t, rt)
	e.Step(time.Millisecond)

	e.KeyDown(common.KeyX)
	assert.True(t, first.Ended())
	e.KeyDown(common.KeyX) // already ended, only logged

	second := startSession(t, rt)
	e.Step(time.Millisecond)
	assert.Len(t, second.InputSources(), 2)
	assert.NotSame(t, source(t, first, xr.HandednessLeft), source(t, second, xr.HandednessLeft))
}

func TestTrackedHands(t *testing.T) {
	rt := sim.NewRuntime()
	e := newTestEmulator(t, rt, WithTrackedHands(), WithHeadPosition(mgl32.Vec3{1, 1.5, 2}))
	s := startSession(t, rt)
	e.Step(time.Millisecond)

	left := source(t, s, xr.HandednessLeft)
	_, ok := left.Hand()
	require.True(t, ok)
	_, ok = left.Gamepad()
	assert.False(t, ok)

	e.KeyDown(common.Key1)
	e.KeyDown(common.KeyS)
	e.Step(time.Second)

	want, _ := e.GripPose(xr.HandednessLeft)
	assertVec(t, want.Position, left.Skeleton().JointPose(xr.HandJointWrist).Position)

	// Buttons are ignored without a gamepad.
	e.KeyDown(common.KeySpace)
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "head", TargetHead.String())
	assert.Equal(t, "left", TargetLeft.String())
	assert.Equal(t, "right", TargetRight.String())
}
