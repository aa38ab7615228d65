package ecs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func newTestStore() Store {
	logger, _ := test.NewNullLogger()
	return NewStore(WithLogger(logger))
}

func assertNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "want %v, got %v", want, got)
	}
}

func TestSpawnDefaults(t *testing.T) {
	s := newTestStore()
	e := s.Spawn(xr.OriginRole())

	assert.True(t, s.Valid(e))
	assert.True(t, s.Active(e))
	tr, ok := s.Transform(e)
	require.True(t, ok)
	assert.Equal(t, IdentityTransform(), tr)

	tag, ok := s.Tracked(e)
	require.True(t, ok)
	assert.Equal(t, xr.OriginRole(), tag.Role)
	assert.Equal(t, -1, tag.SourceIndex)
	assert.Equal(t, 1, s.Len())
}

func TestQueryByRoleAndKind(t *testing.T) {
	s := newTestStore()
	left := s.Spawn(xr.ControllerRole(xr.HandednessLeft))
	eye := s.Spawn(xr.EyeRole(xr.EyeLeft))
	right := s.Spawn(xr.ControllerRole(xr.HandednessRight))

	assert.Equal(t, []Entity{left}, s.Query(xr.ControllerRole(xr.HandednessLeft)))
	assert.Equal(t, []Entity{left, right}, s.QueryKind(xr.RoleController))
	assert.Equal(t, []Entity{eye}, s.QueryKind(xr.RoleEye))
	assert.Empty(t, s.Query(xr.WindowRole()))

	s.Despawn(left)
	assert.False(t, s.Valid(left))
	assert.Empty(t, s.Query(xr.ControllerRole(xr.HandednessLeft)))
	assert.Equal(t, []Entity{right}, s.QueryKind(xr.RoleController))
	assert.Equal(t, 2, s.Len())

	// Despawning twice is harmless.
	s.Despawn(left)
}

func TestHierarchy(t *testing.T) {
	s := newTestStore()
	origin := s.Spawn(xr.OriginRole())
	other := s.Spawn(xr.OriginRole())
	ctrl := s.Spawn(xr.ControllerRole(xr.HandednessRight))

	s.AddChild(origin, ctrl)
	p, ok := s.Parent(ctrl)
	require.True(t, ok)
	assert.Equal(t, origin, p)
	assert.Equal(t, []Entity{ctrl}, s.Children(origin))

	s.AddChild(origin, ctrl)
	assert.Len(t, s.Children(origin), 1, "re-adding keeps one link")

	s.AddChild(other, ctrl)
	assert.Empty(t, s.Children(origin), "reparenting detaches from the old parent")
	assert.Equal(t, []Entity{ctrl}, s.Children(other))

	s.AddChild(ctrl, ctrl)
	p, _ = s.Parent(ctrl)
	assert.Equal(t, other, p)

	s.Despawn(other)
	_, ok = s.Parent(ctrl)
	assert.False(t, ok, "children survive their parent")
	assert.True(t, s.Valid(ctrl))
}

func TestWorldPoseComposesAncestors(t *testing.T) {
	s := newTestStore()
	origin := s.Spawn(xr.OriginRole())
	ctrl := s.Spawn(xr.ControllerRole(xr.HandednessLeft))
	s.AddChild(origin, ctrl)

	s.SetTransform(origin, TransformFromPose(xr.Pose{
		Position:    mgl32.Vec3{10, 0, 0},
		Orientation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
	}))
	s.SetTransform(ctrl, TransformFromPose(xr.Pose{Position: mgl32.Vec3{0, 1, -1}, Orientation: mgl32.QuatIdent()}))

	pose, ok := s.WorldPose(ctrl)
	require.True(t, ok)
	// -1 on Z turned 90 degrees about Y points down -X.
	assertNear(t, mgl32.Vec3{9, 1, 0}, pose.Position)

	_, ok = s.WorldPose(donburi.Null)
	assert.False(t, ok)
}

func TestSetActivePropagatesToCamera(t *testing.T) {
	s := newTestStore()
	e := s.Spawn(xr.EyeRole(xr.EyeRight))
	_, ok := s.Camera(e)
	assert.False(t, ok)

	c := camera.NewCamera(camera.WithEye(xr.EyeRight))
	s.AttachCamera(e, c)
	got, ok := s.Camera(e)
	require.True(t, ok)
	assert.Same(t, c, got)

	s.SetActive(e, false)
	assert.False(t, s.Active(e))
	assert.False(t, c.Active())

	replacement := camera.NewCamera()
	s.AttachCamera(e, replacement)
	got, _ = s.Camera(e)
	assert.Same(t, replacement, got)
}

func TestSetTrackedKeepsRole(t *testing.T) {
	s := newTestStore()
	e := s.Spawn(xr.ControllerRole(xr.HandednessLeft))
	s.SetTracked(e, Tracked{Role: xr.WindowRole(), SourceIndex: 2, Name: "Xr Controller Left"})

	tag, _ := s.Tracked(e)
	assert.Equal(t, xr.ControllerRole(xr.HandednessLeft), tag.Role)
	assert.Equal(t, 2, tag.SourceIndex)
	assert.Equal(t, "Xr Controller Left", tag.Name)
	assert.Equal(t, []Entity{e}, s.Query(xr.ControllerRole(xr.HandednessLeft)))
}

func TestWithWorld(t *testing.T) {
	w := donburi.NewWorld()
	s := NewStore(WithWorld(w))
	assert.Equal(t, w, s.World())
	s.Spawn(xr.OriginRole())
	assert.Equal(t, 1, w.Len())
}
