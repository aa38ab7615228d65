// Package ecs is the entity store tracked XR objects live in. It wraps a donburi world with a
// Role index, so synchronizers look entities up by their tagged role instead of filtering on
// marker components, and a parent/child hierarchy used to hang eyes, controllers and hand
// joints under the XR origin.
package ecs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Entity is a store entity identifier.
type Entity = donburi.Entity

// Transform is an entity's local transform relative to its parent.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform is the transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// TransformFromPose builds a unit-scale transform from a pose.
func TransformFromPose(p xr.Pose) Transform {
	return Transform{Translation: p.Position, Rotation: p.Orientation, Scale: mgl32.Vec3{1, 1, 1}}
}

// Pose returns the translation and rotation of the transform.
func (t Transform) Pose() xr.Pose {
	return xr.Pose{Position: t.Translation, Orientation: t.Rotation}
}

// Activity marks whether a tracked entity resolved this update.
type Activity struct {
	Active bool
}

// Tracked tags an entity with the role it was spawned for.
type Tracked struct {
	Role xr.Role
	// SourceIndex is the index of the input source the entity follows, -1 when not an input.
	SourceIndex int
	// Name is a display name, e.g. "Xr Controller Left".
	Name string
}

// Hierarchy links an entity to its parent and children.
type Hierarchy struct {
	Parent    Entity
	HasParent bool
	Children  []Entity
}

// CameraData holds the camera of an eye or window entity.
type CameraData struct {
	Camera camera.Camera
}

var (
	TransformComponent = donburi.NewComponentType[Transform]()
	ActivityComponent  = donburi.NewComponentType[Activity]()
	TrackedComponent   = donburi.NewComponentType[Tracked]()
	HierarchyComponent = donburi.NewComponentType[Hierarchy]()
	CameraComponent    = donburi.NewComponentType[CameraData]()
)
