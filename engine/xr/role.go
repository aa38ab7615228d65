package xr

import "fmt"

// RoleKind is the variant tag of a Role.
type RoleKind uint8

const (
	RoleNone RoleKind = iota
	RoleOrigin
	RoleEye
	RoleWindow
	RoleController
	RoleJoint
)

// Role is the tagged key every tracked entity is filed under. Only the fields meaningful for
// Kind are set, so a Role is comparable and usable as a map key.
type Role struct {
	Kind  RoleKind
	Eye   Eye
	Hand  Handedness
	Joint JointKey
}

// OriginRole is the role of the XR origin entity every tracked entity is parented under.
func OriginRole() Role {
	return Role{Kind: RoleOrigin}
}

// EyeRole returns the camera role for a view. EyeNone maps to the window role.
func EyeRole(e Eye) Role {
	if e == EyeNone {
		return WindowRole()
	}
	return Role{Kind: RoleEye, Eye: e}
}

// WindowRole is the camera role of the single view of an inline session.
func WindowRole() Role {
	return Role{Kind: RoleWindow}
}

// ControllerRole returns the role for a controller of the given handedness.
// HandednessNone addresses the unclassified controllers as a group.
func ControllerRole(h Handedness) Role {
	return Role{Kind: RoleController, Hand: h}
}

// JointRole returns the role of one joint of one hand.
func JointRole(h Handedness, k JointKey) Role {
	return Role{Kind: RoleJoint, Hand: h, Joint: k}
}

// Singleton reports whether at most one entity may carry the role. Window cameras and
// unclassified controllers are matched by discovery order instead.
func (r Role) Singleton() bool {
	switch r.Kind {
	case RoleWindow:
		return false
	case RoleController:
		return r.Hand != HandednessNone
	case RoleNone:
		return false
	default:
		return true
	}
}

// IsCamera reports whether the role belongs to a view camera.
func (r Role) IsCamera() bool {
	return r.Kind == RoleEye || r.Kind == RoleWindow
}

func (r Role) String() string {
	switch r.Kind {
	case RoleOrigin:
		return "origin"
	case RoleEye:
		return fmt.Sprintf("eye(%s)", r.Eye)
	case RoleWindow:
		return "window"
	case RoleController:
		return fmt.Sprintf("controller(%s)", r.Hand)
	case RoleJoint:
		return fmt.Sprintf("joint(%s, %s)", r.Hand, r.Joint)
	default:
		return "none"
	}
}
