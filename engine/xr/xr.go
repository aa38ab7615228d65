// Package xr holds the vocabulary shared by every part of the XR layer: session modes, tracking
// origins, handedness, eyes, the tagged Role key used to address tracked entities, the hand
// skeleton topology, pose conversion, projection handling, the error taxonomy and settings.
package xr

import (
	"fmt"
	"strings"
)

// Mode is the kind of XR session requested from the platform.
type Mode uint8

const (
	// ModeInline renders into the page without taking over the display.
	ModeInline Mode = iota
	// ModeVR is an immersive virtual reality session.
	ModeVR
	// ModeAR is an immersive augmented reality session.
	ModeAR
)

// Modes lists every session mode in probe order.
var Modes = []Mode{ModeInline, ModeVR, ModeAR}

// SessionMode returns the platform string for the mode.
func (m Mode) SessionMode() string {
	switch m {
	case ModeVR:
		return "immersive-vr"
	case ModeAR:
		return "immersive-ar"
	default:
		return "inline"
	}
}

func (m Mode) String() string {
	switch m {
	case ModeVR:
		return "VR"
	case ModeAR:
		return "AR"
	default:
		return "Inline"
	}
}

// Origin is the tracking origin a session reports poses against.
type Origin uint8

const (
	// OriginView is centered on the viewer, as for seated inline content.
	OriginView Origin = iota
	// OriginSeat is a seated experience with a fixed origin.
	OriginSeat
	// OriginRoom is a standing room-scale experience.
	OriginRoom
	// OriginOther is an unbounded space with no fixed origin.
	OriginOther
)

func (o Origin) String() string {
	switch o {
	case OriginView:
		return "view"
	case OriginSeat:
		return "seat"
	case OriginRoom:
		return "room"
	default:
		return "other"
	}
}

// UnmarshalText parses an origin name so Origin can be read from the environment.
func (o *Origin) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "view":
		*o = OriginView
	case "seat":
		*o = OriginSeat
	case "room":
		*o = OriginRoom
	case "other", "unbounded":
		*o = OriginOther
	default:
		return fmt.Errorf("unknown xr origin %q", string(text))
	}
	return nil
}

// ReferenceSpaceType is the platform reference space requested for a session.
type ReferenceSpaceType uint8

const (
	ReferenceSpaceViewer ReferenceSpaceType = iota
	ReferenceSpaceLocal
	ReferenceSpaceLocalFloor
	ReferenceSpaceBoundedFloor
	ReferenceSpaceUnbounded
)

func (t ReferenceSpaceType) String() string {
	switch t {
	case ReferenceSpaceLocal:
		return "local"
	case ReferenceSpaceLocalFloor:
		return "local-floor"
	case ReferenceSpaceBoundedFloor:
		return "bounded-floor"
	case ReferenceSpaceUnbounded:
		return "unbounded"
	default:
		return "viewer"
	}
}

// ReferenceSpaceFor maps a session mode and tracking origin to the reference space requested
// from the platform. Inline sessions always use the viewer space; immersive sessions use the
// local space unless the origin is unbounded.
//
// Parameters:
//   - mode: the session mode
//   - origin: the configured tracking origin
//
// Returns:
//   - ReferenceSpaceType: the reference space to request
func ReferenceSpaceFor(mode Mode, origin Origin) ReferenceSpaceType {
	if mode == ModeInline {
		return ReferenceSpaceViewer
	}
	if origin == OriginOther {
		return ReferenceSpaceUnbounded
	}
	return ReferenceSpaceLocal
}

// Handedness is the hand an input source or hand skeleton belongs to.
type Handedness uint8

const (
	HandednessNone Handedness = iota
	HandednessLeft
	HandednessRight
)

func (h Handedness) String() string {
	switch h {
	case HandednessLeft:
		return "left"
	case HandednessRight:
		return "right"
	default:
		return "none"
	}
}

// Eye is the eye a view renders for. EyeNone marks the single window view of an inline session.
type Eye uint8

const (
	EyeNone Eye = iota
	EyeLeft
	EyeRight
)

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	default:
		return "none"
	}
}

// Viewport is a pixel rectangle inside the compositor framebuffer.
type Viewport struct {
	X, Y          uint32
	Width, Height uint32
}
