package xr

// Finger identifies one finger chain of a hand skeleton. FingerNone is used by the wrist.
type Finger uint8

const (
	FingerNone Finger = iota
	FingerThumb
	FingerIndex
	FingerMiddle
	FingerRing
	FingerLittle
)

func (f Finger) String() string {
	switch f {
	case FingerThumb:
		return "thumb"
	case FingerIndex:
		return "index"
	case FingerMiddle:
		return "middle"
	case FingerRing:
		return "ring"
	case FingerLittle:
		return "little"
	default:
		return "none"
	}
}

// JointKind is the position of a joint within its finger chain.
type JointKind uint8

const (
	JointWrist JointKind = iota
	JointMetacarpal
	JointProximal
	JointIntermediate
	JointDistal
	JointTip
)

func (k JointKind) String() string {
	switch k {
	case JointMetacarpal:
		return "metacarpal"
	case JointProximal:
		return "proximal"
	case JointIntermediate:
		return "intermediate"
	case JointDistal:
		return "distal"
	case JointTip:
		return "tip"
	default:
		return "wrist"
	}
}

// JointKey addresses one joint of the skeleton independent of handedness.
type JointKey struct {
	Finger Finger
	Kind   JointKind
}

// Wrist is the root joint of every hand skeleton.
var Wrist = JointKey{Finger: FingerNone, Kind: JointWrist}

func (k JointKey) String() string {
	if k == Wrist {
		return "wrist"
	}
	return k.Finger.String() + "-" + k.Kind.String()
}

// HandJoint is the platform's joint enumeration, in the order the platform reports joints.
type HandJoint uint8

const (
	HandJointWrist HandJoint = iota
	HandJointThumbMetacarpal
	HandJointThumbPhalanxProximal
	HandJointThumbPhalanxDistal
	HandJointThumbTip
	HandJointIndexFingerMetacarpal
	HandJointIndexFingerPhalanxProximal
	HandJointIndexFingerPhalanxIntermediate
	HandJointIndexFingerPhalanxDistal
	HandJointIndexFingerTip
	HandJointMiddleFingerMetacarpal
	HandJointMiddleFingerPhalanxProximal
	HandJointMiddleFingerPhalanxIntermediate
	HandJointMiddleFingerPhalanxDistal
	HandJointMiddleFingerTip
	HandJointRingFingerMetacarpal
	HandJointRingFingerPhalanxProximal
	HandJointRingFingerPhalanxIntermediate
	HandJointRingFingerPhalanxDistal
	HandJointRingFingerTip
	HandJointPinkyFingerMetacarpal
	HandJointPinkyFingerPhalanxProximal
	HandJointPinkyFingerPhalanxIntermediate
	HandJointPinkyFingerPhalanxDistal
	HandJointPinkyFingerTip

	// HandJointCount is the number of joints in one hand.
	HandJointCount = 25
)

var handJointNames = [HandJointCount]string{
	"wrist",
	"thumb-metacarpal",
	"thumb-phalanx-proximal",
	"thumb-phalanx-distal",
	"thumb-tip",
	"index-finger-metacarpal",
	"index-finger-phalanx-proximal",
	"index-finger-phalanx-intermediate",
	"index-finger-phalanx-distal",
	"index-finger-tip",
	"middle-finger-metacarpal",
	"middle-finger-phalanx-proximal",
	"middle-finger-phalanx-intermediate",
	"middle-finger-phalanx-distal",
	"middle-finger-tip",
	"ring-finger-metacarpal",
	"ring-finger-phalanx-proximal",
	"ring-finger-phalanx-intermediate",
	"ring-finger-phalanx-distal",
	"ring-finger-tip",
	"pinky-finger-metacarpal",
	"pinky-finger-phalanx-proximal",
	"pinky-finger-phalanx-intermediate",
	"pinky-finger-phalanx-distal",
	"pinky-finger-tip",
}

// String returns the platform's name for the joint, e.g. "index-finger-tip".
func (j HandJoint) String() string {
	if int(j) < len(handJointNames) {
		return handJointNames[j]
	}
	return "unknown"
}

// fingers lists the finger chains in walk order.
var fingers = []Finger{FingerThumb, FingerIndex, FingerMiddle, FingerRing, FingerLittle}

// fingerChains lists each finger's joints from the metacarpal outward.
var fingerChains = map[Finger][]JointKind{
	FingerThumb:  {JointMetacarpal, JointProximal, JointDistal, JointTip},
	FingerIndex:  {JointMetacarpal, JointProximal, JointIntermediate, JointDistal, JointTip},
	FingerMiddle: {JointMetacarpal, JointProximal, JointIntermediate, JointDistal, JointTip},
	FingerRing:   {JointMetacarpal, JointProximal, JointIntermediate, JointDistal, JointTip},
	FingerLittle: {JointMetacarpal, JointProximal, JointIntermediate, JointDistal, JointTip},
}

// platformJoints maps every skeleton joint to the platform joint it is read from.
var platformJoints = map[JointKey]HandJoint{
	Wrist: HandJointWrist,

	{FingerThumb, JointMetacarpal}: HandJointThumbMetacarpal,
	{FingerThumb, JointProximal}:   HandJointThumbPhalanxProximal,
	{FingerThumb, JointDistal}:     HandJointThumbPhalanxDistal,
	{FingerThumb, JointTip}:        HandJointThumbTip,

	{FingerIndex, JointMetacarpal}:   HandJointIndexFingerMetacarpal,
	{FingerIndex, JointProximal}:     HandJointIndexFingerPhalanxProximal,
	{FingerIndex, JointIntermediate}: HandJointIndexFingerPhalanxIntermediate,
	{FingerIndex, JointDistal}:       HandJointIndexFingerPhalanxDistal,
	{FingerIndex, JointTip}:          HandJointIndexFingerTip,

	{FingerMiddle, JointMetacarpal}:   HandJointMiddleFingerMetacarpal,
	{FingerMiddle, JointProximal}:     HandJointMiddleFingerPhalanxProximal,
	{FingerMiddle, JointIntermediate}: HandJointMiddleFingerPhalanxIntermediate,
	{FingerMiddle, JointDistal}:       HandJointMiddleFingerPhalanxDistal,
	{FingerMiddle, JointTip}:          HandJointMiddleFingerTip,

	{FingerRing, JointMetacarpal}:   HandJointRingFingerMetacarpal,
	{FingerRing, JointProximal}:     HandJointRingFingerPhalanxProximal,
	{FingerRing, JointIntermediate}: HandJointRingFingerPhalanxIntermediate,
	{FingerRing, JointDistal}:       HandJointRingFingerPhalanxDistal,
	{FingerRing, JointTip}:          HandJointRingFingerTip,

	{FingerLittle, JointMetacarpal}:   HandJointPinkyFingerMetacarpal,
	{FingerLittle, JointProximal}:     HandJointPinkyFingerPhalanxProximal,
	{FingerLittle, JointIntermediate}: HandJointPinkyFingerPhalanxIntermediate,
	{FingerLittle, JointDistal}:       HandJointPinkyFingerPhalanxDistal,
	{FingerLittle, JointTip}:          HandJointPinkyFingerTip,
}

// jointParents maps every joint except the wrist to the joint its pose is resolved against.
var jointParents = map[JointKey]JointKey{
	{FingerThumb, JointMetacarpal}: Wrist,
	{FingerThumb, JointProximal}:   {FingerThumb, JointMetacarpal},
	{FingerThumb, JointDistal}:     {FingerThumb, JointProximal},
	{FingerThumb, JointTip}:        {FingerThumb, JointDistal},

	{FingerIndex, JointMetacarpal}:   Wrist,
	{FingerIndex, JointProximal}:     {FingerIndex, JointMetacarpal},
	{FingerIndex, JointIntermediate}: {FingerIndex, JointProximal},
	{FingerIndex, JointDistal}:       {FingerIndex, JointIntermediate},
	{FingerIndex, JointTip}:          {FingerIndex, JointDistal},

	{FingerMiddle, JointMetacarpal}:   Wrist,
	{FingerMiddle, JointProximal}:     {FingerMiddle, JointMetacarpal},
	{FingerMiddle, JointIntermediate}: {FingerMiddle, JointProximal},
	{FingerMiddle, JointDistal}:       {FingerMiddle, JointIntermediate},
	{FingerMiddle, JointTip}:          {FingerMiddle, JointDistal},

	{FingerRing, JointMetacarpal}:   Wrist,
	{FingerRing, JointProximal}:     {FingerRing, JointMetacarpal},
	{FingerRing, JointIntermediate}: {FingerRing, JointProximal},
	{FingerRing, JointDistal}:       {FingerRing, JointIntermediate},
	{FingerRing, JointTip}:          {FingerRing, JointDistal},

	{FingerLittle, JointMetacarpal}:   Wrist,
	{FingerLittle, JointProximal}:     {FingerLittle, JointMetacarpal},
	{FingerLittle, JointIntermediate}: {FingerLittle, JointProximal},
	{FingerLittle, JointDistal}:       {FingerLittle, JointIntermediate},
	{FingerLittle, JointTip}:          {FingerLittle, JointDistal},
}

// Fingers returns the finger chains in the order they are walked.
func Fingers() []Finger {
	out := make([]Finger, len(fingers))
	copy(out, fingers)
	return out
}

// FingerChain returns the joints of a finger from the metacarpal to the tip.
// The thumb has no intermediate phalanx.
//
// Parameters:
//   - f: the finger
//
// Returns:
//   - []JointKey: the chain in walk order, or nil for FingerNone
func FingerChain(f Finger) []JointKey {
	kinds := fingerChains[f]
	if len(kinds) == 0 {
		return nil
	}
	out := make([]JointKey, len(kinds))
	for i, k := range kinds {
		out[i] = JointKey{Finger: f, Kind: k}
	}
	return out
}

// PlatformJoint returns the platform joint a skeleton joint is read from.
//
// Parameters:
//   - k: the skeleton joint
//
// Returns:
//   - HandJoint: the platform joint
//   - bool: false if k is not part of the skeleton
func PlatformJoint(k JointKey) (HandJoint, bool) {
	j, ok := platformJoints[k]
	return j, ok
}

// JointParent returns the joint whose space k is resolved against.
//
// Parameters:
//   - k: the skeleton joint
//
// Returns:
//   - JointKey: the parent joint
//   - bool: false for the wrist and for keys outside the skeleton
func JointParent(k JointKey) (JointKey, bool) {
	p, ok := jointParents[k]
	return p, ok
}

// SkeletonJoints returns all joints of one hand: the wrist first, then each finger chain in order.
func SkeletonJoints() []JointKey {
	out := make([]JointKey, 0, HandJointCount)
	out = append(out, Wrist)
	for _, f := range fingers {
		out = append(out, FingerChain(f)...)
	}
	return out
}
