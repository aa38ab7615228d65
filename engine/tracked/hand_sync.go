package tracked

import (
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

type handSync struct {
	logger *logrus.Logger
	hands  []xr.Handedness
	roles  map[xr.Handedness][]xr.Role

	degraded map[xr.Handedness]*degradation
}

// HandSync keeps a 25-joint entity skeleton per tracked hand.
//
// The wrist resolves relative to the reference space and hangs under the origin. Each finger
// joint resolves relative to the previous joint of its chain and hangs under that joint's entity,
// so a joint's transform is local to its parent. A hand whose wrist does not resolve is
// deactivated whole; a finger joint that does not resolve deactivates the rest of its chain.
type HandSync interface {
	// Run synchronizes the joint entities of both hands with ctx.Frame.
	//
	// Parameters:
	//   - ctx: the update context
	Run(ctx *engine.UpdateContext)
}

var _ HandSync = &handSync{}

// NewHandSync creates a HandSync for the left and right hands.
//
// Parameters:
//   - options: functional options for the synchronizer
//
// Returns:
//   - HandSync: the synchronizer
func NewHandSync(options ...HandSyncBuilderOption) HandSync {
	s := &handSync{
		logger: logrus.StandardLogger(),
		hands:  []xr.Handedness{xr.HandednessLeft, xr.HandednessRight},
	}
	for _, opt := range options {
		opt(s)
	}
	s.degraded = make(map[xr.Handedness]*degradation, len(s.hands))
	s.roles = make(map[xr.Handedness][]xr.Role, len(s.hands))
	for _, h := range s.hands {
		s.degraded[h] = &degradation{logger: s.logger, name: "hand-" + h.String()}
		for _, key := range xr.SkeletonJoints() {
			s.roles[h] = append(s.roles[h], xr.JointRole(h, key))
		}
	}
	return s
}

func (s *handSync) Run(ctx *engine.UpdateContext) {
	for _, h := range s.hands {
		s.runHand(ctx, h)
	}
}

func (s *handSync) runHand(ctx *engine.UpdateContext, h xr.Handedness) {
	store := ctx.Store
	collapseAll(store, s.roles[h], s.logger)

	origin, ok := activeOrigin(store)
	if !ok {
		s.deactivateHand(store, h, "no active origin")
		return
	}
	if ctx.Frame == nil || ctx.Frame.Frame == nil {
		s.deactivateHand(store, h, "no frame")
		return
	}
	frame := ctx.Frame.Frame

	hand, ok := findHand(frame.Session().InputSources(), h)
	if !ok {
		s.deactivateHand(store, h, "no hand input source")
		return
	}

	wristJoint, _ := xr.PlatformJoint(xr.Wrist)
	wristSpace, ok := hand.Joint(wristJoint)
	if !ok {
		s.deactivateHand(store, h, "wrist space missing")
		return
	}
	wristPose, ok := frame.JointPose(wristSpace, ctx.Frame.ReferenceSpace)
	if !ok {
		s.deactivateHand(store, h, "wrist unresolved")
		return
	}
	s.degraded[h].clear()

	// Joints resolved this update. The skeleton lists parents before children, so a joint whose
	// parent is missing here takes the rest of its chain down with it.
	spaces := map[xr.JointKey]platform.Space{xr.Wrist: wristSpace}
	entities := map[xr.JointKey]ecs.Entity{xr.Wrist: s.joint(store, h, xr.Wrist, origin, wristPose.Pose)}

	for _, key := range xr.SkeletonJoints() {
		parent, ok := xr.JointParent(key)
		if !ok {
			continue
		}
		role := xr.JointRole(h, key)
		parentSpace, ok := spaces[parent]
		if !ok {
			deactivate(store, store.Query(role))
			continue
		}
		pj, _ := xr.PlatformJoint(key)
		space, ok := hand.Joint(pj)
		if !ok {
			deactivate(store, store.Query(role))
			continue
		}
		pose, ok := frame.JointPose(space, parentSpace)
		if !ok {
			deactivate(store, store.Query(role))
			continue
		}
		spaces[key] = space
		entities[key] = s.joint(store, h, key, entities[parent], pose.Pose)
	}
}

// joint updates or spawns the entity of one joint under parent and returns it.
func (s *handSync) joint(store ecs.Store, h xr.Handedness, key xr.JointKey, parent ecs.Entity, pose xr.Pose) ecs.Entity {
	e, spawned := singleton(store, xr.JointRole(h, key), parent, s.logger)
	if !spawned {
		// A collapsed duplicate may have been the parent; relinking is a no-op otherwise.
		store.AddChild(parent, e)
	}
	place(store, e, pose)
	if spawned {
		s.logger.WithFields(logrus.Fields{
			"role":   xr.JointRole(h, key).String(),
			"entity": e,
		}).Trace("spawned hand joint")
	}
	return e
}

func (s *handSync) deactivateHand(store ecs.Store, h xr.Handedness, reason string) {
	for _, role := range s.roles[h] {
		deactivate(store, store.Query(role))
	}
	s.degraded[h].set(reason)
}

// findHand returns the skeleton of the first input source of handedness h that tracks one.
func findHand(sources []platform.InputSource, h xr.Handedness) (platform.Hand, bool) {
	for _, src := range sources {
		if src.Handedness() != h {
			continue
		}
		if hand, ok := src.Hand(); ok {
			return hand, true
		}
	}
	return nil, false
}
