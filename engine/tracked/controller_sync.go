package tracked

import (
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// DefaultEvictAfter is the number of consecutive inactive updates after which an unclassified
// controller entity is despawned.
const DefaultEvictAfter = 900

// handedControllerRoles are the singleton controller roles.
var handedControllerRoles = []xr.Role{
	xr.ControllerRole(xr.HandednessLeft),
	xr.ControllerRole(xr.HandednessRight),
}

// unclassified is one entry of the ordered unclassified controller list.
type unclassified struct {
	entity     ecs.Entity
	controller input.Controller
	idle       int
}

type controllerSync struct {
	decoder    input.Decoder
	logger     *logrus.Logger
	evictAfter int

	others []*unclassified

	degraded *degradation
}

// ControllerSync keeps one entity per left and right controller plus an ordered list of
// unclassified controllers, and decodes each matched controller's gamepad into input events.
type ControllerSync interface {
	// Run synchronizes the controller entities with ctx.Frame.
	//
	// Parameters:
	//   - ctx: the update context
	Run(ctx *engine.UpdateContext)

	// Unclassified returns the entities of the unclassified list, in discovery order.
	Unclassified() []ecs.Entity
}

var _ ControllerSync = &controllerSync{}

// NewControllerSync creates a ControllerSync that decodes input with decoder.
//
// Parameters:
//   - decoder: the gamepad decoder
//   - options: functional options for the synchronizer
//
// Returns:
//   - ControllerSync: the synchronizer
func NewControllerSync(decoder input.Decoder, options ...ControllerSyncBuilderOption) ControllerSync {
	s := &controllerSync{
		decoder:    decoder,
		logger:     logrus.StandardLogger(),
		evictAfter: DefaultEvictAfter,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = input.NewDecoder(input.WithLogger(s.logger))
	}
	s.degraded = &degradation{logger: s.logger, name: "controller"}
	return s
}

func (s *controllerSync) Unclassified() []ecs.Entity {
	out := make([]ecs.Entity, len(s.others))
	for i, u := range s.others {
		out[i] = u.entity
	}
	return out
}

func (s *controllerSync) Run(ctx *engine.UpdateContext) {
	store := ctx.Store
	s.pruneInvalid(store)
	collapseAll(store, handedControllerRoles, s.logger)

	// Controller state before this update, for tracking transitions.
	wasActive := make(map[ecs.Entity]bool)
	for _, e := range store.QueryKind(xr.RoleController) {
		wasActive[e] = store.Active(e)
	}

	origin, ok := activeOrigin(store)
	if !ok {
		s.deactivateAll(ctx, wasActive, "no active origin")
		return
	}
	if ctx.Frame == nil || ctx.Frame.Frame == nil {
		s.deactivateAll(ctx, wasActive, "no frame")
		return
	}
	frame := ctx.Frame.Frame

	seen := make(map[xr.Handedness]bool, 2)
	matched := make(map[ecs.Entity]bool)
	next := 0

	for i, src := range frame.Session().InputSources() {
		gamepad, ok := src.Gamepad()
		if !ok {
			continue
		}
		grip, ok := src.GripSpace()
		if !ok {
			continue
		}
		pose, ok := frame.Pose(grip, ctx.Frame.ReferenceSpace)
		if !ok {
			continue
		}

		var (
			e          ecs.Entity
			spawned    bool
			controller input.Controller
		)
		switch src.Handedness() {
		case xr.HandednessLeft, xr.HandednessRight:
			hand := src.Handedness()
			// The first source of a handedness wins the singleton.
			if seen[hand] {
				continue
			}
			seen[hand] = true
			controller = input.Controller{Hand: hand}
			e, spawned = singleton(store, xr.ControllerRole(hand), origin, s.logger)
		default:
			controller = input.OtherController(i)
			if next < len(s.others) {
				u := s.others[next]
				e = u.entity
				if u.controller != controller {
					s.decoder.Forget(u.controller)
					u.controller = controller
				}
			} else {
				e = spawnUnder(store, xr.ControllerRole(xr.HandednessNone), origin)
				s.others = append(s.others, &unclassified{entity: e, controller: controller})
				spawned = true
			}
			s.others[next].idle = 0
			next++
		}

		place(store, e, pose)
		store.SetTracked(e, ecs.Tracked{SourceIndex: i, Name: controller.Name()})
		matched[e] = true

		if spawned || !wasActive[e] {
			input.ControllerStateChangedEvent.Publish(ctx.World, input.ControllerStateChanged{
				Controller: controller,
				State:      input.Tracking,
				Name:       controller.Name(),
			})
			s.logger.WithFields(logrus.Fields{
				"controller": controller.Name(),
				"entity":     e,
				"spawned":    spawned,
			}).Debug("controller tracking")
		}

		s.decoder.Decode(ctx.World, controller, gamepad)
	}

	if len(matched) == 0 {
		s.degraded.set("no resolvable input source")
	} else {
		s.degraded.clear()
	}

	for _, e := range store.QueryKind(xr.RoleController) {
		if matched[e] {
			continue
		}
		s.release(ctx, e, wasActive[e])
	}
	s.evict(ctx)
}

// release deactivates a controller that did not resolve this update.
func (s *controllerSync) release(ctx *engine.UpdateContext, e ecs.Entity, wasActive bool) {
	ctx.Store.SetActive(e, false)
	if !wasActive {
		return
	}
	t, ok := ctx.Store.Tracked(e)
	if !ok {
		return
	}
	controller := controllerFor(t)
	input.ControllerStateChangedEvent.Publish(ctx.World, input.ControllerStateChanged{
		Controller: controller,
		State:      input.NotTracking,
		Name:       controller.Name(),
	})
}

// controllerFor recovers the input identity of a controller entity.
func controllerFor(t ecs.Tracked) input.Controller {
	switch t.Role.Hand {
	case xr.HandednessLeft:
		return input.LeftController()
	case xr.HandednessRight:
		return input.RightController()
	default:
		return input.OtherController(t.SourceIndex)
	}
}

func (s *controllerSync) deactivateAll(ctx *engine.UpdateContext, wasActive map[ecs.Entity]bool, reason string) {
	for e, active := range wasActive {
		s.release(ctx, e, active)
	}
	s.degraded.set(reason)
	s.evict(ctx)
}

// evict ages inactive unclassified entries and despawns those idle for evictAfter updates.
func (s *controllerSync) evict(ctx *engine.UpdateContext) {
	kept := s.others[:0]
	for _, u := range s.others {
		if !ctx.Store.Active(u.entity) {
			u.idle++
		}
		if s.evictAfter > 0 && u.idle >= s.evictAfter {
			ctx.Store.Despawn(u.entity)
			s.decoder.Forget(u.controller)
			s.logger.WithFields(logrus.Fields{
				"controller": u.controller.Name(),
				"entity":     u.entity,
				"idle":       u.idle,
			}).Debug("evicted unclassified controller")
			continue
		}
		kept = append(kept, u)
	}
	s.others = kept
}

// pruneInvalid drops list entries whose entity was despawned elsewhere.
func (s *controllerSync) pruneInvalid(store ecs.Store) {
	kept := s.others[:0]
	for _, u := range s.others {
		if store.Valid(u.entity) {
			kept = append(kept, u)
		}
	}
	s.others = kept
}
