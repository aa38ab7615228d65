// Package tracked maps the poses of one XR frame onto a stable set of entities: eye cameras,
// controllers and hand joints. Each synchronizer runs once per engine update, updates matched
// entities in place, spawns missing ones under their parent and deactivates, but never despawns,
// entities that did not resolve this update.
package tracked

import (
	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine/ecs"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// activeOrigin returns the first active XR origin entity.
func activeOrigin(store ecs.Store) (ecs.Entity, bool) {
	for _, e := range store.Query(xr.OriginRole()) {
		if store.Active(e) {
			return e, true
		}
	}
	return donburi.Null, false
}

// collapse despawns every entity filed under role after the first, in spawn order, and returns
// the survivor.
func collapse(store ecs.Store, role xr.Role, logger *logrus.Logger) (ecs.Entity, bool) {
	entities := store.Query(role)
	if len(entities) == 0 {
		return donburi.Null, false
	}
	if len(entities) > 1 {
		for _, dup := range entities[1:] {
			store.Despawn(dup)
		}
		logger.WithFields(logrus.Fields{
			"role":       role.String(),
			"duplicates": len(entities) - 1,
		}).Debug("collapsed duplicate tracked entities")
	}
	return entities[0], true
}

// collapseAll runs collapse over every singleton role.
func collapseAll(store ecs.Store, roles []xr.Role, logger *logrus.Logger) {
	for _, role := range roles {
		if role.Singleton() {
			collapse(store, role, logger)
		}
	}
}

// singleton returns the one entity filed under role. When none exists it spawns one under
// parent and reports spawned.
func singleton(store ecs.Store, role xr.Role, parent ecs.Entity, logger *logrus.Logger) (e ecs.Entity, spawned bool) {
	if e, ok := collapse(store, role, logger); ok {
		return e, false
	}
	return spawnUnder(store, role, parent), true
}

// spawnUnder spawns an entity for role and attaches it to parent.
func spawnUnder(store ecs.Store, role xr.Role, parent ecs.Entity) ecs.Entity {
	e := store.Spawn(role)
	store.AddChild(parent, e)
	return e
}

// deactivate marks every entity inactive.
func deactivate(store ecs.Store, entities []ecs.Entity) {
	for _, e := range entities {
		store.SetActive(e, false)
	}
}

// place sets the local transform of e to pose and activates it.
func place(store ecs.Store, e ecs.Entity, pose xr.Pose) {
	store.SetTransform(e, ecs.TransformFromPose(pose))
	store.SetActive(e, true)
}

// degradation logs a degraded state once per change of reason, keeping per-frame paths quiet.
type degradation struct {
	logger *logrus.Logger
	name   string
	reason string
}

func (d *degradation) set(reason string) {
	if d.reason == reason {
		return
	}
	d.reason = reason
	if reason == "" {
		d.logger.WithField("synchronizer", d.name).Debug("tracking resumed")
		return
	}
	d.logger.WithFields(logrus.Fields{
		"synchronizer": d.name,
		"reason":       reason,
	}).Debug("tracking degraded, entities deactivated")
}

func (d *degradation) clear() {
	d.set("")
}
