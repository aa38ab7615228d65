package ecs

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// Store is the entity store capability the XR layer consumes: spawn, despawn, query by role and
// attach children. Entities are returned in spawn order.
type Store interface {
	// World returns the donburi world backing the store, used to publish and process events.
	//
	// Returns:
	//   - donburi.World: the world
	World() donburi.World

	// Spawn creates an active entity filed under role with an identity transform.
	//
	// Parameters:
	//   - role: the role the entity is tracked as
	//
	// Returns:
	//   - Entity: the new entity
	Spawn(role xr.Role) Entity

	// Despawn removes an entity. Its children are kept and lose their parent.
	//
	// Parameters:
	//   - e: the entity to remove
	Despawn(e Entity)

	// Valid reports whether e is alive.
	Valid(e Entity) bool

	// Query returns the live entities filed under role, in spawn order.
	//
	// Parameters:
	//   - role: the role to look up
	//
	// Returns:
	//   - []Entity: a copy of the matching entities
	Query(role xr.Role) []Entity

	// QueryKind returns the live entities of every role of the given kind, in spawn order.
	QueryKind(kind xr.RoleKind) []Entity

	// AddChild attaches child under parent, detaching it from any previous parent.
	AddChild(parent, child Entity)

	// Parent returns the parent of e.
	Parent(e Entity) (Entity, bool)

	// Children returns the children of e.
	Children(e Entity) []Entity

	// Transform returns the local transform of e.
	Transform(e Entity) (Transform, bool)

	// WorldPose composes the local transforms of e and its ancestors.
	WorldPose(e Entity) (xr.Pose, bool)

	// SetTransform replaces the local transform of e.
	SetTransform(e Entity, t Transform)

	// Active reports whether e is marked active.
	Active(e Entity) bool

	// SetActive marks e active or inactive.
	SetActive(e Entity, active bool)

	// Tracked returns the tracking tag of e.
	Tracked(e Entity) (Tracked, bool)

	// SetTracked replaces the tracking tag of e. The role must not change.
	SetTracked(e Entity, t Tracked)

	// Camera returns the camera attached to e.
	Camera(e Entity) (camera.Camera, bool)

	// AttachCamera attaches a camera to e.
	AttachCamera(e Entity, c camera.Camera)

	// Len returns the number of live entities in the store.
	Len() int
}

type store struct {
	mu *sync.Mutex

	world  donburi.World
	logger *logrus.Logger

	index map[xr.Role][]Entity
	order []Entity
}

var _ Store = &store{}

// NewStore creates a Store backed by a new donburi world unless WithWorld is given.
//
// Parameters:
//   - options: functional options for the store
//
// Returns:
//   - Store: the store
func NewStore(options ...StoreBuilderOption) Store {
	s := &store{
		mu:     &sync.Mutex{},
		logger: logrus.StandardLogger(),
		index:  make(map[xr.Role][]Entity),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.world == nil {
		s.world = donburi.NewWorld()
	}
	return s
}

func (s *store) World() donburi.World {
	return s.world
}

func (s *store) Spawn(role xr.Role) Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.world.Create(TransformComponent, ActivityComponent, TrackedComponent, HierarchyComponent)
	entry := s.world.Entry(e)
	TransformComponent.SetValue(entry, IdentityTransform())
	ActivityComponent.SetValue(entry, Activity{Active: true})
	TrackedComponent.SetValue(entry, Tracked{Role: role, SourceIndex: -1})

	s.index[role] = append(s.index[role], e)
	s.order = append(s.order, e)

	s.logger.WithFields(logrus.Fields{"role": role.String(), "entity": e}).Debug("spawned tracked entity")
	return e
}

func (s *store) Despawn(e Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.world.Valid(e) {
		return
	}
	entry := s.world.Entry(e)
	t := TrackedComponent.Get(entry)
	h := HierarchyComponent.Get(entry)

	if h.HasParent && s.world.Valid(h.Parent) {
		s.removeChild(h.Parent, e)
	}
	for _, c := range h.Children {
		if s.world.Valid(c) {
			HierarchyComponent.Get(s.world.Entry(c)).HasParent = false
		}
	}

	s.index[t.Role] = without(s.index[t.Role], e)
	if len(s.index[t.Role]) == 0 {
		delete(s.index, t.Role)
	}
	s.order = without(s.order, e)
	s.world.Remove(e)

	s.logger.WithFields(logrus.Fields{"role": t.Role.String(), "entity": e}).Debug("despawned tracked entity")
}

func (s *store) Valid(e Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Valid(e)
}

func (s *store) Query(role xr.Role) []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entity, 0, len(s.index[role]))
	for _, e := range s.index[role] {
		if s.world.Valid(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *store) QueryKind(kind xr.RoleKind) []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entity
	for _, e := range s.order {
		if !s.world.Valid(e) {
			continue
		}
		if TrackedComponent.Get(s.world.Entry(e)).Role.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *store) AddChild(parent, child Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if parent == child || !s.world.Valid(parent) || !s.world.Valid(child) {
		return
	}
	ch := HierarchyComponent.Get(s.world.Entry(child))
	if ch.HasParent {
		if ch.Parent == parent {
			return
		}
		if s.world.Valid(ch.Parent) {
			s.removeChild(ch.Parent, child)
		}
	}
	ch.Parent = parent
	ch.HasParent = true

	ph := HierarchyComponent.Get(s.world.Entry(parent))
	ph.Children = append(ph.Children, child)
}

func (s *store) removeChild(parent, child Entity) {
	ph := HierarchyComponent.Get(s.world.Entry(parent))
	ph.Children = without(ph.Children, child)
}

func (s *store) Parent(e Entity) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return donburi.Null, false
	}
	h := HierarchyComponent.Get(s.world.Entry(e))
	if !h.HasParent || !s.world.Valid(h.Parent) {
		return donburi.Null, false
	}
	return h.Parent, true
}

func (s *store) Children(e Entity) []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return nil
	}
	h := HierarchyComponent.Get(s.world.Entry(e))
	return append([]Entity(nil), h.Children...)
}

func (s *store) Transform(e Entity) (Transform, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return Transform{}, false
	}
	return *TransformComponent.Get(s.world.Entry(e)), true
}

func (s *store) WorldPose(e Entity) (xr.Pose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return xr.Pose{}, false
	}
	pose := TransformComponent.Get(s.world.Entry(e)).Pose()
	seen := map[Entity]bool{e: true}
	for {
		h := HierarchyComponent.Get(s.world.Entry(e))
		if !h.HasParent || !s.world.Valid(h.Parent) || seen[h.Parent] {
			return pose, true
		}
		e = h.Parent
		seen[e] = true
		pose = TransformComponent.Get(s.world.Entry(e)).Pose().Mul(pose)
	}
}

func (s *store) SetTransform(e Entity, t Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return
	}
	TransformComponent.SetValue(s.world.Entry(e), t)
}

func (s *store) Active(e Entity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return false
	}
	return ActivityComponent.Get(s.world.Entry(e)).Active
}

func (s *store) SetActive(e Entity, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return
	}
	entry := s.world.Entry(e)
	ActivityComponent.Get(entry).Active = active
	if entry.HasComponent(CameraComponent) {
		if c := CameraComponent.Get(entry).Camera; c != nil {
			c.SetActive(active)
		}
	}
}

func (s *store) Tracked(e Entity) (Tracked, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return Tracked{}, false
	}
	return *TrackedComponent.Get(s.world.Entry(e)), true
}

func (s *store) SetTracked(e Entity, t Tracked) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return
	}
	cur := TrackedComponent.Get(s.world.Entry(e))
	t.Role = cur.Role
	*cur = t
}

func (s *store) Camera(e Entity) (camera.Camera, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return nil, false
	}
	entry := s.world.Entry(e)
	if !entry.HasComponent(CameraComponent) {
		return nil, false
	}
	c := CameraComponent.Get(entry).Camera
	return c, c != nil
}

func (s *store) AttachCamera(e Entity, c camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Valid(e) {
		return
	}
	entry := s.world.Entry(e)
	if entry.HasComponent(CameraComponent) {
		CameraComponent.SetValue(entry, CameraData{Camera: c})
		return
	}
	donburi.Add(entry, CameraComponent, &CameraData{Camera: c})
}

func (s *store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.order {
		if s.world.Valid(e) {
			n++
		}
	}
	return n
}

func without(list []Entity, e Entity) []Entity {
	out := list[:0]
	for _, cur := range list {
		if cur != e {
			out = append(out, cur)
		}
	}
	return out
}
