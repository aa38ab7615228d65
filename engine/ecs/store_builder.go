package ecs

import (
	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"
)

// StoreBuilderOption is a functional option for configuring a Store.
type StoreBuilderOption func(*store)

// WithWorld backs the store with an existing donburi world.
//
// Parameters:
//   - w: the world to use
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithWorld(w donburi.World) StoreBuilderOption {
	return func(s *store) {
		s.world = w
	}
}

// WithLogger sets the logger spawn and despawn are reported to.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithLogger(l *logrus.Logger) StoreBuilderOption {
	return func(s *store) {
		if l != nil {
			s.logger = l
		}
	}
}
