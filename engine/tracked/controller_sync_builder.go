package tracked

import (
	"github.com/sirupsen/logrus"
)

// ControllerSyncBuilderOption is a functional option for configuring a ControllerSync.
type ControllerSyncBuilderOption func(*controllerSync)

// WithControllerLogger sets the logger of the controller synchronizer.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - ControllerSyncBuilderOption: option function to apply
func WithControllerLogger(l *logrus.Logger) ControllerSyncBuilderOption {
	return func(s *controllerSync) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEvictAfter sets how many consecutive inactive updates an unclassified controller survives.
// Zero keeps them forever.
//
// Parameters:
//   - n: the number of updates
//
// Returns:
//   - ControllerSyncBuilderOption: option function to apply
func WithEvictAfter(n int) ControllerSyncBuilderOption {
	return func(s *controllerSync) {
		if n >= 0 {
			s.evictAfter = n
		}
	}
}
