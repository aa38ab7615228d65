package tracked

import (
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

// HandSyncBuilderOption is a functional option for configuring a HandSync.
type HandSyncBuilderOption func(*handSync)

// WithHandLogger sets the logger of the hand synchronizer.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - HandSyncBuilderOption: option function to apply
func WithHandLogger(l *logrus.Logger) HandSyncBuilderOption {
	return func(s *handSync) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHands limits the synchronizer to the given hands.
//
// Parameters:
//   - hands: the handedness values to track
//
// Returns:
//   - HandSyncBuilderOption: option function to apply
func WithHands(hands ...xr.Handedness) HandSyncBuilderOption {
	return func(s *handSync) {
		s.hands = append([]xr.Handedness(nil), hands...)
	}
}
