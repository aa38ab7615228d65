package tracked

import (
	"github.com/sirupsen/logrus"
)

// CameraSyncBuilderOption is a functional option for configuring a CameraSync.
type CameraSyncBuilderOption func(*cameraSync)

// WithCameraLogger sets the logger of the camera synchronizer.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - CameraSyncBuilderOption: option function to apply
func WithCameraLogger(l *logrus.Logger) CameraSyncBuilderOption {
	return func(s *cameraSync) {
		if l != nil {
			s.logger = l
		}
	}
}
