package session

import (
	"github.com/sirupsen/logrus"
)

// DriverBuilderOption is a functional option for configuring a Driver.
type DriverBuilderOption func(*driver)

// WithDriverLogger sets the driver's logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithDriverLogger(l *logrus.Logger) DriverBuilderOption {
	return func(d *driver) {
		if l != nil {
			d.logger = l
		}
	}
}
