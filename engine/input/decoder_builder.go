package input

import (
	"github.com/sirupsen/logrus"
)

// DecoderBuilderOption is a functional option for configuring a Decoder.
type DecoderBuilderOption func(*decoder)

// WithSettings shares channel settings with the decoder.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - DecoderBuilderOption: option function to apply
func WithSettings(s *Settings) DecoderBuilderOption {
	return func(d *decoder) {
		d.settings = s
	}
}

// WithLogger sets the decoder logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - DecoderBuilderOption: option function to apply
func WithLogger(l *logrus.Logger) DecoderBuilderOption {
	return func(d *decoder) {
		if l != nil {
			d.logger = l
		}
	}
}
