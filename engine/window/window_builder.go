package window

import "github.com/sirupsen/logrus"

// WindowBuilderOption is a functional option for configuring an engineWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size. Non-positive values keep the default.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithFixedSize disables resizing.
func WithFixedSize() WindowBuilderOption {
	return func(w *engineWindow) {
		w.resize = false
	}
}

// WithLogger sets the logger used for window lifecycle messages.
func WithLogger(logger *logrus.Logger) WindowBuilderOption {
	return func(w *engineWindow) {
		if logger != nil {
			w.logger = logger
		}
	}
}
