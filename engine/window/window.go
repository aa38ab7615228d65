// Package window is the desktop host for the XR emulator: a GLFW window that mirrors the
// rendered eyes and forwards keyboard and mouse input to an InputHandler.
package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// InputHandler receives the input of a window. Key codes and mouse buttons use the values in
// the common package. Calls happen on the goroutine running ProcessMessages.
type InputHandler interface {
	KeyDown(code uint32)
	KeyUp(code uint32)
	MouseButton(button uint32, pressed bool, x, y int32)
	MouseMove(x, y int32)
	Scroll(delta float32)
}

// Window is a desktop window with a WebGPU surface.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetInputHandler routes keyboard and mouse input to h. A nil handler drops input.
	SetInputHandler(h InputHandler)

	// SurfaceDescriptor returns the platform surface descriptor for the window, nil if the
	// window is not initialized.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	IsRunning() bool

	// Close destroys the window and terminates GLFW.
	Close() error

	// ProcessMessages polls window events until the window closes, calling the update callback
	// after every poll. It must run on the goroutine that created the window.
	ProcessMessages()

	Width() int
	Height() int
}

type engineWindow struct {
	mu     *sync.Mutex
	logger *logrus.Logger

	title  string
	width  int
	height int
	resize bool

	internalWindow any

	onUpdate func()
	onResize func(width, height int)
	input    InputHandler
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. Defaults to a 1280x720 resizable window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: error if GLFW or the window could not be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		mu:     &sync.Mutex{},
		logger: logrus.StandardLogger(),
		title:  "Oxy XR Emulator",
		width:  1280,
		height: 720,
		resize: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.logger.WithFields(logrus.Fields{
		"title":  w.title,
		"width":  w.width,
		"height": w.height,
	}).Info("window created")
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onResize = callback
}

func (w *engineWindow) SetInputHandler(h InputHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = h
}

func (w *engineWindow) handler() InputHandler {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformProcessMessages(w) {
			break
		}

		w.mu.Lock()
		update := w.onUpdate
		w.mu.Unlock()
		if update != nil {
			update()
		}

		runtime.Gosched()
	}
	w.logger.Info("window closed")
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// resized records a framebuffer size change and notifies the resize callback.
func (w *engineWindow) resized(width, height int) {
	w.mu.Lock()
	w.width = width
	w.height = height
	cb := w.onResize
	w.mu.Unlock()

	if cb != nil {
		cb(width, height)
	}
}
