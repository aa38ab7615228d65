package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	window  *glfw.Window
	running bool
}

// newPlatformWindow creates the GLFW window and registers its input callbacks.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// The surface is created through WebGPU, so no GL context.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if w.resize {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}

	gw := &glfwWindow{window: win, running: true}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		h := w.handler()
		if h == nil {
			return
		}
		switch action {
		case glfw.Press:
			h.KeyDown(uint32(key))
		case glfw.Release:
			h.KeyUp(uint32(key))
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if h := w.handler(); h != nil {
			h.Scroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		h := w.handler()
		if h == nil || action == glfw.Repeat {
			return
		}
		x, y := win.GetCursorPos()
		h.MouseButton(uint32(button), action == glfw.Press, int32(x), int32(y))
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if h := w.handler(); h != nil {
			h.MouseMove(int32(x), int32(y))
		}
	})

	// Framebuffer size, not window size: they differ on high-DPI displays and the surface
	// is configured in pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight

	return nil
}

// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.window.ShouldClose()
}

func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls GLFW for pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
