package opengl

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/overlay/log"
)

// GLFWLifecycleAdapter drives a Lifecycle from GLFW window events. The
// device counts as lost while the window is iconified or its framebuffer
// has zero area, matching when a Direct3D device would be lost.
type GLFWLifecycleAdapter struct {
	*Lifecycle
	window *glfw.Window

	// OnResize, if set, is called with the new framebuffer size whenever
	// it has non-zero area.
	OnResize func(width, height int)
}

// NewGLFWLifecycleAdapter creates an adapter and installs its callbacks
// on window.
func NewGLFWLifecycleAdapter(window *glfw.Window, listener DeviceListener, lg *log.Logger) *GLFWLifecycleAdapter {
	adapter := &GLFWLifecycleAdapter{
		Lifecycle: NewLifecycle(listener, lg),
		window:    window,
	}

	window.SetIconifyCallback(adapter.iconifyCallback)
	window.SetFramebufferSizeCallback(adapter.framebufferSizeCallback)

	return adapter
}

func (a *GLFWLifecycleAdapter) iconifyCallback(w *glfw.Window, iconified bool) {
	if iconified {
		a.Lose()
		return
	}
	if width, height := w.GetFramebufferSize(); width > 0 && height > 0 {
		a.Restore()
	}
}

func (a *GLFWLifecycleAdapter) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if width == 0 || height == 0 {
		a.Lose()
		return
	}
	if w.GetAttrib(glfw.Iconified) == glfw.False {
		a.Restore()
	}
	if a.OnResize != nil {
		a.OnResize(width, height)
	}
}
