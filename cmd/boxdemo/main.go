// Command boxdemo draws the boxes of a scene file in a GLFW window.
//
// Usage:
//
//	go run ./cmd/boxdemo -scene cmd/boxdemo/scene.yaml
//
// Keys 1-9 toggle the visibility of the corresponding box; Escape quits.
// Minimizing the window exercises the device lost/reset path.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/overlay"
	"github.com/go-theft-auto/overlay/backend/opengl"
	"github.com/go-theft-auto/overlay/log"
)

var (
	scenePath  = flag.String("scene", "cmd/boxdemo/scene.yaml", "scene file to draw")
	logLevel   = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir     = flag.String("logdir", "", "log file directory (default: user config dir)")
	screenshot = flag.String("screenshot", "", "render one frame, save it as a JPEG to this path and exit")
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	os.Exit(boxdemo())
}

// boxdemo runs the demo and returns the process exit code. Deferred
// cleanup, including closing the log file, runs before main exits.
func boxdemo() int {
	lg := log.New(*logLevel, *logDir)
	defer lg.Close()

	if err := run(lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// windowSizer reports a window's size in screen coordinates, the space
// scene boxes are laid out in. *glfw.Window implements it.
type windowSizer interface {
	GetSize() (width, height int)
}

// fitToWindow maps the boxes' pixel coordinates onto w's client area.
func fitToWindow(reg *overlay.Registry, w windowSizer) {
	width, height := w.GetSize()
	reg.Each(func(_ overlay.BoxID, b *overlay.Box) bool {
		b.FitToScreen(float32(width), float32(height))
		return true
	})
}

func run(lg *log.Logger) error {
	scene, err := LoadScene(*scenePath)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if *screenshot != "" {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	window, err := glfw.CreateWindow(scene.Window.Width, scene.Window.Height, scene.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1) // vsync

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	dev, err := opengl.NewDevice(lg)
	if err != nil {
		return fmt.Errorf("opengl device: %w", err)
	}
	defer dev.Delete()

	reg := overlay.NewRegistry()
	defer reg.Destroy()

	ids, err := scene.Build(dev, reg, overlay.WithLogger(lg))
	if err != nil {
		return err
	}
	lg.Infof("built %d boxes from %s", len(ids), *scenePath)

	lifecycle := opengl.NewGLFWLifecycleAdapter(window, reg, lg)
	// The framebuffer can be larger than the window on HiDPI displays;
	// boxes follow the window size.
	lifecycle.OnResize = func(int, int) { fitToWindow(reg, window) }
	fitToWindow(reg, window)

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch {
		case key == glfw.KeyEscape:
			w.SetShouldClose(true)
		case key >= glfw.Key1 && key <= glfw.Key9:
			i := int(key - glfw.Key1)
			if i >= len(ids) {
				return
			}
			if b, ok := reg.Get(ids[i]); ok {
				b.Show(!b.Visible())
				lg.Debugf("box %d visible=%v", i+1, b.Visible())
			}
		}
	})

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	for !window.ShouldClose() {
		glfw.PollEvents()
		if lifecycle.Lost() {
			glfw.WaitEvents()
			continue
		}

		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(0.12, 0.12, 0.14, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		reg.Draw()

		if *screenshot != "" {
			if err := saveScreenshot(*screenshot, w, h); err != nil {
				return fmt.Errorf("screenshot: %w", err)
			}
			lg.Infof("saved %s", *screenshot)
			return nil
		}

		window.SwapBuffers()
	}

	return nil
}
