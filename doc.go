/*
Package overlay draws screen-space boxes on top of a graphics device.

# Overview

A Box owns four device resources: a vertex buffer holding the four
corners of a quad, an index buffer drawing them as a triangle strip, a
vertex layout describing the Vertex format, and an Effect (a compiled,
possibly multi-pass shader). The Device that creates them is borrowed and
must outlive every Box that uses it.

Rendering backends implement the Device interface; backend/opengl is the
OpenGL 4.1 implementation.

# Quick Start

	dev, _ := opengl.NewDevice(lg)

	box := overlay.New(overlay.WithLogger(lg))
	if err := box.Init(dev, "fx/box.fx", 100, 50, 10, 20, 0xFFFF0000); err != nil {
	    // The box holds no resources and stays invisible.
	}
	defer box.Destroy()

	// Game loop, between the caller's begin/end scene.
	for !window.ShouldClose() {
	    box.Draw()
	    window.SwapBuffers()
	}

A failed Init releases everything it acquired, so a box is either fully
usable or inert. Draw never returns errors: a failed draw is logged and
that frame is dropped.

# Device loss

Some devices lose their state, for example when a window is minimized.
Call OnLostDevice on every box before the device is reset and
OnResetDevice after it is restored; the box is then drawable again
without another Init. Registry forwards both to all of its boxes, and
opengl.GLFWLifecycleAdapter drives them from window events.

# Transforms

Matrices use the column-vector convention of mgl32: Draw hands the
effect proj·view·world in the "WorldViewProj" parameter. Init sets the
view to a translation of (0, 0, 2) and the projection to a left-handed
perspective with a 75° vertical field of view. The aspect ratio defaults
to LegacyAspect, 1366/768 in integer arithmetic (1); pass WithAspect for
the real window aspect. FitToScreen sets a world transform that maps the
pixel coordinates given to Init onto the screen.

# Effect files

An effect is one GLSL source compiled with VERTEX or FRAGMENT defined.
"#pragma pass NAME" lines declare passes, each compiled with PASS_NAME
defined; see EffectSource.
*/
package overlay
