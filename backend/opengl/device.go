// Package opengl provides an OpenGL 4.1 backend for the overlay package.
//
// All functions must be called on the thread that owns the current GL
// context, after gl.Init.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/overlay"
	"github.com/go-theft-auto/overlay/log"
)

// Device implements overlay.Device using OpenGL.
//
// Direct3D binds stream, indices and declaration independently; in GL
// they are all vertex array state. Device records the bindings and
// applies them to the layout's vertex array at draw time.
type Device struct {
	lg *log.Logger

	// scratch is bound while index buffers are created or mapped, since
	// the element array binding needs a vertex array in a core profile.
	scratch uint32

	layout       *VertexLayout
	stream       *Buffer
	streamOffset int
	stride       int
	indices      *Buffer
}

var _ overlay.Device = (*Device)(nil)

// NewDevice creates a device for the current GL context.
func NewDevice(lg *log.Logger) (*Device, error) {
	d := &Device{lg: lg}
	gl.GenVertexArrays(1, &d.scratch)
	if d.scratch == 0 {
		return nil, failed("GenVertexArrays")
	}
	lg.Infof("OpenGL device: %s, %s", gl.GoStr(gl.GetString(gl.RENDERER)), gl.GoStr(gl.GetString(gl.VERSION)))
	return d, nil
}

// Delete releases the device's own GL objects. Resources created by the
// device must be released separately.
func (d *Device) Delete() {
	if d.scratch != 0 {
		gl.DeleteVertexArrays(1, &d.scratch)
		d.scratch = 0
	}
}

// CreateVertexBuffer implements overlay.Device.
func (d *Device) CreateVertexBuffer(size int) (overlay.VertexBuffer, error) {
	b, err := d.newBuffer(gl.ARRAY_BUFFER, size)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateIndexBuffer implements overlay.Device.
func (d *Device) CreateIndexBuffer(count int) (overlay.IndexBuffer, error) {
	b, err := d.newBuffer(gl.ELEMENT_ARRAY_BUFFER, 2*count)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateVertexLayout implements overlay.Device.
func (d *Device) CreateVertexLayout(elems []overlay.VertexElement) (overlay.VertexLayout, error) {
	for _, e := range elems {
		if e.Stream != 0 {
			return nil, fmt.Errorf("vertex element %v: only stream 0 is supported", e.Usage)
		}
		if _, err := attribLocation(e.Usage); err != nil {
			return nil, err
		}
		if _, _, _, err := attribFormat(e.Type); err != nil {
			return nil, err
		}
	}

	l := &VertexLayout{elems: append([]overlay.VertexElement(nil), elems...)}
	gl.GenVertexArrays(1, &l.vao)
	if l.vao == 0 {
		return nil, failed("GenVertexArrays")
	}
	return l, nil
}

// CreateEffect implements overlay.Device. The effect file is parsed with
// overlay.LoadEffect and compiled into one program per pass.
func (d *Device) CreateEffect(path string) (overlay.Effect, error) {
	src, err := overlay.LoadEffect(path)
	if err != nil {
		return nil, err
	}
	e := &Effect{
		src:     src,
		current: -1,
		pending: make(map[string]mgl32.Mat4),
	}
	if err := e.compile(); err != nil {
		return nil, err
	}
	d.lg.Debugf("compiled effect %s with %d passes", path, len(src.Passes))
	return e, nil
}

// SetVertexLayout implements overlay.Device.
func (d *Device) SetVertexLayout(layout overlay.VertexLayout) {
	d.layout, _ = layout.(*VertexLayout)
}

// SetStreamSource implements overlay.Device.
func (d *Device) SetStreamSource(stream int, vb overlay.VertexBuffer, offset, stride int) {
	if stream != 0 {
		d.lg.Warnf("SetStreamSource: stream %d ignored", stream)
		return
	}
	d.stream, _ = vb.(*Buffer)
	d.streamOffset = offset
	d.stride = stride
}

// SetIndices implements overlay.Device.
func (d *Device) SetIndices(ib overlay.IndexBuffer) {
	d.indices, _ = ib.(*Buffer)
}

// DrawIndexed implements overlay.Device.
func (d *Device) DrawIndexed(prim overlay.Primitive, baseVertex, minIndex, numVertices, startIndex, primCount int) error {
	switch {
	case d.layout == nil || d.layout.vao == 0:
		return fmt.Errorf("DrawIndexed: no vertex layout bound")
	case d.stream == nil || d.stream.id == 0:
		return fmt.Errorf("DrawIndexed: no vertex stream bound")
	case d.indices == nil || d.indices.id == 0:
		return fmt.Errorf("DrawIndexed: no index buffer bound")
	}

	mode, err := glPrimitive(prim)
	if err != nil {
		return err
	}
	count := overlay.IndexCount(prim, primCount)
	if count == 0 {
		return nil
	}
	if (startIndex+count)*2 > d.indices.size {
		return fmt.Errorf("DrawIndexed: %d indices from %d overrun a %d-byte index buffer",
			count, startIndex, d.indices.size)
	}

	d.layout.bind(d.stream, d.streamOffset, d.stride)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.indices.id)

	gl.DrawElementsBaseVertexWithOffset(
		mode,
		int32(count),
		gl.UNSIGNED_SHORT,
		uintptr(startIndex)*2,
		int32(baseVertex),
	)
	err = glError("DrawElementsBaseVertex")

	gl.BindVertexArray(0)
	return err
}

func glPrimitive(p overlay.Primitive) (uint32, error) {
	switch p {
	case overlay.TriangleList:
		return gl.TRIANGLES, nil
	case overlay.TriangleStrip:
		return gl.TRIANGLE_STRIP, nil
	case overlay.LineList:
		return gl.LINES, nil
	}
	return 0, fmt.Errorf("unsupported primitive %v", p)
}

// glError returns the pending GL error, if any, attributed to op.
func glError(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	// Drain anything else queued so the next check starts clean.
	for gl.GetError() != gl.NO_ERROR {
	}
	return &Error{Op: op, Code: code}
}

// failed is glError for calls that signal failure through their result;
// it never returns nil.
func failed(op string) error {
	if err := glError(op); err != nil {
		return err
	}
	return fmt.Errorf("%s failed", op)
}

// Error is a GL error code returned by an operation.
type Error struct {
	Op   string
	Code uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (0x%04x)", e.Op, errorName(e.Code), e.Code)
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "invalid enum"
	case gl.INVALID_VALUE:
		return "invalid value"
	case gl.INVALID_OPERATION:
		return "invalid operation"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "invalid framebuffer operation"
	case gl.OUT_OF_MEMORY:
		return "out of memory"
	case gl.NO_ERROR:
		return "no error"
	}
	return "unknown error"
}
