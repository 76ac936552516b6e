package opengl

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Buffer is a GL buffer object used as a vertex or index buffer.
type Buffer struct {
	dev    *Device
	id     uint32
	target uint32
	size   int
	locked bool
}

func (d *Device) newBuffer(target uint32, size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("buffer size %d must be positive", size)
	}

	b := &Buffer{dev: d, target: target, size: size}
	gl.GenBuffers(1, &b.id)
	if b.id == 0 {
		return nil, failed("GenBuffers")
	}

	b.bind()
	gl.BufferData(target, size, nil, gl.STATIC_DRAW)
	err := glError("BufferData")
	b.unbind()

	if err != nil {
		gl.DeleteBuffers(1, &b.id)
		return nil, err
	}
	return b, nil
}

// bind binds the buffer to its target. Element array bindings go to the
// device's scratch vertex array.
func (b *Buffer) bind() {
	if b.target == gl.ELEMENT_ARRAY_BUFFER {
		gl.BindVertexArray(b.dev.scratch)
	}
	gl.BindBuffer(b.target, b.id)
}

func (b *Buffer) unbind() {
	gl.BindBuffer(b.target, 0)
	if b.target == gl.ELEMENT_ARRAY_BUFFER {
		gl.BindVertexArray(0)
	}
}

// Lock maps the whole buffer for writing. The previous contents are
// discarded.
func (b *Buffer) Lock() ([]byte, error) {
	if b.id == 0 {
		return nil, errors.New("lock of released buffer")
	}
	if b.locked {
		return nil, errors.New("buffer already locked")
	}

	b.bind()
	p := gl.MapBufferRange(b.target, 0, b.size, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	if p == nil {
		err := failed("MapBufferRange")
		b.unbind()
		return nil, err
	}
	b.locked = true
	return unsafe.Slice((*byte)(p), b.size), nil
}

// Unlock unmaps the buffer. The slice returned by Lock must not be used
// afterwards.
func (b *Buffer) Unlock() error {
	if !b.locked {
		return errors.New("unlock of buffer that is not locked")
	}
	b.locked = false

	ok := gl.UnmapBuffer(b.target)
	b.unbind()
	if !ok {
		return errors.New("UnmapBuffer: buffer contents were lost")
	}
	return nil
}

// Release deletes the buffer object.
func (b *Buffer) Release() {
	if b.id == 0 {
		return
	}
	if b.locked {
		b.bind()
		gl.UnmapBuffer(b.target)
		b.unbind()
		b.locked = false
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int { return b.size }
