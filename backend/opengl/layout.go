package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/overlay"
)

// Attribute locations used by effect shaders, one per element usage:
//
//	layout (location = 0) in vec3 aPos;
//	layout (location = 1) in vec4 aColor;
//	layout (location = 2) in vec2 aTexCoord;
//	layout (location = 3) in float aWeight;
const (
	LocPosition    = 0
	LocColor       = 1
	LocTexCoord    = 2
	LocBlendWeight = 3
)

// VertexLayout is a vertex array object configured from vertex elements.
type VertexLayout struct {
	vao   uint32
	elems []overlay.VertexElement
}

// Elements implements overlay.VertexLayout.
func (l *VertexLayout) Elements() []overlay.VertexElement { return l.elems }

// Release deletes the vertex array object.
func (l *VertexLayout) Release() {
	if l.vao != 0 {
		gl.DeleteVertexArrays(1, &l.vao)
		l.vao = 0
	}
}

// bind binds the vertex array and points its attributes at vb. The
// vertex array stays bound for the caller's draw.
func (l *VertexLayout) bind(vb *Buffer, offset, stride int) {
	gl.BindVertexArray(l.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.id)

	for _, e := range l.elems {
		// Validated in CreateVertexLayout.
		loc, _ := attribLocation(e.Usage)
		size, xtype, normalized, _ := attribFormat(e.Type)
		gl.VertexAttribPointerWithOffset(loc, size, xtype, normalized, int32(stride), uintptr(offset+e.Offset))
		gl.EnableVertexAttribArray(loc)
	}
}

func attribLocation(u overlay.DeclUsage) (uint32, error) {
	switch u {
	case overlay.UsagePosition:
		return LocPosition, nil
	case overlay.UsageColor:
		return LocColor, nil
	case overlay.UsageTexCoord:
		return LocTexCoord, nil
	case overlay.UsageBlendWeight:
		return LocBlendWeight, nil
	}
	return 0, fmt.Errorf("unsupported vertex element usage %v", u)
}

// attribFormat returns the VertexAttribPointer size, type and
// normalization for a declaration type. Packed colors are ARGB words,
// which are B,G,R,A bytes in memory, so they use the BGRA size.
func attribFormat(t overlay.DeclType) (size int32, xtype uint32, normalized bool, err error) {
	switch t {
	case overlay.DeclFloat1:
		return 1, gl.FLOAT, false, nil
	case overlay.DeclFloat2:
		return 2, gl.FLOAT, false, nil
	case overlay.DeclFloat3:
		return 3, gl.FLOAT, false, nil
	case overlay.DeclFloat4:
		return 4, gl.FLOAT, false, nil
	case overlay.DeclColor:
		return gl.BGRA, gl.UNSIGNED_BYTE, true, nil
	}
	return 0, 0, false, fmt.Errorf("unsupported vertex element type %d", t)
}
