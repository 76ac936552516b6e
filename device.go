package overlay

import "github.com/go-gl/mathgl/mgl32"

// Device is the graphics device a Box renders with. It is borrowed: the
// caller creates it, keeps it alive longer than any Box using it, and
// only ever touches it from the thread that owns the graphics context.
type Device interface {
	// CreateVertexBuffer allocates a vertex buffer of size bytes.
	CreateVertexBuffer(size int) (VertexBuffer, error)
	// CreateIndexBuffer allocates a buffer for count 16-bit indices.
	CreateIndexBuffer(count int) (IndexBuffer, error)
	CreateVertexLayout(elems []VertexElement) (VertexLayout, error)
	// CreateEffect loads and compiles the effect source at path. Compile
	// failures are reported as *CompileError.
	CreateEffect(path string) (Effect, error)

	SetVertexLayout(layout VertexLayout)
	SetStreamSource(stream int, vb VertexBuffer, offset, stride int)
	SetIndices(ib IndexBuffer)

	// DrawIndexed draws primCount primitives of type prim using the bound
	// stream, indices and layout.
	DrawIndexed(prim Primitive, baseVertex, minIndex, numVertices, startIndex, primCount int) error
}

// Resource is anything owned on the device that must be released.
type Resource interface {
	Release()
}

// Buffer is a lockable device buffer. Lock returns writable memory that
// stays valid until Unlock.
type Buffer interface {
	Resource
	Lock() ([]byte, error)
	Unlock() error
}

// VertexBuffer holds vertex data.
type VertexBuffer interface {
	Buffer
}

// IndexBuffer holds 16-bit indices.
type IndexBuffer interface {
	Buffer
}

// VertexLayout describes how vertex buffer memory maps onto shader inputs.
type VertexLayout interface {
	Resource
	Elements() []VertexElement
}

// Effect is a compiled multi-pass shader.
type Effect interface {
	Resource

	// Begin starts the effect and returns its number of passes.
	Begin() (passes int, err error)
	BeginPass(pass int) error
	// SetMatrix records a matrix parameter; it reaches the shader on
	// CommitChanges.
	SetMatrix(name string, m mgl32.Mat4) error
	CommitChanges() error
	EndPass() error
	End() error

	// OnLostDevice drops device-dependent state. OnResetDevice
	// re-acquires it.
	OnLostDevice() error
	OnResetDevice() error
}

// DeclType is the data type of a vertex element.
type DeclType int

const (
	DeclFloat1 DeclType = iota
	DeclFloat2
	DeclFloat3
	DeclFloat4
	DeclColor // packed ARGB, 4 normalized bytes
)

// Size returns the element size in bytes.
func (t DeclType) Size() int {
	switch t {
	case DeclFloat1, DeclColor:
		return 4
	case DeclFloat2:
		return 8
	case DeclFloat3:
		return 12
	case DeclFloat4:
		return 16
	}
	return 0
}

// DeclUsage is the semantic of a vertex element.
type DeclUsage int

const (
	UsagePosition DeclUsage = iota
	UsageColor
	UsageTexCoord
	UsageBlendWeight
)

func (u DeclUsage) String() string {
	switch u {
	case UsagePosition:
		return "position"
	case UsageColor:
		return "color"
	case UsageTexCoord:
		return "texcoord"
	case UsageBlendWeight:
		return "blendweight"
	}
	return "unknown"
}

// VertexElement is one entry of a vertex declaration.
type VertexElement struct {
	Stream int
	Offset int
	Type   DeclType
	Usage  DeclUsage
}

// VertexElements returns the declaration for Vertex.
func VertexElements() []VertexElement {
	return []VertexElement{
		{Stream: 0, Offset: offsetPos, Type: DeclFloat3, Usage: UsagePosition},
		{Stream: 0, Offset: offsetRHW, Type: DeclFloat1, Usage: UsageBlendWeight},
		{Stream: 0, Offset: offsetColor, Type: DeclColor, Usage: UsageColor},
		{Stream: 0, Offset: offsetTexCoord, Type: DeclFloat2, Usage: UsageTexCoord},
	}
}

// Primitive is a draw topology.
type Primitive int

const (
	TriangleList Primitive = iota
	TriangleStrip
	LineList
)

func (p Primitive) String() string {
	switch p {
	case TriangleList:
		return "triangle list"
	case TriangleStrip:
		return "triangle strip"
	case LineList:
		return "line list"
	}
	return "unknown"
}

// IndexCount returns the number of indices needed for primCount primitives.
func IndexCount(p Primitive, primCount int) int {
	if primCount <= 0 {
		return 0
	}
	switch p {
	case TriangleList:
		return 3 * primCount
	case TriangleStrip:
		return primCount + 2
	case LineList:
		return 2 * primCount
	}
	return 0
}

// PrimitiveCount returns how many primitives indexCount indices produce.
func PrimitiveCount(p Primitive, indexCount int) int {
	switch p {
	case TriangleList:
		return indexCount / 3
	case TriangleStrip:
		if indexCount < 3 {
			return 0
		}
		return indexCount - 2
	case LineList:
		return indexCount / 2
	}
	return 0
}

// StripTriangles expands strip indices into the triangles they form.
// Odd triangles keep the index order of the strip, as Direct3D does;
// the winding flip is left to the rasterizer.
func StripTriangles(idx []uint16) [][3]uint16 {
	var tris [][3]uint16
	for i := 0; i+2 < len(idx); i++ {
		tris = append(tris, [3]uint16{idx[i], idx[i+1], idx[i+2]})
	}
	return tris
}
