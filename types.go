package overlay

import (
	"encoding/binary"
	"math"
)

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Left, Top     float32
	Right, Bottom float32
}

// Width returns Right-Left.
func (r Rect) Width() float32 { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Color is a packed 32-bit color laid out as 0xAARRGGBB, the same
// order Direct3D uses for D3DCOLOR.
type Color uint32

// Color constants.
const (
	ColorWhite       Color = 0xFFFFFFFF
	ColorBlack       Color = 0xFF000000
	ColorRed         Color = 0xFFFF0000
	ColorGreen       Color = 0xFF00FF00
	ColorBlue        Color = 0xFF0000FF
	ColorTransparent Color = 0x00000000
)

// ARGB creates a packed color from individual components (0-255).
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGBA extracts the components from a packed color.
func (c Color) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// Vertex is a single corner of a box.
// Memory layout matches the vertex elements returned by VertexElements.
type Vertex struct {
	Pos      [3]float32 // Position (x, y, z)
	RHW      float32    // Homogeneous weight, always 1
	Color    uint32     // ARGB packed color
	TexCoord [2]float32 // Texture coordinates (u, v)
}

// VertexSize is the size of an encoded Vertex in bytes.
const VertexSize = 28

// Byte offsets of the Vertex fields.
const (
	offsetPos      = 0
	offsetRHW      = 12
	offsetColor    = 16
	offsetTexCoord = 20
)

// put encodes v little-endian into b, which must hold VertexSize bytes.
func (v Vertex) put(b []byte) {
	le := binary.LittleEndian
	for i, f := range v.Pos {
		le.PutUint32(b[offsetPos+4*i:], math.Float32bits(f))
	}
	le.PutUint32(b[offsetRHW:], math.Float32bits(v.RHW))
	le.PutUint32(b[offsetColor:], v.Color)
	le.PutUint32(b[offsetTexCoord:], math.Float32bits(v.TexCoord[0]))
	le.PutUint32(b[offsetTexCoord+4:], math.Float32bits(v.TexCoord[1]))
}

// QuadVertices returns the four corners of a w×h quad at (x, y) in the
// order top-left, top-right, bottom-left, bottom-right.
func QuadVertices(x, y, w, h float32, c Color) [4]Vertex {
	mk := func(px, py, u, v float32) Vertex {
		return Vertex{
			Pos:      [3]float32{px, py, 0},
			RHW:      1,
			Color:    uint32(c),
			TexCoord: [2]float32{u, v},
		}
	}
	return [4]Vertex{
		mk(x, y, 0, 0),
		mk(x+w, y, 1, 0),
		mk(x, y+h, 0, 1),
		mk(x+w, y+h, 1, 1),
	}
}

// QuadIndices are the strip indices for QuadVertices. Drawn as a
// triangle strip they produce triangles {0,1,2} and {1,2,3}.
var QuadIndices = [4]uint16{0, 1, 2, 3}

// EncodeVertices encodes vs into a byte slice suitable for a vertex buffer.
func EncodeVertices(vs []Vertex) []byte {
	b := make([]byte, len(vs)*VertexSize)
	for i, v := range vs {
		v.put(b[i*VertexSize:])
	}
	return b
}

// EncodeIndices encodes 16-bit indices little-endian.
func EncodeIndices(idx []uint16) []byte {
	b := make([]byte, 2*len(idx))
	for i, v := range idx {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return b
}
