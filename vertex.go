package overlay

import (
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"
)

// Point is an integer position in frame-buffer pixels.
type Point struct {
	X, Y int32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int32) Point {
	return Point{X: x, Y: y}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// Vertex is one entry of an overlay vertex stream.
//
// U and V are carried for texturing support; the rasterizer ignores them.
type Vertex struct {
	X, Y  float32
	U, V  float32
	Color Color
}

// InRange reports whether X and Y are finite and fit in an int32.
func (v Vertex) InRange() bool {
	return coordInRange(v.X) && coordInRange(v.Y)
}

// NaN fails both comparisons.
func coordInRange(f float32) bool {
	return f >= math.MinInt32 && f < -math.MinInt32
}

// VertexStride is the size in bytes of one Vertex in an overlay buffer.
const VertexStride = int(unsafe.Sizeof(Vertex{}))

// Vertex attribute offsets within a Vertex.
const (
	positionOffset = 0
	uvOffset       = 8
	colorOffset    = 16
)

// VertexLayout describes the memory layout of Vertex as a vertex buffer layout:
// position (Float32x2), texture coordinates (Float32x2) and color (Unorm8x4).
func VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(VertexStride),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: positionOffset, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: uvOffset, ShaderLocation: 1},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: colorOffset, ShaderLocation: 2},
		},
	}
}
