// Package sweep buffers live time-series samples for a sweep chart: a
// bounded ring between producers and the render loop, and a
// fixed-capacity vertex buffer that is overwritten in place as the
// sweep wraps.
package sweep

import (
	"encoding/binary"
	"math"
)

// ScreenPoint is a position in device coordinates.
type ScreenPoint struct {
	X float32
	Y float32
	Z float32
}

// TimedPoint is the unit carried through the ring buffer.
type TimedPoint struct {
	Value       ScreenPoint
	TimestampMs uint64
}

const (
	floatsPerVertex = 3
	floatSize       = 4

	// VertexSize is the encoded size of one ScreenPoint in the device buffer.
	VertexSize = floatsPerVertex * floatSize
)

// nanBits is the quiet NaN written for pen-lifts and evicted vertices.
const nanBits = 0x7FC00000

// Break is the pen-lift vertex. Every component is NaN.
var Break = ScreenPoint{
	X: math.Float32frombits(nanBits),
	Y: math.Float32frombits(nanBits),
	Z: math.Float32frombits(nanBits),
}

// IsBreak reports whether p is a pen-lift or evicted vertex.
func (p ScreenPoint) IsBreak() bool {
	return math.IsNaN(float64(p.X)) || math.IsNaN(float64(p.Y))
}

// AppendVertex appends the little-endian encoding of p to dst.
func AppendVertex(dst []byte, p ScreenPoint) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(p.X))
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(p.Y))
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(p.Z))
}

// DecodeVertex reads the vertex encoded at the start of src.
func DecodeVertex(src []byte) ScreenPoint {
	return ScreenPoint{
		X: math.Float32frombits(binary.LittleEndian.Uint32(src[0:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(src[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(src[8:])),
	}
}

// tombstones returns n vertices worth of the NaN pattern.
func tombstones(n int) []byte {
	b := make([]byte, n*VertexSize)
	for i := 0; i < len(b); i += floatSize {
		binary.LittleEndian.PutUint32(b[i:], nanBits)
	}
	return b
}
