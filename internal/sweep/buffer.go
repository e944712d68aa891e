package sweep

// Sink is the device-side vertex buffer. Implementations must accept two
// writes per frame, a tail fragment followed by a head fragment at offset 0.
type Sink interface {
	Write(offset int, data []byte)
	CapacityBytes() int
}

// Presenter receives the draw call issued at the end of Chart.Draw.
type Presenter interface {
	DrawArrays(kind PrimitiveKind, first, count int)
}

// MemoryBuffer is a Sink backed by a fixed byte slice.
type MemoryBuffer struct {
	buf []byte
}

// NewMemoryBuffer allocates room for points vertices.
func NewMemoryBuffer(points int) *MemoryBuffer {
	if points < 0 {
		points = 0
	}
	return &MemoryBuffer{buf: make([]byte, points*VertexSize)}
}

// Write copies data at offset. Bytes past the end are discarded.
func (b *MemoryBuffer) Write(offset int, data []byte) {
	if offset < 0 || offset >= len(b.buf) {
		return
	}
	copy(b.buf[offset:], data)
}

func (b *MemoryBuffer) CapacityBytes() int { return len(b.buf) }

// Bytes exposes the backing storage. Callers must not write to it.
func (b *MemoryBuffer) Bytes() []byte { return b.buf }

// Vertex decodes the vertex stored in slot i.
func (b *MemoryBuffer) Vertex(i int) ScreenPoint {
	return DecodeVertex(b.buf[i*VertexSize:])
}

// Vertices returns the number of vertex slots.
func (b *MemoryBuffer) Vertices() int { return len(b.buf) / VertexSize }
