package sweep

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/olivier-w/sweep/internal/clock"
)

// DefaultRingCapacity is used when Options.RingCapacity is zero.
const DefaultRingCapacity = 4096

// ErrConfig is wrapped by every constructor validation error.
var ErrConfig = errors.New("invalid chart options")

// Options configures a Chart.
type Options struct {
	RingCapacity int // power of two; DefaultRingCapacity when zero
	TimeRangeMs  float64
	MinY         float32
	MaxY         float32
	Geometry     Geometry
	Primitive    PrimitiveKind
	Presenter    Presenter   // optional
	Clock        clock.Clock // for AddSample; clock.Real() when nil
}

// Stats is a point-in-time summary for status displays.
type Stats struct {
	PointCount  int
	Capacity    int
	Wrapped     bool
	Buffered    int // samples waiting in the ring
	RingCap     int
	Overruns    uint64
	WriteCursor int // bytes
	EvictCursor int // bytes
}

// Chart owns the fixed-capacity device buffer of a sweep chart.
//
// AddDatapoint and AddSample may be called from any goroutine. Every
// other method belongs to the single render goroutine; the device buffer
// and its cursors are not locked.
//
// Both cursors are derived from monotonic vertex sequence numbers: the
// vertex with sequence s lives in slot s % capacity. A pen-lift vertex
// occupies a slot like any other.
type Chart struct {
	source    *RingBuffer
	sink      Sink
	presenter Presenter
	clock     clock.Clock
	epoch     time.Time
	mapper    atomic.Pointer[Mapper]
	kind      PrimitiveKind

	capacity   int      // vertex slots
	stamps     []uint64 // timestamp of the vertex held by each slot
	tombstones []byte   // capacity vertices of NaN

	writeSeq   uint64 // vertices written since Clear
	evictSeq   uint64 // first vertex not yet invalidated
	pointCount int
	wrapped    bool
	lastX      float32
	lastY      float32

	pending       []byte
	pendingStamps []uint64
}

// New creates a chart drawing into sink. The device capacity in points
// is sink.CapacityBytes() / VertexSize.
func New(sink Sink, opts Options) (*Chart, error) {
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", ErrConfig)
	}
	size := sink.CapacityBytes()
	if size <= 0 || size%VertexSize != 0 {
		return nil, fmt.Errorf("%w: sink capacity %d is not a positive multiple of %d bytes", ErrConfig, size, VertexSize)
	}
	if !(opts.TimeRangeMs > 0) {
		return nil, fmt.Errorf("%w: time range must be positive, got %v", ErrConfig, opts.TimeRangeMs)
	}
	if !(opts.MinY < opts.MaxY) {
		return nil, fmt.Errorf("%w: min y %v must be below max y %v", ErrConfig, opts.MinY, opts.MaxY)
	}

	ringCap := opts.RingCapacity
	if ringCap == 0 {
		ringCap = DefaultRingCapacity
	}
	ring, err := NewRingBuffer(ringCap)
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	capacity := size / VertexSize
	c := &Chart{
		source:     ring,
		sink:       sink,
		presenter:  opts.Presenter,
		clock:      clk,
		epoch:      clk.Now(),
		kind:       opts.Primitive,
		capacity:   capacity,
		stamps:     make([]uint64, capacity),
		tombstones: tombstones(capacity),
	}
	c.mapper.Store(&Mapper{
		Geometry:    opts.Geometry,
		MinY:        opts.MinY,
		MaxY:        opts.MaxY,
		TimeRangeMs: opts.TimeRangeMs,
	})
	c.resetPen()
	return c, nil
}

// AddDatapoint maps a sample and queues it for the next Draw. Samples
// outside [MinY, MaxY] are dropped.
func (c *Chart) AddDatapoint(value float32, timestampMs uint64) {
	p, ok := c.mapper.Load().Map(value, timestampMs)
	if !ok {
		return
	}
	c.source.InsertAtTail(TimedPoint{Value: p, TimestampMs: timestampMs})
}

// AddSample is AddDatapoint stamped with the chart clock, in
// milliseconds since the chart was created.
func (c *Chart) AddSample(value float32) {
	c.AddDatapoint(value, clock.Millis(c.epoch, c.clock.Now()))
}

// Draw runs one frame: drain the ring, stage pen-lifts, write with
// wraparound, evict vertices older than the time window, then hand the
// draw call to the presenter. It does nothing when no points arrived.
func (c *Chart) Draw() {
	points := c.source.PopLatest()
	if len(points) == 0 {
		return
	}

	c.stage(points)
	c.writeVertices()
	c.evict(c.mapper.Load().WindowStart(points[len(points)-1].TimestampMs))

	if c.presenter != nil {
		c.presenter.DrawArrays(c.kind, 0, c.pointCount)
	}
}

func (c *Chart) stage(points []TimedPoint) {
	c.pending = c.pending[:0]
	c.pendingStamps = c.pendingStamps[:0]

	for _, p := range points {
		// The sweep went back to the left edge: lift the pen so the
		// strip does not join the two ends.
		if p.Value.X < c.lastX {
			c.appendVertex(Break, p.TimestampMs)
		}
		c.appendVertex(p.Value, p.TimestampMs)
		c.lastX = p.Value.X
	}
	c.lastY = points[len(points)-1].Value.Y
}

func (c *Chart) appendVertex(p ScreenPoint, ts uint64) {
	c.pending = AppendVertex(c.pending, p)
	c.pendingStamps = append(c.pendingStamps, ts)
}

func (c *Chart) writeVertices() {
	data, stamps := c.pending, c.pendingStamps

	// Anything beyond one buffer's worth would be overwritten within
	// this same frame.
	if skip := len(stamps) - c.capacity; skip > 0 {
		c.writeSeq += uint64(skip)
		data = data[skip*VertexSize:]
		stamps = stamps[skip:]
	}

	n := len(stamps)
	start := c.slot(c.writeSeq)
	fit := min(n, c.capacity-start)

	c.sink.Write(start*VertexSize, data[:fit*VertexSize])
	copy(c.stamps[start:], stamps[:fit])
	if fit < n {
		c.sink.Write(0, data[fit*VertexSize:])
		copy(c.stamps, stamps[fit:])
	}
	c.writeSeq += uint64(n)

	// After the first wrap every write replaces an existing vertex.
	if !c.wrapped {
		if c.writeSeq > uint64(c.capacity) {
			c.wrapped = true
			c.pointCount = c.capacity
		} else {
			c.pointCount = int(c.writeSeq)
		}
	}
}

// evict invalidates every live vertex stamped before windowStart.
func (c *Chart) evict(windowStart float64) {
	if oldest := c.oldestSeq(); c.evictSeq < oldest {
		c.evictSeq = oldest
	}

	lo := c.evictSeq
	n := int(c.writeSeq - lo)
	i := sort.Search(n, func(i int) bool {
		return float64(c.stamps[c.slot(lo+uint64(i))]) >= windowStart
	})
	if i == 0 {
		return
	}

	c.invalidate(lo, i)
	c.evictSeq = lo + uint64(i)
}

func (c *Chart) invalidate(from uint64, n int) {
	start := c.slot(from)
	fit := min(n, c.capacity-start)
	c.sink.Write(start*VertexSize, c.tombstones[:fit*VertexSize])
	if fit < n {
		c.sink.Write(0, c.tombstones[:(n-fit)*VertexSize])
	}
}

// oldestSeq is the first vertex still physically in the buffer.
func (c *Chart) oldestSeq() uint64 {
	if c.writeSeq > uint64(c.capacity) {
		return c.writeSeq - uint64(c.capacity)
	}
	return 0
}

func (c *Chart) slot(seq uint64) int {
	return int(seq % uint64(c.capacity))
}

func (c *Chart) resetPen() {
	g := c.mapper.Load().Geometry
	c.lastX = g.Left
	c.lastY = g.Baseline
}

// Clear forgets everything drawn so far. The device bytes are left in
// place; with a point count of zero they are unreachable.
func (c *Chart) Clear() {
	c.writeSeq = 0
	c.evictSeq = 0
	c.pointCount = 0
	c.wrapped = false
	c.resetPen()
	if c.presenter != nil {
		c.presenter.DrawArrays(c.kind, 0, 0)
	}
}

// SetTimeRange changes the visible window. Already buffered vertices are
// re-evicted on the next Draw, not now. Non-positive ranges are ignored.
func (c *Chart) SetTimeRange(ms float64) {
	if !(ms > 0) {
		return
	}
	next := *c.mapper.Load()
	next.TimeRangeMs = ms
	c.mapper.Store(&next)
}

// SetGeometry re-targets the plot. Points already mapped with the old
// geometry are discarded and the chart is cleared.
func (c *Chart) SetGeometry(g Geometry) {
	next := *c.mapper.Load()
	next.Geometry = g
	c.mapper.Store(&next)
	c.source.PopLatest()
	c.Clear()
}

// SetPrimitive changes the primitive used for subsequent draw calls.
func (c *Chart) SetPrimitive(kind PrimitiveKind) {
	c.kind = kind
	if c.presenter != nil {
		c.presenter.DrawArrays(c.kind, 0, c.pointCount)
	}
}

// Primitive returns the primitive used for draw calls.
func (c *Chart) Primitive() PrimitiveKind { return c.kind }

// TimeRange returns the window length in milliseconds.
func (c *Chart) TimeRange() float64 { return c.mapper.Load().TimeRangeMs }

// Geometry returns the current plot geometry.
func (c *Chart) Geometry() Geometry { return c.mapper.Load().Geometry }

// LastPlottedX is the x of the newest drawn point, or the left edge.
func (c *Chart) LastPlottedX() float32 { return c.lastX }

// LastPlottedY is the y of the newest drawn point, or the baseline.
func (c *Chart) LastPlottedY() float32 { return c.lastY }

// PointCount is the vertex count for the draw call.
func (c *Chart) PointCount() int { return c.pointCount }

// HasWrapped reports whether the device buffer has wrapped since Clear.
func (c *Chart) HasWrapped() bool { return c.wrapped }

// Latest peeks at the newest queued or drawn point.
func (c *Chart) Latest() (TimedPoint, bool) { return c.source.Latest() }

// Stats summarizes the chart for status displays.
func (c *Chart) Stats() Stats {
	return Stats{
		PointCount:  c.pointCount,
		Capacity:    c.capacity,
		Wrapped:     c.wrapped,
		Buffered:    c.source.Len(),
		RingCap:     c.source.Cap(),
		Overruns:    c.source.Overruns(),
		WriteCursor: c.slot(c.writeSeq) * VertexSize,
		EvictCursor: c.slot(c.evictSeq) * VertexSize,
	}
}
