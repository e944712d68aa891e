package sweep

import "math"

// Geometry places the plot in device coordinates. Baseline is the y that
// the range minimum maps to; y moves by -Height across the value range.
type Geometry struct {
	Left     float32
	Baseline float32
	Width    float32
	Height   float32
	Depth    float32
}

// Mapper projects raw samples onto the plot. It is an immutable value:
// the chart replaces it wholesale when the time range or geometry changes.
type Mapper struct {
	Geometry    Geometry
	MinY        float32
	MaxY        float32
	TimeRangeMs float64
}

// Map returns the screen position of value at timestampMs. Values outside
// [MinY, MaxY] are not clamped: ok is false and the sample is dropped.
func (m *Mapper) Map(value float32, timestampMs uint64) (p ScreenPoint, ok bool) {
	if !(value >= m.MinY && value <= m.MaxY) {
		return ScreenPoint{}, false
	}
	g := m.Geometry

	frac := float64(value-m.MinY) / float64(m.MaxY-m.MinY)
	y := float64(g.Baseline) - frac*float64(g.Height)

	xMod := math.Mod(float64(timestampMs), m.TimeRangeMs)
	x := float64(g.Left) + xMod/m.TimeRangeMs*float64(g.Width)

	return ScreenPoint{X: float32(x), Y: float32(y), Z: g.Depth}, true
}

// WindowStart returns the oldest timestamp still inside the window that
// ends at latestMs. It may be negative early in a stream.
func (m *Mapper) WindowStart(latestMs uint64) float64 {
	return float64(latestMs) - m.TimeRangeMs
}
