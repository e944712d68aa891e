// Package render rasterizes a sweep chart vertex buffer into braille
// terminal text. Canvas plays the part of the graphics backend: it is
// the device buffer sink and receives the chart's draw calls.
package render

import (
	"math"
	"strings"

	"github.com/muesli/termenv"
	"github.com/olivier-w/sweep/internal/sweep"
)

// Head is the sweep head position passed to Render, in dot coordinates.
type Head struct {
	X       float32
	Y       float32
	Visible bool
}

// Canvas is a sweep.Sink and sweep.Presenter backed by memory.
type Canvas struct {
	buf     *sweep.MemoryBuffer
	kind    sweep.PrimitiveKind
	first   int
	count   int
	profile termenv.Profile
	lead    leadLine
}

// NewCanvas allocates a device buffer of points vertices. fps is the
// render rate used to ease the lead marker.
func NewCanvas(points, fps int) *Canvas {
	return &Canvas{
		buf:     sweep.NewMemoryBuffer(points),
		profile: termenv.EnvColorProfile(),
		lead:    newLeadLine(fps),
	}
}

func (c *Canvas) Write(offset int, data []byte) { c.buf.Write(offset, data) }

func (c *Canvas) CapacityBytes() int { return c.buf.CapacityBytes() }

// DrawArrays records the draw call; the raster is built in Render.
func (c *Canvas) DrawArrays(kind sweep.PrimitiveKind, first, count int) {
	c.kind = kind
	c.first = first
	c.count = min(max(count, 0), c.buf.Vertices())
	if c.count == 0 {
		c.lead.reset()
	}
}

// Count returns the vertex count of the last draw call.
func (c *Canvas) Count() int { return c.count }

// Geometry returns the plot geometry in dot coordinates for a cols x rows
// cell area. The range minimum sits on the bottom dot row.
func Geometry(cols, rows int) sweep.Geometry {
	dotsX := max(cols*2, 2)
	dotsY := max(rows*4, 2)
	return sweep.Geometry{
		Left:     0,
		Baseline: float32(dotsY - 1),
		Width:    float32(dotsX - 1),
		Height:   float32(dotsY - 1),
	}
}

func (c *Canvas) rasterize(cols, rows int) *dotGrid {
	g := newDotGrid(cols, rows)
	end := c.first + c.count

	switch c.kind {
	case sweep.Points:
		for i := c.first; i < end; i++ {
			if v := c.buf.Vertex(i); !v.IsBreak() {
				g.set(dot(v.X), dot(v.Y))
			}
		}
	case sweep.Lines:
		for i := c.first; i+1 < end; i += 2 {
			a, b := c.buf.Vertex(i), c.buf.Vertex(i+1)
			if a.IsBreak() || b.IsBreak() {
				continue
			}
			g.line(dot(a.X), dot(a.Y), dot(b.X), dot(b.Y))
		}
	default:
		var prev sweep.ScreenPoint
		havePrev := false
		for i := c.first; i < end; i++ {
			v := c.buf.Vertex(i)
			if v.IsBreak() {
				havePrev = false
				continue
			}
			if havePrev {
				g.line(dot(prev.X), dot(prev.Y), dot(v.X), dot(v.Y))
			} else {
				g.set(dot(v.X), dot(v.Y))
			}
			prev, havePrev = v, true
		}
	}
	return g
}

// Render draws the last draw call into a cols x rows block of text.
func (c *Canvas) Render(cols, rows int, head Head) string {
	if cols < 1 || rows < 1 {
		return ""
	}
	g := c.rasterize(cols, rows)

	headCol, markerRow := -1, -1
	if head.Visible && c.count > 0 {
		headCol = clampInt(dot(head.X)/2, 0, cols-1)
		markerRow = clampInt(dot(float32(c.lead.step(float64(head.Y))))/4, 0, rows-1)
	}

	var out strings.Builder
	color := newANSIState(c.profile)
	for r := range rows {
		if r > 0 {
			out.WriteByte('\n')
		}
		for col := range cols {
			pattern := g.cell(col, r)
			switch {
			case col == headCol && r == markerRow:
				color.set(&out, headColor)
				out.WriteRune('●')
			case pattern != 0:
				age := 0.0
				if headCol >= 0 {
					age = float64((headCol-col+cols)%cols) / float64(cols)
				}
				color.set(&out, traceColor(age))
				out.WriteRune(rune(0x2800 + int(pattern)))
			case headCol >= 0 && col == (headCol+1)%cols:
				color.set(&out, cursorColor)
				out.WriteRune('│')
			default:
				out.WriteByte(' ')
			}
		}
		color.reset(&out)
	}
	return out.String()
}

func dot(v float32) int {
	return int(math.Round(float64(v)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
