package render

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint8{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// dotGrid is a braille raster: each cell holds 2x4 dots.
type dotGrid struct {
	cols  int
	rows  int
	cells []uint8
}

func newDotGrid(cols, rows int) *dotGrid {
	return &dotGrid{cols: cols, rows: rows, cells: make([]uint8, cols*rows)}
}

func (g *dotGrid) dotsX() int { return g.cols * 2 }
func (g *dotGrid) dotsY() int { return g.rows * 4 }

func (g *dotGrid) set(x, y int) {
	if x < 0 || y < 0 || x >= g.dotsX() || y >= g.dotsY() {
		return
	}
	g.cells[(y/4)*g.cols+x/2] |= 1 << brailleBits[x%2][y%4]
}

func (g *dotGrid) cell(col, row int) uint8 {
	return g.cells[row*g.cols+col]
}

// line plots a Bresenham segment between two dots.
func (g *dotGrid) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy

	for {
		g.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
