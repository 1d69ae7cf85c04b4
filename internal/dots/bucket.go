package dots

import "math"

// BucketGrid is a uniform spatial index over the canvas. Cell side is
// minDist/√2, so any point closer than minDist to a query lies at most two
// cells away along each axis.
type BucketGrid struct {
	cellSize float64
	cols     int
	rows     int
	head     []int32 // first point index per cell, -1 when empty
	next     []int32 // next point index in the same cell, -1 at the end
	points   []Point
}

// NewBucketGrid allocates an empty grid covering width x height.
func NewBucketGrid(width, height int, minDist float64) *BucketGrid {
	cellSize := minDist / math.Sqrt2
	cols := int(math.Ceil(float64(width) / cellSize))
	rows := int(math.Ceil(float64(height) / cellSize))
	cols = max(cols, 1)
	rows = max(rows, 1)

	head := make([]int32, cols*rows)
	for i := range head {
		head[i] = -1
	}

	return &BucketGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		head:     head,
	}
}

// CellSize returns the side length of one cell.
func (g *BucketGrid) CellSize() float64 {
	return g.cellSize
}

// Dims returns the number of columns and rows.
func (g *BucketGrid) Dims() (cols, rows int) {
	return g.cols, g.rows
}

// Len returns the number of stored points.
func (g *BucketGrid) Len() int {
	return len(g.points)
}

// Points returns the stored points in insertion order.
func (g *BucketGrid) Points() []Point {
	return g.points
}

// cell returns the clamped cell indices containing p.
func (g *BucketGrid) cell(p Point) (int, int) {
	cx := int(math.Floor(p.X / g.cellSize))
	cy := int(math.Floor(p.Y / g.cellSize))
	return clampInt(cx, 0, g.cols-1), clampInt(cy, 0, g.rows-1)
}

// Insert stores p. p must lie inside the canvas.
func (g *BucketGrid) Insert(p Point) {
	cx, cy := g.cell(p)
	c := cy*g.cols + cx

	idx := int32(len(g.points))
	g.points = append(g.points, p)
	g.next = append(g.next, g.head[c])
	g.head[c] = idx
}

// HasNeighborWithin reports whether a stored point lies strictly closer
// than dist to c.
func (g *BucketGrid) HasNeighborWithin(c Point, dist float64) bool {
	reach := int(math.Ceil(dist / g.cellSize))
	cx, cy := g.cell(c)
	d2 := dist * dist

	x0, x1 := max(cx-reach, 0), min(cx+reach, g.cols-1)
	y0, y1 := max(cy-reach, 0), min(cy+reach, g.rows-1)

	for y := y0; y <= y1; y++ {
		row := y * g.cols
		for x := x0; x <= x1; x++ {
			for i := g.head[row+x]; i >= 0; i = g.next[i] {
				q := g.points[i]
				dx := q.X - c.X
				dy := q.Y - c.Y
				if dx*dx+dy*dy < d2 {
					return true
				}
			}
		}
	}
	return false
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
