package dots

import "math"

// Renderer rasterizes filled dots of a fixed radius.
type Renderer struct {
	width  int
	height int
	radius int
}

// NewRenderer validates the radius and returns a renderer for a
// width x height canvas.
func NewRenderer(width, height, radius int) (*Renderer, error) {
	if width <= 0 {
		return nil, &ParamError{Kind: ErrInvalidDimension, Field: "width", Value: width, Reason: "must be positive"}
	}
	if height <= 0 {
		return nil, &ParamError{Kind: ErrInvalidDimension, Field: "height", Value: height, Reason: "must be positive"}
	}
	if radius < 0 {
		return nil, &ParamError{Kind: ErrInvalidRadius, Field: "radius", Value: radius, Reason: "cannot be negative"}
	}
	return &Renderer{width: width, height: height, radius: radius}, nil
}

// Render draws every center onto a fresh canvas.
func (r *Renderer) Render(centers []Point) *Canvas {
	canvas := NewCanvas(r.width, r.height)
	for _, c := range centers {
		r.Draw(canvas, c)
	}
	return canvas
}

// Draw fills the disc around center on canvas. The center snaps to the
// pixel containing it; pixels outside the canvas are discarded.
func (r *Renderer) Draw(canvas *Canvas, center Point) {
	cx := int(math.Floor(center.X))
	cy := int(math.Floor(center.Y))
	rad := r.radius
	r2 := rad * rad

	// Compute clipped bounding box
	minX := max(cx-rad, 0)
	maxX := min(cx+rad, canvas.width-1)
	minY := max(cy-rad, 0)
	maxY := min(cy+rad, canvas.height-1)

	for y := minY; y <= maxY; y++ {
		dy := y - cy
		for x := minX; x <= maxX; x++ {
			dx := x - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			canvas.bits.Set(y*canvas.width+x, true)
		}
	}
}
