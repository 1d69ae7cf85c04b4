package encode

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/cwbudde/dotgrid/internal/dots"
)

// WriteSVG draws the dot centers as circles on a white background. Centers
// snap to their pixel the same way the raster renderer does, so the vector
// output lines up with the PNG.
func WriteSVG(w io.Writer, res *dots.Result) error {
	if res == nil {
		return fmt.Errorf("result cannot be nil")
	}
	p := res.Params

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(p.Width, p.Height)
	canvas.Rect(0, 0, p.Width, p.Height, "fill:white")
	canvas.Gid("dots")
	for _, c := range res.Points {
		x := int(math.Floor(c.X))
		y := int(math.Floor(c.Y))
		if p.Radius == 0 {
			canvas.Rect(x, y, 1, 1, "fill:black")
			continue
		}
		canvas.Circle(x, y, p.Radius, "fill:black")
	}
	canvas.Gend()
	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("failed to write svg: %w", ew.err)
	}
	return nil
}

// errWriter keeps the first write error, which svgo discards.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}
