package encode

import (
	"image"

	"github.com/cwbudde/dotgrid/internal/dots"
	"golang.org/x/image/draw"
)

// Thumbnail scales the canvas so its longer side is at most maxSide pixels.
// Canvases already within the limit are returned at full size.
func Thumbnail(canvas *dots.Canvas, maxSide int) *image.Gray {
	src := canvas.Gray()
	w, h := canvas.Width(), canvas.Height()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return src
	}

	tw, th := maxSide, maxSide
	if w >= h {
		th = max(1, h*maxSide/w)
	} else {
		tw = max(1, w*maxSide/h)
	}

	dst := image.NewGray(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
