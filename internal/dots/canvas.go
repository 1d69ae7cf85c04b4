package dots

import (
	"image"
	"image/color"
	"math/bits"

	"github.com/boljen/go-bitmap"
)

// Palette maps bit 0 to the white background and bit 1 to black dots.
var Palette = color.Palette{color.White, color.Black}

// Canvas is a width x height 1-bit pixel buffer. A set bit is foreground.
type Canvas struct {
	width  int
	height int
	bits   bitmap.Bitmap
}

// NewCanvas returns an all-background canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		bits:   bitmap.New(width * height),
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Set marks (x, y) as foreground. Coordinates outside the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.bits.Set(y*c.width+x, true)
}

// IsSet reports whether (x, y) is foreground.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return false
	}
	return c.bits.Get(y*c.width + x)
}

// Bytes returns a copy of the packed pixel buffer.
func (c *Canvas) Bytes() []byte {
	return c.bits.Data(true)
}

// Coverage returns the fraction of foreground pixels.
func (c *Canvas) Coverage() float64 {
	total := c.width * c.height
	if total == 0 {
		return 0
	}
	set := 0
	for _, b := range c.bits.Data(false) {
		set += bits.OnesCount8(b)
	}
	return float64(set) / float64(total)
}

// ColorModel implements image.Image.
func (c *Canvas) ColorModel() color.Model {
	return Palette
}

// Bounds implements image.Image.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// At implements image.Image.
func (c *Canvas) At(x, y int) color.Color {
	if c.IsSet(x, y) {
		return Palette[1]
	}
	return Palette[0]
}

// Paletted converts the canvas to a two-color paletted image, which
// image/png encodes at one bit per pixel.
func (c *Canvas) Paletted() *image.Paletted {
	img := image.NewPaletted(c.Bounds(), Palette)
	for y := 0; y < c.height; y++ {
		row := y * img.Stride
		for x := 0; x < c.width; x++ {
			if c.bits.Get(y*c.width + x) {
				img.Pix[row+x] = 1
			}
		}
	}
	return img
}

// Gray converts the canvas to an 8-bit grayscale image.
func (c *Canvas) Gray() *image.Gray {
	img := image.NewGray(c.Bounds())
	for y := 0; y < c.height; y++ {
		row := y * img.Stride
		for x := 0; x < c.width; x++ {
			if c.bits.Get(y*c.width + x) {
				img.Pix[row+x] = 0
			} else {
				img.Pix[row+x] = 255
			}
		}
	}
	return img
}
