package material

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Color // Row-major, row 0 is the top of the image
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Color) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Evaluate samples the texture with bilinear filtering. UVs repeat outside
// [0,1] and V=0 is the bottom of the image.
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Color {
	if t.Width == 0 || t.Height == 0 {
		return core.Transparent
	}

	// Texel centers sit at half-integer coordinates
	x := wrap(uv.X)*float64(t.Width) - 0.5
	y := (1-wrap(uv.Y))*float64(t.Height) - 0.5

	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0

	c00 := t.texel(int(x0), int(y0))
	c10 := t.texel(int(x0)+1, int(y0))
	c01 := t.texel(int(x0), int(y0)+1)
	c11 := t.texel(int(x0)+1, int(y0)+1)

	top := c00.Multiply(1 - fx).Add(c10.Multiply(fx))
	bottom := c01.Multiply(1 - fx).Add(c11.Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}

// texel returns the pixel at (x, y) with repeat addressing
func (t *ImageTexture) texel(x, y int) core.Color {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}
	return t.Pixels[y*t.Width+x]
}

// wrap maps a coordinate into [0, 1)
func wrap(v float64) float64 {
	return v - math.Floor(v)
}
