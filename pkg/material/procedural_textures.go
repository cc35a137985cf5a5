package material

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// NewCheckerboardTexture creates a checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Color) *ImageTexture {
	pixels := make([]core.Color, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}

	return NewImageTexture(width, height, pixels)
}

// NewGradientTexture creates a vertical gradient from color1 (top) to color2 (bottom)
func NewGradientTexture(width, height int, color1, color2 core.Color) *ImageTexture {
	pixels := make([]core.Color, width*height)

	for y := 0; y < height; y++ {
		t := float64(y) / float64(max(1, height-1))
		color := color1.Multiply(1.0 - t).Add(color2.Multiply(t))

		for x := 0; x < width; x++ {
			pixels[y*width+x] = color
		}
	}

	return NewImageTexture(width, height, pixels)
}

// WorldChecker is a procedural ColorSource that alternates two colors on a
// 3D grid of cells, independent of UVs
type WorldChecker struct {
	Size float64
	Even core.Color
	Odd  core.Color
}

// Evaluate returns Even or Odd depending on which cell point falls in
func (w *WorldChecker) Evaluate(uv core.Vec2, point core.Vec3) core.Color {
	cell := math.Floor(point.X/w.Size) + math.Floor(point.Y/w.Size) + math.Floor(point.Z/w.Size)
	if math.Mod(math.Abs(cell), 2) == 0 {
		return w.Even
	}
	return w.Odd
}
