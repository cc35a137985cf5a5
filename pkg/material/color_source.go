package material

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// ColorSource provides spatially-varying base colors for diffuse surfaces
type ColorSource interface {
	// Evaluate returns the color at the given texture coordinates.
	// UV is used for image textures, point for procedural ones.
	Evaluate(uv core.Vec2, point core.Vec3) core.Color
}

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Color
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Color) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Color {
	return s.Color
}

// BaseColor returns the color a diffuse hit should be lit with: the texture
// lookup when a texture is present, else the material's own color
func BaseColor(m *Material, texture ColorSource, uv core.Vec2, point core.Vec3) core.Color {
	if texture != nil {
		return texture.Evaluate(uv, point)
	}
	return m.Color
}
