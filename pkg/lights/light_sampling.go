package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Shininess is the fixed Blinn-Phong exponent
const Shininess = 128.0

// DirectLighting sums the contribution of every enabled light. Each
// contribution has its alpha forced to 1, so a point no light reaches is
// opaque black rather than transparent.
func DirectLighting(lights []Light, sp ShadingPoint, occluder Occluder) core.Color {
	color := core.Transparent
	for _, light := range lights {
		if !light.Enabled() {
			continue
		}
		color = color.Add(light.Contribution(sp, occluder).WithAlpha(1))
	}
	return color
}

// ValidateAll validates each light, reporting the first failure with its index
func ValidateAll(lights []Light) error {
	for i, light := range lights {
		if light == nil {
			return fmt.Errorf("light %d: %w: nil light", i, ErrDegenerateLight)
		}
		if err := light.Validate(); err != nil {
			return fmt.Errorf("light %d (%s): %w", i, light.Type(), err)
		}
	}
	return nil
}

// Falloff is the distance attenuation 1 / (1 + 25 (d/r)^2). It is 1 at the
// light and 1/26 at its range.
func Falloff(distance, lightRange float64) float64 {
	r := distance / lightRange
	return 1 / (1 + 25*r*r)
}

// blinnPhong returns the specular term for light arriving along toLight
func blinnPhong(toLight, view, normal core.Vec3) float64 {
	half := toLight.Add(view).Normalize()
	dot := half.Dot(normal)
	if dot <= 0 {
		return 0
	}
	return math.Pow(dot, Shininess)
}

// viewVector points from the shading point toward the eye
func viewVector(sp ShadingPoint) core.Vec3 {
	return sp.Eye.Subtract(sp.Point).Normalize()
}

func validateBase(b Base, needsRange bool) error {
	if b.Intensity < 0 || math.IsNaN(b.Intensity) {
		return fmt.Errorf("%w: negative intensity %f", ErrDegenerateLight, b.Intensity)
	}
	if needsRange && !(b.Range > 0) {
		return fmt.Errorf("%w: range must be positive, got %f", ErrDegenerateLight, b.Range)
	}
	return nil
}
