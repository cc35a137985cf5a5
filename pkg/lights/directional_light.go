package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// DirectionalLight is an infinitely distant light shining along Forward
type DirectionalLight struct {
	Base
	Forward core.Vec3 // Unit direction the light travels
}

// NewDirectionalLight creates a directional light shining along forward
func NewDirectionalLight(forward core.Vec3, color core.Color, intensity float64) *DirectionalLight {
	return &DirectionalLight{
		Base:    Base{Color: color, Intensity: intensity},
		Forward: forward.Normalize(),
	}
}

func (l *DirectionalLight) Type() LightType {
	return LightTypeDirectional
}

// Validate implements Light
func (l *DirectionalLight) Validate() error {
	if err := validateBase(l.Base, false); err != nil {
		return err
	}
	if l.Forward.IsZero() {
		return fmt.Errorf("%w: zero forward direction", ErrDegenerateLight)
	}
	return nil
}

// Contribution implements Light. Diffuse is max(0, dot(-forward, n)) and the
// shadow ray toward the light is unbounded.
func (l *DirectionalLight) Contribution(sp ShadingPoint, occluder Occluder) core.Color {
	toLight := l.Forward.Negate().Normalize()
	diffuse := toLight.Dot(sp.Normal)
	if diffuse <= 0 {
		return core.Transparent
	}

	if occluder.IntersectAny(sp.Point, toLight, math.Inf(1)) {
		return core.Transparent
	}

	spec := blinnPhong(toLight, viewVector(sp), sp.Normal)
	return l.Color.Multiply(l.Intensity * spec * sp.Ks).
		Add(sp.SurfaceColor.Multiply(diffuse * sp.Kd))
}
