package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// SpotLight is a point light restricted to a cone around Forward
type SpotLight struct {
	Base
	Position         core.Vec3
	Forward          core.Vec3 // Unit cone axis
	HalfAngleDegrees float64
}

// NewSpotLight creates a spot light at position aimed along forward
func NewSpotLight(position, forward core.Vec3, halfAngleDegrees float64, color core.Color, intensity, lightRange float64) *SpotLight {
	return &SpotLight{
		Base:             Base{Color: color, Intensity: intensity, Range: lightRange},
		Position:         position,
		Forward:          forward.Normalize(),
		HalfAngleDegrees: halfAngleDegrees,
	}
}

func (l *SpotLight) Type() LightType {
	return LightTypeSpot
}

// Validate implements Light
func (l *SpotLight) Validate() error {
	if err := validateBase(l.Base, true); err != nil {
		return err
	}
	if l.Forward.IsZero() {
		return fmt.Errorf("%w: zero forward direction", ErrDegenerateLight)
	}
	if !(l.HalfAngleDegrees > 0 && l.HalfAngleDegrees < 180) {
		return fmt.Errorf("%w: half angle must be in (0, 180), got %f", ErrDegenerateLight, l.HalfAngleDegrees)
	}
	return nil
}

// Cutoff returns cos(halfAngle), the cone boundary in spot-factor terms
func (l *SpotLight) Cutoff() float64 {
	return math.Cos(l.HalfAngleDegrees * math.Pi / 180)
}

// Contribution implements Light. Inside the cone the point-light term is
// scaled by (1 - d/r) and by the angular edge falloff.
func (l *SpotLight) Contribution(sp ShadingPoint, occluder Occluder) core.Color {
	toLight, distance, diffuse, ok := inRange(l.Base, l.Position, sp)
	if !ok {
		return core.Transparent
	}

	spotFactor := l.Forward.Normalize().Negate().Dot(toLight)
	cutoff := l.Cutoff()
	if spotFactor <= cutoff {
		return core.Transparent
	}

	if occluder.IntersectAny(sp.Point, toLight, distance) {
		return core.Transparent
	}

	scale := l.Intensity * Falloff(distance, l.Range) *
		(1 - distance/l.Range) *
		(1 - (1-spotFactor)/(1-cutoff))
	return localShading(l.Base, toLight, diffuse, sp).Multiply(scale)
}
