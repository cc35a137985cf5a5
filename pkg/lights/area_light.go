package lights

import (
	"fmt"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/optics"
)

// highlightSharpness converts the reflected ray's miss distance on the light
// plane into highlight falloff
const highlightSharpness = 128.0

// AreaLight is a one-sided rectangular emitter centered at Position, facing
// Forward, with half-extents along its Right and Up axes. It casts no shadows.
type AreaLight struct {
	Base
	Position   core.Vec3
	Right      core.Vec3
	Up         core.Vec3
	Forward    core.Vec3 // Emitting side of the rectangle
	HalfWidth  float64
	HalfHeight float64
}

// NewAreaLight creates an area light facing forward. upHint fixes the
// rectangle's rotation and must not be parallel to forward.
func NewAreaLight(position, forward, upHint core.Vec3, halfWidth, halfHeight float64, color core.Color, intensity, lightRange float64) *AreaLight {
	forward = forward.Normalize()
	right := upHint.Cross(forward).Normalize()
	return &AreaLight{
		Base:       Base{Color: color, Intensity: intensity, Range: lightRange},
		Position:   position,
		Right:      right,
		Up:         forward.Cross(right),
		Forward:    forward,
		HalfWidth:  halfWidth,
		HalfHeight: halfHeight,
	}
}

func (l *AreaLight) Type() LightType {
	return LightTypeArea
}

// Validate implements Light
func (l *AreaLight) Validate() error {
	if err := validateBase(l.Base, true); err != nil {
		return err
	}
	if l.Forward.IsZero() || l.Right.IsZero() || l.Up.IsZero() {
		return fmt.Errorf("%w: area light frame is degenerate", ErrDegenerateLight)
	}
	if !(l.HalfWidth > 0 && l.HalfHeight > 0) {
		return fmt.Errorf("%w: half extents must be positive, got %fx%f", ErrDegenerateLight, l.HalfWidth, l.HalfHeight)
	}
	return nil
}

// NearestPoint returns the point of the rectangle closest to p's projection
// onto the light plane
func (l *AreaLight) NearestPoint(p core.Vec3) core.Vec3 {
	raw := l.planeCoords(optics.ProjectOnPlane(p, l.Position, l.Forward))
	nearest := l.clampToRect(raw)
	return l.Position.Add(l.Right.Multiply(nearest.X)).Add(l.Up.Multiply(nearest.Y))
}

// Contribution implements Light using the nearest point on the rectangle for
// diffuse light and a clamp-distance highlight for specular. The gate on
// range and facing uses the rectangle's center.
func (l *AreaLight) Contribution(sp ShadingPoint, occluder Occluder) core.Color {
	if _, _, _, ok := inRange(l.Base, l.Position, sp); !ok {
		return core.Transparent
	}

	nearest := l.NearestPoint(sp.Point)
	toNearest := nearest.Subtract(sp.Point)
	lightDir := toNearest.Normalize()
	falloff := Falloff(toNearest.Length(), l.Range)

	nDotL := l.Forward.Dot(lightDir.Negate())
	if nDotL <= 0 || !optics.OnFrontSide(sp.Point, l.Position, l.Forward) {
		return core.Transparent
	}

	color := sp.SurfaceColor.Multiply(l.Intensity * nDotL * falloff)

	reflected := optics.Reflect(viewVector(sp).Negate(), sp.Normal)
	specAngle := reflected.Negate().Dot(l.Forward)
	if specAngle > 0 {
		hit := optics.LinePlaneIntersect(sp.Point, reflected, l.Position, l.Forward)
		raw := l.planeCoords(hit)
		specFactor := 1 - clamp01(raw.Subtract(l.clampToRect(raw)).Length()*highlightSharpness)
		color = color.Add(l.Color.Multiply(l.Intensity * specFactor * specAngle * falloff))
	}

	return color
}

// planeCoords expresses a point on the light plane in (right, up) coordinates
func (l *AreaLight) planeCoords(p core.Vec3) core.Vec2 {
	offset := p.Subtract(l.Position)
	return core.NewVec2(offset.Dot(l.Right), offset.Dot(l.Up))
}

func (l *AreaLight) clampToRect(v core.Vec2) core.Vec2 {
	return core.NewVec2(
		max(-l.HalfWidth, min(l.HalfWidth, v.X)),
		max(-l.HalfHeight, min(l.HalfHeight, v.Y)),
	)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
