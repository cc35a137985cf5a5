package lights

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// PointLight radiates in all directions from Position up to Range
type PointLight struct {
	Base
	Position core.Vec3
}

// NewPointLight creates a point light
func NewPointLight(position core.Vec3, color core.Color, intensity, lightRange float64) *PointLight {
	return &PointLight{
		Base:     Base{Color: color, Intensity: intensity, Range: lightRange},
		Position: position,
	}
}

func (l *PointLight) Type() LightType {
	return LightTypePoint
}

// Validate implements Light
func (l *PointLight) Validate() error {
	return validateBase(l.Base, true)
}

// Contribution implements Light
func (l *PointLight) Contribution(sp ShadingPoint, occluder Occluder) core.Color {
	toLight, distance, diffuse, ok := inRange(l.Base, l.Position, sp)
	if !ok {
		return core.Transparent
	}

	if occluder.IntersectAny(sp.Point, toLight, distance) {
		return core.Transparent
	}

	return localShading(l.Base, toLight, diffuse, sp).Multiply(l.Intensity * Falloff(distance, l.Range))
}

// inRange computes the direction and distance to a positional light and the
// diffuse factor, reporting false when the point is out of range or faces away
func inRange(b Base, position core.Vec3, sp ShadingPoint) (toLight core.Vec3, distance, diffuse float64, ok bool) {
	offset := position.Subtract(sp.Point)
	distance = offset.Length()
	toLight = offset.Normalize()
	diffuse = sp.Normal.Dot(toLight)
	return toLight, distance, diffuse, distance < b.Range && diffuse > 0
}

// localShading is color*spec*Ks + surface*diffuse*Kd, before intensity and falloff
func localShading(b Base, toLight core.Vec3, diffuse float64, sp ShadingPoint) core.Color {
	spec := blinnPhong(toLight, viewVector(sp), sp.Normal)
	return b.Color.Multiply(spec * sp.Ks).Add(sp.SurfaceColor.Multiply(diffuse * sp.Kd))
}
