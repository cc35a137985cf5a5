package lights

import (
	"errors"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

type LightType string

const (
	LightTypeDirectional LightType = "directional"
	LightTypePoint       LightType = "point"
	LightTypeSpot        LightType = "spot"
	LightTypeArea        LightType = "area"
)

// ErrDegenerateLight is returned by Validate for lights that cannot be evaluated
var ErrDegenerateLight = errors.New("degenerate light")

// Light is a source of direct illumination
type Light interface {
	Type() LightType

	// Enabled reports whether the light takes part in shading
	Enabled() bool

	// Validate checks the light's parameters once, before rendering starts
	Validate() error

	// Contribution returns the light's unclamped contribution at a shading
	// point, or Transparent when it does not reach it. Alpha is not meaningful.
	Contribution(sp ShadingPoint, occluder Occluder) core.Color
}

// Occluder answers shadow-ray queries over [origin, origin+direction*maxDistance)
type Occluder interface {
	IntersectAny(origin, direction core.Vec3, maxDistance float64) bool
}

// ShadingPoint carries everything a light needs about the surface being lit
type ShadingPoint struct {
	Point        core.Vec3  // Already offset off the surface
	Normal       core.Vec3  // Unit shading normal
	SurfaceColor core.Color // Diffuse albedo (Transparent for dielectrics)
	Kd           float64
	Ks           float64
	Eye          core.Vec3 // Camera position for the view vector
}

// Base holds the fields shared by every light kind
type Base struct {
	Color     core.Color
	Intensity float64
	Range     float64 // Ignored by directional lights
	Disabled  bool
}

// Enabled reports whether the light takes part in shading
func (b Base) Enabled() bool {
	return !b.Disabled
}
