package material

import (
	"fmt"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Type selects how the tracer shades a surface
type Type int

const (
	// DiffuseGlossy surfaces only receive direct lighting
	DiffuseGlossy Type = iota
	// Reflective surfaces add a Fresnel-weighted mirror bounce to direct lighting
	Reflective
	// ReflectiveRefractive surfaces are dielectrics: reflection plus transmission
	ReflectiveRefractive
)

// String returns the name used in scene listings and logs
func (t Type) String() string {
	switch t {
	case DiffuseGlossy:
		return "diffuse"
	case Reflective:
		return "reflective"
	case ReflectiveRefractive:
		return "refractive"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Material holds the shading parameters of a surface. Materials are shared
// between surfaces by pointer and are never mutated while rendering.
type Material struct {
	Type       Type
	Kd         float64   // diffuse weight
	Ks         float64   // specular weight
	Ior        float64   // index of refraction of the material's interior
	Absorption core.Vec3 // per-channel Beer-Lambert coefficients
	Color      core.Color
}

// NewDiffuse creates a diffuse/glossy material
func NewDiffuse(color core.Color, kd, ks float64) *Material {
	return &Material{Type: DiffuseGlossy, Kd: kd, Ks: ks, Ior: 1, Color: color}
}

// NewReflective creates a mirror-like material whose reflectance follows Fresnel
func NewReflective(color core.Color, kd, ks, ior float64) *Material {
	return &Material{Type: Reflective, Kd: kd, Ks: ks, Ior: ior, Color: color}
}

// NewRefractive creates a dielectric with the given absorption coefficients
func NewRefractive(ior float64, absorption core.Vec3, kd, ks float64) *Material {
	return &Material{
		Type:       ReflectiveRefractive,
		Kd:         kd,
		Ks:         ks,
		Ior:        ior,
		Absorption: absorption,
		Color:      core.White,
	}
}

// Validate rejects parameters the tracer cannot shade with
func (m *Material) Validate() error {
	if m.Type < DiffuseGlossy || m.Type > ReflectiveRefractive {
		return fmt.Errorf("unknown material type %d", int(m.Type))
	}
	if m.Type != DiffuseGlossy && m.Ior <= 0 {
		return fmt.Errorf("%s material needs a positive ior, got %f", m.Type, m.Ior)
	}
	if m.Absorption.X < 0 || m.Absorption.Y < 0 || m.Absorption.Z < 0 {
		return fmt.Errorf("absorption must be non-negative, got %v", m.Absorption)
	}
	return nil
}
