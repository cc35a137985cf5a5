package integrator

import (
	"fmt"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/optics"
)

const (
	// surfaceBias offsets secondary ray and shading origins off the surface
	surfaceBias = 1e-5
	// exitProbeDistance is how far ahead the inverse probe starts when
	// searching for the exit point of a ray travelling inside a solid
	exitProbeDistance = 999.0
	// exitSideOffset is the step along the ray used for the exit side test
	exitSideOffset = 1e-4
)

// Quirks toggles alternative formulas for behavior that is inconsistent
// between material types
type Quirks struct {
	// WeightDielectricDirectLight scales a dielectric's direct lighting by
	// (1 - kr). Reflective surfaces never weight it.
	WeightDielectricDirectLight bool
}

// Config controls the recursive tracer
type Config struct {
	MaxDepth int // Rays at this depth or deeper return Transparent
	Quirks   Quirks
}

// DefaultConfig returns the standard tracer configuration
func DefaultConfig() Config {
	return Config{MaxDepth: 5}
}

// Validate rejects configurations that could never shade anything
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max depth must be at least 1, got %d", c.MaxDepth)
	}
	return nil
}

// Medium describes what a ray is travelling through
type Medium struct {
	Inside   bool               // The ray is inside a refractive solid
	Material *material.Material // The solid's material when Inside; its Absorption tints the path
}

// WhittedIntegrator is a recursive Whitted-style tracer: direct lighting at
// every hit plus mirror reflection and refraction for specular materials
type WhittedIntegrator struct {
	query  geometry.SceneQuery
	lights []lights.Light
	eye    core.Vec3
	config Config
}

// NewWhittedIntegrator creates a tracer over a read-only scene
func NewWhittedIntegrator(query geometry.SceneQuery, sceneLights []lights.Light, eye core.Vec3, config Config) *WhittedIntegrator {
	return &WhittedIntegrator{
		query:  query,
		lights: sceneLights,
		eye:    eye,
		config: config,
	}
}

// RayColor implements Integrator
func (w *WhittedIntegrator) RayColor(ray core.Ray) core.Color {
	color, _ := w.Trace(ray, 0, Medium{})
	return color
}

// Trace returns the color arriving along ray and the point it hit. Misses and
// depth cutoffs return Transparent and the zero point.
func (w *WhittedIntegrator) Trace(ray core.Ray, depth int, medium Medium) (core.Color, core.Vec3) {
	if depth >= w.config.MaxDepth {
		return core.Transparent, core.Vec3{}
	}

	var hit *geometry.Intersection
	var ok bool
	if medium.Inside {
		hit, ok = w.findExit(ray)
	} else {
		hit, ok = w.query.IntersectNearest(ray)
	}
	if !ok {
		return core.Transparent, core.Vec3{}
	}

	normal := hit.Normal
	if medium.Inside {
		normal = normal.Negate()
	}

	mat := hit.Surface.Material
	switch mat.Type {
	case material.Reflective:
		return w.shadeReflective(ray, hit, normal, depth, medium), hit.Point
	case material.ReflectiveRefractive:
		return w.shadeRefractive(ray, hit, normal, depth, medium), hit.Point
	default:
		base := material.BaseColor(mat, hit.Surface.Texture, hit.UV, hit.Point)
		return w.directLight(hit.Point, normal, base, mat), hit.Point
	}
}

// findExit locates where a ray already inside a solid leaves it. The medium
// is not a queryable solid, so an inverse probe is fired back along the ray
// from far ahead and the candidate ahead of the origin that lies farthest
// from the probe start wins.
func (w *WhittedIntegrator) findExit(ray core.Ray) (*geometry.Intersection, bool) {
	probe := core.NewRay(ray.At(exitProbeDistance), ray.Direction.Negate())
	candidates := w.query.IntersectAll(probe, exitProbeDistance)

	sideOrigin := ray.At(exitSideOffset)
	best := -1
	bestDist := -1.0
	for i, c := range candidates {
		if c.Point.Subtract(sideOrigin).Normalize().Dot(ray.Direction) <= 0 {
			continue
		}
		if d := c.Point.Distance(probe.Origin); d > bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil, false
	}
	return &candidates[best], true
}

func (w *WhittedIntegrator) shadeReflective(ray core.Ray, hit *geometry.Intersection, normal core.Vec3, depth int, medium Medium) core.Color {
	mat := hit.Surface.Material
	kr := optics.Fresnel(ray.Direction, normal, mat.Ior)

	reflected := w.reflect(ray, hit.Point, normal, depth, medium)
	base := material.BaseColor(mat, hit.Surface.Texture, hit.UV, hit.Point)
	return reflected.Multiply(kr).Add(w.directLight(hit.Point, normal, base, mat))
}

func (w *WhittedIntegrator) shadeRefractive(ray core.Ray, hit *geometry.Intersection, normal core.Vec3, depth int, medium Medium) core.Color {
	mat := hit.Surface.Material
	kr := optics.Fresnel(ray.Direction, normal, mat.Ior)

	color := w.reflect(ray, hit.Point, normal, depth, medium).Multiply(kr)

	if kr < 1 {
		direction := optics.Refract(ray.Direction, normal, mat.Ior)
		if !direction.IsZero() {
			origin := biasToward(hit.Point, normal, direction)
			next := Medium{Inside: !medium.Inside}
			if next.Inside {
				next.Material = mat
			}

			refracted, exit := w.Trace(core.NewRay(origin, direction), depth+1, next)

			// Entering: the child found where the ray leaves, so the
			// absorbed path is entry to exit through the entered medium
			transmittance := core.White
			if next.Inside && depth+1 < w.config.MaxDepth {
				transmittance = optics.BeerLambert(next.Material.Absorption, hit.Point.Distance(exit))
			}
			color = color.Add(refracted.Multiply(1 - kr).MultiplyColor(transmittance))
		}
	}

	direct := w.directLight(hit.Point, normal, core.Transparent, mat)
	if w.config.Quirks.WeightDielectricDirectLight {
		direct = direct.Multiply(1 - kr)
	}
	return color.Add(direct)
}

// reflect traces the mirror bounce off a surface, staying in the same medium
func (w *WhittedIntegrator) reflect(ray core.Ray, point, normal core.Vec3, depth int, medium Medium) core.Color {
	direction := optics.Reflect(ray.Direction, normal)
	color, _ := w.Trace(core.NewRay(biasToward(point, normal, direction), direction), depth+1, medium)
	return color
}

func (w *WhittedIntegrator) directLight(point, normal core.Vec3, base core.Color, mat *material.Material) core.Color {
	sp := lights.ShadingPoint{
		Point:        point.Add(normal.Multiply(surfaceBias)),
		Normal:       normal,
		SurfaceColor: base,
		Kd:           mat.Kd,
		Ks:           mat.Ks,
		Eye:          w.eye,
	}
	return lights.DirectLighting(w.lights, sp, w.query)
}

// biasToward offsets point off the surface on the side direction travels
func biasToward(point, normal, direction core.Vec3) core.Vec3 {
	if direction.Dot(normal) < 0 {
		return point.Subtract(normal.Multiply(surfaceBias))
	}
	return point.Add(normal.Multiply(surfaceBias))
}

// PickResult describes what a debug pick ray found
type PickResult struct {
	Point         core.Vec3
	Normal        core.Vec3
	Distance      float64 // From the eye to Point
	Surface       string
	TriangleIndex int
	Material      material.Type
	Properties    *material.Material // Shared with the scene; read only
	Color         core.Color         // Full traced color along the pick ray
}

// Pick traces a single ray for inspection and reports the first surface it hits
func (w *WhittedIntegrator) Pick(ray core.Ray) (PickResult, bool) {
	hit, ok := w.query.IntersectNearest(ray)
	if !ok {
		return PickResult{}, false
	}
	color, _ := w.Trace(ray, 0, Medium{})
	return PickResult{
		Point:         hit.Point,
		Normal:        hit.Normal,
		Distance:      hit.Point.Distance(w.eye),
		Surface:       hit.Surface.Name,
		TriangleIndex: hit.TriangleIndex,
		Material:      hit.Surface.Material.Type,
		Properties:    hit.Surface.Material,
		Color:         color,
	}, true
}
