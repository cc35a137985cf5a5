package geometry

import (
	"math"
	"sort"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// World is the read-only SceneQuery built from a scene's surfaces
type World struct {
	surfaces []*Surface
	bvh      *BVH
}

// NewWorld collects every triangle of every surface into one BVH
func NewWorld(surfaces []*Surface) *World {
	var triangles []*Triangle
	for _, s := range surfaces {
		triangles = append(triangles, s.Triangles()...)
	}
	return &World{surfaces: surfaces, bvh: NewBVH(triangles)}
}

// Surfaces returns the surfaces the world was built from
func (w *World) Surfaces() []*Surface {
	return w.surfaces
}

// BVH exposes the acceleration structure for statistics
func (w *World) BVH() *BVH {
	return w.bvh
}

// IntersectNearest implements SceneQuery
func (w *World) IntersectNearest(ray core.Ray) (*Intersection, bool) {
	hit, ok := w.bvh.Nearest(ray, 0, math.Inf(1))
	if !ok {
		return nil, false
	}
	isect := resolve(ray, hit)
	return &isect, true
}

// IntersectAny implements SceneQuery
func (w *World) IntersectAny(origin, direction core.Vec3, maxDistance float64) bool {
	return w.bvh.Any(core.NewRay(origin, direction), 0, maxDistance)
}

// IntersectAll implements SceneQuery
func (w *World) IntersectAll(ray core.Ray, maxDistance float64) []Intersection {
	var hits []Intersection
	w.bvh.All(ray, 0, maxDistance, func(hit TriangleHit) {
		hits = append(hits, resolve(ray, hit))
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].T < hits[j].T })
	return hits
}

// resolve turns a raw triangle hit into a shading-ready Intersection
func resolve(ray core.Ray, hit TriangleHit) Intersection {
	surface := hit.Triangle.Surface
	index := hit.Triangle.Index
	return Intersection{
		T:             hit.T,
		Point:         ray.At(hit.T),
		Normal:        surface.InterpolateNormal(index, hit.Barycentric),
		Barycentric:   hit.Barycentric,
		TriangleIndex: index,
		Surface:       surface,
		UV:            surface.InterpolateUV(index, hit.Barycentric),
	}
}
