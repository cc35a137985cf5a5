package geometry

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// SceneQuery is the ray-versus-scene contract the tracer and lights consume.
// Implementations never bias origins; callers offset them along the normal.
type SceneQuery interface {
	// IntersectNearest returns the closest hit with t > 0 and no distance limit
	IntersectNearest(ray core.Ray) (*Intersection, bool)

	// IntersectAny reports whether anything blocks the segment
	// [origin, origin + direction*maxDistance). direction must be unit length
	// and maxDistance may be math.Inf(1).
	IntersectAny(origin, direction core.Vec3, maxDistance float64) bool

	// IntersectAll returns every hit with 0 < t < maxDistance ordered by distance
	IntersectAll(ray core.Ray, maxDistance float64) []Intersection
}

// Intersection describes a single ray hit. It is produced fresh per query.
type Intersection struct {
	T             float64   // Distance along the ray
	Point         core.Vec3 // World-space hit point
	Normal        core.Vec3 // Interpolated, renormalized vertex normal
	Barycentric   core.Vec3 // Weights of the triangle's three vertices
	TriangleIndex int       // Index of the triangle within Surface
	Surface       *Surface
	UV            core.Vec2 // Interpolated texture coordinate (zero without UVs)
}
