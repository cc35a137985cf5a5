package geometry

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Triangle is one face of a Surface, with its vertices resolved to world space
type Triangle struct {
	V0, V1, V2 core.Vec3
	Surface    *Surface
	Index      int       // Face index within Surface
	bbox       core.AABB // Cached bounding box
}

// NewTriangle creates a triangle belonging to face index of surface
func NewTriangle(v0, v1, v2 core.Vec3, surface *Surface, index int) *Triangle {
	return &Triangle{
		V0:      v0,
		V1:      v1,
		V2:      v2,
		Surface: surface,
		Index:   index,
		bbox:    core.NewAABBFromPoints(v0, v1, v2).Expand(1e-9),
	}
}

// Hit tests the ray against the triangle using the Moller-Trumbore algorithm.
// Both faces are hittable. It returns the distance and the barycentric
// weights (w0, w1, w2) of V0, V1, V2 for hits with tMin < t < tMax.
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (float64, core.Vec3, bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray parallel to the triangle's plane
	if a > -epsilon && a < epsilon {
		return 0, core.Vec3{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, core.Vec3{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, core.Vec3{}, false
	}

	dist := f * edge2.Dot(q)
	if dist <= tMin || dist >= tMax {
		return 0, core.Vec3{}, false
	}

	return dist, core.NewVec3(1-u-v, u, v), true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// GeometricNormal returns the unit face normal from the winding order
func (t *Triangle) GeometricNormal() core.Vec3 {
	return t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Normalize()
}
