package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

var (
	// ErrNilMaterial is returned when a surface is built without a material
	ErrNilMaterial = errors.New("surface has no material")
	// ErrInvalidMesh is returned for malformed index, normal or UV buffers
	ErrInvalidMesh = errors.New("invalid mesh")
)

// Surface is a triangulated mesh with per-vertex normals and an optional
// texture. Vertices and normals are stored in world space. A Surface is
// immutable once constructed.
type Surface struct {
	Name      string
	Positions []core.Vec3
	Normals   []core.Vec3
	UVs       []core.Vec2 // Optional, one per vertex
	Indices   []int       // Three per triangle
	Material  *material.Material
	Texture   material.ColorSource // Optional; overrides Material.Color for diffuse shading

	triangles []*Triangle
	bbox      core.AABB
}

// SurfaceOptions contains optional parameters for surface creation
type SurfaceOptions struct {
	Name     string
	Normals  []core.Vec3          // Per-vertex normals; computed from faces when nil
	UVs      []core.Vec2          // Per-vertex texture coordinates
	Texture  material.ColorSource // Base color lookup for diffuse surfaces
	Rotation *core.Vec3           // Optional rotation (radians) applied to vertices and normals
	Center   *core.Vec3           // Optional pivot for Rotation
	Offset   *core.Vec3           // Optional translation applied after rotation
}

// NewSurface creates a surface from vertex positions and triangle indices.
// options may be nil.
func NewSurface(positions []core.Vec3, indices []int, mat *material.Material, options *SurfaceOptions) (*Surface, error) {
	if options == nil {
		options = &SurfaceOptions{}
	}
	name := options.Name
	if name == "" {
		name = "surface"
	}

	if mat == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNilMaterial)
	}
	if err := mat.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%s: %w: %d indices is not a positive multiple of 3", name, ErrInvalidMesh, len(indices))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(positions) {
			return nil, fmt.Errorf("%s: %w: index %d at position %d out of range [0,%d)", name, ErrInvalidMesh, idx, i, len(positions))
		}
	}
	if options.Normals != nil && len(options.Normals) != len(positions) {
		return nil, fmt.Errorf("%s: %w: %d normals for %d vertices", name, ErrInvalidMesh, len(options.Normals), len(positions))
	}
	if options.UVs != nil && len(options.UVs) != len(positions) {
		return nil, fmt.Errorf("%s: %w: %d uvs for %d vertices", name, ErrInvalidMesh, len(options.UVs), len(positions))
	}

	normals := options.Normals
	if normals == nil {
		normals = smoothNormals(positions, indices)
	}

	s := &Surface{
		Name:      name,
		Positions: make([]core.Vec3, len(positions)),
		Normals:   make([]core.Vec3, len(normals)),
		UVs:       options.UVs,
		Indices:   indices,
		Material:  mat,
		Texture:   options.Texture,
	}

	// Bake the transform so intersections come back in world space
	for i, p := range positions {
		s.Positions[i] = transformPoint(p, options)
	}
	for i, n := range normals {
		if options.Rotation != nil {
			n = n.Rotate(*options.Rotation)
		}
		s.Normals[i] = n.Normalize()
	}

	s.triangles = make([]*Triangle, len(indices)/3)
	for i := range s.triangles {
		i0, i1, i2 := s.vertexIndices(i)
		s.triangles[i] = NewTriangle(s.Positions[i0], s.Positions[i1], s.Positions[i2], s, i)
	}
	s.bbox = core.NewAABBFromPoints(s.Positions...)

	return s, nil
}

func transformPoint(p core.Vec3, options *SurfaceOptions) core.Vec3 {
	if options.Rotation != nil {
		if options.Center != nil {
			p = p.Subtract(*options.Center)
		}
		p = p.Rotate(*options.Rotation)
		if options.Center != nil {
			p = p.Add(*options.Center)
		}
	}
	if options.Offset != nil {
		p = p.Add(*options.Offset)
	}
	return p
}

// smoothNormals averages the area-weighted face normals touching each vertex
func smoothNormals(positions []core.Vec3, indices []int) []core.Vec3 {
	normals := make([]core.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		face := positions[i1].Subtract(positions[i0]).Cross(positions[i2].Subtract(positions[i0]))
		normals[i0] = normals[i0].Add(face)
		normals[i1] = normals[i1].Add(face)
		normals[i2] = normals[i2].Add(face)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

func (s *Surface) vertexIndices(triangle int) (int, int, int) {
	return s.Indices[triangle*3], s.Indices[triangle*3+1], s.Indices[triangle*3+2]
}

// TriangleCount returns the number of triangles in this surface
func (s *Surface) TriangleCount() int {
	return len(s.triangles)
}

// Triangles returns the surface's triangles in index-buffer order
func (s *Surface) Triangles() []*Triangle {
	return s.triangles
}

// BoundingBox returns the axis-aligned bounding box of the whole surface
func (s *Surface) BoundingBox() core.AABB {
	return s.bbox
}

// InterpolateNormal blends the three vertex normals of a triangle and renormalizes
func (s *Surface) InterpolateNormal(triangle int, bary core.Vec3) core.Vec3 {
	i0, i1, i2 := s.vertexIndices(triangle)
	return s.Normals[i0].Multiply(bary.X).
		Add(s.Normals[i1].Multiply(bary.Y)).
		Add(s.Normals[i2].Multiply(bary.Z)).
		Normalize()
}

// InterpolateUV blends the three vertex UVs of a triangle. Surfaces without
// UVs return the zero coordinate.
func (s *Surface) InterpolateUV(triangle int, bary core.Vec3) core.Vec2 {
	if s.UVs == nil {
		return core.Vec2{}
	}
	i0, i1, i2 := s.vertexIndices(triangle)
	return s.UVs[i0].Multiply(bary.X).
		Add(s.UVs[i1].Multiply(bary.Y)).
		Add(s.UVs[i2].Multiply(bary.Z))
}
