package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// Helper functions for building triangle surfaces. Each generator supplies
// its own normals and UVs; name, texture and transform come from options.

// generated copies options (which may be nil) and attaches generated vertex data
func generated(options *geometry.SurfaceOptions, name string, normals []core.Vec3, uvs []core.Vec2) *geometry.SurfaceOptions {
	result := geometry.SurfaceOptions{}
	if options != nil {
		result = *options
	}
	if result.Name == "" {
		result.Name = name
	}
	result.Normals = normals
	result.UVs = uvs
	return &result
}

// NewQuad creates a two-triangle parallelogram spanning corner, corner+u and
// corner+v. The face normal is u x v; UVs run (0,0) at corner to (1,1) at
// corner+u+v.
func NewQuad(corner, u, v core.Vec3, mat *material.Material, options *geometry.SurfaceOptions) (*geometry.Surface, error) {
	normal := u.Cross(v).Normalize()
	if normal.IsZero() {
		return nil, fmt.Errorf("quad: %w: edges %v and %v are parallel", geometry.ErrInvalidMesh, u, v)
	}

	positions := []core.Vec3{
		corner,
		corner.Add(u),
		corner.Add(u).Add(v),
		corner.Add(v),
	}
	normals := []core.Vec3{normal, normal, normal, normal}
	uvs := []core.Vec2{
		core.NewVec2(0, 0),
		core.NewVec2(1, 0),
		core.NewVec2(1, 1),
		core.NewVec2(0, 1),
	}
	indices := []int{0, 1, 2, 0, 2, 3}

	return geometry.NewSurface(positions, indices, mat, generated(options, "quad", normals, uvs))
}

// NewGroundQuad creates a large horizontal square centered at center with
// its normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, mat *material.Material, options *geometry.SurfaceOptions) (*geometry.Surface, error) {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u x v = (0,0,size) x (size,0,0) = (0,size^2,0)
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return NewQuad(corner, u, v, mat, generated(options, "ground", nil, nil))
}

// NewUVSphere creates a latitude/longitude tessellated sphere. Ring 0 is the
// +Y pole. Normals are exact (radial), so shading is smooth regardless of
// tessellation. The seam column is duplicated so UVs do not wrap.
func NewUVSphere(center core.Vec3, radius float64, segments, rings int, mat *material.Material, options *geometry.SurfaceOptions) (*geometry.Surface, error) {
	if segments < 3 || rings < 2 {
		return nil, fmt.Errorf("sphere: %w: need at least 3 segments and 2 rings, got %d and %d", geometry.ErrInvalidMesh, segments, rings)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sphere: %w: radius must be positive, got %f", geometry.ErrInvalidMesh, radius)
	}

	columns := segments + 1
	positions := make([]core.Vec3, 0, (rings+1)*columns)
	normals := make([]core.Vec3, 0, (rings+1)*columns)
	uvs := make([]core.Vec2, 0, (rings+1)*columns)

	for ring := 0; ring <= rings; ring++ {
		theta := math.Pi * float64(ring) / float64(rings)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for seg := 0; seg <= segments; seg++ {
			phi := 2 * math.Pi * float64(seg) / float64(segments)
			dir := core.NewVec3(sinTheta*math.Cos(phi), cosTheta, sinTheta*math.Sin(phi))

			positions = append(positions, center.Add(dir.Multiply(radius)))
			normals = append(normals, dir)
			uvs = append(uvs, core.NewVec2(float64(seg)/float64(segments), 1-float64(ring)/float64(rings)))
		}
	}

	vertex := func(ring, seg int) int { return ring*columns + seg }
	indices := make([]int, 0, segments*(rings-1)*6)
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			a, b := vertex(ring, seg), vertex(ring, seg+1)
			c, d := vertex(ring+1, seg), vertex(ring+1, seg+1)
			switch ring {
			case 0:
				// a and b are both the top pole
				indices = append(indices, a, d, c)
			case rings - 1:
				// c and d are both the bottom pole
				indices = append(indices, a, b, c)
			default:
				indices = append(indices, a, b, c, b, d, c)
			}
		}
	}

	return geometry.NewSurface(positions, indices, mat, generated(options, "sphere", normals, uvs))
}

// boxFace describes one face of an axis-aligned box as a quad whose u x v
// points outward
type boxFace struct {
	corner, u, v core.Vec3
}

// NewBox creates an axis-aligned box with flat-shaded faces. Each face has
// its own four vertices so normals do not blend across edges.
func NewBox(center, halfExtents core.Vec3, mat *material.Material, options *geometry.SurfaceOptions) (*geometry.Surface, error) {
	if halfExtents.X <= 0 || halfExtents.Y <= 0 || halfExtents.Z <= 0 {
		return nil, fmt.Errorf("box: %w: half extents must be positive, got %v", geometry.ErrInvalidMesh, halfExtents)
	}

	lo := center.Subtract(halfExtents)
	hi := center.Add(halfExtents)
	size := halfExtents.Multiply(2)
	x := core.NewVec3(size.X, 0, 0)
	y := core.NewVec3(0, size.Y, 0)
	z := core.NewVec3(0, 0, size.Z)

	faces := []boxFace{
		{core.NewVec3(hi.X, lo.Y, hi.Z), z.Negate(), y}, // +X
		{core.NewVec3(lo.X, lo.Y, lo.Z), z, y},          // -X
		{core.NewVec3(lo.X, hi.Y, lo.Z), z, x},          // +Y
		{core.NewVec3(lo.X, lo.Y, lo.Z), x, z},          // -Y
		{core.NewVec3(lo.X, lo.Y, hi.Z), x, y},          // +Z
		{core.NewVec3(hi.X, lo.Y, lo.Z), x.Negate(), y}, // -Z
	}

	positions := make([]core.Vec3, 0, 24)
	normals := make([]core.Vec3, 0, 24)
	uvs := make([]core.Vec2, 0, 24)
	indices := make([]int, 0, 36)
	for _, f := range faces {
		base := len(positions)
		normal := f.u.Cross(f.v).Normalize()
		positions = append(positions,
			f.corner,
			f.corner.Add(f.u),
			f.corner.Add(f.u).Add(f.v),
			f.corner.Add(f.v),
		)
		normals = append(normals, normal, normal, normal, normal)
		uvs = append(uvs, core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1), core.NewVec2(0, 1))
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return geometry.NewSurface(positions, indices, mat, generated(options, "box", normals, uvs))
}
