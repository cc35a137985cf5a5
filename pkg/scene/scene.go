package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
)

// ErrInvalidConfig is returned for sampling settings outside their valid range
var ErrInvalidConfig = errors.New("invalid sampling config")

// Scene contains all the elements needed for rendering. It is assembled
// once and treated as read-only while a frame is traced.
type Scene struct {
	Name           string
	Surfaces       []*geometry.Surface
	Lights         []lights.Light // Evaluated in order
	CameraConfig   geometry.CameraConfig
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int     // Jittered rays averaged per pixel (per aperture sample with DoF)
	UseDepthOfField bool    // Enable the outer aperture loop
	DofSampleNum    int     // Aperture offsets per pixel when UseDepthOfField is set
	FocalLength     float64 // Distance along the pixel ray to the focus point
	ApertureRadius  float64 // Width of the square aperture jitter
	MaxDepth        int     // Recursion cutoff
	Seed            uint64  // Base seed for per-pixel sampling
	TileSize        int     // Tile edge length in pixels
	NumWorkers      int     // Concurrent tiles; 0 means one per CPU

	// WeightDielectricDirectLight scales a dielectric's direct light by (1-kr)
	WeightDielectricDirectLight bool
}

// DefaultSamplingConfig returns a single-sample, pinhole configuration
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 1,
		DofSampleNum:    1,
		FocalLength:     1,
		ApertureRadius:  1,
		MaxDepth:        5,
		Seed:            1,
		TileSize:        32,
	}
}

// Validate reports the first out-of-range setting
func (c SamplingConfig) Validate() error {
	switch {
	case c.SamplesPerPixel < 1:
		return fmt.Errorf("%w: samples per pixel must be at least 1, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.DofSampleNum < 1:
		return fmt.Errorf("%w: dof sample count must be at least 1, got %d", ErrInvalidConfig, c.DofSampleNum)
	case !(c.FocalLength > 0):
		return fmt.Errorf("%w: focal length must be positive, got %f", ErrInvalidConfig, c.FocalLength)
	case c.ApertureRadius < 0:
		return fmt.Errorf("%w: aperture radius must be non-negative, got %f", ErrInvalidConfig, c.ApertureRadius)
	case c.MaxDepth < 1:
		return fmt.Errorf("%w: max depth must be at least 1, got %d", ErrInvalidConfig, c.MaxDepth)
	case c.TileSize < 1:
		return fmt.Errorf("%w: tile size must be at least 1, got %d", ErrInvalidConfig, c.TileSize)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: worker count must be non-negative, got %d", ErrInvalidConfig, c.NumWorkers)
	}
	return nil
}

// SamplingField names a setting whose zero value is a valid choice, so an
// override can only be told apart from "unset" when it is listed explicitly.
type SamplingField uint

const (
	FieldApertureRadius SamplingField = 1 << iota
	FieldSeed
	FieldNumWorkers
	FieldUseDepthOfField
	FieldWeightDielectricDirectLight
)

// MergeSamplingConfig overlays the non-zero fields of override onto base.
// Fields listed in explicit are copied even when zero or false.
func MergeSamplingConfig(base, override SamplingConfig, explicit ...SamplingField) SamplingConfig {
	var set SamplingField
	for _, field := range explicit {
		set |= field
	}

	result := base
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.UseDepthOfField || set&FieldUseDepthOfField != 0 {
		result.UseDepthOfField = override.UseDepthOfField
	}
	if override.DofSampleNum != 0 {
		result.DofSampleNum = override.DofSampleNum
	}
	if override.FocalLength != 0 {
		result.FocalLength = override.FocalLength
	}
	if override.ApertureRadius != 0 || set&FieldApertureRadius != 0 {
		result.ApertureRadius = override.ApertureRadius
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.Seed != 0 || set&FieldSeed != 0 {
		result.Seed = override.Seed
	}
	if override.TileSize != 0 {
		result.TileSize = override.TileSize
	}
	if override.NumWorkers != 0 || set&FieldNumWorkers != 0 {
		result.NumWorkers = override.NumWorkers
	}
	if override.WeightDielectricDirectLight || set&FieldWeightDielectricDirectLight != 0 {
		result.WeightDielectricDirectLight = override.WeightDielectricDirectLight
	}
	return result
}

// AddSurfaces appends surfaces to the scene
func (s *Scene) AddSurfaces(surfaces ...*geometry.Surface) {
	s.Surfaces = append(s.Surfaces, surfaces...)
}

// AddLights appends lights to the scene, preserving evaluation order
func (s *Scene) AddLights(sceneLights ...lights.Light) {
	s.Lights = append(s.Lights, sceneLights...)
}

// Validate checks everything that would otherwise fail mid-render
func (s *Scene) Validate() error {
	if err := s.CameraConfig.Validate(); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	if err := s.SamplingConfig.Validate(); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	if err := lights.ValidateAll(s.Lights); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	for i, surface := range s.Surfaces {
		if surface == nil {
			return fmt.Errorf("scene %q: surface %d: %w", s.Name, i, geometry.ErrInvalidMesh)
		}
		if surface.Material == nil {
			return fmt.Errorf("scene %q: surface %d (%s): %w", s.Name, i, surface.Name, geometry.ErrNilMaterial)
		}
		if err := surface.Material.Validate(); err != nil {
			return fmt.Errorf("scene %q: surface %d (%s): %w", s.Name, i, surface.Name, err)
		}
	}
	return nil
}

// Build validates the scene and creates the world used to answer ray queries
func (s *Scene) Build() (*geometry.World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return geometry.NewWorld(s.Surfaces), nil
}

// TriangleCount returns the total number of triangles across all surfaces
func (s *Scene) TriangleCount() int {
	total := 0
	for _, surface := range s.Surfaces {
		total += surface.TriangleCount()
	}
	return total
}

// surfaceCollector appends generated surfaces to a scene, keeping the first
// construction error so builders can add many surfaces and check once
type surfaceCollector struct {
	scene *Scene
	err   error
}

func (c *surfaceCollector) add(surface *geometry.Surface, err error) {
	if c.err != nil {
		return
	}
	if err != nil {
		c.err = fmt.Errorf("scene %q: %w", c.scene.Name, err)
		return
	}
	c.scene.AddSurfaces(surface)
}

// finish returns the scene, or the first error any builder step hit
func (c *surfaceCollector) finish() (*Scene, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.scene, nil
}
