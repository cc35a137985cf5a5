package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// plyFitSize is the extent of the longest axis of a loaded mesh after fitting
const plyFitSize = 2.0

// NewPLYScene loads a PLY mesh, scales it to fit a 2-unit box standing on a
// ground quad, and lights it. A PNG or JPEG next to the mesh with the same
// base name is used as its texture.
func NewPLYScene(filename string, logger core.Logger, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 1.6, 4.5),
		LookAt:      core.NewVec3(0, 0.9, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        40.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s := &Scene{
		Name:           name,
		CameraConfig:   cameraConfig,
		SamplingConfig: DefaultSamplingConfig(),
	}

	data, err := loaders.LoadPLY(filename, logger)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}
	if len(data.Vertices) == 0 {
		return nil, fmt.Errorf("scene %q: %w: mesh has no vertices", name, geometry.ErrInvalidMesh)
	}
	fitToGround(data.Vertices, plyFitSize)

	options := &geometry.SurfaceOptions{Name: name}
	if texture := findSidecarTexture(filename, logger); texture != nil {
		options.Texture = texture
	}

	meshMaterial := material.NewDiffuse(core.RGB(0.75, 0.7, 0.65), 1.0, 0.4)
	groundMaterial := material.NewDiffuse(core.RGB(0.5, 0.5, 0.5), 1.0, 0.0)

	c := &surfaceCollector{scene: s}
	c.add(data.Surface(meshMaterial, options))
	c.add(NewGroundQuad(core.NewVec3(0, 0, 0), 20, groundMaterial, &geometry.SurfaceOptions{Name: "ground"}))

	s.AddLights(
		lights.NewDirectionalLight(core.NewVec3(-0.5, -1, -0.3), core.White, 1.0),
		lights.NewPointLight(core.NewVec3(-2, 3, 3), core.RGB(0.9, 0.9, 1.0), 0.5, 15),
	)

	return c.finish()
}

// fitToGround uniformly scales points in place so the longest axis spans
// size, centered on the Y axis with the lowest point at y=0
func fitToGround(points []core.Vec3, size float64) {
	bounds := core.NewAABBFromPoints(points...)
	extent := bounds.Max.Subtract(bounds.Min)
	longest := max(extent.X, extent.Y, extent.Z)
	scale := 1.0
	if longest > 0 {
		scale = size / longest
	}

	center := bounds.Center()
	lift := core.NewVec3(0, extent.Y*scale/2, 0)
	for i, p := range points {
		points[i] = p.Subtract(center).Multiply(scale).Add(lift)
	}
}

// findSidecarTexture looks for <mesh>.png or <mesh>.jpg beside the mesh file
func findSidecarTexture(filename string, logger core.Logger) material.ColorSource {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		path := base + ext
		if _, err := os.Stat(path); err != nil {
			continue
		}
		texture, err := loaders.LoadTexture(path)
		if err != nil {
			logger.Printf("Warning: ignoring texture %s: %v\n", path, err)
			continue
		}
		logger.Printf("Using texture %s (%dx%d)\n", path, texture.Width, texture.Height)
		return texture
	}
	return nil
}
