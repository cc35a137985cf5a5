package scene

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box with quad walls, a ceiling
// area light, a glass sphere and a mirrored block
func NewCornellScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(278, 278, -800), // Position camera outside the box looking in
		LookAt:      core.NewVec3(278, 278, 0),    // Look at the center of the box
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0, // Square aspect ratio for Cornell box
		VFov:        40.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 4
	samplingConfig.FocalLength = 1000
	samplingConfig.ApertureRadius = 10

	s := &Scene{
		Name:           "cornell",
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
	c := &surfaceCollector{scene: s}

	// Create materials
	white := material.NewDiffuse(core.RGB(0.73, 0.73, 0.73), 1.0, 0.1)
	red := material.NewDiffuse(core.RGB(0.65, 0.05, 0.05), 1.0, 0.1)
	green := material.NewDiffuse(core.RGB(0.12, 0.45, 0.15), 1.0, 0.1)
	glass := material.NewRefractive(1.5, core.NewVec3(0.002, 0.001, 0.0005), 0.0, 1.0)
	mirror := material.NewReflective(core.RGB(0.05, 0.05, 0.05), 0.2, 1.0, 25.0)

	// Cornell box dimensions (standard 555x555x555 units)
	boxSize := 555.0

	// Walls face into the box: u x v is the inward normal
	c.add(NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), white,
		&geometry.SurfaceOptions{Name: "floor"}))
	c.add(NewQuad(core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white,
		&geometry.SurfaceOptions{Name: "ceiling"}))
	c.add(NewQuad(core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), white,
		&geometry.SurfaceOptions{Name: "back wall"}))
	c.add(NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), red,
		&geometry.SurfaceOptions{Name: "left wall"}))
	c.add(NewQuad(core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), green,
		&geometry.SurfaceOptions{Name: "right wall"}))

	// Tall mirrored block, turned to face the camera at an angle
	blockCenter := core.NewVec3(185, 165, 380)
	c.add(NewBox(blockCenter, core.NewVec3(82.5, 165, 82.5), mirror, &geometry.SurfaceOptions{
		Name:     "mirror block",
		Rotation: &core.Vec3{Y: math.Pi / 10},
		Center:   &blockCenter,
	}))

	c.add(NewUVSphere(core.NewVec3(370, 90, 200), 90, 48, 24, glass, &geometry.SurfaceOptions{Name: "glass sphere"}))

	s.AddLights(
		lights.NewAreaLight(
			core.NewVec3(278, boxSize-1, 278), // just below the ceiling
			core.NewVec3(0, -1, 0),            // forward (emitting down)
			core.NewVec3(0, 0, 1),             // up hint
			65, 52.5,                          // half width, half height
			core.RGB(1, 0.95, 0.85), 1.0, 900,
		),
		lights.NewPointLight(core.NewVec3(278, 500, 150), core.RGB(1, 0.95, 0.85), 0.9, 1200),
	)

	return c.finish()
}
