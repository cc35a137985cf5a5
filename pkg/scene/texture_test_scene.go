package scene

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// NewTextureTestScene creates a scene demonstrating texture mapping on quads,
// spheres and boxes
func NewTextureTestScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 2, 8),
		LookAt:      core.NewVec3(0, 1, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        50.0, // Wider FOV to see all shapes
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 4

	s := &Scene{
		Name:           "textures",
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
	c := &surfaceCollector{scene: s}

	checkerboard := material.NewCheckerboardTexture(256, 256, 32, core.RGB(0.9, 0.9, 0.9), core.RGB(0.2, 0.2, 0.8))
	gradient := material.NewGradientTexture(256, 256, core.RGB(1.0, 0.2, 0.2), core.RGB(0.2, 1.0, 0.2))
	worldChecker := &material.WorldChecker{Size: 1, Even: core.RGB(0.8, 0.8, 0.75), Odd: core.RGB(0.35, 0.3, 0.3)}

	plain := material.NewDiffuse(core.White, 1.0, 0.3)

	c.add(NewGroundQuad(core.NewVec3(0, 0, 0), 20, plain, &geometry.SurfaceOptions{Name: "floor", Texture: worldChecker}))
	c.add(NewUVSphere(core.NewVec3(-2.2, 1, 0), 1, 48, 24, plain, &geometry.SurfaceOptions{Name: "checker sphere", Texture: checkerboard}))
	c.add(NewBox(core.NewVec3(0, 0.8, 0), core.NewVec3(0.8, 0.8, 0.8), plain, &geometry.SurfaceOptions{Name: "gradient box", Texture: gradient}))
	c.add(NewQuad(core.NewVec3(1.4, 0.2, -0.5), core.NewVec3(1.6, 0, 0.6), core.NewVec3(0, 1.6, 0), plain,
		&geometry.SurfaceOptions{Name: "checker panel", Texture: checkerboard}))

	s.AddLights(
		lights.NewDirectionalLight(core.NewVec3(-0.4, -1, -0.6), core.White, 1.0),
		lights.NewPointLight(core.NewVec3(0, 4, 4), core.RGB(1, 0.95, 0.9), 0.6, 20),
	)

	return c.finish()
}
