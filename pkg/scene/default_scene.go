package scene

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// NewShowcaseScene creates the default scene: a glass sphere, a mirror wall,
// a rotated box and a checkered floor lit by one light of every kind
func NewShowcaseScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 1.6, 5.5),
		LookAt:      core.NewVec3(0, 0.7, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        45.0,
	}

	// Apply any overrides using the reusable merge function
	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 4
	samplingConfig.FocalLength = 5.6
	samplingConfig.ApertureRadius = 0.08

	s := &Scene{
		Name:           "showcase",
		CameraConfig:   cameraConfig,
		SamplingConfig: samplingConfig,
	}
	c := &surfaceCollector{scene: s}

	// Create materials
	checker := material.NewCheckerboardTexture(256, 256, 32, core.RGB(0.85, 0.85, 0.8), core.RGB(0.2, 0.25, 0.3))
	floor := material.NewDiffuse(core.RGB(0.7, 0.7, 0.7), 1.0, 0.2)
	glass := material.NewRefractive(1.5, core.NewVec3(0.15, 0.05, 0.02), 0.0, 1.0)
	mirror := material.NewReflective(core.RGB(0.1, 0.1, 0.12), 0.3, 1.0, 20.0)
	red := material.NewDiffuse(core.RGB(0.75, 0.15, 0.1), 0.9, 0.5)
	gold := material.NewReflective(core.RGB(0.6, 0.45, 0.1), 0.8, 1.0, 3.0)

	c.add(NewGroundQuad(core.NewVec3(0, 0, 0), 14, floor, &geometry.SurfaceOptions{Name: "floor", Texture: checker}))

	// Mirror wall behind the objects; u x v points toward the camera
	c.add(NewQuad(
		core.NewVec3(-2.5, 0, -2), // corner
		core.NewVec3(5, 0, 0),     // u vector (X direction)
		core.NewVec3(0, 2.8, 0),   // v vector (Y direction)
		mirror,
		&geometry.SurfaceOptions{Name: "mirror"},
	))

	c.add(NewUVSphere(core.NewVec3(-1.0, 0.8, 0.2), 0.8, 48, 24, glass, &geometry.SurfaceOptions{Name: "glass sphere"}))
	c.add(NewUVSphere(core.NewVec3(0.4, 0.35, 1.3), 0.35, 32, 16, gold, &geometry.SurfaceOptions{Name: "gold sphere"}))

	boxCenter := core.NewVec3(1.3, 0.5, 0.1)
	c.add(NewBox(boxCenter, core.NewVec3(0.5, 0.5, 0.5), red, &geometry.SurfaceOptions{
		Name:     "red box",
		Rotation: &core.Vec3{Y: math.Pi / 6},
		Center:   &boxCenter,
	}))

	s.AddLights(
		lights.NewDirectionalLight(core.NewVec3(-0.3, -1, -0.4), core.RGB(1, 0.98, 0.95), 0.8),
		lights.NewPointLight(core.NewVec3(2.5, 3, 2.5), core.RGB(1, 0.85, 0.7), 1.2, 12),
		lights.NewSpotLight(
			core.NewVec3(-2.5, 4, 2.5),    // position
			core.NewVec3(1.5, -3.2, -2.3), // forward, toward the glass sphere
			25,                            // half angle in degrees
			core.RGB(0.7, 0.8, 1.0), 2.0, 15,
		),
		lights.NewAreaLight(
			core.NewVec3(0, 3.5, 0.5), // position
			core.NewVec3(0, -1, 0),    // forward (emitting down)
			core.NewVec3(0, 0, 1),     // up hint
			1.0, 0.5,                  // half width, half height
			core.RGB(1, 1, 1), 0.5, 8,
		),
	)

	return c.finish()
}
