package scene

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// SphereColor is the base color of the sphere in NewSphereScene
var SphereColor = core.RGB(0.8, 0.3, 0.2)

// NewSphereScene creates a single tessellated unit sphere lit by a
// directional light straight overhead, seen from directly above. The
// sphere center is nudged off the camera axis so the center pixel lands
// inside a triangle rather than on the pole vertex.
func NewSphereScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 5, 0),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 0, -1),
		Width:       128,
		AspectRatio: 1.0,
		VFov:        30.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := &Scene{
		Name:           "sphere",
		CameraConfig:   cameraConfig,
		SamplingConfig: DefaultSamplingConfig(),
	}
	c := &surfaceCollector{scene: s}

	diffuse := material.NewDiffuse(SphereColor, 1.0, 1.0)
	c.add(NewUVSphere(core.NewVec3(0.001, 0, 0.0007), 1, 64, 32, diffuse, &geometry.SurfaceOptions{Name: "sphere"}))

	s.AddLights(lights.NewDirectionalLight(core.NewVec3(0, -1, 0), core.White, 1.0))

	return c.finish()
}

// NewMirrorScene creates two parallel planes: a diffuse floor at y=0 and a
// downward-facing mirror at y=2, with a point light between them. The
// camera sits between the planes looking straight up, so every pixel sees
// the floor reflected in the mirror.
func NewMirrorScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 1, 0),
		LookAt:      core.NewVec3(0, 2, 0),
		Up:          core.NewVec3(0, 0, 1),
		Width:       128,
		AspectRatio: 1.0,
		VFov:        60.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := &Scene{
		Name:           "mirror",
		CameraConfig:   cameraConfig,
		SamplingConfig: DefaultSamplingConfig(),
	}
	c := &surfaceCollector{scene: s}

	floor := material.NewDiffuse(core.RGB(0.9, 0.6, 0.3), 1.0, 0.0)
	checker := &material.WorldChecker{Size: 0.5, Even: core.RGB(0.9, 0.6, 0.3), Odd: core.RGB(0.3, 0.5, 0.9)}
	mirror := material.NewReflective(core.White, 0.0, 0.0, 1.5)

	c.add(NewGroundQuad(core.NewVec3(0, 0, 0), 20, floor, &geometry.SurfaceOptions{Name: "floor", Texture: checker}))

	// u x v = (20,0,0) x (0,0,20) points down, toward the floor
	c.add(NewQuad(core.NewVec3(-10, 2, -10), core.NewVec3(20, 0, 0), core.NewVec3(0, 0, 20), mirror,
		&geometry.SurfaceOptions{Name: "mirror"}))

	s.AddLights(lights.NewPointLight(core.NewVec3(0, 1.5, 0), core.White, 1.0, 1000))

	return c.finish()
}
