package renderer

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
)

// LensCamera adds a square thin-lens aperture to a pinhole camera for depth
// of field. Every ray for a pixel aims at one focus point on that pixel's
// center ray.
type LensCamera struct {
	camera         *geometry.Camera
	focalLength    float64
	apertureRadius float64
}

// NewLensCamera wraps camera with the given focus distance and aperture width
func NewLensCamera(camera *geometry.Camera, focalLength, apertureRadius float64) *LensCamera {
	return &LensCamera{
		camera:         camera,
		focalLength:    focalLength,
		apertureRadius: apertureRadius,
	}
}

// PixelRay returns the unjittered ray through the center of pixel (x, y)
func (lc *LensCamera) PixelRay(x, y int) core.Ray {
	return lc.camera.ScreenPointToRay(float64(x)+0.5, float64(y)+0.5)
}

// FocusPoint is where every depth of field ray for pixel (x, y) converges
func (lc *LensCamera) FocusPoint(x, y int) core.Vec3 {
	return lc.PixelRay(x, y).At(lc.focalLength)
}

// LensOrigin offsets the eye within the aperture. sample is in [0,1)^2 and
// maps to [-radius/2, radius/2) along the camera's right and up axes.
func (lc *LensCamera) LensOrigin(x, y int, sample core.Vec2) core.Vec3 {
	right, up, _ := lc.camera.Basis()
	return lc.PixelRay(x, y).Origin.
		Add(right.Multiply((sample.X - 0.5) * lc.apertureRadius)).
		Add(up.Multiply((sample.Y - 0.5) * lc.apertureRadius))
}

// JitteredRay shifts lensOrigin by a sub-pixel amount and aims it at focus
func (lc *LensCamera) JitteredRay(lensOrigin, focus core.Vec3, jitter core.Vec2) core.Ray {
	right, up, _ := lc.camera.Basis()
	width, height := lc.camera.Size()
	origin := lensOrigin.
		Add(right.Multiply(jitter.X / float64(width))).
		Add(up.Multiply(jitter.Y / float64(height)))
	return core.NewRay(origin, focus.Subtract(origin).Normalize())
}
