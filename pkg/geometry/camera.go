package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center      core.Vec3 // Camera position
	LookAt      core.Vec3 // Point the camera is looking at
	Up          core.Vec3 // Up direction (usually (0,1,0))
	Width       int       // Image width in pixels
	AspectRatio float64   // Aspect ratio (width/height)
	VFov        float64   // Vertical field of view in degrees
}

// DefaultCameraConfig returns a camera at z=5 looking at the origin
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 5),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        45.0,
	}
}

// Height returns the image height implied by Width and AspectRatio
func (c CameraConfig) Height() int {
	return max(1, int(float64(c.Width)/c.AspectRatio))
}

// Validate rejects configurations that cannot produce a basis or an image
func (c CameraConfig) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("camera width must be positive, got %d", c.Width)
	}
	if c.AspectRatio <= 0 {
		return fmt.Errorf("camera aspect ratio must be positive, got %f", c.AspectRatio)
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return fmt.Errorf("camera vfov must be in (0, 180), got %f", c.VFov)
	}
	forward := c.LookAt.Subtract(c.Center)
	if forward.IsZero() {
		return fmt.Errorf("camera center and look-at coincide at %v", c.Center)
	}
	if forward.Normalize().Cross(c.Up.Normalize()).Length() < 1e-9 {
		return fmt.Errorf("camera up %v is parallel to the view direction", c.Up)
	}
	return nil
}

// Camera maps pixel coordinates to world-space rays
type Camera struct {
	config  CameraConfig
	width   int
	height  int
	right   core.Vec3
	up      core.Vec3
	forward core.Vec3
	halfW   float64 // tan(hfov/2)
	halfH   float64 // tan(vfov/2)
}

// NewCamera creates a camera from configuration
func NewCamera(config CameraConfig) *Camera {
	forward := config.LookAt.Subtract(config.Center).Normalize()
	right := forward.Cross(config.Up).Normalize()
	up := right.Cross(forward)

	width, height := config.Width, config.Height()
	halfH := math.Tan(config.VFov * math.Pi / 360)

	return &Camera{
		config:  config,
		width:   width,
		height:  height,
		right:   right,
		up:      up,
		forward: forward,
		halfW:   halfH * float64(width) / float64(height),
		halfH:   halfH,
	}
}

// Position returns the eye position
func (c *Camera) Position() core.Vec3 {
	return c.config.Center
}

// Basis returns the orthonormal right, up and forward vectors
func (c *Camera) Basis() (right, up, forward core.Vec3) {
	return c.right, c.up, c.forward
}

// Size returns the image dimensions in pixels
func (c *Camera) Size() (width, height int) {
	return c.width, c.height
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// ScreenPointToRay returns the unit ray through pixel coordinate (x, y).
// x runs left to right over [0, width] and y top to bottom over [0, height],
// so (col+0.5, row+0.5) is the center of a pixel.
func (c *Camera) ScreenPointToRay(x, y float64) core.Ray {
	sx := (x/float64(c.width))*2 - 1
	sy := 1 - (y/float64(c.height))*2

	direction := c.forward.
		Add(c.right.Multiply(sx * c.halfW)).
		Add(c.up.Multiply(sy * c.halfH)).
		Normalize()

	return core.NewRay(c.config.Center, direction)
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.Center.IsZero() {
		result.Center = override.Center
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if !override.Up.IsZero() {
		result.Up = override.Up
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	return result
}
