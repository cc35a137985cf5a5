package core

import "math"

// Color is a linear RGBA color. Channels are left unclamped while light is
// being accumulated and only clamped when written to an 8-bit buffer.
type Color struct {
	R, G, B, A float64
}

// Transparent is the "no contribution" color returned for misses and cutoffs
var Transparent = Color{}

// Black is opaque black, the result of an enabled light that contributes nothing
var Black = Color{A: 1}

// White is opaque white
var White = Color{R: 1, G: 1, B: 1, A: 1}

// NewColor creates an RGBA color
func NewColor(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// RGB creates an opaque color
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Add returns the channel-wise sum, alpha included
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B, c.A + other.A}
}

// Multiply scales all four channels
func (c Color) Multiply(scalar float64) Color {
	return Color{c.R * scalar, c.G * scalar, c.B * scalar, c.A * scalar}
}

// MultiplyColor returns the channel-wise product, alpha included
func (c Color) MultiplyColor(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B, c.A * other.A}
}

// WithAlpha returns a copy of c with its alpha replaced
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// RGBVec returns the color channels as a Vec3 (alpha dropped)
func (c Color) RGBVec() Vec3 {
	return Vec3{c.R, c.G, c.B}
}

// ColorFromVec3 builds an opaque color from a Vec3
func ColorFromVec3(v Vec3) Color {
	return Color{R: v.X, G: v.Y, B: v.Z, A: 1}
}

// Luminance returns the perceptual luminance of the RGB channels
func (c Color) Luminance() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// ApproxEqual compares the RGB channels within tolerance
func (c Color) ApproxEqual(other Color, tolerance float64) bool {
	return math.Abs(c.R-other.R) <= tolerance &&
		math.Abs(c.G-other.G) <= tolerance &&
		math.Abs(c.B-other.B) <= tolerance
}

// ToRGB8 clamps each channel to [0,1] and scales it by 255, truncating
func (c Color) ToRGB8() (r, g, b uint8) {
	return clamp01Byte(c.R), clamp01Byte(c.G), clamp01Byte(c.B)
}

func clamp01Byte(v float64) uint8 {
	return uint8(max(0, min(1, v)) * 255)
}
