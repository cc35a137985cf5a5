package material

import (
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

func checker2x2() *ImageTexture {
	// Layout:
	//   white black
	//   black white
	white := core.RGB(1, 1, 1)
	black := core.RGB(0, 0, 0)
	return NewImageTexture(2, 2, []core.Color{white, black, black, white})
}

// TestImageTextureTexelCenters tests that sampling at a texel center returns that texel
func TestImageTextureTexelCenters(t *testing.T) {
	texture := checker2x2()

	tests := []struct {
		name string
		uv   core.Vec2
		want core.Color
	}{
		// V=0 is the bottom row of the image
		{"top-left", core.NewVec2(0.25, 0.75), core.RGB(1, 1, 1)},
		{"top-right", core.NewVec2(0.75, 0.75), core.RGB(0, 0, 0)},
		{"bottom-left", core.NewVec2(0.25, 0.25), core.RGB(0, 0, 0)},
		{"bottom-right", core.NewVec2(0.75, 0.25), core.RGB(1, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texture.Evaluate(tt.uv, core.Vec3{})
			if !got.ApproxEqual(tt.want, 1e-12) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

// TestImageTextureBilinear tests that samples between texels blend their neighbors
func TestImageTextureBilinear(t *testing.T) {
	texture := checker2x2()

	// Center of the image weighs all four texels equally
	got := texture.Evaluate(core.NewVec2(0.5, 0.5), core.Vec3{})
	if !got.ApproxEqual(core.RGB(0.5, 0.5, 0.5), 1e-12) {
		t.Errorf("Expected mid gray at image center, got %+v", got)
	}

	// Halfway between top-left (white) and top-right (black) along U
	got = texture.Evaluate(core.NewVec2(0.5, 0.75), core.Vec3{})
	if !got.ApproxEqual(core.RGB(0.5, 0.5, 0.5), 1e-12) {
		t.Errorf("Expected mid gray between horizontal neighbors, got %+v", got)
	}

	// A quarter of the way from top-left toward top-right
	got = texture.Evaluate(core.NewVec2(0.375, 0.75), core.Vec3{})
	if !got.ApproxEqual(core.RGB(0.75, 0.75, 0.75), 1e-12) {
		t.Errorf("Expected 0.75 gray, got %+v", got)
	}
}

// TestImageTextureWrapping tests UV repeat addressing
func TestImageTextureWrapping(t *testing.T) {
	texture := checker2x2()
	base := texture.Evaluate(core.NewVec2(0.25, 0.75), core.Vec3{})

	testCases := []core.Vec2{
		core.NewVec2(1.25, 0.75),
		core.NewVec2(0.25, 1.75),
		core.NewVec2(-0.75, -0.25),
		core.NewVec2(3.25, 2.75),
	}

	for _, uv := range testCases {
		result := texture.Evaluate(uv, core.Vec3{})
		if !result.ApproxEqual(base, 1e-9) {
			t.Errorf("UV%v: expected %+v, got %+v", uv, base, result)
		}
	}

	// Sampling across the right edge blends with the left column
	edge := texture.Evaluate(core.NewVec2(0.0, 0.75), core.Vec3{})
	if !edge.ApproxEqual(core.RGB(0.5, 0.5, 0.5), 1e-12) {
		t.Errorf("Expected edge sample to blend wrapped texels, got %+v", edge)
	}
}

func TestImageTextureEmpty(t *testing.T) {
	texture := NewImageTexture(0, 0, nil)
	if got := texture.Evaluate(core.NewVec2(0.5, 0.5), core.Vec3{}); got != core.Transparent {
		t.Errorf("Expected transparent for an empty texture, got %+v", got)
	}
}

func TestCheckerboardTexture(t *testing.T) {
	red := core.RGB(1, 0, 0)
	blue := core.RGB(0, 0, 1)
	texture := NewCheckerboardTexture(4, 4, 2, red, blue)

	if texture.Pixels[0] != red || texture.Pixels[2] != blue || texture.Pixels[2*4] != blue || texture.Pixels[2*4+2] != red {
		t.Errorf("Unexpected checker layout: %+v", texture.Pixels)
	}
}

func TestWorldChecker(t *testing.T) {
	even := core.RGB(1, 1, 1)
	odd := core.RGB(0, 0, 0)
	checker := &WorldChecker{Size: 1, Even: even, Odd: odd}

	tests := []struct {
		point core.Vec3
		want  core.Color
	}{
		{core.NewVec3(0.5, 0.5, 0.5), even},
		{core.NewVec3(1.5, 0.5, 0.5), odd},
		{core.NewVec3(-0.5, 0.5, 0.5), odd},
		{core.NewVec3(1.5, 1.5, 0.5), even},
	}

	for _, tt := range tests {
		if got := checker.Evaluate(core.Vec2{}, tt.point); got != tt.want {
			t.Errorf("Point %v: expected %+v, got %+v", tt.point, tt.want, got)
		}
	}
}
