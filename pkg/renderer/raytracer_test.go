package renderer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/lights"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
	"gonum.org/v1/gonum/stat"
)

func newSphereScene(t *testing.T, width int) *scene.Scene {
	t.Helper()
	s, err := scene.NewSphereScene(geometry.CameraConfig{Width: width})
	if err != nil {
		t.Fatalf("Failed to create scene: %v", err)
	}
	return s
}

func newSphereRaytracer(t *testing.T, width int, override scene.SamplingConfig) *Raytracer {
	t.Helper()
	s := newSphereScene(t, width)
	s.SamplingConfig = scene.MergeSamplingConfig(s.SamplingConfig, override)
	rt, err := NewRaytracer(s, nil)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}
	return rt
}

func TestIntegratorConfig(t *testing.T) {
	config := scene.DefaultSamplingConfig()
	config.MaxDepth = 7
	config.WeightDielectricDirectLight = true

	got := IntegratorConfig(config)
	if got.MaxDepth != 7 {
		t.Errorf("Expected max depth 7, got %d", got.MaxDepth)
	}
	if !got.Quirks.WeightDielectricDirectLight {
		t.Error("Expected dielectric weighting to carry over")
	}
}

func TestNewRaytracer_InvalidScene(t *testing.T) {
	s := newSphereScene(t, 16)
	s.SamplingConfig.SamplesPerPixel = 0

	if _, err := NewRaytracer(s, nil); !errors.Is(err, scene.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	s = newSphereScene(t, 16)
	s.Surfaces = append(s.Surfaces, nil)
	if _, err := NewRaytracer(s, nil); !errors.Is(err, geometry.ErrInvalidMesh) {
		t.Errorf("Expected ErrInvalidMesh, got %v", err)
	}
}

func TestRaytracer_RenderFrame(t *testing.T) {
	rt := newSphereRaytracer(t, 64, scene.SamplingConfig{TileSize: 16})

	frame, stats, err := rt.RenderFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	if frame.Width != 64 || frame.Height != 64 {
		t.Errorf("Expected 64x64 frame, got %dx%d", frame.Width, frame.Height)
	}
	if stats.TotalPixels != 64*64 {
		t.Errorf("Expected %d pixels, got %d", 64*64, stats.TotalPixels)
	}
	if stats.Tiles != 16 {
		t.Errorf("Expected 16 tiles, got %d", stats.Tiles)
	}
	if stats.AverageSamples() != 1 {
		t.Errorf("Expected 1 sample per pixel, got %f", stats.AverageSamples())
	}

	// The corners see only background
	if r, g, b := frame.RGBAt(0, 0); r != 0 || g != 0 || b != 0 {
		t.Errorf("Expected black corner, got (%d,%d,%d)", r, g, b)
	}
	// The top of the sphere faces the light
	if r, _, _ := frame.RGBAt(32, 32); r < 200 {
		t.Errorf("Expected a bright sphere at the center, got red %d", r)
	}
}

func TestRaytracer_DeterministicAcrossWorkers(t *testing.T) {
	var frames []*Frame
	for _, workers := range []int{1, 3, 8} {
		rt := newSphereRaytracer(t, 48, scene.SamplingConfig{
			SamplesPerPixel: 2,
			TileSize:        8,
			NumWorkers:      workers,
			Seed:            42,
		})
		frame, _, err := rt.RenderFrame(context.Background(), nil)
		if err != nil {
			t.Fatalf("RenderFrame with %d workers failed: %v", workers, err)
		}
		frames = append(frames, frame)
	}

	for i := 1; i < len(frames); i++ {
		if !bytes.Equal(frames[0].Pix, frames[i].Pix) {
			t.Errorf("Expected frame %d to match the single-worker frame", i)
		}
	}
}

func TestRaytracer_TileCallback(t *testing.T) {
	rt := newSphereRaytracer(t, 40, scene.SamplingConfig{TileSize: 16, NumWorkers: 4})

	seen := make(map[int]bool)
	var numbers []int
	_, stats, err := rt.RenderFrame(context.Background(), func(result TileCompletionResult) {
		seen[result.Tile.ID] = true
		numbers = append(numbers, result.TileNumber)
		if result.TotalTiles != 9 {
			t.Errorf("Expected 9 total tiles, got %d", result.TotalTiles)
		}
		if result.PassNumber != 1 {
			t.Errorf("Expected pass 1, got %d", result.PassNumber)
		}
	})
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	if len(seen) != 9 || stats.Tiles != 9 {
		t.Errorf("Expected 9 distinct tiles, got %d (stats %d)", len(seen), stats.Tiles)
	}
	for i, n := range numbers {
		if n != i+1 {
			t.Errorf("Expected tile number %d, got %d", i+1, n)
		}
	}
}

func TestRaytracer_Cancelled(t *testing.T) {
	rt := newSphereRaytracer(t, 32, scene.SamplingConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame, _, err := rt.RenderFrame(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if frame != nil {
		t.Error("Expected no frame after cancellation")
	}
}

func TestRaytracer_Pick(t *testing.T) {
	rt := newSphereRaytracer(t, 64, scene.SamplingConfig{})

	result, ok := rt.Pick(32, 32)
	if !ok {
		t.Fatal("Expected the center pixel to hit the sphere")
	}
	if result.Surface != "sphere" {
		t.Errorf("Expected surface sphere, got %q", result.Surface)
	}

	if _, ok := rt.Pick(0, 0); ok {
		t.Error("Expected the corner pixel to miss")
	}
}

// Coverage of a silhouette pixel is a 0/1 alpha per sample, so its
// variance across seeds should shrink roughly with the sample count
func TestSamplePixel_VarianceFallsWithSamples(t *testing.T) {
	const seeds = 64
	rt := newSphereRaytracer(t, 128, scene.SamplingConfig{})
	width, height := rt.camera.Size()
	row := height / 2

	coverage := func(x, spp int) []float64 {
		config := rt.config
		config.SamplesPerPixel = spp
		tr := NewTileRenderer(rt.camera, rt.integrator, config)
		values := make([]float64, seeds)
		for seed := range values {
			sampler := core.NewRandomSampler(uint64(seed+1), uint64(row*width+x))
			values[seed] = tr.SamplePixel(x, row, sampler).A
		}
		return values
	}

	// Find the silhouette pixel on the right half of the middle row
	edge, edgeVariance := -1, 0.0
	for x := width / 2; x < width; x++ {
		if v := stat.Variance(coverage(x, 1), nil); v > edgeVariance {
			edge, edgeVariance = x, v
		}
	}
	if edge < 0 || edgeVariance < 0.01 {
		t.Fatalf("Expected a partially covered pixel, best variance %f", edgeVariance)
	}

	converged := stat.Variance(coverage(edge, 16), nil)
	if converged >= edgeVariance/2 {
		t.Errorf("Expected variance at 16 spp (%f) below half of 1 spp (%f)", converged, edgeVariance)
	}
}

// newFloorRaytracer looks straight down at a flat matte floor lit from
// directly above, so every sample of every pixel sees the floor color
func newFloorRaytracer(t *testing.T, floorColor core.Color) *Raytracer {
	t.Helper()
	floor, err := scene.NewGroundQuad(core.Vec3{}, 100, material.NewDiffuse(floorColor, 1, 0), nil)
	if err != nil {
		t.Fatalf("Failed to create floor: %v", err)
	}
	s := &scene.Scene{
		Name: "floor",
		CameraConfig: geometry.CameraConfig{
			Center:      core.NewVec3(0, 5, 0),
			LookAt:      core.NewVec3(0, 0, 0),
			Up:          core.NewVec3(0, 0, -1),
			Width:       16,
			AspectRatio: 1.0,
			VFov:        30.0,
		},
		SamplingConfig: scene.DefaultSamplingConfig(),
	}
	s.AddSurfaces(floor)
	s.AddLights(lights.NewDirectionalLight(core.NewVec3(0, -1, 0), core.White, 1))

	rt, err := NewRaytracer(s, nil)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}
	return rt
}

// On a flat Lambertian pixel the expected color is the floor color itself
// (diffuse factor 1, no specular), whatever the sample count
func TestSamplePixel_ConvergesToSameColor(t *testing.T) {
	const seeds = 32
	floorColor := core.RGB(0.25, 0.5, 0.75)
	rt := newFloorRaytracer(t, floorColor)
	width, _ := rt.camera.Size()
	x, y := 5, 9

	for _, spp := range []int{1, 64} {
		config := rt.config
		config.SamplesPerPixel = spp
		tr := NewTileRenderer(rt.camera, rt.integrator, config)

		red := make([]float64, seeds)
		green := make([]float64, seeds)
		blue := make([]float64, seeds)
		for seed := range red {
			sampler := core.NewRandomSampler(uint64(seed+1), uint64(y*width+x))
			c := tr.SamplePixel(x, y, sampler)
			red[seed], green[seed], blue[seed] = c.R, c.G, c.B
		}

		mean := core.RGB(stat.Mean(red, nil), stat.Mean(green, nil), stat.Mean(blue, nil))
		if !mean.ApproxEqual(floorColor, 1e-9) {
			t.Errorf("spp %d: Expected mean %v, got %v", spp, floorColor, mean)
		}
	}
}
