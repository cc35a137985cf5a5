package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

func TestParseFlags(t *testing.T) {
	config, err := parseFlags([]string{"-scene", "mirror", "-spp", "8", "-dof", "-seed", "7", "-raw"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.SceneType != "mirror" || config.Samples != 8 || !config.DoF || config.Seed != 7 || !config.Raw {
		t.Errorf("Flags not parsed as expected: %+v", config)
	}
	if config.Passes != 1 || config.OutputDir != "output" {
		t.Errorf("Expected default passes and output, got %d and %q", config.Passes, config.OutputDir)
	}

	if _, err := parseFlags([]string{"-passes", "0"}); err == nil {
		t.Error("Expected error for zero passes")
	}
}

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		{"showcase scene", "showcase", false},
		{"sphere scene", "sphere", false},
		{"mirror scene", "mirror", false},
		{"cornell scene", "cornell-box", false},
		{"texture scene", "textures", false},

		{"unknown scene", "nonexistent", true},
		{"missing ply path", "scenes/nonexistent.ply", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createScene(tt.sceneType, 64, core.NopLogger{})

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s.CameraConfig.Width != 64 {
				t.Errorf("Expected width override 64, got %d", s.CameraConfig.Width)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Expected a valid scene, got %v", err)
			}
		})
	}
}

func TestSamplingOverrides(t *testing.T) {
	config := Config{Samples: 4, DoF: true, DoFSamples: 3, Workers: 2, Weighted: true}
	merged := scene.MergeSamplingConfig(scene.DefaultSamplingConfig(), samplingOverrides(config))

	if merged.SamplesPerPixel != 4 || merged.DofSampleNum != 3 || merged.NumWorkers != 2 {
		t.Errorf("Overrides not applied: %+v", merged)
	}
	if !merged.UseDepthOfField || !merged.WeightDielectricDirectLight {
		t.Errorf("Expected switches turned on: %+v", merged)
	}
	if merged.MaxDepth != scene.DefaultSamplingConfig().MaxDepth {
		t.Errorf("Expected default max depth to survive, got %d", merged.MaxDepth)
	}
}

func TestSamplingOverrides_ExplicitZero(t *testing.T) {
	config, err := parseFlags([]string{"-dof", "-aperture", "0", "-seed", "0"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(config.Explicit) != 3 {
		t.Errorf("Expected 3 explicit settings, got %v", config.Explicit)
	}

	merged := scene.MergeSamplingConfig(scene.DefaultSamplingConfig(), samplingOverrides(config), config.Explicit...)
	if merged.ApertureRadius != 0 {
		t.Errorf("Expected aperture 0, got %f", merged.ApertureRadius)
	}
	if merged.Seed != 0 {
		t.Errorf("Expected seed 0, got %d", merged.Seed)
	}
	if !merged.UseDepthOfField {
		t.Error("Expected depth of field on")
	}

	// Flags left at their defaults do not override the scene
	config, err = parseFlags([]string{"-spp", "2"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	merged = scene.MergeSamplingConfig(scene.DefaultSamplingConfig(), samplingOverrides(config), config.Explicit...)
	if merged.ApertureRadius != scene.DefaultSamplingConfig().ApertureRadius || merged.Seed != scene.DefaultSamplingConfig().Seed {
		t.Errorf("Expected scene defaults for unset flags, got %+v", merged)
	}
}

func TestSceneDirName(t *testing.T) {
	tests := map[string]string{
		"showcase":          "showcase",
		"ply:bunny":         "bunny",
		"scenes/dragon.ply": "dragon",
		"":                  "scene",
	}
	for input, expected := range tests {
		if got := sceneDirName(input); got != expected {
			t.Errorf("sceneDirName(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestSaveFrame(t *testing.T) {
	frame := renderer.NewFrame(3, 2)
	frame.Set(1, 1, core.RGB(1, 0.5, 0))
	dir := filepath.Join(t.TempDir(), "sphere")

	files, err := saveFrame(frame, dir, "test", true)
	if err != nil {
		t.Fatalf("saveFrame failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected png and ppm, got %v", files)
	}

	f, err := os.Open(filepath.Join(dir, "render_test.png"))
	if err != nil {
		t.Fatalf("Failed to open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Failed to decode png: %v", err)
	}
	if r, g, b, _ := img.At(1, 1).RGBA(); r>>8 != 255 || g>>8 != 127 || b != 0 {
		t.Errorf("Expected (255,127,0), got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "render_test.ppm"))
	if err != nil {
		t.Fatalf("Failed to read ppm: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("P6\n3 2\n255\n")) || !bytes.HasSuffix(raw, frame.Pix) {
		t.Error("Expected a P6 header followed by the frame bytes")
	}
}

func TestRender_Progressive(t *testing.T) {
	s, err := createScene("sphere", 16, core.NopLogger{})
	if err != nil {
		t.Fatalf("Failed to create scene: %v", err)
	}
	s.SamplingConfig.SamplesPerPixel = 3
	rt, err := renderer.NewRaytracer(s, nil)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}

	frame, stats, err := render(context.Background(), rt, 2)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if frame == nil || stats.AverageSamples() != 3 {
		t.Errorf("Expected the final pass at 3 samples, got %f", stats.AverageSamples())
	}
}
