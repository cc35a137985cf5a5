package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

func TestProgressiveSampleCalculation(t *testing.T) {
	tests := []struct {
		name     string
		maxSPP   int
		config   ProgressiveConfig
		expected []int
	}{
		{
			// (50-1)/6 = 8 samples added per pass, final pass gets the rest
			name:     "linear spread",
			maxSPP:   50,
			config:   ProgressiveConfig{InitialSamples: 1, MaxPasses: 7},
			expected: []int{1, 9, 17, 25, 33, 41, 50},
		},
		{
			name:     "single pass",
			maxSPP:   16,
			config:   ProgressiveConfig{InitialSamples: 1, MaxPasses: 1},
			expected: []int{16},
		},
		{
			name:     "initial above maximum",
			maxSPP:   2,
			config:   ProgressiveConfig{InitialSamples: 8, MaxPasses: 3},
			expected: []int{2, 2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &Raytracer{config: scene.SamplingConfig{SamplesPerPixel: tt.maxSPP}}
			pr := NewProgressiveRaytracer(rt, tt.config)

			for pass := 1; pass <= len(tt.expected); pass++ {
				if got := pr.getSamplesForPass(pass); got != tt.expected[pass-1] {
					t.Errorf("Pass %d: expected %d samples, got %d", pass, tt.expected[pass-1], got)
				}
			}
		})
	}
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultProgressiveConfig()

	if config.InitialSamples != 1 {
		t.Errorf("Expected default initial samples 1, got %d", config.InitialSamples)
	}
	if config.MaxPasses != 4 {
		t.Errorf("Expected default max passes 4, got %d", config.MaxPasses)
	}

	pr := NewProgressiveRaytracer(&Raytracer{}, ProgressiveConfig{})
	if pr.config.MaxPasses != 1 || pr.config.InitialSamples != 1 {
		t.Errorf("Expected zero config to clamp to one pass of one sample, got %+v", pr.config)
	}
}

func TestRenderProgressive(t *testing.T) {
	rt := newSphereRaytracer(t, 24, scene.SamplingConfig{SamplesPerPixel: 4, TileSize: 8})
	pr := NewProgressiveRaytracer(rt, ProgressiveConfig{InitialSamples: 1, MaxPasses: 3})

	passChan, tileChan, errChan := pr.RenderProgressive(context.Background(), RenderOptions{TileUpdates: true})

	tileCount := make(chan int)
	go func() {
		count := 0
		for range tileChan {
			count++
		}
		tileCount <- count
	}()

	var passes []PassResult
	for pass := range passChan {
		passes = append(passes, pass)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(passes) != 3 {
		t.Fatalf("Expected 3 passes, got %d", len(passes))
	}
	expectedSamples := []float64{1, 2, 4}
	for i, pass := range passes {
		if pass.PassNumber != i+1 {
			t.Errorf("Expected pass number %d, got %d", i+1, pass.PassNumber)
		}
		if pass.IsLast != (i == 2) {
			t.Errorf("Pass %d: unexpected IsLast %v", pass.PassNumber, pass.IsLast)
		}
		if got := pass.Stats.AverageSamples(); got != expectedSamples[i] {
			t.Errorf("Pass %d: expected %f samples per pixel, got %f", pass.PassNumber, expectedSamples[i], got)
		}
	}

	// 3x3 tiles per pass
	if got := <-tileCount; got != 27 {
		t.Errorf("Expected 27 tile updates, got %d", got)
	}
}

func TestRenderProgressive_NoTileUpdates(t *testing.T) {
	rt := newSphereRaytracer(t, 16, scene.SamplingConfig{})
	pr := NewProgressiveRaytracer(rt, ProgressiveConfig{MaxPasses: 2})

	passChan, tileChan, errChan := pr.RenderProgressive(context.Background(), RenderOptions{})

	if _, ok := <-tileChan; ok {
		t.Error("Expected tile channel to be closed")
	}
	count := 0
	for range passChan {
		count++
	}
	if err := <-errChan; err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 passes, got %d", count)
	}
}

func TestRenderProgressive_Cancelled(t *testing.T) {
	rt := newSphereRaytracer(t, 16, scene.SamplingConfig{})
	pr := NewProgressiveRaytracer(rt, DefaultProgressiveConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	passChan, _, errChan := pr.RenderProgressive(ctx, RenderOptions{})
	for range passChan {
		t.Error("Expected no passes after cancellation")
	}
	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
