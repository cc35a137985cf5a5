package renderer

import (
	"context"
	"time"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	InitialSamples int // Samples per pixel for the preview pass
	MaxPasses      int // Number of passes; the last uses the scene's full sample count
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		InitialSamples: 1,
		MaxPasses:      4,
	}
}

// ProgressiveRaytracer renders the same scene repeatedly with a growing
// sample count so a viewer can show a quick preview first
type ProgressiveRaytracer struct {
	raytracer *Raytracer
	config    ProgressiveConfig
}

// NewProgressiveRaytracer creates a progressive renderer on top of rt
func NewProgressiveRaytracer(rt *Raytracer, config ProgressiveConfig) *ProgressiveRaytracer {
	if config.MaxPasses < 1 {
		config.MaxPasses = 1
	}
	if config.InitialSamples < 1 {
		config.InitialSamples = 1
	}
	return &ProgressiveRaytracer{raytracer: rt, config: config}
}

// getSamplesForPass calculates the samples per pixel for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	maxSamples := pr.raytracer.config.SamplesPerPixel

	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 || passNumber >= pr.config.MaxPasses {
		return maxSamples
	}

	initial := min(pr.config.InitialSamples, maxSamples)
	if passNumber == 1 {
		return initial
	}

	// Divide remaining samples evenly across remaining passes
	samplesPerPass := (maxSamples - initial) / (pr.config.MaxPasses - 1)
	return max(initial+(passNumber-1)*samplesPerPass, 1)
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Frame      *Frame
	Stats      RenderStats
	IsLast     bool
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders every pass in a background goroutine. The pass and
// tile channels close when rendering stops; errChan carries at most one error,
// including ctx.Err() when the caller cancels. If options.TileUpdates is false
// the tile channel is closed immediately.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)

		logger := pr.raytracer.logger
		logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

		var tileCallback TileCallback
		if options.TileUpdates {
			tileCallback = func(result TileCompletionResult) {
				select {
				case tileChan <- result:
				case <-ctx.Done():
				}
			}
		}

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			if err := ctx.Err(); err != nil {
				logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- err
				return
			}

			config := pr.raytracer.config
			config.SamplesPerPixel = pr.getSamplesForPass(pass)

			startTime := time.Now()
			frame, stats, err := pr.raytracer.renderPass(ctx, config, pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}
			logger.Printf("Pass %d completed in %v (%d samples/pixel)\n",
				pass, time.Since(startTime), config.SamplesPerPixel)

			select {
			case passChan <- PassResult{
				PassNumber: pass,
				Frame:      frame,
				Stats:      stats,
				IsLast:     pass == pr.config.MaxPasses,
			}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}
