package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/integrator"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	Tile       *Tile
	Frame      *Frame // The frame being rendered; only this tile's pixels are final
	PassNumber int    // Which pass this tile was rendered in (1 for single frames)

	// Progress information
	TileNumber int // Completion order in this pass (1-based)
	TotalTiles int // Total number of tiles in the image
}

// TileCallback receives tile completions one at a time
type TileCallback func(TileCompletionResult)

// Raytracer renders frames of a validated scene
type Raytracer struct {
	scene      *scene.Scene
	world      *geometry.World
	camera     *geometry.Camera
	integrator *integrator.WhittedIntegrator
	config     scene.SamplingConfig
	logger     core.Logger
}

// IntegratorConfig maps the scene's sampling settings onto the tracer's
func IntegratorConfig(config scene.SamplingConfig) integrator.Config {
	return integrator.Config{
		MaxDepth: config.MaxDepth,
		Quirks: integrator.Quirks{
			WeightDielectricDirectLight: config.WeightDielectricDirectLight,
		},
	}
}

// NewRaytracer validates and builds the scene. A nil logger discards output.
func NewRaytracer(s *scene.Scene, logger core.Logger) (*Raytracer, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	world, err := s.Build()
	if err != nil {
		return nil, err
	}
	camera := geometry.NewCamera(s.CameraConfig)

	logger.Printf("Scene %q: %d surfaces, %d triangles, %d lights\n",
		s.Name, len(s.Surfaces), s.TriangleCount(), len(s.Lights))

	return &Raytracer{
		scene:      s,
		world:      world,
		camera:     camera,
		integrator: integrator.NewWhittedIntegrator(world, s.Lights, camera.Position(), IntegratorConfig(s.SamplingConfig)),
		config:     s.SamplingConfig,
		logger:     logger,
	}, nil
}

// Scene returns the scene being rendered
func (rt *Raytracer) Scene() *scene.Scene {
	return rt.scene
}

// Camera returns the camera primary rays are generated from
func (rt *Raytracer) Camera() *geometry.Camera {
	return rt.camera
}

// SamplingConfig returns the sampling settings frames are rendered with
func (rt *Raytracer) SamplingConfig() scene.SamplingConfig {
	return rt.config
}

// RenderFrame renders the whole image. onTile may be nil; it is called from
// worker goroutines but never concurrently with itself. Cancelling ctx stops
// tiles that have not started yet.
func (rt *Raytracer) RenderFrame(ctx context.Context, onTile TileCallback) (*Frame, RenderStats, error) {
	return rt.renderPass(ctx, rt.config, 1, onTile)
}

func (rt *Raytracer) renderPass(ctx context.Context, config scene.SamplingConfig, passNumber int, onTile TileCallback) (*Frame, RenderStats, error) {
	startTime := time.Now()
	width, height := rt.camera.Size()

	frame := NewFrame(width, height)
	tiles := NewTileGrid(width, height, config.TileSize)
	pool := NewWorkerPool(config.NumWorkers)
	tileRenderer := NewTileRenderer(rt.camera, rt.integrator, config)

	stats := RenderStats{Workers: pool.GetNumWorkers()}
	var mu sync.Mutex

	err := pool.Run(ctx, tiles, func(tile *Tile) error {
		sampler := core.NewRandomSampler(config.Seed, 0)
		tileStats := tileRenderer.RenderTile(tile, frame, sampler)

		// Serialize bookkeeping and the callback
		mu.Lock()
		defer mu.Unlock()
		stats.add(tileStats)
		if onTile != nil {
			onTile(TileCompletionResult{
				Tile:       tile,
				Frame:      frame,
				PassNumber: passNumber,
				TileNumber: stats.Tiles,
				TotalTiles: len(tiles),
			})
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	stats.Elapsed = time.Since(startTime)
	return frame, stats, nil
}

// Pick traces the center ray of pixel (x, y) and reports what it hits
func (rt *Raytracer) Pick(x, y int) (integrator.PickResult, bool) {
	return rt.integrator.Pick(rt.camera.ScreenPointToRay(float64(x)+0.5, float64(y)+0.5))
}
