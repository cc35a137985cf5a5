package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Game shows the latest pass of a progressive render. Clicking a pixel
// prints what the pick ray hits.
type Game struct {
	raytracer *renderer.Raytracer
	width     int
	height    int
	screen    *ebiten.Image

	mu     sync.Mutex
	pixels []byte // RGBA, replaced as tiles and passes arrive
	dirty  bool
	status string

	wasPressed bool
}

func newGame(rt *renderer.Raytracer) *Game {
	width, height := rt.Camera().Size()
	return &Game{
		raytracer: rt,
		width:     width,
		height:    height,
		screen:    ebiten.NewImage(width, height),
		pixels:    make([]byte, width*height*4),
		status:    "Rendering...",
	}
}

// blit copies a frame region into the RGBA buffer shown on screen
func (g *Game) blit(frame *renderer.Frame, tile *renderer.Tile) {
	g.mu.Lock()
	defer g.mu.Unlock()

	bounds := tile.Bounds
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gr, b := frame.RGBAt(x, y)
			i := (y*g.width + x) * 4
			g.pixels[i], g.pixels[i+1], g.pixels[i+2], g.pixels[i+3] = r, gr, b, 255
		}
	}
	g.dirty = true
}

func (g *Game) setStatus(format string, args ...interface{}) {
	g.mu.Lock()
	g.status = fmt.Sprintf(format, args...)
	g.mu.Unlock()
}

// render runs the progressive passes and feeds tiles to the screen buffer
func (g *Game) render(ctx context.Context, passes int) {
	pr := renderer.NewProgressiveRaytracer(g.raytracer, renderer.ProgressiveConfig{InitialSamples: 1, MaxPasses: passes})
	passChan, tileChan, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	for passChan != nil || tileChan != nil {
		select {
		case tile, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			g.blit(tile.Frame, tile.Tile)
		case pass, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			g.setStatus("Pass %d/%d: %.0f spp in %v", pass.PassNumber, passes,
				pass.Stats.AverageSamples(), pass.Stats.Elapsed)
		}
	}
	if err := <-errChan; err != nil {
		g.setStatus("Render failed: %v", err)
	}
}

func (g *Game) Update() error {
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if pressed && !g.wasPressed {
		x, y := ebiten.CursorPosition()
		if x >= 0 && x < g.width && y >= 0 && y < g.height {
			if result, ok := g.raytracer.Pick(x, y); ok {
				log.Printf("Pick (%d,%d): %s [%s] triangle %d at %v, distance %.4f",
					x, y, result.Surface, result.Material, result.TriangleIndex, result.Point, result.Distance)
				g.setStatus("%s (%s) at distance %.3f", result.Surface, result.Material, result.Distance)
			} else {
				g.setStatus("(%d,%d): no hit", x, y)
			}
		}
	}
	g.wasPressed = pressed

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	if g.dirty {
		g.screen.WritePixels(g.pixels)
		g.dirty = false
	}
	status := g.status
	g.mu.Unlock()

	screen.DrawImage(g.screen, nil)
	ebitenutil.DebugPrint(screen, status)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func main() {
	sceneID := flag.String("scene", "showcase", "Scene ID")
	width := flag.Int("width", 0, "Image width in pixels (0 = scene default)")
	spp := flag.Int("spp", 0, "Samples per pixel for the final pass (0 = scene default)")
	passes := flag.Int("passes", 4, "Progressive passes")
	flag.Parse()

	logger := renderer.NewDefaultLogger()

	var overrides []geometry.CameraConfig
	if *width > 0 {
		overrides = append(overrides, geometry.CameraConfig{Width: *width})
	}
	s, err := scene.LoadScene(*sceneID, logger, overrides...)
	if err != nil {
		log.Printf("Error loading scene: %v", err)
		os.Exit(1)
	}
	s.SamplingConfig = scene.MergeSamplingConfig(s.SamplingConfig, scene.SamplingConfig{SamplesPerPixel: *spp})

	rt, err := renderer.NewRaytracer(s, logger)
	if err != nil {
		log.Printf("Error creating raytracer: %v", err)
		os.Exit(1)
	}

	game := newGame(rt)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go game.render(ctx, *passes)

	ebiten.SetWindowSize(game.width, game.height)
	ebiten.SetWindowTitle("Recursive Raytracer - " + s.Name)
	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Printf("Viewer error: %v", err)
		os.Exit(1)
	}
}
