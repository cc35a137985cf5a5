package renderer

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Row-major index in the grid
	TileX  int             // Tile column
	TileY  int             // Tile row
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{
				ID:     len(tiles),
				TileX:  tileX,
				TileY:  tileY,
				Bounds: image.Rect(x0, y0, x1, y1),
			})
		}
	}

	return tiles
}

// WorkerPool renders tiles concurrently with a bounded number of goroutines
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool; numWorkers <= 0 means one worker per CPU
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run calls work once per tile with at most GetNumWorkers calls in flight.
// Tiles not yet started are skipped once ctx is done or a call has failed;
// the first error is returned.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, work func(*Tile) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	for _, tile := range tiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return work(tile)
		})
	}

	return g.Wait()
}
