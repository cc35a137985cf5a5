package renderer

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/integrator"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

// TileRenderer turns pixels into averaged integrator samples
type TileRenderer struct {
	camera     *geometry.Camera
	lens       *LensCamera
	integrator integrator.Integrator
	config     scene.SamplingConfig
}

// NewTileRenderer creates a tile renderer for one camera and sampling configuration
func NewTileRenderer(camera *geometry.Camera, integratorInst integrator.Integrator, config scene.SamplingConfig) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		lens:       NewLensCamera(camera, config.FocalLength, config.ApertureRadius),
		integrator: integratorInst,
		config:     config,
	}
}

// RenderTile writes every pixel of tile into frame. The sampler is reseeded
// per pixel from (Seed, pixel index), so the result does not depend on which
// worker renders the tile or in what order.
func (tr *TileRenderer) RenderTile(tile *Tile, frame *Frame, sampler *core.RandomSampler) RenderStats {
	stats := RenderStats{TotalPixels: tile.Bounds.Dx() * tile.Bounds.Dy()}

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			sampler.Reseed(tr.config.Seed, uint64(y*frame.Width+x))
			frame.Set(x, y, tr.SamplePixel(x, y, sampler))
		}
	}

	stats.TotalSamples = stats.TotalPixels * tr.samplesPerPixel()
	return stats
}

// samplesPerPixel is the number of primary rays SamplePixel traces
func (tr *TileRenderer) samplesPerPixel() int {
	if tr.config.UseDepthOfField {
		return tr.config.SamplesPerPixel * tr.config.DofSampleNum
	}
	return tr.config.SamplesPerPixel
}

// SamplePixel returns the unclamped color of pixel (x, y). Without depth of
// field it averages SamplesPerPixel rays jittered inside the pixel. With it,
// each of DofSampleNum aperture positions averages its own SamplesPerPixel
// rays, and those averages are averaged again.
func (tr *TileRenderer) SamplePixel(x, y int, sampler core.Sampler) core.Color {
	if tr.config.UseDepthOfField {
		return tr.sampleDepthOfField(x, y, sampler)
	}

	var ps PixelStats
	for i := 0; i < tr.config.SamplesPerPixel; i++ {
		jitter := sampler.Get2D()
		ray := tr.camera.ScreenPointToRay(float64(x)+jitter.X, float64(y)+jitter.Y)
		ps.AddSample(tr.integrator.RayColor(ray))
	}
	return ps.GetColor()
}

func (tr *TileRenderer) sampleDepthOfField(x, y int, sampler core.Sampler) core.Color {
	focus := tr.lens.FocusPoint(x, y)

	var outer PixelStats
	for d := 0; d < tr.config.DofSampleNum; d++ {
		lensOrigin := tr.lens.LensOrigin(x, y, sampler.Get2D())

		var inner PixelStats
		for i := 0; i < tr.config.SamplesPerPixel; i++ {
			ray := tr.lens.JitteredRay(lensOrigin, focus, sampler.Get2D())
			inner.AddSample(tr.integrator.RayColor(ray))
		}
		outer.AddSample(inner.GetColor())
	}
	return outer.GetColor()
}
