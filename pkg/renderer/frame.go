package renderer

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Frame is an 8-bit RGB pixel buffer, row-major with row 0 at the top.
// Each channel is uint8(clamp01(c)*255).
type Frame struct {
	Width  int
	Height int
	Pix    []uint8 // 3 bytes per pixel
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// offset returns the index of the red channel of pixel (x, y)
func (f *Frame) offset(x, y int) int {
	return (y*f.Width + x) * 3
}

// Set stores a color, clamping each channel to [0,1]. Alpha is dropped.
func (f *Frame) Set(x, y int, c core.Color) {
	i := f.offset(x, y)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.ToRGB8()
}

// RGBAt returns the stored channels of pixel (x, y)
func (f *Frame) RGBAt(x, y int) (r, g, b uint8) {
	i := f.offset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Image converts the frame to an opaque RGBA image for encoding
func (f *Frame) Image() *image.RGBA {
	return f.SubImage(image.Rect(0, 0, f.Width, f.Height))
}

// SubImage copies the pixels inside bounds into a new image whose origin is
// the top-left corner of bounds
func (f *Frame) SubImage(bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, f.Width, f.Height))
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := f.RGBAt(x, y)
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// WriteRaw writes the frame as a binary PPM (P6), which is the raw RGB
// buffer behind a short text header
func (f *Frame) WriteRaw(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", f.Width, f.Height); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(f.Pix); err != nil {
		return fmt.Errorf("failed to write pixels: %w", err)
	}
	return nil
}
