// Package render implements a CPU software rasterizer: vertex
// transformation, triangle coverage, perspective-correct interpolation,
// depth resolution and per-pixel shading into a color/depth framebuffer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/bmp"
)

// Framebuffer holds the color and depth grids a frame is rendered into.
// Both grids are row-major and share the same dimensions.
type Framebuffer struct {
	Width  int          // Width in pixels
	Height int          // Height in pixels
	Pixels []color.RGBA // Row-major quantized color
	Depth  []float64    // Row-major depth, +Inf where nothing was drawn
}

// NewFramebuffer creates a framebuffer with the given dimensions. The depth
// grid starts cleared to +Inf and the color grid to transparent black.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
		Depth:  make([]float64, width*height),
	}
	fillDepth(fb.Depth)
	return fb
}

// Reset prepares the framebuffer for a new frame: every depth cell becomes
// +Inf and every color cell becomes clear.
func (fb *Framebuffer) Reset(clear color.RGBA) {
	fb.Clear(clear)
	fillDepth(fb.Depth)
}

// Clear fills the color grid with a solid color. Depth is untouched.
func (fb *Framebuffer) Clear(c color.RGBA) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// fillDepth uses copy-doubling, which is faster than a plain loop for large
// buffers.
func fillDepth(d []float64) {
	n := len(d)
	if n == 0 {
		return
	}
	d[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(d[i:], d[:i])
	}
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// Write quantizes c and stores it at (x, y). Out-of-bounds writes are ignored.
func (fb *Framebuffer) Write(x, y int, c ColorRGB) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.Pixels[y*fb.Width+x] = c.ToRGBA()
}

// SetPixel stores an already quantized color at (x, y).
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if !fb.inBounds(x, y) {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DepthAt returns the stored depth at (x, y), or +Inf if out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if !fb.inBounds(x, y) {
		return math.Inf(1)
	}
	return fb.Depth[y*fb.Width+x]
}

// TestAndSetDepth stores z at (x, y) and reports true when z lies in [0, 1]
// and is strictly nearer than the stored depth. Ties keep the earlier
// fragment.
func (fb *Framebuffer) TestAndSetDepth(x, y int, z float64) bool {
	if !fb.inBounds(x, y) || z < 0 || z > 1 {
		return false
	}
	i := y*fb.Width + x
	if z >= fb.Depth[i] {
		return false
	}
	fb.Depth[i] = z
	return true
}

// ToImage converts the color grid to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		row := fb.Pixels[y*fb.Width : (y+1)*fb.Width]
		for x, c := range row {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// SavePNG saves the color grid as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return fb.save(path, func(f *os.File, img image.Image) error { return png.Encode(f, img) })
}

// SaveBMP saves the color grid as a BMP file.
func (fb *Framebuffer) SaveBMP(path string) error {
	return fb.save(path, func(f *os.File, img image.Image) error { return bmp.Encode(f, img) })
}

func (fb *Framebuffer) save(path string, encode func(*os.File, image.Image) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %s: %w", path, err)
	}
	return f.Close()
}
