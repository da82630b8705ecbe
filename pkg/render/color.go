package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGray  = color.RGBA{100, 100, 100, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// ColorRGB is a shading-space color. Channels are nominally in [0, 1] but
// may exceed that range before the final write.
type ColorRGB struct {
	R, G, B float64
}

// RGBf creates a shading color.
func RGBf(r, g, b float64) ColorRGB {
	return ColorRGB{r, g, b}
}

// Grey creates a shading color with all channels set to v.
func Grey(v float64) ColorRGB {
	return ColorRGB{v, v, v}
}

// ColorFromRGBA converts an 8-bit color to shading space.
func ColorFromRGBA(c color.RGBA) ColorRGB {
	return ColorRGB{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Add returns the channel-wise sum.
func (c ColorRGB) Add(o ColorRGB) ColorRGB {
	return ColorRGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the channel-wise product.
func (c ColorRGB) Mul(o ColorRGB) ColorRGB {
	return ColorRGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every channel by s.
func (c ColorRGB) Scale(s float64) ColorRGB {
	return ColorRGB{c.R * s, c.G * s, c.B * s}
}

// MaxToOne rescales the color so its largest channel is 1 when any channel
// exceeds 1. Hue is preserved; colors already in range are returned as-is.
func (c ColorRGB) MaxToOne() ColorRGB {
	m := math.Max(c.R, math.Max(c.G, c.B))
	if m <= 1 {
		return c
	}
	return c.Scale(1 / m)
}

// Clamp limits every channel to [0, 1].
func (c ColorRGB) Clamp() ColorRGB {
	return ColorRGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// ToRGBA quantizes the color to 8 bits per channel with full alpha.
// Out-of-range colors are normalized with MaxToOne and negative channels
// are clamped to zero first.
func (c ColorRGB) ToRGBA() color.RGBA {
	c = c.MaxToOne().Clamp()
	return color.RGBA{
		R: uint8(c.R * 255),
		G: uint8(c.G * 255),
		B: uint8(c.B * 255),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
