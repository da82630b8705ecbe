package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	"github.com/taigrr/softraster/pkg/math3d"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Sampler looks up a color at texture coordinates.
type Sampler interface {
	Sample(uv math3d.Vec2) ColorRGB
}

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture is a decoded image stored in shading space. V=0 is the top row of
// the image.
type Texture struct {
	Width      int
	Height     int
	Pixels     []ColorRGB // Row-major
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]ColorRGB, width*height),
	}
}

// LoadTexture decodes an image file. PNG, JPEG, BMP, TIFF and WebP are
// supported.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values
			tex.Pixels[y*tex.Width+x] = ColorRGB{
				R: float64(r) / 0xffff,
				G: float64(g) / 0xffff,
				B: float64(b) / 0xffff,
			}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 ColorRGB) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c ColorRGB) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) ColorRGB {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return ColorRGB{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample implements Sampler. A released texture samples as black.
func (t *Texture) Sample(uv math3d.Vec2) ColorRGB {
	if t.Width == 0 || t.Height == 0 {
		return ColorRGB{}
	}
	u := wrapCoord(uv.X, t.WrapU)
	v := wrapCoord(uv.Y, t.WrapV)

	if t.FilterMode == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	return t.sampleNearest(u, v)
}

// Close releases the pixel data.
func (t *Texture) Close() error {
	t.Pixels = nil
	t.Width, t.Height = 0, 0
	return nil
}

func wrapCoord(coord float64, mode WrapMode) float64 {
	if mode == WrapClamp {
		return math.Max(0, math.Min(1, coord))
	}
	return coord - math.Floor(coord)
}

func (t *Texture) sampleNearest(u, v float64) ColorRGB {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) ColorRGB {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapPixel(x0+1, t.Width, t.WrapU)
	y1 := wrapPixel(y0+1, t.Height, t.WrapV)
	x0 = wrapPixel(x0, t.Width, t.WrapU)
	y0 = wrapPixel(y0, t.Height, t.WrapV)

	top := lerpColor(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := lerpColor(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrapPixel(x, size int, mode WrapMode) int {
	if mode == WrapClamp {
		return clampInt(x, 0, size-1)
	}
	x %= size
	if x < 0 {
		x += size
	}
	return x
}

func lerpColor(a, b ColorRGB, t float64) ColorRGB {
	return ColorRGB{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// Uniform is a Sampler returning the same color everywhere.
type Uniform ColorRGB

// Sample implements Sampler.
func (u Uniform) Sample(math3d.Vec2) ColorRGB {
	return ColorRGB(u)
}

// Material owns the textures a mesh is shaded with. Any texture may be nil.
type Material struct {
	Name     string
	Diffuse  Sampler
	Specular Sampler
	Gloss    Sampler // Red channel scales the shininess exponent
	Normal   Sampler // Tangent-space normal map
}

// Close releases every texture the material owns. Released slots are left
// nil so they shade as absent. Closing twice is a no-op. Close must not run
// concurrently with rendering.
func (m *Material) Close() error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, slot := range []*Sampler{&m.Diffuse, &m.Specular, &m.Gloss, &m.Normal} {
		if c, ok := (*slot).(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		*slot = nil
	}
	return errors.Join(errs...)
}

// Missing lists the names of unbound texture slots.
func (m *Material) Missing() []string {
	if m == nil {
		return []string{"diffuse", "specular", "gloss", "normal"}
	}
	var out []string
	if m.Diffuse == nil {
		out = append(out, "diffuse")
	}
	if m.Specular == nil {
		out = append(out, "specular")
	}
	if m.Gloss == nil {
		out = append(out, "gloss")
	}
	if m.Normal == nil {
		out = append(out, "normal")
	}
	return out
}

// TexturePaths names image files to load into a Material.
type TexturePaths struct {
	Diffuse  string
	Specular string
	Gloss    string
	Normal   string
}

// LoadMaterial loads every non-empty path into a new material. A texture
// that fails to load is logged and left unbound; the returned error joins all
// such failures.
func LoadMaterial(name string, paths TexturePaths) (*Material, error) {
	m := &Material{Name: name}
	var errs []error
	load := func(slot *Sampler, kind, path string) {
		if path == "" {
			return
		}
		tex, err := LoadTexture(path)
		if err != nil {
			Logger().Warn("texture unavailable", "material", name, "slot", kind, "err", err)
			errs = append(errs, fmt.Errorf("%s texture: %w", kind, err))
			return
		}
		Logger().Info("texture loaded", "material", name, "slot", kind, "width", tex.Width, "height", tex.Height)
		*slot = tex
	}
	load(&m.Diffuse, "diffuse", paths.Diffuse)
	load(&m.Specular, "specular", paths.Specular)
	load(&m.Gloss, "gloss", paths.Gloss)
	load(&m.Normal, "normal", paths.Normal)
	return m, errors.Join(errs...)
}
