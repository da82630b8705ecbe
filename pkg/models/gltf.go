package models

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

// ErrNoGeometry is returned when a document holds no triangle primitives.
var ErrNoGeometry = errors.New("no triangle geometry")

// GLTFLoader loads glTF/GLB files into render meshes.
type GLTFLoader struct {
	CalculateNormals bool // Compute normals for primitives without them
	SmoothNormals    bool // Average normals across faces instead of flat shading
	GenerateTangents bool // Compute tangents for primitives without them
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		GenerateTangents: true,
	}
}

// LoadGLTF loads a .gltf or .glb file with the default options.
func LoadGLTF(path string) (*Model, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file. Each triangle primitive becomes one mesh;
// points and lines are skipped.
func (l *GLTFLoader) Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	model, err := l.LoadDocument(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	model.Name = filepath.Base(path)
	return model, nil
}

// LoadDocument converts an already decoded document. dir resolves external
// image URIs.
func (l *GLTFLoader) LoadDocument(doc *gltf.Document, dir string) (*Model, error) {
	model := &Model{}
	images := newImageCache(doc, dir)

	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			topo, ok := topology(prim.Mode)
			if !ok {
				render.Logger().Debug("skipping primitive", "mesh", m.Name, "primitive", pi, "mode", prim.Mode)
				continue
			}

			name := m.Name
			if name == "" {
				name = fmt.Sprintf("mesh%d", mi)
			}
			if len(m.Primitives) > 1 {
				name = fmt.Sprintf("%s.%d", name, pi)
			}

			mesh, err := l.processPrimitive(doc, prim, name, topo)
			if err != nil {
				model.Close()
				return nil, fmt.Errorf("mesh %q: %w", name, err)
			}
			if prim.Material != nil && *prim.Material < len(doc.Materials) {
				mesh.Material = loadMaterial(doc, doc.Materials[*prim.Material], images)
				applyBaseColor(mesh, doc.Materials[*prim.Material])
				model.Materials = append(model.Materials, mesh.Material)
			}
			model.Meshes = append(model.Meshes, mesh)
		}
	}

	if len(model.Meshes) == 0 {
		return nil, ErrNoGeometry
	}
	model.Bounds = CalculateBounds(model.Meshes)
	return model, nil
}

func topology(mode gltf.PrimitiveMode) (render.Topology, bool) {
	switch mode {
	case gltf.PrimitiveTriangles:
		return render.TriangleList, true
	case gltf.PrimitiveTriangleStrip:
		return render.TriangleStrip, true
	default:
		return 0, false
	}
}

// processPrimitive extracts the geometry of one primitive.
func (l *GLTFLoader) processPrimitive(doc *gltf.Document, prim *gltf.Primitive, name string, topo render.Topology) (*render.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive has no %s attribute", gltf.POSITION)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	mesh := render.NewMesh(name)
	mesh.Topology = topo
	// glTF front faces wind counter-clockwise, the rasterizer expects the
	// opposite.
	mesh.FlipWinding = true
	mesh.Vertices = make([]render.Vertex, len(positions))
	for i, p := range positions {
		mesh.Vertices[i] = render.Vertex{
			Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])),
			Color:    render.Grey(1),
		}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		for i := range min(len(normals), len(mesh.Vertices)) {
			n := normals[i]
			mesh.Vertices[i].Normal = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		// glTF puts V=0 at the top of the image, as textures do.
		for i := range min(len(uvs), len(mesh.Vertices)) {
			mesh.Vertices[i].UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
		}
	}

	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		tangents, err := modeler.ReadTangent(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		for i := range min(len(tangents), len(mesh.Vertices)) {
			t := tangents[i]
			mesh.Vertices[i].Tangent = math3d.V3(float64(t[0]), float64(t[1]), float64(t[2]))
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		mesh.Indices = indices
	} else {
		// Non-indexed primitives draw vertices in order.
		mesh.Indices = make([]uint32, len(mesh.Vertices))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}

	if l.CalculateNormals && !HasNormals(mesh) {
		if l.SmoothNormals {
			CalculateSmoothNormals(mesh)
		} else {
			CalculateFlatNormals(mesh)
		}
	}
	if l.GenerateTangents && !HasTangents(mesh) {
		GenerateTangents(mesh)
	}
	return mesh, nil
}

// applyBaseColor tints vertex colors with the material's base color factor,
// which is what shading falls back to without a base color texture.
func applyBaseColor(mesh *render.Mesh, mat *gltf.Material) {
	pbr := mat.PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return
	}
	f := pbr.BaseColorFactor
	tint := render.RGBf(f[0], f[1], f[2])
	for i := range mesh.Vertices {
		mesh.Vertices[i].Color = mesh.Vertices[i].Color.Mul(tint)
	}
}

// loadMaterial builds a render material from the base color and normal
// textures. Every material gets its own texture copies so that closing one
// never affects another.
func loadMaterial(doc *gltf.Document, mat *gltf.Material, images *imageCache) *render.Material {
	out := &render.Material{Name: mat.Name}

	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		if tex, err := images.texture(pbr.BaseColorTexture.Index); err == nil {
			out.Diffuse = tex
		} else {
			render.Logger().Warn("base color texture unavailable", "material", mat.Name, "err", err)
		}
	}
	if nt := mat.NormalTexture; nt != nil && nt.Index != nil {
		if tex, err := images.texture(*nt.Index); err == nil {
			out.Normal = tex
		} else {
			render.Logger().Warn("normal texture unavailable", "material", mat.Name, "err", err)
		}
	}
	return out
}

// imageCache decodes each document image at most once.
type imageCache struct {
	doc     *gltf.Document
	dir     string
	decoded map[int]image.Image
}

func newImageCache(doc *gltf.Document, dir string) *imageCache {
	return &imageCache{doc: doc, dir: dir, decoded: make(map[int]image.Image)}
}

// texture returns a new texture for the glTF texture at index.
func (c *imageCache) texture(index int) (*render.Texture, error) {
	if index < 0 || index >= len(c.doc.Textures) {
		return nil, fmt.Errorf("texture %d: %w", index, render.ErrIndexOutOfRange)
	}
	src := c.doc.Textures[index].Source
	if src == nil {
		return nil, fmt.Errorf("texture %d has no image source", index)
	}
	img, err := c.image(*src)
	if err != nil {
		return nil, err
	}
	return render.TextureFromImage(img), nil
}

func (c *imageCache) image(index int) (image.Image, error) {
	if img, ok := c.decoded[index]; ok {
		return img, nil
	}
	if index < 0 || index >= len(c.doc.Images) {
		return nil, fmt.Errorf("image %d: %w", index, render.ErrIndexOutOfRange)
	}

	data, err := c.imageData(c.doc.Images[index])
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", index, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", index, err)
	}
	c.decoded[index] = img
	return img, nil
}

// imageData returns the encoded bytes of an image stored in a buffer view or
// in a file next to the document.
func (c *imageCache) imageData(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bv := c.doc.BufferViews[*img.BufferView]
		buf := c.doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf.Data) {
			return nil, fmt.Errorf("buffer view exceeds buffer: %w", render.ErrIndexOutOfRange)
		}
		return buf.Data[bv.ByteOffset:end], nil
	}
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return nil, errors.New("unsupported image source")
	}
	data, err := os.ReadFile(filepath.Join(c.dir, filepath.FromSlash(img.URI)))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
