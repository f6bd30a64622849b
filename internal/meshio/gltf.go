package meshio

import (
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ReadGLTF decodes a glTF or GLB stream. All triangle primitives of all
// meshes are merged into one Mesh in mesh space; node transforms are not
// applied. Normals, TEXCOORD_0 and COLOR_0 are kept only when every merged
// primitive carries them. Buffers must be embedded (GLB chunk or data URI).
func ReadGLTF(r io.Reader) (m *Mesh, err error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: gltf: %w", ErrMalformed, err)
	}
	// Accessor reads trust buffer view offsets from the document.
	defer func() {
		if rec := recover(); rec != nil {
			m, err = nil, fmt.Errorf("%w: gltf: %v", ErrMalformed, rec)
		}
	}()
	return meshFromDocument(doc)
}

func accessor(doc *gltf.Document, idx uint32, what string) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("%w: gltf %s accessor %d out of range", ErrMalformed, what, idx)
	}
	return doc.Accessors[idx], nil
}

func malformedGLTF(what string, err error) error {
	return fmt.Errorf("%w: gltf %s: %w", ErrMalformed, what, err)
}

func meshFromDocument(doc *gltf.Document) (*Mesh, error) {
	m := &Mesh{}
	allNormals, allTex, allColors := true, true, true
	var normals, texCoords, colors []float32

	for _, gm := range doc.Meshes {
		if gm == nil {
			continue
		}
		for _, prim := range gm.Primitives {
			if prim == nil || prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			acr, err := accessor(doc, posIdx, "position")
			if err != nil {
				return nil, err
			}
			pos, err := modeler.ReadPosition(doc, acr, nil)
			if err != nil {
				return nil, malformedGLTF("positions", err)
			}
			base := uint32(m.VertexCount())
			for _, p := range pos {
				m.Vertices = append(m.Vertices, p[0], p[1], p[2])
			}

			var indices []uint32
			if prim.Indices != nil {
				acr, err := accessor(doc, *prim.Indices, "index")
				if err != nil {
					return nil, err
				}
				indices, err = modeler.ReadIndices(doc, acr, nil)
				if err != nil {
					return nil, malformedGLTF("indices", err)
				}
			} else {
				indices = make([]uint32, len(pos))
				for i := range indices {
					indices[i] = uint32(i)
				}
			}
			for _, idx := range indices[:len(indices)/3*3] {
				m.Indices = append(m.Indices, base+idx)
			}

			if idx, ok := prim.Attributes[gltf.NORMAL]; ok && allNormals {
				acr, err := accessor(doc, idx, "normal")
				if err != nil {
					return nil, err
				}
				n, err := modeler.ReadNormal(doc, acr, nil)
				if err != nil {
					return nil, malformedGLTF("normals", err)
				}
				for _, v := range n {
					normals = append(normals, v[0], v[1], v[2])
				}
			} else {
				allNormals = false
			}

			if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok && allTex {
				acr, err := accessor(doc, idx, "texcoord")
				if err != nil {
					return nil, err
				}
				uv, err := modeler.ReadTextureCoord(doc, acr, nil)
				if err != nil {
					return nil, malformedGLTF("texcoords", err)
				}
				for _, v := range uv {
					// glTF puts the UV origin at the top left.
					texCoords = append(texCoords, v[0], 1-v[1])
				}
			} else {
				allTex = false
			}

			if idx, ok := prim.Attributes[gltf.COLOR_0]; ok && allColors {
				acr, err := accessor(doc, idx, "color")
				if err != nil {
					return nil, err
				}
				c, err := readColors(doc, acr)
				if err != nil {
					return nil, err
				}
				colors = append(colors, c...)
			} else {
				allColors = false
			}
		}
	}

	if len(m.Indices) == 0 {
		return nil, ErrNoTriangles
	}
	if allNormals {
		m.Normals = normals
	}
	if allTex {
		m.TexCoords = texCoords
		m.TexFile = baseColorTexture(doc)
	}
	if allColors {
		m.Colors = colors
	}
	if extras, ok := doc.Asset.Extras.(map[string]any); ok {
		if s, ok := extras["comment"].(string); ok {
			m.Comment = s
		}
	}
	return m, m.Validate()
}

func readColors(doc *gltf.Document, acr *gltf.Accessor) ([]float32, error) {
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, malformedGLTF("colors", err)
	}
	var out []float32
	switch c := data.(type) {
	case [][4]float32:
		for _, v := range c {
			out = append(out, v[0], v[1], v[2], v[3])
		}
	case [][3]float32:
		for _, v := range c {
			out = append(out, v[0], v[1], v[2], 1)
		}
	case [][4]uint8:
		for _, v := range c {
			out = append(out, unorm8(v[0]), unorm8(v[1]), unorm8(v[2]), unorm8(v[3]))
		}
	case [][3]uint8:
		for _, v := range c {
			out = append(out, unorm8(v[0]), unorm8(v[1]), unorm8(v[2]), 1)
		}
	case [][4]uint16:
		for _, v := range c {
			out = append(out, unorm16(v[0]), unorm16(v[1]), unorm16(v[2]), unorm16(v[3]))
		}
	case [][3]uint16:
		for _, v := range c {
			out = append(out, unorm16(v[0]), unorm16(v[1]), unorm16(v[2]), 1)
		}
	default:
		return nil, fmt.Errorf("%w: gltf colors: unsupported accessor data %T", ErrMalformed, data)
	}
	return out, nil
}

func unorm8(v uint8) float32   { return float32(v) / 255 }
func unorm16(v uint16) float32 { return float32(v) / 65535 }

func baseColorTexture(doc *gltf.Document) string {
	for _, mat := range doc.Materials {
		if mat == nil || mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
			continue
		}
		tex := int(mat.PBRMetallicRoughness.BaseColorTexture.Index)
		if tex >= len(doc.Textures) || doc.Textures[tex] == nil || doc.Textures[tex].Source == nil {
			continue
		}
		img := int(*doc.Textures[tex].Source)
		if img < len(doc.Images) && doc.Images[img] != nil && !doc.Images[img].IsEmbeddedResource() {
			return doc.Images[img].URI
		}
	}
	return ""
}

// WriteGLTF encodes m as a single-mesh glTF document, binary (GLB) when
// binary is set and JSON with an embedded buffer otherwise. Vertex colours
// are not exported.
func WriteGLTF(w io.Writer, m *Mesh, opts ExportOptions, binary bool) error {
	if err := m.Validate(); err != nil {
		return err
	}
	doc := gltf.NewDocument()
	if m.Comment != "" {
		doc.Asset.Extras = map[string]any{"comment": m.Comment}
	}

	pos := make([][3]float32, m.VertexCount())
	for i := range pos {
		pos[i] = [3]float32{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
	}
	attrs := gltf.Attribute{
		gltf.POSITION: modeler.WritePosition(doc, pos),
	}
	if m.HasNormals() && !opts.NoNormals {
		n := make([][3]float32, m.VertexCount())
		for i := range n {
			n[i] = [3]float32{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]}
		}
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, n)
	}
	if m.HasTexCoords() && !opts.NoTexCoords {
		uv := make([][2]float32, m.VertexCount())
		for i := range uv {
			uv[i] = [2]float32{m.TexCoords[i*2], 1 - m.TexCoords[i*2+1]}
		}
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uv)
	}

	doc.Meshes = []*gltf.Mesh{{
		Name: "mesh",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, m.Indices)),
			Attributes: attrs,
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "mesh", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	if !binary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("meshio: encode gltf: %w", err)
	}
	return nil
}
