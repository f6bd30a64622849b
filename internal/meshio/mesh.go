// Package meshio converts between the neutral Mesh type and on-disk mesh
// formats: OpenCTM, Wavefront OBJ, a JSON layout, glTF 2.0 / GLB, PLY and
// STL.
package meshio

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("meshio: unsupported format")
	ErrNoTriangles       = errors.New("meshio: mesh has no triangles")
	ErrInvalidMesh       = errors.New("meshio: invalid mesh")
	// ErrMalformed marks input that does not parse in its declared format.
	ErrMalformed = errors.New("meshio: malformed input")
)

// Mesh is a triangle mesh with at most one texture coordinate set and one
// vertex colour set, mirroring what the CTM tools exchange.
type Mesh struct {
	Vertices  []float32 `json:"vertices"`
	Indices   []uint32  `json:"indices"`
	Normals   []float32 `json:"normals,omitempty"`
	TexCoords []float32 `json:"texcoords,omitempty"`
	TexFile   string    `json:"texfile,omitempty"`
	Colors    []float32 `json:"colors,omitempty"`
	Comment   string    `json:"comment,omitempty"`
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }
func (m *Mesh) HasNormals() bool   { return len(m.Normals) > 0 }
func (m *Mesh) HasTexCoords() bool { return len(m.TexCoords) > 0 }
func (m *Mesh) HasColors() bool    { return len(m.Colors) > 0 }

// Validate checks array lengths and index bounds.
func (m *Mesh) Validate() error {
	vc := m.VertexCount()
	switch {
	case len(m.Vertices)%3 != 0:
		return fmt.Errorf("%w: %d vertex floats", ErrInvalidMesh, len(m.Vertices))
	case len(m.Indices)%3 != 0:
		return fmt.Errorf("%w: %d indices", ErrInvalidMesh, len(m.Indices))
	case len(m.Indices) == 0:
		return ErrNoTriangles
	case m.HasNormals() && len(m.Normals) != vc*3:
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrInvalidMesh, len(m.Normals), vc)
	case m.HasTexCoords() && len(m.TexCoords) != vc*2:
		return fmt.Errorf("%w: %d texcoord floats for %d vertices", ErrInvalidMesh, len(m.TexCoords), vc)
	case m.HasColors() && len(m.Colors) != vc*4:
		return fmt.Errorf("%w: %d colour floats for %d vertices", ErrInvalidMesh, len(m.Colors), vc)
	}
	for i, idx := range m.Indices {
		if int(idx) >= vc {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidMesh, idx, i, vc)
		}
	}
	return nil
}

// Box is an axis aligned bounding box.
type Box struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

// Bounds returns the bounding box of the vertices. The zero Box is returned
// for an empty mesh.
func (m *Mesh) Bounds() Box {
	var b Box
	if len(m.Vertices) < 3 {
		return b
	}
	copy(b.Min[:], m.Vertices[:3])
	copy(b.Max[:], m.Vertices[:3])
	for i := 3; i+2 < len(m.Vertices); i += 3 {
		for k := 0; k < 3; k++ {
			b.Min[k] = min(b.Min[k], m.Vertices[i+k])
			b.Max[k] = max(b.Max[k], m.Vertices[i+k])
		}
	}
	return b
}

// Stats summarises a mesh for reports.
type Stats struct {
	Vertices     int     `json:"vertices"`
	Triangles    int     `json:"triangles"`
	HasNormals   bool    `json:"has_normals"`
	HasTexCoords bool    `json:"has_texcoords"`
	HasColors    bool    `json:"has_colors"`
	Bounds       Box     `json:"bounds"`
	AvgEdge      float64 `json:"avg_edge_length"`
}

func (m *Mesh) Stats() Stats {
	return Stats{
		Vertices:     m.VertexCount(),
		Triangles:    m.TriangleCount(),
		HasNormals:   m.HasNormals(),
		HasTexCoords: m.HasTexCoords(),
		HasColors:    m.HasColors(),
		Bounds:       m.Bounds(),
		AvgEdge:      averageEdge(m.Vertices, m.Indices),
	}
}

func averageEdge(vertices []float32, indices []uint32) float64 {
	if len(indices) < 3 {
		return 0
	}
	var total float64
	for t := 0; t+2 < len(indices); t += 3 {
		for j := 0; j < 3; j++ {
			a, b := indices[t+j]*3, indices[t+(j+1)%3]*3
			dx := float64(vertices[b] - vertices[a])
			dy := float64(vertices[b+1] - vertices[a+1])
			dz := float64(vertices[b+2] - vertices[a+2])
			total += math.Sqrt(dx*dx + dy*dy + dz*dz)
		}
	}
	return total / float64(len(indices))
}

// Format identifies a mesh file format.
type Format string

const (
	FormatCTM  Format = "ctm"
	FormatOBJ  Format = "obj"
	FormatJSON Format = "json"
	FormatGLTF Format = "gltf"
	FormatGLB  Format = "glb"
	FormatPLY  Format = "ply"
	FormatSTL  Format = "stl"
)

// Formats lists every supported format.
var Formats = []Format{FormatCTM, FormatOBJ, FormatJSON, FormatGLTF, FormatGLB, FormatPLY, FormatSTL}

// ParseFormat accepts a format name or a file extension with or without the
// leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatOf detects the format from a file name extension.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// ContentType returns the media type used when serving the format.
func (f Format) ContentType() string {
	switch f {
	case FormatOBJ:
		return "model/obj"
	case FormatJSON:
		return "application/json"
	case FormatGLTF:
		return "model/gltf+json"
	case FormatGLB:
		return "model/gltf-binary"
	case FormatPLY:
		return "model/x-ply"
	case FormatSTL:
		return "model/stl"
	default:
		return "application/octet-stream"
	}
}
