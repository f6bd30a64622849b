package meshio

import (
	"fmt"
	"io"
	"slices"

	"github.com/samcharles93/meshctm/pkg/ctm"
)

// Map names used when a Mesh is stored in a CTM file.
const (
	CTMTexCoordMap = "Diffuse color"
	CTMColorMap    = "Color"
)

// ExportOptions control how a Mesh is written. Zero precisions keep the
// engine defaults.
type ExportOptions struct {
	Method             ctm.Method
	Level              int
	VertexPrecision    float32
	VertexPrecisionRel float32
	NormalPrecision    float32
	TexCoordPrecision  float32
	ColorPrecision     float32
	Comment            string
	TexFile            string
	NoNormals          bool
	NoTexCoords        bool
	NoColors           bool
	PLYBinary          bool
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Method: ctm.DefaultMethod,
		Level:  ctm.DefaultCompressionLevel,
	}
}

// ToContext builds an Export context holding m. The caller owns the
// returned context.
func ToContext(m *Mesh, opts ExportOptions, ctmOpts ...ctm.Option) (*ctm.Context, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := ctm.New(ctm.Export, ctmOpts...)
	if err := configure(c, m, opts); err != nil {
		c.Free()
		return nil, err
	}
	return c, nil
}

func configure(c *ctm.Context, m *Mesh, opts ExportOptions) error {
	var normals []float32
	if !opts.NoNormals {
		normals = m.Normals
	}
	if err := c.DefineMesh(m.Vertices, m.Indices, normals); err != nil {
		return err
	}

	if m.HasTexCoords() && !opts.NoTexCoords {
		texFile := m.TexFile
		if opts.TexFile != "" {
			texFile = opts.TexFile
		}
		id, err := c.AddUVMap(m.TexCoords, CTMTexCoordMap, texFile)
		if err != nil {
			return err
		}
		if opts.TexCoordPrecision > 0 {
			if err := c.SetUVCoordPrecision(id, opts.TexCoordPrecision); err != nil {
				return err
			}
		}
	}
	if m.HasColors() && !opts.NoColors {
		id, err := c.AddAttribMap(m.Colors, CTMColorMap)
		if err != nil {
			return err
		}
		if opts.ColorPrecision > 0 {
			if err := c.SetAttribPrecision(id, opts.ColorPrecision); err != nil {
				return err
			}
		}
	}

	method := opts.Method
	if method == 0 {
		method = ctm.DefaultMethod
	}
	if err := c.SetMethod(method); err != nil {
		return err
	}
	if err := c.SetCompressionLevel(opts.Level); err != nil {
		return err
	}
	comment := m.Comment
	if opts.Comment != "" {
		comment = opts.Comment
	}
	if err := c.SetComment(comment); err != nil {
		return err
	}

	switch {
	case opts.VertexPrecisionRel > 0:
		if err := c.SetVertexPrecisionRel(opts.VertexPrecisionRel); err != nil {
			return err
		}
	case opts.VertexPrecision > 0:
		if err := c.SetVertexPrecision(opts.VertexPrecision); err != nil {
			return err
		}
	}
	if opts.NormalPrecision > 0 {
		if err := c.SetNormalPrecision(opts.NormalPrecision); err != nil {
			return err
		}
	}
	return nil
}

// FromContext copies the mesh held by c, which may be freed afterwards. The first UV map becomes the
// texture coordinates; the attribute map named "Color", or failing that
// the first attribute map, becomes the vertex colours.
func FromContext(c *ctm.Context) (*Mesh, error) {
	vertices, err := c.Vertices()
	if err != nil {
		return nil, err
	}
	indices, _ := c.Indices()
	normals, _ := c.Normals()
	comment, _ := c.Comment()
	m := &Mesh{
		Vertices: slices.Clone(vertices),
		Indices:  slices.Clone(indices),
		Normals:  slices.Clone(normals),
		Comment:  comment,
	}

	if n, _ := c.Integer(ctm.UVMapCount); n > 0 {
		info, err := c.UVMap(ctm.UVMap1)
		if err != nil {
			return nil, err
		}
		m.TexCoords, m.TexFile = slices.Clone(info.Values), info.FileName
	}
	if n, _ := c.Integer(ctm.AttribMapCount); n > 0 {
		id := c.NamedAttribMap(CTMColorMap)
		if id == ctm.NotFound {
			id = ctm.AttribMap1
		}
		info, err := c.AttribMap(id)
		if err != nil {
			return nil, err
		}
		m.Colors = slices.Clone(info.Values)
	}
	return m, nil
}

// SaveCTM encodes m as an OpenCTM stream.
func SaveCTM(w io.Writer, m *Mesh, opts ExportOptions, ctmOpts ...ctm.Option) error {
	c, err := ToContext(m, opts, ctmOpts...)
	if err != nil {
		return fmt.Errorf("meshio: prepare ctm: %w", err)
	}
	defer c.Free()
	return c.SaveTo(w)
}

// LoadCTM decodes an OpenCTM stream.
func LoadCTM(r io.Reader, ctmOpts ...ctm.Option) (*Mesh, error) {
	c := ctm.New(ctm.Import, ctmOpts...)
	defer c.Free()
	if err := c.LoadFrom(r); err != nil {
		return nil, err
	}
	return FromContext(c)
}
