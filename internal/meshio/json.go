package meshio

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ReadJSON decodes a mesh in the layout of Mesh's json tags.
func ReadJSON(r io.Reader) (*Mesh, error) {
	var m Mesh
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrMalformed, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteJSON encodes m, dropping the arrays the options exclude.
func WriteJSON(w io.Writer, m *Mesh, opts ExportOptions) error {
	out := *m
	if opts.NoNormals {
		out.Normals = nil
	}
	if opts.NoTexCoords {
		out.TexCoords = nil
		out.TexFile = ""
	}
	if opts.NoColors {
		out.Colors = nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}
