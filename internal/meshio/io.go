package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samcharles93/meshctm/pkg/ctm"
)

// Decode reads a mesh of the given format from r.
func Decode(r io.Reader, f Format, ctmOpts ...ctm.Option) (*Mesh, error) {
	switch f {
	case FormatCTM:
		return LoadCTM(r, ctmOpts...)
	case FormatOBJ:
		return ReadOBJ(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatGLTF, FormatGLB:
		return ReadGLTF(r)
	case FormatPLY:
		return ReadPLY(r)
	case FormatSTL:
		return ReadSTL(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Encode writes m to w in the given format.
func Encode(w io.Writer, f Format, m *Mesh, opts ExportOptions, ctmOpts ...ctm.Option) error {
	switch f {
	case FormatCTM:
		return SaveCTM(w, m, opts, ctmOpts...)
	case FormatOBJ:
		return WriteOBJ(w, m, opts)
	case FormatJSON:
		return WriteJSON(w, m, opts)
	case FormatGLTF:
		return WriteGLTF(w, m, opts, false)
	case FormatGLB:
		return WriteGLTF(w, m, opts, true)
	case FormatPLY:
		return WritePLY(w, m, opts, opts.PLYBinary)
	case FormatSTL:
		return WriteSTL(w, m, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Read loads a mesh file, picking the format from its extension. CTM files
// go through the engine's file loader.
func Read(path string, ctmOpts ...ctm.Option) (*Mesh, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if f == FormatCTM {
		c := ctm.New(ctm.Import, ctmOpts...)
		defer c.Free()
		if err := c.Load(path); err != nil {
			return nil, err
		}
		return FromContext(c)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := Decode(bufio.NewReader(file), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

// Write stores m at path in the format implied by its extension. The file
// is written to a temporary sibling and renamed into place.
func Write(path string, m *Mesh, opts ExportOptions, ctmOpts ...ctm.Option) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := Encode(w, f, m, opts, ctmOpts...); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
