package ctm

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

const saveBufSize = 1 << 16

// Save encodes the mesh to a file at path, truncating any existing file.
// A failed save may leave a partial file behind.
func (c *Context) Save(path string) error {
	const op = "save"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if c.mesh == nil {
		return c.fail(op, InvalidMesh, ErrNoMesh)
	}

	f, err := os.Create(path)
	if err != nil {
		return c.fail(op, FileError, err)
	}
	bw := bufio.NewWriterSize(f, saveBufSize)
	if err := c.encode(bw); err != nil {
		_ = f.Close()
		return c.failCoded(op, err, FileError)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return c.fail(op, FileError, err)
	}
	if err := f.Close(); err != nil {
		return c.fail(op, FileError, err)
	}
	return nil
}

// SaveTo encodes the mesh to w.
func (c *Context) SaveTo(w io.Writer) error {
	const op = "save"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if c.mesh == nil {
		return c.fail(op, InvalidMesh, ErrNoMesh)
	}
	if w == nil {
		return c.fail(op, InvalidArgument, fmt.Errorf("ctm: nil writer"))
	}

	bw := bufio.NewWriterSize(w, saveBufSize)
	if err := c.encode(bw); err != nil {
		return c.failCoded(op, err, FileError)
	}
	if err := bw.Flush(); err != nil {
		return c.fail(op, FileError, err)
	}
	return nil
}

func (c *Context) encode(w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = coded(InternalError, fmt.Errorf("%w: %v", ErrInternalRecovery, r))
		}
	}()

	h := headerFor(c.mesh, c.method, c.comment)
	s := newStreamWriter(w, c.level)
	writeHeader(s, &h)
	switch c.method {
	case MethodRaw:
		encodeRaw(s, c.mesh)
	case MethodMG1:
		encodeMG1(s, c.mesh)
	case MethodMG2:
		encodeMG2(s, c.mesh, c.vertexPrecision, c.normalPrecision)
	default:
		s.setErr(coded(InternalError, ErrUnknownMethod))
	}
	return s.err
}
