package ctm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// Load decodes the file at path into the context, replacing any previously
// loaded mesh. On failure the context holds no mesh.
func (c *Context) Load(path string) error {
	const op = "load"
	if err := c.begin(op, Import); err != nil {
		return err
	}
	c.reset()

	data, release, err := mapFile(path)
	if err != nil {
		return c.fail(op, FileError, err)
	}
	defer release()

	// The mapping is released on return, so decode must copy everything it
	// keeps. Every reader below allocates fresh slices.
	return c.load(op, bytes.NewReader(data))
}

// LoadFrom decodes a stream from r. Bytes after the last section are not
// consumed beyond what buffering reads ahead.
func (c *Context) LoadFrom(r io.Reader) error {
	const op = "load"
	if err := c.begin(op, Import); err != nil {
		return err
	}
	if r == nil {
		return c.fail(op, InvalidArgument, fmt.Errorf("ctm: nil reader"))
	}
	c.reset()
	return c.load(op, bufio.NewReader(r))
}

func (c *Context) load(op string, r io.Reader) error {
	d, err := decode(r, c.opts)
	if err != nil {
		return c.failCoded(op, err, BadFormat)
	}
	c.mesh = d.mesh
	c.method = d.header.method
	c.comment = d.header.comment
	if d.header.method == MethodMG2 {
		c.vertexPrecision = d.vertexPrecision
		c.normalPrecision = d.normalPrecision
	}
	return nil
}

func (c *Context) reset() {
	c.mesh = nil
	c.comment = ""
	c.method = DefaultMethod
	c.vertexPrecision = DefaultVertexPrecision
	c.normalPrecision = DefaultNormalPrecision
}

type decoded struct {
	header          header
	mesh            *mesh
	vertexPrecision float32
	normalPrecision float32
}

func decode(r io.Reader, opts Options) (d *decoded, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d = nil
			err = coded(InternalError, fmt.Errorf("%w: %v", ErrInternalRecovery, rec))
		}
	}()

	s := newStreamReader(r)
	h, err := readHeader(s, opts)
	if err != nil {
		return nil, err
	}

	out := &decoded{header: h}
	switch h.method {
	case MethodRaw:
		out.mesh = decodeRaw(s, &h)
	case MethodMG1:
		out.mesh = decodeMG1(s, &h)
	case MethodMG2:
		out.mesh, out.vertexPrecision, out.normalPrecision = decodeMG2(s, &h)
	}
	if s.err != nil {
		return nil, s.err
	}
	if out.mesh == nil {
		return nil, coded(InternalError, fmt.Errorf("%w: %s decoder returned no mesh", ErrInternalRecovery, h.method))
	}
	if err := checkIntegrity(out.mesh); err != nil {
		return nil, coded(BadFormat, err)
	}
	return out, nil
}

func fileSize(f *os.File) (int, error) {
	stat, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := stat.Size()
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("ctm: file size %d out of range", size)
	}
	return int(size), nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
