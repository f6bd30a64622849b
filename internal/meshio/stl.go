package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	stlHeaderLen   = 80
	stlTriangleLen = 50
)

// stlHeader is the fixed prefix of a binary STL file.
type stlHeader struct {
	Header [stlHeaderLen]byte
	NTri   uint32
}

// stlTriangle is one binary STL facet record.
type stlTriangle struct {
	Normal, V1, V2, V3 [3]float32
	Attr               uint16
}

func stlError(format string, args ...any) error {
	return fmt.Errorf("%w: stl: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// ReadSTL decodes a binary or ASCII STL stream. Corners that share a
// position are merged into one vertex. Facet normals are dropped.
func ReadSTL(r io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var m *Mesh
	if isBinarySTL(data) {
		m, err = readBinarySTL(data)
	} else if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		m, err = readASCIISTL(data)
	} else {
		return nil, stlError("neither binary nor ascii")
	}
	if err != nil {
		return nil, err
	}
	if len(m.Indices) == 0 {
		return nil, ErrNoTriangles
	}
	return m, m.Validate()
}

// isBinarySTL reports whether the triangle count in the header matches the
// data length. ASCII files that start with "solid" almost never do.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderLen+4 {
		return false
	}
	n := uint64(binary.LittleEndian.Uint32(data[stlHeaderLen:]))
	return uint64(len(data)) == stlHeaderLen+4+n*stlTriangleLen
}

func readBinarySTL(data []byte) (*Mesh, error) {
	r := bytes.NewReader(data)
	var hdr stlHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, stlError("header: %v", err)
	}
	m := &Mesh{Comment: strings.TrimRight(string(hdr.Header[:]), " \x00")}
	d := newVertexDedup(int(hdr.NTri))
	var tri stlTriangle
	for i := uint32(0); i < hdr.NTri; i++ {
		if err := binary.Read(r, binary.LittleEndian, &tri); err != nil {
			return nil, stlError("triangle %d: %v", i, err)
		}
		m.Indices = append(m.Indices, d.add(m, tri.V1), d.add(m, tri.V2), d.add(m, tri.V3))
	}
	return m, nil
}

func readASCIISTL(data []byte) (*Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	m := &Mesh{}
	d := newVertexDedup(0)
	var corners []uint32
	first := true
	for sc.Scan() {
		word := sc.Text()
		switch {
		case first && word == "solid":
			first = false
			if sc.Scan() && sc.Text() != "facet" {
				m.Comment = sc.Text()
				continue
			}
			// An unnamed solid: the word just read opens the first facet.
			word = sc.Text()
		case first:
			return nil, stlError("missing solid")
		}
		switch word {
		case "vertex":
			var v [3]float32
			for k := range v {
				if !sc.Scan() {
					return nil, stlError("vertex ends early")
				}
				f, err := strconv.ParseFloat(sc.Text(), 32)
				if err != nil {
					return nil, stlError("bad coordinate %q", sc.Text())
				}
				v[k] = float32(f)
			}
			corners = append(corners, d.add(m, v))
		case "endloop":
			if len(corners) != 3 {
				return nil, stlError("facet with %d vertices", len(corners))
			}
			m.Indices = append(m.Indices, corners...)
			corners = corners[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, stlError("%v", err)
	}
	if len(corners) != 0 {
		return nil, stlError("unterminated facet")
	}
	return m, nil
}

type vertexDedup map[[3]float32]uint32

func newVertexDedup(triangles int) vertexDedup {
	return make(vertexDedup, min(triangles, maxPLYPrealloc))
}

func (d vertexDedup) add(m *Mesh, v [3]float32) uint32 {
	if idx, ok := d[v]; ok {
		return idx
	}
	idx := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, v[0], v[1], v[2])
	d[v] = idx
	return idx
}

// WriteSTL writes m as binary STL with computed facet normals. Only
// positions survive. The header carries the comment, prefixed so that it
// cannot be mistaken for the ASCII "solid" keyword.
func WriteSTL(w io.Writer, m *Mesh, opts ExportOptions) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if uint64(m.TriangleCount()) > math.MaxUint32 {
		return fmt.Errorf("%w: %d triangles do not fit binary STL", ErrInvalidMesh, m.TriangleCount())
	}
	comment := m.Comment
	if opts.Comment != "" {
		comment = opts.Comment
	}
	if strings.HasPrefix(comment, "solid") {
		comment = "_" + comment
	}
	var hdr stlHeader
	copy(hdr.Header[:], strings.ReplaceAll(comment, "\n", " "))
	hdr.NTri = uint32(m.TriangleCount())

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	var tri stlTriangle
	for t := 0; t < m.TriangleCount(); t++ {
		tri.V1 = m.vertex(m.Indices[t*3])
		tri.V2 = m.vertex(m.Indices[t*3+1])
		tri.V3 = m.vertex(m.Indices[t*3+2])
		tri.Normal = facetNormal(tri.V1, tri.V2, tri.V3)
		if err := binary.Write(bw, binary.LittleEndian, &tri); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (m *Mesh) vertex(i uint32) [3]float32 {
	return [3]float32{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
}

func facetNormal(a, b, c [3]float32) [3]float32 {
	e1 := [3]float64{float64(b[0] - a[0]), float64(b[1] - a[1]), float64(b[2] - a[2])}
	e2 := [3]float64{float64(c[0] - a[0]), float64(c[1] - a[1]), float64(c[2] - a[2])}
	n := [3]float64{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{float32(n[0] / l), float32(n[1] / l), float32(n[2] / l)}
}
