package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const objMaxLine = 1 << 20

type objCorner struct{ v, vt, vn int }

// ReadOBJ parses a Wavefront OBJ stream. Polygons are triangulated as fans.
// Corners that share a position but differ in texture coordinate or normal
// become separate vertices. The "v x y z r g b" colour extension is read
// into Colors with alpha 1.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions []float32
		colors    []float32
		texCoords []float32
		normals   []float32
		faces     [][]objCorner
		comment   []string
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), objMaxLine)
	lineNo := 0
	var pending string
	for sc.Scan() {
		lineNo++
		line := pending + sc.Text()
		pending = ""
		if strings.HasSuffix(line, "\\") {
			pending = strings.TrimSuffix(line, "\\") + " "
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, objError(lineNo, err)
			}
			positions = append(positions, p[:3]...)
			if len(fields) >= 7 {
				c, err := parseFloats(fields[4:7], 3)
				if err != nil {
					return nil, objError(lineNo, err)
				}
				colors = append(colors, c[0], c[1], c[2], 1)
			}
		case "vt":
			t, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, objError(lineNo, err)
			}
			texCoords = append(texCoords, t[:2]...)
		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, objError(lineNo, err)
			}
			normals = append(normals, n[:3]...)
		case "f":
			face, err := parseFace(fields[1:], len(positions)/3, len(texCoords)/2, len(normals)/3)
			if err != nil {
				return nil, objError(lineNo, err)
			}
			faces = append(faces, face)
		case "#":
			if lineNo == len(comment)+1 {
				comment = append(comment, strings.TrimSpace(strings.TrimPrefix(line, "#")))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("meshio: read obj: %w", err)
	}

	// Per-vertex colours only make sense if every position has one.
	if len(colors)/4 != len(positions)/3 {
		colors = nil
	}

	m := &Mesh{Comment: strings.Join(comment, "\n")}
	useTex, useNorm := false, false
	for _, f := range faces {
		for _, c := range f {
			useTex = useTex || c.vt >= 0
			useNorm = useNorm || c.vn >= 0
		}
	}

	lut := make(map[objCorner]uint32)
	vertex := func(c objCorner) uint32 {
		if idx, ok := lut[c]; ok {
			return idx
		}
		idx := uint32(len(m.Vertices) / 3)
		lut[c] = idx
		m.Vertices = append(m.Vertices, positions[c.v*3:c.v*3+3]...)
		if colors != nil {
			m.Colors = append(m.Colors, colors[c.v*4:c.v*4+4]...)
		}
		if useTex {
			if c.vt >= 0 {
				m.TexCoords = append(m.TexCoords, texCoords[c.vt*2:c.vt*2+2]...)
			} else {
				m.TexCoords = append(m.TexCoords, 0, 0)
			}
		}
		if useNorm {
			if c.vn >= 0 {
				m.Normals = append(m.Normals, normals[c.vn*3:c.vn*3+3]...)
			} else {
				m.Normals = append(m.Normals, 0, 0, 0)
			}
		}
		return idx
	}

	for _, f := range faces {
		first := vertex(f[0])
		prev := vertex(f[1])
		for _, c := range f[2:] {
			cur := vertex(c)
			m.Indices = append(m.Indices, first, prev, cur)
			prev = cur
		}
	}
	if len(m.Indices) == 0 {
		return nil, ErrNoTriangles
	}
	return m, nil
}

func objError(line int, err error) error {
	return fmt.Errorf("%w: obj line %d: %w", ErrMalformed, line, err)
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseFace(fields []string, nv, nt, nn int) ([]objCorner, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face needs at least 3 corners, got %d", len(fields))
	}
	out := make([]objCorner, len(fields))
	for i, f := range fields {
		parts := strings.SplitN(f, "/", 3)
		c := objCorner{v: -1, vt: -1, vn: -1}
		var err error
		if c.v, err = objIndex(parts[0], nv); err != nil {
			return nil, err
		}
		if c.v < 0 {
			return nil, fmt.Errorf("corner %q has no position", f)
		}
		if len(parts) > 1 {
			if c.vt, err = objIndex(parts[1], nt); err != nil {
				return nil, err
			}
		}
		if len(parts) > 2 {
			if c.vn, err = objIndex(parts[2], nn); err != nil {
				return nil, err
			}
		}
		out[i] = c
	}
	return out, nil
}

// objIndex resolves a 1-based or negative (relative) OBJ index against the
// n elements defined so far. An empty field yields -1.
func objIndex(s string, n int) (int, error) {
	if s == "" {
		return -1, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case v > 0 && v <= n:
		return v - 1, nil
	case v < 0 && -v <= n:
		return n + v, nil
	}
	return 0, fmt.Errorf("index %d out of range (%d defined)", v, n)
}

// WriteOBJ writes m as OBJ. Colours are written with the "v x y z r g b"
// extension; alpha is dropped.
func WriteOBJ(w io.Writer, m *Mesh, opts ExportOptions) error {
	bw := bufio.NewWriter(w)
	withTex := m.HasTexCoords() && !opts.NoTexCoords
	withNorm := m.HasNormals() && !opts.NoNormals
	withColor := m.HasColors() && !opts.NoColors

	for _, line := range strings.Split(m.Comment, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(bw, "# %s\n", line)
		}
	}
	for i := 0; i < m.VertexCount(); i++ {
		bw.WriteString("v")
		writeFloats(bw, m.Vertices[i*3:i*3+3])
		if withColor {
			writeFloats(bw, m.Colors[i*4:i*4+3])
		}
		bw.WriteByte('\n')
	}
	if withTex {
		for i := 0; i < m.VertexCount(); i++ {
			bw.WriteString("vt")
			writeFloats(bw, m.TexCoords[i*2:i*2+2])
			bw.WriteByte('\n')
		}
	}
	if withNorm {
		for i := 0; i < m.VertexCount(); i++ {
			bw.WriteString("vn")
			writeFloats(bw, m.Normals[i*3:i*3+3])
			bw.WriteByte('\n')
		}
	}

	bw.WriteString("s 1\n")
	for t := 0; t < m.TriangleCount(); t++ {
		bw.WriteString("f")
		for j := 0; j < 3; j++ {
			idx := strconv.FormatUint(uint64(m.Indices[t*3+j])+1, 10)
			bw.WriteByte(' ')
			bw.WriteString(idx)
			switch {
			case withTex && withNorm:
				bw.WriteString("/" + idx + "/" + idx)
			case withTex:
				bw.WriteString("/" + idx)
			case withNorm:
				bw.WriteString("//" + idx)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func writeFloats(bw *bufio.Writer, vs []float32) {
	for _, v := range vs {
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
}
