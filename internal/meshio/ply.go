package meshio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// plyType is a PLY scalar type.
type plyType int

const (
	plyInt8 plyType = iota + 1
	plyUint8
	plyInt16
	plyUint16
	plyInt32
	plyUint32
	plyFloat32
	plyFloat64
)

var plyTypes = map[string]plyType{
	"char": plyInt8, "int8": plyInt8,
	"uchar": plyUint8, "uint8": plyUint8,
	"short": plyInt16, "int16": plyInt16,
	"ushort": plyUint16, "uint16": plyUint16,
	"int": plyInt32, "int32": plyInt32,
	"uint": plyUint32, "uint32": plyUint32,
	"float": plyFloat32, "float32": plyFloat32,
	"double": plyFloat64, "float64": plyFloat64,
}

func (t plyType) size() int {
	switch t {
	case plyInt8, plyUint8:
		return 1
	case plyInt16, plyUint16:
		return 2
	case plyInt32, plyUint32, plyFloat32:
		return 4
	default:
		return 8
	}
}

// unitScale is the divisor that maps an integer colour channel to [0,1].
func (t plyType) unitScale() float64 {
	switch t {
	case plyUint8, plyInt8:
		return 255
	case plyUint16, plyInt16:
		return 65535
	case plyUint32, plyInt32:
		return math.MaxUint32
	default:
		return 1
	}
}

type plyProperty struct {
	name      string
	typ       plyType
	countType plyType // non-zero for list properties
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

type plyHeader struct {
	order    binary.ByteOrder // nil for ascii
	comments []string
	elements []plyElement
}

// maxPLYPrealloc caps slice capacity derived from header counts.
const maxPLYPrealloc = 1 << 16

func plyError(format string, args ...any) error {
	return fmt.Errorf("%w: ply: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func readPLYHeader(br *bufio.Reader) (*plyHeader, error) {
	h := &plyHeader{}
	line, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "ply" {
		return nil, plyError("missing ply magic")
	}
	sawFormat := false
	for {
		line, err = br.ReadString('\n')
		if err != nil {
			return nil, plyError("header ends before end_header")
		}
		line = strings.TrimRight(line, "\r\n")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) != 3 {
				return nil, plyError("bad format line %q", line)
			}
			switch fields[1] {
			case "ascii":
			case "binary_little_endian":
				h.order = binary.LittleEndian
			case "binary_big_endian":
				h.order = binary.BigEndian
			default:
				return nil, plyError("unknown format %q", fields[1])
			}
			sawFormat = true
		case "comment":
			h.comments = append(h.comments, strings.TrimSpace(strings.TrimPrefix(line, "comment")))
		case "obj_info":
		case "element":
			if len(fields) != 3 {
				return nil, plyError("bad element line %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, plyError("bad element count %q", fields[2])
			}
			h.elements = append(h.elements, plyElement{name: fields[1], count: n})
		case "property":
			if len(h.elements) == 0 {
				return nil, plyError("property before element")
			}
			p, err := parsePLYProperty(fields)
			if err != nil {
				return nil, err
			}
			el := &h.elements[len(h.elements)-1]
			el.props = append(el.props, p)
		case "end_header":
			if !sawFormat {
				return nil, plyError("missing format line")
			}
			return h, nil
		default:
			return nil, plyError("unknown header keyword %q", fields[0])
		}
	}
}

func parsePLYProperty(fields []string) (plyProperty, error) {
	if len(fields) == 5 && fields[1] == "list" {
		ct, ok1 := plyTypes[fields[2]]
		it, ok2 := plyTypes[fields[3]]
		if !ok1 || !ok2 || ct == plyFloat32 || ct == plyFloat64 {
			return plyProperty{}, plyError("bad list property %q", strings.Join(fields, " "))
		}
		return plyProperty{name: fields[4], typ: it, countType: ct}, nil
	}
	if len(fields) != 3 {
		return plyProperty{}, plyError("bad property %q", strings.Join(fields, " "))
	}
	t, ok := plyTypes[fields[1]]
	if !ok {
		return plyProperty{}, plyError("unknown property type %q", fields[1])
	}
	return plyProperty{name: fields[2], typ: t}, nil
}

// plyValues yields the scalars of the body in file order.
type plyValues interface {
	next(t plyType) (float64, error)
}

type plyASCII struct {
	sc *bufio.Scanner
}

func (r *plyASCII) next(t plyType) (float64, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return 0, err
		}
		return 0, plyError("unexpected end of data")
	}
	v, err := strconv.ParseFloat(r.sc.Text(), 64)
	if err != nil {
		return 0, plyError("bad value %q", r.sc.Text())
	}
	return v, nil
}

type plyBinary struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (r *plyBinary) next(t plyType) (float64, error) {
	b := r.buf[:t.size()]
	if _, err := io.ReadFull(r.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, plyError("unexpected end of data")
		}
		return 0, err
	}
	switch t {
	case plyInt8:
		return float64(int8(b[0])), nil
	case plyUint8:
		return float64(b[0]), nil
	case plyInt16:
		return float64(int16(r.order.Uint16(b))), nil
	case plyUint16:
		return float64(r.order.Uint16(b)), nil
	case plyInt32:
		return float64(int32(r.order.Uint32(b))), nil
	case plyUint32:
		return float64(r.order.Uint32(b)), nil
	case plyFloat32:
		return float64(math.Float32frombits(r.order.Uint32(b))), nil
	default:
		return math.Float64frombits(r.order.Uint64(b)), nil
	}
}

// vertexLayout maps vertex property positions to Mesh attributes.
type vertexLayout struct {
	pos, norm [3]int
	tex       [2]int
	color     [4]int
}

func newVertexLayout(el plyElement) (vertexLayout, error) {
	l := vertexLayout{pos: [3]int{-1, -1, -1}, norm: [3]int{-1, -1, -1}, tex: [2]int{-1, -1}, color: [4]int{-1, -1, -1, -1}}
	slots := map[string]*int{
		"x": &l.pos[0], "y": &l.pos[1], "z": &l.pos[2],
		"nx": &l.norm[0], "ny": &l.norm[1], "nz": &l.norm[2],
		"s": &l.tex[0], "t": &l.tex[1],
		"u": &l.tex[0], "v": &l.tex[1],
		"texture_u": &l.tex[0], "texture_v": &l.tex[1],
		"red": &l.color[0], "green": &l.color[1], "blue": &l.color[2], "alpha": &l.color[3],
	}
	for i, p := range el.props {
		if slot, ok := slots[p.name]; ok && p.countType == 0 && *slot < 0 {
			*slot = i
		}
	}
	if l.pos[0] < 0 || l.pos[1] < 0 || l.pos[2] < 0 {
		return l, plyError("vertex element lacks x, y or z")
	}
	return l, nil
}

func allSet(idx []int) bool {
	for _, i := range idx {
		if i < 0 {
			return false
		}
	}
	return true
}

// ReadPLY decodes an ASCII or binary PLY stream. Vertex x/y/z are required;
// nx/ny/nz, s/t (or u/v) and red/green/blue[/alpha] are picked up when
// present. Faces are read from vertex_indices (or vertex_index) and fan
// triangulated. Other elements are skipped.
func ReadPLY(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)
	h, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}
	var values plyValues
	if h.order == nil {
		sc := bufio.NewScanner(br)
		sc.Split(bufio.ScanWords)
		values = &plyASCII{sc: sc}
	} else {
		values = &plyBinary{r: br, order: h.order}
	}

	m := &Mesh{Comment: strings.Join(h.comments, "\n")}
	sawVertex, sawFace := false, false
	for _, el := range h.elements {
		switch {
		case el.name == "vertex" && !sawVertex:
			sawVertex = true
			if err := readPLYVertices(values, el, m); err != nil {
				return nil, err
			}
		case el.name == "face" && !sawFace:
			sawFace = true
			if err := readPLYFaces(values, el, m); err != nil {
				return nil, err
			}
		default:
			if err := skipPLYElement(values, el); err != nil {
				return nil, err
			}
		}
	}
	if !sawVertex {
		return nil, plyError("no vertex element")
	}
	if len(m.Indices) == 0 {
		return nil, ErrNoTriangles
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func readPLYVertices(values plyValues, el plyElement, m *Mesh) error {
	l, err := newVertexLayout(el)
	if err != nil {
		return err
	}
	withNorm, withTex, withColor := allSet(l.norm[:]), allSet(l.tex[:]), allSet(l.color[:3])
	prealloc := min(el.count, maxPLYPrealloc)
	m.Vertices = make([]float32, 0, prealloc*3)
	if withNorm {
		m.Normals = make([]float32, 0, prealloc*3)
	}
	if withTex {
		m.TexCoords = make([]float32, 0, prealloc*2)
	}
	if withColor {
		m.Colors = make([]float32, 0, prealloc*4)
	}

	row := make([]float64, len(el.props))
	for i := 0; i < el.count; i++ {
		for j, p := range el.props {
			if p.countType != 0 {
				if err := skipPLYList(values, p); err != nil {
					return err
				}
				continue
			}
			if row[j], err = values.next(p.typ); err != nil {
				return err
			}
		}
		for _, k := range l.pos {
			m.Vertices = append(m.Vertices, float32(row[k]))
		}
		if withNorm {
			for _, k := range l.norm {
				m.Normals = append(m.Normals, float32(row[k]))
			}
		}
		if withTex {
			for _, k := range l.tex {
				m.TexCoords = append(m.TexCoords, float32(row[k]))
			}
		}
		if withColor {
			for _, k := range l.color {
				if k < 0 {
					m.Colors = append(m.Colors, 1)
					continue
				}
				m.Colors = append(m.Colors, float32(row[k]/el.props[k].typ.unitScale()))
			}
		}
	}
	return nil
}

func readPLYFaces(values plyValues, el plyElement, m *Mesh) error {
	list := -1
	for i, p := range el.props {
		if p.countType != 0 && (p.name == "vertex_indices" || p.name == "vertex_index") {
			list = i
			break
		}
	}
	if list < 0 {
		return plyError("face element lacks vertex_indices")
	}
	m.Indices = make([]uint32, 0, min(el.count, maxPLYPrealloc)*3)

	var corners []uint32
	for i := 0; i < el.count; i++ {
		for j, p := range el.props {
			if j != list {
				if err := skipPLYProperty(values, p); err != nil {
					return err
				}
				continue
			}
			n, err := values.next(p.countType)
			if err != nil {
				return err
			}
			corners = corners[:0]
			for k := 0; k < int(n); k++ {
				v, err := values.next(p.typ)
				if err != nil {
					return err
				}
				if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
					return plyError("face %d: bad vertex index %v", i, v)
				}
				corners = append(corners, uint32(v))
			}
			if len(corners) < 3 {
				return plyError("face %d has %d corners", i, len(corners))
			}
			for k := 1; k+1 < len(corners); k++ {
				m.Indices = append(m.Indices, corners[0], corners[k], corners[k+1])
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValues, p plyProperty) error {
	if p.countType != 0 {
		return skipPLYList(values, p)
	}
	_, err := values.next(p.typ)
	return err
}

func skipPLYList(values plyValues, p plyProperty) error {
	n, err := values.next(p.countType)
	if err != nil {
		return err
	}
	if n < 0 {
		return plyError("negative list length %v", n)
	}
	for k := 0; k < int(n); k++ {
		if _, err := values.next(p.typ); err != nil {
			return err
		}
	}
	return nil
}

func skipPLYElement(values plyValues, el plyElement) error {
	for i := 0; i < el.count; i++ {
		for _, p := range el.props {
			if err := skipPLYProperty(values, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// WritePLY writes m as PLY, binary little-endian when binary is set and
// ASCII otherwise. Colours are written as uchar channels and opts.Comment,
// when set, replaces the mesh comment.
func WritePLY(w io.Writer, m *Mesh, opts ExportOptions, binaryBody bool) error {
	if err := m.Validate(); err != nil {
		return err
	}
	withTex := m.HasTexCoords() && !opts.NoTexCoords
	withNorm := m.HasNormals() && !opts.NoNormals
	withColor := m.HasColors() && !opts.NoColors

	bw := bufio.NewWriter(w)
	bw.WriteString("ply\n")
	if binaryBody {
		bw.WriteString("format binary_little_endian 1.0\n")
	} else {
		bw.WriteString("format ascii 1.0\n")
	}
	comment := m.Comment
	if opts.Comment != "" {
		comment = opts.Comment
	}
	for _, line := range strings.Split(comment, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(bw, "comment %s\n", line)
		}
	}
	fmt.Fprintf(bw, "element vertex %d\n", m.VertexCount())
	bw.WriteString("property float x\nproperty float y\nproperty float z\n")
	if withTex {
		bw.WriteString("property float s\nproperty float t\n")
	}
	if withNorm {
		bw.WriteString("property float nx\nproperty float ny\nproperty float nz\n")
	}
	if withColor {
		bw.WriteString("property uchar red\nproperty uchar green\nproperty uchar blue\nproperty uchar alpha\n")
	}
	fmt.Fprintf(bw, "element face %d\n", m.TriangleCount())
	bw.WriteString("property list uchar uint vertex_indices\nend_header\n")

	out := plyWriter{bw: bw, binary: binaryBody}
	for i := 0; i < m.VertexCount(); i++ {
		out.floats(m.Vertices[i*3 : i*3+3])
		if withTex {
			out.floats(m.TexCoords[i*2 : i*2+2])
		}
		if withNorm {
			out.floats(m.Normals[i*3 : i*3+3])
		}
		if withColor {
			for _, c := range m.Colors[i*4 : i*4+4] {
				out.uchar(uint8(math.Floor(float64(min(max(c, 0), 1))*255 + 0.5)))
			}
		}
		out.endRow()
	}
	for t := 0; t < m.TriangleCount(); t++ {
		out.uchar(3)
		for _, idx := range m.Indices[t*3 : t*3+3] {
			out.uint(idx)
		}
		out.endRow()
	}
	return bw.Flush()
}

type plyWriter struct {
	bw      *bufio.Writer
	binary  bool
	scratch [4]byte
	started bool
}

func (p *plyWriter) sep() {
	if p.started {
		p.bw.WriteByte(' ')
	}
	p.started = true
}

func (p *plyWriter) floats(vs []float32) {
	for _, v := range vs {
		if p.binary {
			binary.LittleEndian.PutUint32(p.scratch[:], math.Float32bits(v))
			p.bw.Write(p.scratch[:])
			continue
		}
		p.sep()
		p.bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
}

func (p *plyWriter) uchar(v uint8) {
	if p.binary {
		p.bw.WriteByte(v)
		return
	}
	p.sep()
	p.bw.WriteString(strconv.Itoa(int(v)))
}

func (p *plyWriter) uint(v uint32) {
	if p.binary {
		binary.LittleEndian.PutUint32(p.scratch[:], v)
		p.bw.Write(p.scratch[:])
		return
	}
	p.sep()
	p.bw.WriteString(strconv.FormatUint(uint64(v), 10))
}

func (p *plyWriter) endRow() {
	if !p.binary {
		p.bw.WriteByte('\n')
	}
	p.started = false
}
