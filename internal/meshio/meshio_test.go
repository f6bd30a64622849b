package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/meshctm/pkg/ctm"
)

func quadMesh() *Mesh {
	return &Mesh{
		Vertices:  []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		TexCoords: []float32{0, 0, 1, 0, 1, 1, 0, 1},
		TexFile:   "quad.png",
		Colors:    []float32{1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1, 1, 1, 1, 1},
		Comment:   "unit quad",
	}
}

func TestReadOBJ(t *testing.T) {
	t.Parallel()

	src := `# exported by hand
# second line
mtllib quad.mtl
v 0 0 0 1 0 0
v 1 0 0 0 1 0
v 1 1 0 0 0 1
v 0 1 \
  0 1 1 1
vt 0 0
vt 1 1
vn 0 0 1
f 1/1/1 2/1/1 3/2/1 -1/2/-1
`
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("read obj: %v", err)
	}
	if m.Comment != "exported by hand\nsecond line" {
		t.Fatalf("comment: %q", m.Comment)
	}
	if m.VertexCount() != 4 || m.TriangleCount() != 2 {
		t.Fatalf("counts: %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
	if !slices.Equal(m.Indices, []uint32{0, 1, 2, 0, 2, 3}) {
		t.Fatalf("fan triangulation: %v", m.Indices)
	}
	if !m.HasTexCoords() || !m.HasNormals() || !m.HasColors() {
		t.Fatalf("missing attributes: tex=%v norm=%v color=%v", m.HasTexCoords(), m.HasNormals(), m.HasColors())
	}
	if !slices.Equal(m.Colors[12:], []float32{1, 1, 1, 1}) {
		t.Fatalf("colour of last vertex: %v", m.Colors[12:])
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestReadOBJSplitsCorners(t *testing.T) {
	t.Parallel()

	// Position 1 is used with two different texture coordinates.
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nvt 0 0\nvt 1 0\nf 1/1 2/1 3/1\nf 1/2 4/2 2/2\n"
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("read obj: %v", err)
	}
	if m.VertexCount() != 6 {
		t.Fatalf("expected split corners, got %d vertices", m.VertexCount())
	}
	if m.HasNormals() {
		t.Fatalf("normals invented")
	}
}

func TestReadOBJErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad float":      "v 0 x 0\n",
		"short vertex":   "v 0 0\n",
		"index too high": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"two corners":    "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"no faces":       "v 0 0 0\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadOBJ(strings.NewReader(src)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := ReadOBJ(strings.NewReader("v 0 0 0\n")); !errors.Is(err, ErrNoTriangles) {
		t.Fatalf("no faces: %v", err)
	}
}

func TestOBJRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, quadMesh(), ExportOptions{}); err != nil {
		t.Fatalf("write obj: %v", err)
	}
	got, err := ReadOBJ(&buf)
	if err != nil {
		t.Fatalf("read obj: %v", err)
	}
	want := quadMesh()
	if !slices.Equal(got.Vertices, want.Vertices) || !slices.Equal(got.Indices, want.Indices) {
		t.Fatalf("geometry changed: %v %v", got.Vertices, got.Indices)
	}
	if !slices.Equal(got.TexCoords, want.TexCoords) || !slices.Equal(got.Normals, want.Normals) {
		t.Fatalf("attributes changed")
	}
	if got.Comment != want.Comment {
		t.Fatalf("comment: %q", got.Comment)
	}

	buf.Reset()
	if err := WriteOBJ(&buf, quadMesh(), ExportOptions{NoNormals: true, NoTexCoords: true, NoColors: true}); err != nil {
		t.Fatalf("write stripped: %v", err)
	}
	if s := buf.String(); strings.Contains(s, "vt ") || strings.Contains(s, "vn ") || strings.Contains(s, "/") {
		t.Fatalf("stripped obj still carries attributes:\n%s", s)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, quadMesh(), ExportOptions{NoColors: true}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if got.HasColors() {
		t.Fatalf("colours not stripped")
	}
	if got.TexFile != "quad.png" || !slices.Equal(got.Normals, quadMesh().Normals) {
		t.Fatalf("unexpected mesh: %+v", got)
	}

	if _, err := ReadJSON(strings.NewReader(`{"vertices":[0,0,0],"indices":[0,0,0],"extra":1}`)); err == nil {
		t.Fatalf("unknown field accepted")
	}
	_, err = ReadJSON(strings.NewReader(`{"vertices":[0,0,0,1,0,0,0,1,0],"indices":[0,1,3]}`))
	if !errors.Is(err, ErrInvalidMesh) {
		t.Fatalf("bad index: %v", err)
	}
}

func TestCTMBridge(t *testing.T) {
	t.Parallel()

	for _, method := range []ctm.Method{ctm.MethodRaw, ctm.MethodMG1} {
		var buf bytes.Buffer
		opts := DefaultExportOptions()
		opts.Method = method
		opts.TexFile = "override.png"
		if err := SaveCTM(&buf, quadMesh(), opts); err != nil {
			t.Fatalf("%s: save: %v", method, err)
		}

		c := ctm.New(ctm.Import)
		if err := c.LoadFrom(bytes.NewReader(buf.Bytes())); err != nil {
			t.Fatalf("%s: load: %v", method, err)
		}
		uv, err := c.UVMap(c.NamedUVMap(CTMTexCoordMap))
		if err != nil || uv.FileName != "override.png" {
			t.Fatalf("%s: uv map %+v %v", method, uv, err)
		}
		if c.NamedAttribMap(CTMColorMap) == ctm.NotFound {
			t.Fatalf("%s: colour map missing", method)
		}
		got, err := FromContext(c)
		if err != nil {
			t.Fatalf("%s: from context: %v", method, err)
		}
		c.Free()

		want := quadMesh()
		if !slices.Equal(got.Vertices, want.Vertices) || !slices.Equal(got.Colors, want.Colors) {
			t.Fatalf("%s: data changed", method)
		}
		if got.Comment != want.Comment || got.TexFile != "override.png" {
			t.Fatalf("%s: comment %q texfile %q", method, got.Comment, got.TexFile)
		}
	}
}

func TestCTMBridgeStripsAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := ExportOptions{Method: ctm.MethodMG2, Level: 5, VertexPrecision: 0.001, NoNormals: true, NoTexCoords: true, NoColors: true}
	if err := SaveCTM(&buf, quadMesh(), opts); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadCTM(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.HasNormals() || got.HasTexCoords() || got.HasColors() {
		t.Fatalf("attributes survived: %+v", got)
	}
	if got.TriangleCount() != 2 {
		t.Fatalf("triangles: %d", got.TriangleCount())
	}

	bad := opts
	bad.Level = 12
	if err := SaveCTM(&buf, quadMesh(), bad); !errors.Is(err, ctm.InvalidArgument) {
		t.Fatalf("bad level: %v", err)
	}
}

func TestGLTFRoundTrip(t *testing.T) {
	t.Parallel()

	for _, binary := range []bool{true, false} {
		var buf bytes.Buffer
		if err := WriteGLTF(&buf, quadMesh(), ExportOptions{}, binary); err != nil {
			t.Fatalf("binary=%v: write: %v", binary, err)
		}
		if binary && !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
			t.Fatalf("missing GLB magic")
		}
		got, err := ReadGLTF(&buf)
		if err != nil {
			t.Fatalf("binary=%v: read: %v", binary, err)
		}
		want := quadMesh()
		if !slices.Equal(got.Vertices, want.Vertices) || !slices.Equal(got.Indices, want.Indices) {
			t.Fatalf("binary=%v: geometry changed", binary)
		}
		if !slices.Equal(got.Normals, want.Normals) {
			t.Fatalf("binary=%v: normals %v", binary, got.Normals)
		}
		for i := range want.TexCoords {
			if math.Abs(float64(got.TexCoords[i]-want.TexCoords[i])) > 1e-6 {
				t.Fatalf("binary=%v: uv %d = %g", binary, i, got.TexCoords[i])
			}
		}
		if got.HasColors() {
			t.Fatalf("colours are not exported")
		}
		if got.Comment != want.Comment {
			t.Fatalf("binary=%v: comment %q", binary, got.Comment)
		}
	}
}

// editGLTF writes the quad as JSON glTF, lets edit change the decoded
// document and returns the re-encoded bytes.
func editGLTF(t *testing.T, edit func(doc map[string]any)) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteGLTF(&buf, quadMesh(), ExportOptions{}, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	edit(doc)
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("encode document: %v", err)
	}
	return out
}

func TestReadGLTFExtrasOfAnyType(t *testing.T) {
	t.Parallel()

	for _, extras := range []any{"made by hand", 42.0, []any{"a", "b"}, map[string]any{"comment": 7.0}} {
		data := editGLTF(t, func(doc map[string]any) {
			doc["asset"].(map[string]any)["extras"] = extras
		})
		m, err := ReadGLTF(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("extras %v: %v", extras, err)
		}
		if m.Comment != "" || m.TriangleCount() != 2 {
			t.Fatalf("extras %v: comment %q, %d triangles", extras, m.Comment, m.TriangleCount())
		}
	}
}

func TestReadGLTFBadAccessor(t *testing.T) {
	t.Parallel()

	data := editGLTF(t, func(doc map[string]any) {
		prim := doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)
		prim["attributes"].(map[string]any)["POSITION"] = 99
	})
	if _, err := ReadGLTF(bytes.NewReader(data)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("out of range accessor: %v", err)
	}
}

func TestMalformedInput(t *testing.T) {
	t.Parallel()

	cases := map[Format]string{
		FormatOBJ:  "v 0 0\nf 1 2 3\n",
		FormatJSON: `{"vertices": [0, 0,`,
		FormatGLTF: `{"asset": `,
		FormatGLB:  "glTF\x02\x00\x00\x00",
		FormatPLY:  "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nend_header\n0\n",
		FormatSTL:  "not a mesh",
	}
	for f, src := range cases {
		if _, err := Decode(strings.NewReader(src), f); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: got %v, want ErrMalformed", f, err)
		}
	}
}

func TestReadPLY(t *testing.T) {
	t.Parallel()

	src := `ply
format ascii 1.0
comment made by hand
comment second line
element vertex 4
property float x
property float y
property float z
property float nx
property float ny
property float nz
property float s
property float t
property uchar red
property uchar green
property uchar blue
element face 1
property uchar flags
property list uchar int vertex_indices
element edge 1
property int vertex1
property int vertex2
end_header
0 0 0 0 0 1 0 0 255 0 0
1 0 0 0 0 1 1 0 0 255 0
1 1 0 0 0 1 1 1 0 0 255
0 1 0 0 0 1 0 1 255 255 255
7 4 0 1 2 3
0 1
`
	m, err := ReadPLY(strings.NewReader(src))
	if err != nil {
		t.Fatalf("read ply: %v", err)
	}
	if m.Comment != "made by hand\nsecond line" {
		t.Fatalf("comment: %q", m.Comment)
	}
	if !slices.Equal(m.Indices, []uint32{0, 1, 2, 0, 2, 3}) {
		t.Fatalf("fan triangulation: %v", m.Indices)
	}
	want := quadMesh()
	if !slices.Equal(m.Vertices, want.Vertices) || !slices.Equal(m.Normals, want.Normals) || !slices.Equal(m.TexCoords, want.TexCoords) {
		t.Fatalf("attributes: %v %v %v", m.Vertices, m.Normals, m.TexCoords)
	}
	if !slices.Equal(m.Colors, want.Colors) {
		t.Fatalf("colours: %v", m.Colors)
	}
}

func TestPLYRoundTrip(t *testing.T) {
	t.Parallel()

	for _, binaryBody := range []bool{false, true} {
		var buf bytes.Buffer
		if err := WritePLY(&buf, quadMesh(), ExportOptions{}, binaryBody); err != nil {
			t.Fatalf("binary=%v: write ply: %v", binaryBody, err)
		}
		if binaryBody != strings.Contains(buf.String(), "binary_little_endian") {
			t.Fatalf("binary=%v: header:\n%s", binaryBody, buf.String())
		}
		got, err := ReadPLY(&buf)
		if err != nil {
			t.Fatalf("binary=%v: read ply: %v", binaryBody, err)
		}
		want := quadMesh()
		if !slices.Equal(got.Vertices, want.Vertices) || !slices.Equal(got.Indices, want.Indices) {
			t.Fatalf("binary=%v: geometry changed: %v %v", binaryBody, got.Vertices, got.Indices)
		}
		if !slices.Equal(got.Normals, want.Normals) || !slices.Equal(got.TexCoords, want.TexCoords) || !slices.Equal(got.Colors, want.Colors) {
			t.Fatalf("binary=%v: attributes changed", binaryBody)
		}
		if got.Comment != want.Comment {
			t.Fatalf("binary=%v: comment: %q", binaryBody, got.Comment)
		}
	}

	var buf bytes.Buffer
	if err := WritePLY(&buf, quadMesh(), ExportOptions{NoNormals: true, NoTexCoords: true, NoColors: true, Comment: "override"}, false); err != nil {
		t.Fatalf("write stripped: %v", err)
	}
	s := buf.String()
	if strings.Contains(s, "property float nx") || strings.Contains(s, "property float s") || strings.Contains(s, "red") {
		t.Fatalf("stripped ply still carries attributes:\n%s", s)
	}
	if !strings.Contains(s, "comment override\n") {
		t.Fatalf("comment override missing:\n%s", s)
	}
}

func TestReadPLYBigEndian(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_big_endian 1.0\nelement vertex 3\nproperty double x\nproperty double y\nproperty double z\nelement face 1\nproperty list uchar ushort vertex_indices\nend_header\n")
	for _, v := range []float64{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(&buf, binary.BigEndian, v)
	}
	buf.WriteByte(3)
	binary.Write(&buf, binary.BigEndian, []uint16{2, 1, 0})

	m, err := ReadPLY(&buf)
	if err != nil {
		t.Fatalf("read ply: %v", err)
	}
	if !slices.Equal(m.Vertices, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}) || !slices.Equal(m.Indices, []uint32{2, 1, 0}) {
		t.Fatalf("mesh: %v %v", m.Vertices, m.Indices)
	}
}

func TestReadPLYErrors(t *testing.T) {
	t.Parallel()

	header := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n"
	cases := map[string]string{
		"no magic":       "plx\n",
		"bad format":     "ply\nformat ebcdic 1.0\nend_header\n",
		"no end_header":  "ply\nformat ascii 1.0\nelement vertex 1\n",
		"missing z":      "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n0 0\n",
		"truncated body": header + "0 0 0\n1 0 0\n",
		"two corners":    header + "0 0 0\n1 0 0\n0 1 0\n2 0 1\n",
		"bad number":     header + "0 0 0\n1 0 zero\n0 1 0\n3 0 1 2\n",
		"huge count":     "ply\nformat binary_little_endian 1.0\nelement vertex 2000000000\nproperty float x\nproperty float y\nproperty float z\nend_header\n",
	}
	for name, src := range cases {
		if _, err := ReadPLY(strings.NewReader(src)); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: got %v, want ErrMalformed", name, err)
		}
	}

	_, err := ReadPLY(strings.NewReader(header + "0 0 0\n1 0 0\n0 1 0\n3 0 1 7\n"))
	if !errors.Is(err, ErrInvalidMesh) {
		t.Fatalf("index out of range: got %v, want ErrInvalidMesh", err)
	}
}

func TestSTLRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteSTL(&buf, quadMesh(), ExportOptions{}); err != nil {
		t.Fatalf("write stl: %v", err)
	}
	if buf.Len() != 84+2*50 {
		t.Fatalf("size %d", buf.Len())
	}
	got, err := ReadSTL(&buf)
	if err != nil {
		t.Fatalf("read stl: %v", err)
	}
	want := quadMesh()
	if !slices.Equal(got.Vertices, want.Vertices) || !slices.Equal(got.Indices, want.Indices) {
		t.Fatalf("geometry changed: %v %v", got.Vertices, got.Indices)
	}
	if got.HasNormals() || got.HasTexCoords() || got.HasColors() {
		t.Fatalf("stl carries only positions")
	}
	if got.Comment != want.Comment {
		t.Fatalf("comment: %q", got.Comment)
	}
}

func TestSTLHeaderNotSolid(t *testing.T) {
	t.Parallel()

	m := quadMesh()
	m.Comment = "solid block"
	var buf bytes.Buffer
	if err := WriteSTL(&buf, m, ExportOptions{}); err != nil {
		t.Fatalf("write stl: %v", err)
	}
	if bytes.HasPrefix(buf.Bytes(), []byte("solid")) {
		t.Fatalf("binary header starts with solid")
	}
	var tri stlTriangle
	if err := binary.Read(bytes.NewReader(buf.Bytes()[84:]), binary.LittleEndian, &tri); err != nil {
		t.Fatalf("read facet: %v", err)
	}
	if tri.Normal != [3]float32{0, 0, 1} {
		t.Fatalf("facet normal: %v", tri.Normal)
	}
}

func TestReadASCIISTL(t *testing.T) {
	t.Parallel()

	src := `solid quad
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid quad
`
	m, err := ReadSTL(strings.NewReader(src))
	if err != nil {
		t.Fatalf("read stl: %v", err)
	}
	if m.Comment != "quad" {
		t.Fatalf("comment: %q", m.Comment)
	}
	want := quadMesh()
	if !slices.Equal(m.Vertices, want.Vertices) || !slices.Equal(m.Indices, want.Indices) {
		t.Fatalf("mesh: %v %v", m.Vertices, m.Indices)
	}

	if _, err := ReadSTL(strings.NewReader("solid\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\n")); !errors.Is(err, ErrMalformed) {
		t.Fatalf("two-vertex facet: got %v, want ErrMalformed", err)
	}
}

func TestProcessUpAxis(t *testing.T) {
	t.Parallel()

	cases := []struct {
		axis UpAxis
		want [3]float32
	}{
		{UpZ, [3]float32{0, 0, 2}},
		{UpY, [3]float32{0, 2, 0}},
		{UpX, [3]float32{2, 0, 0}},
		{UpNegZ, [3]float32{0, 0, -2}},
		{UpNegY, [3]float32{0, -2, 0}},
		{UpNegX, [3]float32{-2, 0, 0}},
	}
	for _, tc := range cases {
		// The "up" vector of each source convention must end up as +Z.
		m := &Mesh{
			Vertices: []float32{tc.want[0], tc.want[1], tc.want[2], 0, 0, 0, 1, 1, 1},
			Indices:  []uint32{0, 1, 2},
			Normals:  []float32{tc.want[0] / 2, tc.want[1] / 2, tc.want[2] / 2, 0, 0, 1, 0, 0, 1},
		}
		Process(m, ProcessOptions{Scale: 1.5, UpAxis: tc.axis})
		if got := m.Vertices[:3]; !slices.Equal(got, []float32{0, 0, 3}) {
			t.Fatalf("%s: up vector maps to %v", tc.axis, got)
		}
		if got := m.Normals[:3]; !slices.Equal(got, []float32{0, 0, 1}) {
			t.Fatalf("%s: up normal maps to %v", tc.axis, got)
		}
	}
}

func TestProcessFlipAndNormals(t *testing.T) {
	t.Parallel()

	m := quadMesh()
	m.Normals = nil
	Process(m, ProcessOptions{Flip: true, CalcNormals: true})
	if !slices.Equal(m.Indices, []uint32{1, 0, 2, 2, 0, 3}) {
		t.Fatalf("flip: %v", m.Indices)
	}
	for i := 0; i < len(m.Normals); i += 3 {
		if !slices.Equal(m.Normals[i:i+3], []float32{0, 0, -1}) {
			t.Fatalf("normal %d: %v", i/3, m.Normals[i:i+3])
		}
	}

	m = quadMesh()
	m.Normals = nil
	Process(m, ProcessOptions{CalcNormals: true, NoNormals: true})
	if m.HasNormals() {
		t.Fatalf("normals calculated despite NoNormals")
	}
}

func TestParseUpAxis(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"x", "Y", " z ", "-X", "-y", "-Z"} {
		a, err := ParseUpAxis(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if !strings.EqualFold(a.String(), strings.TrimSpace(s)) {
			t.Fatalf("%q parsed as %s", s, a)
		}
	}
	if _, err := ParseUpAxis("W"); err == nil {
		t.Fatalf("accepted W")
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]Format{"a.ctm": FormatCTM, "b.OBJ": FormatOBJ, "c.glb": FormatGLB, "d.gltf": FormatGLTF, "e.ply": FormatPLY, "f.STL": FormatSTL} {
		f, err := FormatOf(path)
		if err != nil || f != want {
			t.Fatalf("%s: %s %v", path, f, err)
		}
	}
	for _, path := range []string{"noext", "mesh.fbx"} {
		if _, err := FormatOf(path); !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%s: %v", path, err)
		}
	}
	if FormatGLB.ContentType() != "model/gltf-binary" {
		t.Fatalf("content type: %s", FormatGLB.ContentType())
	}
}

func TestReadWriteFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"quad.ctm", "quad.obj", "quad.json", "quad.glb", "quad.gltf", "quad.ply", "quad.stl"} {
		path := filepath.Join(dir, name)
		if err := Write(path, quadMesh(), DefaultExportOptions()); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		got, err := Read(path)
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if got.VertexCount() != 4 || got.TriangleCount() != 2 {
			t.Fatalf("%s: counts %d/%d", name, got.VertexCount(), got.TriangleCount())
		}
	}
	entries, err := filepath.Glob(filepath.Join(dir, ".*"))
	if err != nil || len(entries) != 0 {
		t.Fatalf("temporary files left behind: %v %v", entries, err)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := quadMesh().Stats()
	if s.Vertices != 4 || s.Triangles != 2 || !s.HasNormals || !s.HasColors {
		t.Fatalf("stats: %+v", s)
	}
	if s.Bounds.Max != [3]float32{1, 1, 0} || s.Bounds.Min != [3]float32{} {
		t.Fatalf("bounds: %+v", s.Bounds)
	}
	want := (4 + 2*math.Sqrt2) / 6
	if math.Abs(s.AvgEdge-want) > 1e-9 {
		t.Fatalf("avg edge: %g want %g", s.AvgEdge, want)
	}
}
