package ctm

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestQuadWithDiffuseMapRaw(t *testing.T) {
	t.Parallel()

	v, idx := quad()
	uv := []float32{0, 0, 1, 0, 1, 1, 0, 1}

	exp := New(Export)
	if err := exp.DefineMesh(v, idx, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := exp.AddUVMap(uv, "diffuse", "diffuse.png"); err != nil {
		t.Fatalf("add uv: %v", err)
	}
	if err := exp.SetMethod(MethodRaw); err != nil {
		t.Fatalf("method: %v", err)
	}

	path := filepath.Join(t.TempDir(), "quad.ctm")
	if err := exp.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	imp := New(Import)
	defer imp.Free()
	if err := imp.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := imp.Err(); got != NoError {
		t.Fatalf("error after load: %s", got)
	}

	for p, want := range map[Property]uint32{VertexCount: 4, TriangleCount: 2, UVMapCount: 1, HasNormals: 0} {
		got, err := imp.Integer(p)
		if err != nil || got != want {
			t.Fatalf("property %d: got %d err %v want %d", p, got, err, want)
		}
	}

	id := imp.NamedUVMap("diffuse")
	if id == NotFound {
		t.Fatalf("diffuse map not found")
	}
	info, err := imp.UVMap(id)
	if err != nil {
		t.Fatalf("uv map: %v", err)
	}
	if !slices.Equal(info.Values, uv) {
		t.Fatalf("uv mismatch: got %v want %v", info.Values, uv)
	}
	if info.FileName != "diffuse.png" {
		t.Fatalf("file name: %q", info.FileName)
	}
	gotIdx, _ := imp.Indices()
	if !slices.Equal(gotIdx, idx) {
		t.Fatalf("indices: got %v want %v", gotIdx, idx)
	}
	normals, err := imp.Normals()
	if err != nil || normals != nil {
		t.Fatalf("normals: %v %v", normals, err)
	}
}

func TestRoundTripLossless(t *testing.T) {
	t.Parallel()

	v, idx, n, uv, col := sphere(12, 16)
	for _, method := range []Method{MethodRaw, MethodMG1} {
		for _, level := range []int{0, 1, 9} {
			exp := New(Export)
			if err := exp.DefineMesh(v, idx, n); err != nil {
				t.Fatalf("define: %v", err)
			}
			if _, err := exp.AddUVMap(uv, "diffuse", "tex.png"); err != nil {
				t.Fatalf("add uv: %v", err)
			}
			if _, err := exp.AddAttribMap(col, "color"); err != nil {
				t.Fatalf("add attr: %v", err)
			}
			if err := exp.SetMethod(method); err != nil {
				t.Fatalf("method: %v", err)
			}
			if err := exp.SetCompressionLevel(level); err != nil {
				t.Fatalf("level: %v", err)
			}
			if err := exp.SetComment("sphere"); err != nil {
				t.Fatalf("comment: %v", err)
			}

			imp := loadBytes(t, saveBytes(t, exp))

			gotV, _ := imp.Vertices()
			gotN, _ := imp.Normals()
			if !slices.Equal(gotV, v) || !slices.Equal(gotN, n) {
				t.Fatalf("%s level %d: geometry not bit-identical", method, level)
			}
			gotIdx, _ := imp.Indices()
			if method == MethodRaw && !slices.Equal(gotIdx, idx) {
				t.Fatalf("raw indices changed")
			}
			a, b := canonicalTriangles(gotIdx), canonicalTriangles(idx)
			if len(a) != len(b) {
				t.Fatalf("%s: triangle sets differ in size", method)
			}
			for tri, count := range b {
				if a[tri] != count {
					t.Fatalf("%s: triangle %v missing", method, tri)
				}
			}

			uvInfo, err := imp.UVMap(imp.NamedUVMap("diffuse"))
			if err != nil || !slices.Equal(uvInfo.Values, uv) {
				t.Fatalf("%s: uv mismatch (%v)", method, err)
			}
			colInfo, err := imp.AttribMap(imp.NamedAttribMap("color"))
			if err != nil || !slices.Equal(colInfo.Values, col) {
				t.Fatalf("%s: attribute mismatch (%v)", method, err)
			}
			if m, _ := imp.Method(); m != method {
				t.Fatalf("method: got %s want %s", m, method)
			}
			if c, _ := imp.Comment(); c != "sphere" {
				t.Fatalf("comment: %q", c)
			}
		}
	}
}

func TestRoundTripMG2BoundedPrecision(t *testing.T) {
	t.Parallel()

	const (
		vprec = float32(1.0 / 512)
		nprec = float32(1.0 / 128)
		uprec = float32(1.0 / 1024)
		aprec = float32(1.0 / 64)
	)
	v, idx, n, uv, col := sphere(16, 24)

	exp := New(Export)
	if err := exp.DefineMesh(v, idx, n); err != nil {
		t.Fatalf("define: %v", err)
	}
	uvID, err := exp.AddUVMap(uv, "diffuse", "")
	if err != nil {
		t.Fatalf("add uv: %v", err)
	}
	colID, err := exp.AddAttribMap(col, "color")
	if err != nil {
		t.Fatalf("add attr: %v", err)
	}
	for _, step := range []error{
		exp.SetMethod(MethodMG2),
		exp.SetVertexPrecision(vprec),
		exp.SetNormalPrecision(nprec),
		exp.SetUVCoordPrecision(uvID, uprec),
		exp.SetAttribPrecision(colID, aprec),
	} {
		if step != nil {
			t.Fatalf("configure: %v", step)
		}
	}

	imp := loadBytes(t, saveBytes(t, exp))
	if p, _ := imp.Float(VertexPrecision); p != vprec {
		t.Fatalf("vertex precision read back: %g", p)
	}

	gotV, _ := imp.Vertices()
	gotN, _ := imp.Normals()
	gotIdx, _ := imp.Indices()
	uvInfo, _ := imp.UVMap(imp.NamedUVMap("diffuse"))
	colInfo, _ := imp.AttribMap(imp.NamedAttribMap("color"))
	if len(gotV) != len(v) || len(gotIdx) != len(idx) {
		t.Fatalf("counts changed: %d/%d vertices, %d/%d indices", len(gotV), len(v), len(gotIdx), len(idx))
	}
	if uvInfo.Precision != uprec || colInfo.Precision != aprec {
		t.Fatalf("map precisions: %g %g", uvInfo.Precision, colInfo.Precision)
	}

	// MG2 reorders vertices. Seam and pole vertices share positions, so the
	// UV is part of the match key.
	lut := make([]int, len(gotV)/3)
	used := make([]bool, len(v)/3)
	for i := range lut {
		best, bestD := -1, math.Inf(1)
		for j := 0; j < len(v)/3; j++ {
			if used[j] {
				continue
			}
			d := dist(gotV[i*3:i*3+3], v[j*3:j*3+3]) + dist(uvInfo.Values[i*2:i*2+2], uv[j*2:j*2+2])
			if d < bestD {
				best, bestD = j, d
			}
		}
		if d := dist(gotV[i*3:i*3+3], v[best*3:best*3+3]); d > math.Sqrt(3)*float64(vprec) {
			t.Fatalf("vertex %d off by %g, step %g", i, d, vprec)
		}
		lut[i] = best
		used[best] = true
	}

	for i, j := range lut {
		if d := dist(gotN[i*3:i*3+3], n[j*3:j*3+3]); d > 8*float64(nprec) {
			t.Fatalf("normal %d off by %g", i, d)
		}
		for k := 0; k < 2; k++ {
			if d := math.Abs(float64(uvInfo.Values[i*2+k] - uv[j*2+k])); d > float64(uprec) {
				t.Fatalf("uv %d off by %g", i, d)
			}
		}
		for k := 0; k < 4; k++ {
			if d := math.Abs(float64(colInfo.Values[i*4+k] - col[j*4+k])); d > float64(aprec) {
				t.Fatalf("attribute %d off by %g", i, d)
			}
		}
	}

	// Triangles survive under the vertex permutation.
	mapped := make([]uint32, len(gotIdx))
	for i, x := range gotIdx {
		mapped[i] = uint32(lut[x])
	}
	a, b := canonicalTriangles(mapped), canonicalTriangles(idx)
	for tri, count := range b {
		if a[tri] != count {
			t.Fatalf("triangle %v lost", tri)
		}
	}
}

func TestMG2PrecisionTooFine(t *testing.T) {
	t.Parallel()

	v := []float32{0, 0, 0, 1e6, 0, 0, 0, 1e6, 0}
	c := New(Export)
	if err := c.DefineMesh(v, []uint32{0, 1, 2}, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	_ = c.SetMethod(MethodMG2)
	_ = c.SetVertexPrecision(1e-6)
	mustCode(t, c.SaveTo(discard{}), InvalidArgument)
}

func TestSaveFailures(t *testing.T) {
	t.Parallel()

	c := New(Export)
	mustCode(t, c.Save(filepath.Join(t.TempDir(), "x.ctm")), InvalidMesh)

	v, idx := quad()
	if err := c.DefineMesh(v, idx, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "x.ctm")
	mustCode(t, c.Save(missing), FileError)
	mustCode(t, c.SaveTo(failingWriter{}), FileError)
	if got := c.Err(); got != FileError {
		t.Fatalf("sticky: %s", got)
	}
}

func TestLoadReplacesPreviousMesh(t *testing.T) {
	t.Parallel()

	v, idx := quad()
	exp := New(Export)
	if err := exp.DefineMesh(v, idx, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	first := saveBytes(t, exp)

	sv, sidx, _, _, _ := sphere(4, 4)
	if err := exp.DefineMesh(sv, sidx, nil); err != nil {
		t.Fatalf("define sphere: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sphere.ctm")
	if err := exp.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	imp := loadBytes(t, first)
	if err := imp.Load(path); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if n, _ := imp.Integer(VertexCount); int(n) != len(sv)/3 {
		t.Fatalf("vertex count after reload: %d", n)
	}

	if err := os.WriteFile(path, []byte("OCTM"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mustCode(t, imp.Load(path), FileError)
	if _, err := imp.Vertices(); err == nil {
		t.Fatalf("failed load kept the previous mesh")
	}
}

func dist(a, b []float32) float64 {
	var s float64
	for k := range a {
		d := float64(a[k] - b[k])
		s += d * d
	}
	return math.Sqrt(s)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }
