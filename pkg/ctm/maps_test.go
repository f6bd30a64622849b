package ctm

import (
	"errors"
	"testing"
)

func TestNamedMapLookup(t *testing.T) {
	t.Parallel()

	c := New(Export)
	v, idx := quad()
	if err := c.DefineMesh(v, idx, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	diffuse, err := c.AddUVMap(make([]float32, 8), "diffuse", "diffuse.png")
	if err != nil {
		t.Fatalf("add diffuse: %v", err)
	}
	light, err := c.AddUVMap(make([]float32, 8), "lightmap", "")
	if err != nil {
		t.Fatalf("add lightmap: %v", err)
	}
	color, err := c.AddAttribMap(make([]float32, 16), "color")
	if err != nil {
		t.Fatalf("add color: %v", err)
	}

	if diffuse != UVMap1 || light != UVMap2 || color != AttribMap1 {
		t.Fatalf("slots: %d %d %d", diffuse, light, color)
	}
	if got := c.NamedUVMap("diffuse"); got != diffuse {
		t.Fatalf("diffuse lookup: %d", got)
	}
	if got := c.NamedUVMap("lightmap"); got != light {
		t.Fatalf("lightmap lookup: %d", got)
	}
	if got := c.NamedUVMap("missing"); got != NotFound {
		t.Fatalf("missing lookup: %d", got)
	}
	if got := c.NamedUVMap("color"); got != NotFound {
		t.Fatalf("attribute name leaked into uv registry: %d", got)
	}
	if got := c.NamedAttribMap("color"); got != color {
		t.Fatalf("color lookup: %d", got)
	}

	info, err := c.UVMap(diffuse)
	if err != nil {
		t.Fatalf("uv map: %v", err)
	}
	if info.Name != "diffuse" || info.FileName != "diffuse.png" || info.Precision != DefaultUVPrecision {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := c.UVMap(NotFound); !errors.Is(err, InvalidArgument) {
		t.Fatalf("NotFound slot: %v", err)
	}
	if _, err := c.AttribMap(AttribMap2); !errors.Is(err, InvalidArgument) {
		t.Fatalf("empty slot: %v", err)
	}
}

func TestAddMapFailures(t *testing.T) {
	t.Parallel()

	c := New(Export, WithMaxMaps(2))
	if _, err := c.AddUVMap(make([]float32, 8), "uv", ""); !errors.Is(err, InvalidMesh) {
		t.Fatalf("before define: %v", err)
	}

	v, idx := quad()
	if err := c.DefineMesh(v, idx, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := c.AddUVMap(make([]float32, 6), "uv", ""); !errors.Is(err, InvalidMesh) {
		t.Fatalf("short coords: %v", err)
	}
	if _, err := c.AddAttribMap(make([]float32, 8), "c"); !errors.Is(err, InvalidMesh) {
		t.Fatalf("attribute width: %v", err)
	}
	if _, err := c.AddUVMap(make([]float32, 8), "a", ""); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := c.AddUVMap(make([]float32, 8), "a", ""); !errors.Is(err, InvalidArgument) {
		t.Fatalf("duplicate: %v", err)
	}
	if _, err := c.AddUVMap(make([]float32, 8), "", ""); err != nil {
		t.Fatalf("unnamed: %v", err)
	}
	_, err := c.AddUVMap(make([]float32, 8), "b", "")
	if !errors.Is(err, InvalidOperation) || !errors.Is(err, ErrTooManyMaps) {
		t.Fatalf("over limit: %v", err)
	}
	if n, _ := c.Integer(UVMapCount); n != 2 {
		t.Fatalf("uv count: %d", n)
	}
}

func TestMapPrecision(t *testing.T) {
	t.Parallel()

	c := New(Export)
	v, idx := quad()
	if err := c.DefineMesh(v, idx, nil); err != nil {
		t.Fatalf("define: %v", err)
	}
	id, err := c.AddAttribMap(make([]float32, 16), "color")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.SetAttribPrecision(id, 0.5); err != nil {
		t.Fatalf("set precision: %v", err)
	}
	info, _ := c.AttribMap(id)
	if info.Precision != 0.5 {
		t.Fatalf("precision: %g", info.Precision)
	}
	mustCode(t, c.SetAttribPrecision(AttribMap3, 0.5), InvalidArgument)
	mustCode(t, c.SetUVCoordPrecision(UVMap1, 0.5), InvalidArgument)
	mustCode(t, c.SetAttribPrecision(id, -1), InvalidArgument)
}
