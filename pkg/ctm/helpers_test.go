package ctm

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// quad is a unit square in the XY plane split into two triangles.
func quad() ([]float32, []uint32) {
	return []float32{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
		}, []uint32{
			0, 1, 2,
			0, 2, 3,
		}
}

// sphere builds a UV sphere with per-vertex normals, UVs and colours.
func sphere(rings, segments int) (vertices []float32, indices []uint32, normals, uvs, colors []float32) {
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			x := math.Sin(phi) * math.Cos(theta)
			y := math.Cos(phi)
			z := math.Sin(phi) * math.Sin(theta)
			vertices = append(vertices, float32(2.5*x), float32(2.5*y), float32(2.5*z))
			normals = append(normals, float32(x), float32(y), float32(z))
			uvs = append(uvs, float32(s)/float32(segments), float32(r)/float32(rings))
			colors = append(colors, float32(x*0.5+0.5), float32(y*0.5+0.5), float32(z*0.5+0.5), 1)
		}
	}
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return vertices, indices, normals, uvs, colors
}

func mustCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %s, got %v", want, err)
	}
}

func saveBytes(t *testing.T, c *Context) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := c.SaveTo(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	return buf.Bytes()
}

func loadBytes(t *testing.T, data []byte) *Context {
	t.Helper()
	c := New(Import)
	if err := c.LoadFrom(bytes.NewReader(data)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func canonicalTriangles(indices []uint32) map[[3]uint32]int {
	out := make(map[[3]uint32]int)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		switch {
		case b < a && b < c:
			a, b, c = b, c, a
		case c < a && c < b:
			a, b, c = c, a, b
		}
		out[[3]uint32{a, b, c}]++
	}
	return out
}
