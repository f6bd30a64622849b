package meshio

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// UpAxis names the axis that points up in the source mesh.
type UpAxis int

const (
	UpZ UpAxis = iota
	UpX
	UpY
	UpNegX
	UpNegY
	UpNegZ
)

var upAxisNames = map[UpAxis]string{
	UpX: "X", UpY: "Y", UpZ: "Z", UpNegX: "-X", UpNegY: "-Y", UpNegZ: "-Z",
}

func (a UpAxis) String() string {
	if s, ok := upAxisNames[a]; ok {
		return s
	}
	return fmt.Sprintf("UpAxis(%d)", int(a))
}

func ParseUpAxis(s string) (UpAxis, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for a, name := range upAxisNames {
		if name == want {
			return a, nil
		}
	}
	return 0, fmt.Errorf("meshio: invalid up axis %q", s)
}

// basis returns the images of the unit X, Y and Z vectors. Every basis is
// a rotation, so it applies to normals unchanged.
func (a UpAxis) basis() (x, y, z [3]float32) {
	switch a {
	case UpX:
		return [3]float32{0, 0, 1}, [3]float32{0, 1, 0}, [3]float32{-1, 0, 0}
	case UpY:
		return [3]float32{1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, -1, 0}
	case UpNegX:
		return [3]float32{0, 0, -1}, [3]float32{0, 1, 0}, [3]float32{1, 0, 0}
	case UpNegY:
		return [3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}
	case UpNegZ:
		return [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}, [3]float32{0, 0, -1}
	default:
		return [3]float32{1, 0, 0}, [3]float32{0, 1, 0}, [3]float32{0, 0, 1}
	}
}

// ProcessOptions are the geometry edits applied between import and export.
type ProcessOptions struct {
	Scale       float32
	UpAxis      UpAxis
	Flip        bool
	CalcNormals bool
	NoNormals   bool
}

// Process edits m in place: scale, then up axis rotation, then triangle
// flipping, then normal calculation when requested and none exist.
func Process(m *Mesh, opts ProcessOptions) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale != 1 || opts.UpAxis != UpZ {
		bx, by, bz := opts.UpAxis.basis()
		transform(m.Vertices, bx, by, bz, scale)
		transform(m.Normals, bx, by, bz, 1)
	}
	if opts.Flip {
		FlipTriangles(m.Indices)
	}
	if !opts.NoNormals && opts.CalcNormals && !m.HasNormals() {
		m.Normals = CalculateNormals(m.Vertices, m.Indices)
	}
}

func transform(v []float32, bx, by, bz [3]float32, s float32) {
	for i := 0; i+2 < len(v); i += 3 {
		x, y, z := v[i]*s, v[i+1]*s, v[i+2]*s
		for k := 0; k < 3; k++ {
			v[i+k] = bx[k]*x + by[k]*y + bz[k]*z
		}
	}
}

// FlipTriangles reverses the winding of every triangle.
func FlipTriangles(indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i], indices[i+1] = indices[i+1], indices[i]
	}
}

// CalculateNormals returns smooth per-vertex normals: the normalized sum of
// the unit normals of the triangles sharing each vertex. Vertices with no
// usable triangle get the zero vector.
func CalculateNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t]*3, indices[t+1]*3, indices[t+2]*3
		e1 := sub3(vertices[b:b+3], vertices[a:a+3])
		e2 := sub3(vertices[c:c+3], vertices[a:a+3])
		n := normalize(cross(e1, e2))
		for _, v := range [3]uint32{a, b, c} {
			for k := 0; k < 3; k++ {
				normals[int(v)+k] += n[k]
			}
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		n := normalize([3]float32{normals[i], normals[i+1], normals[i+2]})
		copy(normals[i:i+3], n[:])
	}
	return normals
}

func sub3[T constraints.Float](a, b []T) [3]T {
	return [3]T{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross[T constraints.Float](a, b [3]T) [3]T {
	return [3]T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize[T constraints.Float](v [3]T) [3]T {
	l := T(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 1e-20 {
		return [3]T{}
	}
	return [3]T{v[0] / l, v[1] / l, v[2] / l}
}
