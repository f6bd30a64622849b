package ctm

import (
	"cmp"
	"slices"
)

// rearrangeTriangles rotates each triangle so its smallest index comes first
// (winding is preserved) and sorts triangles by their first two indices.
func rearrangeTriangles(indices []uint32) {
	tris := make([][3]uint32, len(indices)/3)
	for i := range tris {
		a, b, c := indices[i*3], indices[i*3+1], indices[i*3+2]
		switch {
		case b < a && b < c:
			tris[i] = [3]uint32{b, c, a}
		case c < a && c < b:
			tris[i] = [3]uint32{c, a, b}
		default:
			tris[i] = [3]uint32{a, b, c}
		}
	}
	slices.SortFunc(tris, func(x, y [3]uint32) int {
		if r := cmp.Compare(x[0], y[0]); r != 0 {
			return r
		}
		if r := cmp.Compare(x[1], y[1]); r != 0 {
			return r
		}
		return cmp.Compare(x[2], y[2])
	})
	for i, t := range tris {
		copy(indices[i*3:], t[:])
	}
}

// makeIndexDeltas replaces sorted triangles with differences, in place.
// Walking backwards keeps the previous triangle intact while it is needed.
func makeIndexDeltas(indices []uint32) {
	for i := len(indices)/3 - 1; i >= 0; i-- {
		t := indices[i*3:]
		if i >= 1 && t[0] == indices[(i-1)*3] {
			t[1] -= indices[(i-1)*3+1]
		} else {
			t[1] -= t[0]
		}
		t[2] -= t[0]
		if i >= 1 {
			t[0] -= indices[(i-1)*3]
		}
	}
}

// restoreIndices is the inverse of makeIndexDeltas.
func restoreIndices(indices []uint32) {
	for i := 0; i < len(indices)/3; i++ {
		t := indices[i*3:]
		if i >= 1 {
			t[0] += indices[(i-1)*3]
		}
		t[2] += t[0]
		if i >= 1 && t[0] == indices[(i-1)*3] {
			t[1] += indices[(i-1)*3+1]
		} else {
			t[1] += t[0]
		}
	}
}
