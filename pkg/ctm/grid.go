package ctm

import (
	"cmp"
	"math"
	"slices"
)

// grid is the space subdivision MG2 uses to localize vertex coordinates.
type grid struct {
	min  [3]float32
	max  [3]float32
	size [3]float32
	div  [3]uint32
}

// setupGrid fits a grid to the bounding box. cbrt(100*n) boxes are spread
// over the three axes in proportion to their extents. The heuristic only
// affects compression ratio; the divisions are stored in the stream.
func setupGrid(vertices []float32) grid {
	var g grid
	copy(g.min[:], vertices[:3])
	copy(g.max[:], vertices[:3])
	for i := 3; i < len(vertices); i += 3 {
		for k := 0; k < 3; k++ {
			v := vertices[i+k]
			if v < g.min[k] {
				g.min[k] = v
			} else if v > g.max[k] {
				g.max[k] = v
			}
		}
	}

	var factor [3]float32
	for k := range factor {
		factor[k] = g.max[k] - g.min[k]
	}
	sum := factor[0] + factor[1] + factor[2]
	if sum > 1e-30 {
		inv := 1 / sum
		wanted := float32(math.Cbrt(float64(float32(100) * float32(len(vertices)/3))))
		for k := range factor {
			d := math.Ceil(float64(float32(wanted * float32(factor[k]*inv))))
			g.div[k] = uint32(max(d, 1))
		}
	} else {
		g.div = [3]uint32{4, 4, 4}
	}
	g.computeSize()
	return g
}

func (g *grid) computeSize() {
	for k := range g.size {
		g.size[k] = (g.max[k] - g.min[k]) / float32(g.div[k])
	}
}

func (g *grid) cells() uint64 {
	return uint64(g.div[0]) * uint64(g.div[1]) * uint64(g.div[2])
}

// pointIndex returns the box containing p. Points on the upper boundary are
// clamped into the last box; a zero extent axis always maps to box 0.
func (g *grid) pointIndex(p []float32) uint32 {
	var idx [3]uint32
	for k := 0; k < 3; k++ {
		if g.size[k] <= 0 {
			continue
		}
		f := math.Floor(float64(float32((p[k] - g.min[k]) / g.size[k])))
		switch {
		case !(f > 0):
			idx[k] = 0
		case f >= float64(g.div[k]):
			idx[k] = g.div[k] - 1
		default:
			idx[k] = uint32(f)
		}
	}
	return idx[0] + g.div[0]*(idx[1]+g.div[1]*idx[2])
}

// origin returns the minimum corner of box idx.
func (g *grid) origin(idx uint32) [3]float32 {
	zdiv := uint64(g.div[0]) * uint64(g.div[1])
	ydiv := uint64(g.div[0])
	rest := uint64(idx)
	var cell [3]uint64
	cell[2] = rest / zdiv
	rest -= cell[2] * zdiv
	cell[1] = rest / ydiv
	rest -= cell[1] * ydiv
	cell[0] = rest

	var o [3]float32
	for k := range o {
		o[k] = float32(float32(cell[k])*g.size[k]) + g.min[k]
	}
	return o
}

type sortVertex struct {
	x         float32
	gridIndex uint32
	original  uint32
}

// sortVertices orders vertices by grid box, then by x.
func sortVertices(vertices []float32, g *grid) []sortVertex {
	n := len(vertices) / 3
	sv := make([]sortVertex, n)
	for i := range sv {
		sv[i] = sortVertex{
			x:         vertices[i*3],
			gridIndex: g.pointIndex(vertices[i*3 : i*3+3]),
			original:  uint32(i),
		}
	}
	slices.SortFunc(sv, func(a, b sortVertex) int {
		if r := cmp.Compare(a.gridIndex, b.gridIndex); r != 0 {
			return r
		}
		if r := cmp.Compare(a.x, b.x); r != 0 {
			return r
		}
		return cmp.Compare(a.original, b.original)
	})
	return sv
}

// reindex maps original indices into the sorted vertex order.
func reindex(indices []uint32, sv []sortVertex) []uint32 {
	lut := make([]uint32, len(sv))
	for i, v := range sv {
		lut[v.original] = uint32(i)
	}
	out := make([]uint32, len(indices))
	for i, idx := range indices {
		out[i] = lut[idx]
	}
	return out
}
