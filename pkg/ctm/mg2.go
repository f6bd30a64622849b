package ctm

import "math"

// MG2 quantizes every attribute to fixed point with a configured step and
// predicts values from their neighbours before LZMA packing. Vertices are
// reordered by grid box, so loaded meshes have a different vertex order
// (and correspondingly remapped indices) than the saved one.

// quantize returns floor(v*scale + 0.5). The product is rounded to float32
// before the addition so the result does not depend on whether the
// platform fuses multiply-add.
func quantize(v, scale float32) (int32, bool) {
	q := float32(v * scale)
	r := math.Floor(float64(q) + 0.5)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, false
	}
	return int32(r), true
}

func encodeMG2(s *streamWriter, m *mesh, vertexPrecision, normalPrecision float32) {
	vc, tc := m.vertexCount(), m.triangleCount()
	g := setupGrid(m.vertices)

	s.putTag("MG2H")
	s.putFloat32(vertexPrecision)
	s.putFloat32(normalPrecision)
	for k := 0; k < 3; k++ {
		s.putFloat32(g.min[k])
	}
	for k := 0; k < 3; k++ {
		s.putFloat32(g.max[k])
	}
	for k := 0; k < 3; k++ {
		s.putUint32(g.div[k])
	}

	sv := sortVertices(m.vertices, &g)
	intVertices, err := makeVertexDeltas(m.vertices, sv, &g, vertexPrecision)
	if err != nil {
		s.setErr(err)
		return
	}
	s.putTag("VERT")
	s.putPackedInts(intVertices, vc, 3, false)

	gridIndices := make([]uint32, vc)
	for i := range sv {
		gridIndices[i] = sv[i].gridIndex
		if i > 0 {
			gridIndices[i] -= sv[i-1].gridIndex
		}
	}
	s.putTag("GIDX")
	s.putPackedUints(gridIndices, vc, 1)

	// Normals are predicted from the geometry the decoder will see, not the
	// original one.
	absolute := make([]uint32, vc)
	for i := range sv {
		absolute[i] = sv[i].gridIndex
	}
	restored := restoreVertices(intVertices, absolute, &g, vertexPrecision)

	indices := reindex(m.indices, sv)
	rearrangeTriangles(indices)
	deltas := append([]uint32(nil), indices...)
	makeIndexDeltas(deltas)
	s.putTag("INDX")
	s.putPackedUints(deltas, tc, 3)

	if m.normals != nil {
		intNormals, ok := makeNormalDeltas(m.normals, restored, indices, sv, normalPrecision)
		if !ok {
			s.setErr(codedf(InvalidArgument, ErrPrecisionRange, "normal precision %g", normalPrecision))
			return
		}
		s.putTag("NORM")
		s.putPackedInts(intNormals, vc, 3, false)
	}

	for _, fm := range m.uvMaps {
		ints, ok := makeMapDeltas(fm, sv, 2)
		if !ok {
			s.setErr(codedf(InvalidArgument, ErrPrecisionRange, "uv map %q precision %g", fm.name, fm.precision))
			return
		}
		s.putTag("TEXC")
		s.putString(fm.name)
		s.putString(fm.fileName)
		s.putFloat32(fm.precision)
		s.putPackedInts(ints, vc, 2, true)
	}

	for _, fm := range m.attribMaps {
		ints, ok := makeMapDeltas(fm, sv, 4)
		if !ok {
			s.setErr(codedf(InvalidArgument, ErrPrecisionRange, "attribute map %q precision %g", fm.name, fm.precision))
			return
		}
		s.putTag("ATTR")
		s.putString(fm.name)
		s.putFloat32(fm.precision)
		s.putPackedInts(ints, vc, 4, true)
	}
}

// makeVertexDeltas stores each sorted vertex relative to its grid box
// origin. x is sorted within a box, so it is also delta coded against the
// previous vertex of the same box.
func makeVertexDeltas(vertices []float32, sv []sortVertex, g *grid, precision float32) ([]int32, error) {
	scale := 1 / precision
	out := make([]int32, len(sv)*3)
	prevGrid := uint32(0x7fffffff)
	var prevDeltaX int32
	for i, v := range sv {
		o := g.origin(v.gridIndex)
		p := vertices[v.original*3 : v.original*3+3]

		var q [3]int32
		for k := 0; k < 3; k++ {
			var ok bool
			q[k], ok = quantize(p[k]-o[k], scale)
			if !ok {
				return nil, codedf(InvalidArgument, ErrPrecisionRange, "vertex precision %g", precision)
			}
		}
		if v.gridIndex == prevGrid {
			out[i*3] = q[0] - prevDeltaX
		} else {
			out[i*3] = q[0]
		}
		out[i*3+1] = q[1]
		out[i*3+2] = q[2]

		prevGrid = v.gridIndex
		prevDeltaX = q[0]
	}
	return out, nil
}

func restoreVertices(ints []int32, gridIndices []uint32, g *grid, precision float32) []float32 {
	out := make([]float32, len(gridIndices)*3)
	prevGrid := uint32(0x7fffffff)
	var prevDeltaX int32
	for i, gi := range gridIndices {
		o := g.origin(gi)
		dx := ints[i*3]
		if gi == prevGrid {
			dx += prevDeltaX
		}
		out[i*3] = float32(precision*float32(dx)) + o[0]
		out[i*3+1] = float32(precision*float32(ints[i*3+1])) + o[1]
		out[i*3+2] = float32(precision*float32(ints[i*3+2])) + o[2]

		prevGrid = gi
		prevDeltaX = dx
	}
	return out
}

// makeMapDeltas quantizes a UV or attribute map in sorted vertex order and
// codes each component as the difference to the previous vertex.
func makeMapDeltas(fm *floatMap, sv []sortVertex, width int) ([]int32, bool) {
	scale := 1 / fm.precision
	out := make([]int32, len(sv)*width)
	prev := make([]int32, width)
	for i, v := range sv {
		for j := 0; j < width; j++ {
			q, ok := quantize(fm.values[int(v.original)*width+j], scale)
			if !ok {
				return nil, false
			}
			out[i*width+j] = q - prev[j]
			prev[j] = q
		}
	}
	return out, true
}

func restoreMap(ints []int32, width int, precision float32) []float32 {
	out := make([]float32, len(ints))
	prev := make([]int32, width)
	for i := 0; i < len(ints)/width; i++ {
		for j := 0; j < width; j++ {
			v := ints[i*width+j] + prev[j]
			out[i*width+j] = float32(v) * precision
			prev[j] = v
		}
	}
	return out
}

// decodeMG2 returns the mesh and the vertex and normal precisions stored in
// the MG2 header.
func decodeMG2(s *streamReader, h *header) (*mesh, float32, float32) {
	vc, tc := h.vertexCount, h.triangleCount

	if !s.expectTag("MG2H") {
		return nil, 0, 0
	}
	vertexPrecision := s.readFloat32()
	normalPrecision := s.readFloat32()
	var g grid
	for k := 0; k < 3; k++ {
		g.min[k] = s.readFloat32()
	}
	for k := 0; k < 3; k++ {
		g.max[k] = s.readFloat32()
	}
	for k := 0; k < 3; k++ {
		g.div[k] = s.readUint32()
	}
	if s.err != nil {
		return nil, 0, 0
	}
	if err := checkMG2Header(vertexPrecision, normalPrecision, &g); err != nil {
		s.setErr(err)
		return nil, 0, 0
	}
	g.computeSize()

	if !s.expectTag("VERT") {
		return nil, 0, 0
	}
	intVertices := s.readPackedInts(vc, 3, false)

	if !s.expectTag("GIDX") {
		return nil, 0, 0
	}
	gridIndices := s.readPackedUints(vc, 1)
	if s.err != nil {
		return nil, 0, 0
	}
	cells := g.cells()
	for i := range gridIndices {
		if i > 0 {
			gridIndices[i] += gridIndices[i-1]
		}
		if uint64(gridIndices[i]) >= cells {
			s.setErr(codedf(BadFormat, ErrIndexOutOfRange, "grid index %d of %d boxes", gridIndices[i], cells))
			return nil, 0, 0
		}
	}

	m := &mesh{}
	m.vertices = restoreVertices(intVertices, gridIndices, &g, vertexPrecision)

	if !s.expectTag("INDX") {
		return nil, 0, 0
	}
	m.indices = s.readPackedUints(tc, 3)
	if s.err != nil {
		return nil, 0, 0
	}
	restoreIndices(m.indices)
	// Smooth normals index the vertex array, so bounds must hold first.
	if err := checkIndices(m.indices, vc); err != nil {
		s.setErr(coded(BadFormat, err))
		return nil, 0, 0
	}

	if h.hasNormals {
		if !s.expectTag("NORM") {
			return nil, 0, 0
		}
		intNormals := s.readPackedInts(vc, 3, false)
		if s.err != nil {
			return nil, 0, 0
		}
		m.normals = restoreNormals(intNormals, m.vertices, m.indices, normalPrecision)
	}

	for i := 0; i < h.uvMapCount; i++ {
		if !s.expectTag("TEXC") {
			return nil, 0, 0
		}
		fm := &floatMap{}
		fm.name = s.readString()
		fm.fileName = s.readString()
		fm.precision = s.readFloat32()
		if s.err == nil && !validPrecision(fm.precision) {
			s.setErr(codedf(BadFormat, ErrBadPrecision, "uv map %q", fm.name))
		}
		ints := s.readPackedInts(vc, 2, true)
		if s.err != nil {
			return nil, 0, 0
		}
		fm.values = restoreMap(ints, 2, fm.precision)
		m.uvMaps = append(m.uvMaps, fm)
	}

	for i := 0; i < h.attribMapCount; i++ {
		if !s.expectTag("ATTR") {
			return nil, 0, 0
		}
		fm := &floatMap{}
		fm.name = s.readString()
		fm.precision = s.readFloat32()
		if s.err == nil && !validPrecision(fm.precision) {
			s.setErr(codedf(BadFormat, ErrBadPrecision, "attribute map %q", fm.name))
		}
		ints := s.readPackedInts(vc, 4, true)
		if s.err != nil {
			return nil, 0, 0
		}
		fm.values = restoreMap(ints, 4, fm.precision)
		m.attribMaps = append(m.attribMaps, fm)
	}

	return m, vertexPrecision, normalPrecision
}

func checkMG2Header(vertexPrecision, normalPrecision float32, g *grid) error {
	if !validPrecision(vertexPrecision) {
		return codedf(BadFormat, ErrBadPrecision, "vertex precision %g", vertexPrecision)
	}
	if !validPrecision(normalPrecision) {
		return codedf(BadFormat, ErrBadPrecision, "normal precision %g", normalPrecision)
	}
	for k := 0; k < 3; k++ {
		if !(g.max[k] >= g.min[k]) || !allFinite([]float32{g.min[k], g.max[k]}) {
			return codedf(BadFormat, ErrBadHeader, "grid bounds on axis %d", k)
		}
		if g.div[k] < 1 {
			return codedf(BadFormat, ErrBadHeader, "grid division %d on axis %d", g.div[k], k)
		}
	}
	return nil
}
