package ctm

// MG1 is lossless: triangles are reordered and delta coded, then every array
// is LZMA packed. Vertex order is preserved.

func encodeMG1(s *streamWriter, m *mesh) {
	vc, tc := m.vertexCount(), m.triangleCount()

	indices := append([]uint32(nil), m.indices...)
	rearrangeTriangles(indices)
	makeIndexDeltas(indices)
	s.putTag("INDX")
	s.putPackedUints(indices, tc, 3)

	s.putTag("VERT")
	s.putPackedFloats(m.vertices, vc*3, 1)

	if m.normals != nil {
		s.putTag("NORM")
		s.putPackedFloats(m.normals, vc, 3)
	}

	for _, fm := range m.uvMaps {
		s.putTag("TEXC")
		s.putString(fm.name)
		s.putString(fm.fileName)
		s.putPackedFloats(fm.values, vc, 2)
	}

	for _, fm := range m.attribMaps {
		s.putTag("ATTR")
		s.putString(fm.name)
		s.putPackedFloats(fm.values, vc, 4)
	}
}

func decodeMG1(s *streamReader, h *header) *mesh {
	m := &mesh{}
	vc, tc := h.vertexCount, h.triangleCount

	if !s.expectTag("INDX") {
		return nil
	}
	m.indices = s.readPackedUints(tc, 3)
	if s.err != nil {
		return nil
	}
	restoreIndices(m.indices)

	if !s.expectTag("VERT") {
		return nil
	}
	m.vertices = s.readPackedFloats(vc*3, 1)

	if h.hasNormals {
		if !s.expectTag("NORM") {
			return nil
		}
		m.normals = s.readPackedFloats(vc, 3)
	}

	for i := 0; i < h.uvMapCount; i++ {
		if !s.expectTag("TEXC") {
			return nil
		}
		fm := &floatMap{precision: DefaultUVPrecision}
		fm.name = s.readString()
		fm.fileName = s.readString()
		fm.values = s.readPackedFloats(vc, 2)
		m.uvMaps = append(m.uvMaps, fm)
	}

	for i := 0; i < h.attribMapCount; i++ {
		if !s.expectTag("ATTR") {
			return nil
		}
		fm := &floatMap{precision: DefaultAttribPrecision}
		fm.name = s.readString()
		fm.values = s.readPackedFloats(vc, 4)
		m.attribMaps = append(m.attribMaps, fm)
	}

	if s.err != nil {
		return nil
	}
	return m
}
