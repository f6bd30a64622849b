package ctm

// RAW payload: every array is written verbatim in little-endian order.

func encodeRaw(s *streamWriter, m *mesh) {
	s.putTag("INDX")
	s.putUint32s(m.indices)

	s.putTag("VERT")
	s.putFloat32s(m.vertices)

	if m.normals != nil {
		s.putTag("NORM")
		s.putFloat32s(m.normals)
	}

	for _, fm := range m.uvMaps {
		s.putTag("TEXC")
		s.putString(fm.name)
		s.putString(fm.fileName)
		s.putFloat32s(fm.values)
	}

	for _, fm := range m.attribMaps {
		s.putTag("ATTR")
		s.putString(fm.name)
		s.putFloat32s(fm.values)
	}
}

func decodeRaw(s *streamReader, h *header) *mesh {
	m := &mesh{}
	vc, tc := h.vertexCount, h.triangleCount

	if !s.expectTag("INDX") {
		return nil
	}
	m.indices = s.readUint32s(tc * 3)

	if !s.expectTag("VERT") {
		return nil
	}
	m.vertices = s.readFloat32s(vc * 3)

	if h.hasNormals {
		if !s.expectTag("NORM") {
			return nil
		}
		m.normals = s.readFloat32s(vc * 3)
	}

	for i := 0; i < h.uvMapCount; i++ {
		if !s.expectTag("TEXC") {
			return nil
		}
		fm := &floatMap{precision: DefaultUVPrecision}
		fm.name = s.readString()
		fm.fileName = s.readString()
		fm.values = s.readFloat32s(vc * 2)
		m.uvMaps = append(m.uvMaps, fm)
	}

	for i := 0; i < h.attribMapCount; i++ {
		if !s.expectTag("ATTR") {
			return nil
		}
		fm := &floatMap{precision: DefaultAttribPrecision}
		fm.name = s.readString()
		fm.values = s.readFloat32s(vc * 4)
		m.attribMaps = append(m.attribMaps, fm)
	}

	if s.err != nil {
		return nil
	}
	return m
}
