package ctm

import "fmt"

// header is the fixed part of every stream, in file order.
type header struct {
	method         Method
	vertexCount    int
	triangleCount  int
	uvMapCount     int
	attribMapCount int
	hasNormals     bool
	comment        string
}

func headerFor(m *mesh, method Method, comment string) header {
	return header{
		method:         method,
		vertexCount:    m.vertexCount(),
		triangleCount:  m.triangleCount(),
		uvMapCount:     len(m.uvMaps),
		attribMapCount: len(m.attribMaps),
		hasNormals:     m.normals != nil,
		comment:        comment,
	}
}

func writeHeader(s *streamWriter, h *header) {
	var flags uint32
	if h.hasNormals {
		flags |= flagHasNormals
	}
	s.putTag(Magic)
	s.putUint32(FormatVersion)
	s.putTag(h.method.tag())
	s.putUint32(uint32(h.vertexCount))
	s.putUint32(uint32(h.triangleCount))
	s.putUint32(uint32(h.uvMapCount))
	s.putUint32(uint32(h.attribMapCount))
	s.putUint32(flags)
	s.putString(h.comment)
}

// readHeader validates the header in stream order so the first defect found
// decides the error code.
func readHeader(s *streamReader, opts Options) (header, error) {
	var h header

	magic := s.readTag()
	if s.err != nil {
		return h, s.err
	}
	if magic != Magic {
		return h, codedf(BadFormat, ErrInvalidMagic, "%q", magic)
	}

	version := s.readUint32()
	if s.err != nil {
		return h, s.err
	}
	if version != FormatVersion {
		return h, codedf(UnsupportedVersion, ErrUnsupportedVer, "version %d, want %d", version, FormatVersion)
	}

	tag := s.readTag()
	if s.err != nil {
		return h, s.err
	}
	method, ok := methodFromTag(tag)
	if !ok {
		return h, codedf(BadFormat, ErrUnknownMethod, "%q", tag)
	}
	h.method = method

	vc := s.readUint32()
	tc := s.readUint32()
	uvc := s.readUint32()
	ac := s.readUint32()
	flags := s.readUint32()
	if s.err != nil {
		return h, s.err
	}
	switch {
	case vc < 3:
		return h, coded(BadFormat, fmt.Errorf("%w: header declares %d", ErrTooFewVertices, vc))
	case tc == 0:
		return h, coded(BadFormat, ErrNoTriangles)
	case uint64(uvc) > uint64(opts.MaxMaps) || uint64(ac) > uint64(opts.MaxMaps):
		return h, codedf(BadFormat, ErrTooManyMaps, "%d uv, %d attribute maps", uvc, ac)
	case uint64(vc) > uint64(opts.MaxElements) || uint64(tc) > uint64(opts.MaxElements):
		return h, codedf(OutOfMemory, ErrTooLarge, "%d vertices, %d triangles", vc, tc)
	}

	h.vertexCount = int(vc)
	h.triangleCount = int(tc)
	h.uvMapCount = int(uvc)
	h.attribMapCount = int(ac)
	h.hasNormals = flags&flagHasNormals != 0
	h.comment = s.readString()
	if s.err != nil {
		return h, s.err
	}
	return h, nil
}
