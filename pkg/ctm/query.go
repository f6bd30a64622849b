package ctm

import "fmt"

// Integer returns an integer property of the current mesh.
// Queries never change the sticky error.
func (c *Context) Integer(p Property) (uint32, error) {
	const op = "get integer"
	m, err := c.view(op)
	if err != nil {
		return 0, err
	}
	switch p {
	case VertexCount:
		return uint32(m.vertexCount()), nil
	case TriangleCount:
		return uint32(m.triangleCount()), nil
	case HasNormals:
		if m.normals != nil {
			return 1, nil
		}
		return 0, nil
	case UVMapCount:
		return uint32(len(m.uvMaps)), nil
	case AttribMapCount:
		return uint32(len(m.attribMaps)), nil
	case CompressionMethod:
		return uint32(c.method), nil
	case CompressionLevel:
		return uint32(c.level), nil
	}
	return 0, &Error{Op: op, Code: InvalidArgument, Err: fmt.Errorf("%w: %d", ErrUnknownProperty, p)}
}

// Float returns a float property of the current mesh.
func (c *Context) Float(p Property) (float32, error) {
	const op = "get float"
	if _, err := c.view(op); err != nil {
		return 0, err
	}
	switch p {
	case VertexPrecision:
		return c.vertexPrecision, nil
	case NormalPrecision:
		return c.normalPrecision, nil
	}
	return 0, &Error{Op: op, Code: InvalidArgument, Err: fmt.Errorf("%w: %d", ErrUnknownProperty, p)}
}

// Method returns the encoding selected for Save, or the one read by Load.
func (c *Context) Method() (Method, error) {
	if _, err := c.view("get method"); err != nil {
		return 0, err
	}
	return c.method, nil
}

// Comment returns the file comment.
func (c *Context) Comment() (string, error) {
	if _, err := c.view("get comment"); err != nil {
		return "", err
	}
	return c.comment, nil
}

// Vertices returns a borrowed view of the vertex positions, 3 floats each.
func (c *Context) Vertices() ([]float32, error) {
	m, err := c.view("get vertices")
	if err != nil {
		return nil, err
	}
	return m.vertices, nil
}

// Indices returns a borrowed view of the triangle indices, 3 per triangle.
func (c *Context) Indices() ([]uint32, error) {
	m, err := c.view("get indices")
	if err != nil {
		return nil, err
	}
	return m.indices, nil
}

// Normals returns a borrowed view of the normals, or nil if the mesh has none.
func (c *Context) Normals() ([]float32, error) {
	m, err := c.view("get normals")
	if err != nil {
		return nil, err
	}
	return m.normals, nil
}
