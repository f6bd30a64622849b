package ctm

import (
	"fmt"
	"math"
)

// DefineMesh sets the mesh of an export context.
//
// vertices holds 3 floats per vertex and indices 3 vertex indices per
// triangle. normals is optional; when non-nil it must have the same length
// as vertices. The data is copied. Any previously defined mesh, together
// with its UV and attribute maps, is replaced. On failure the context is
// left exactly as it was.
func (c *Context) DefineMesh(vertices []float32, indices []uint32, normals []float32) error {
	const op = "define mesh"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if err := validateGeometry(vertices, indices, normals); err != nil {
		return c.fail(op, InvalidMesh, err)
	}

	m := &mesh{
		vertices: append([]float32(nil), vertices...),
		indices:  append([]uint32(nil), indices...),
	}
	if normals != nil {
		m.normals = append([]float32(nil), normals...)
	}
	c.mesh = m
	return nil
}

func validateGeometry(vertices []float32, indices []uint32, normals []float32) error {
	if len(vertices)%3 != 0 {
		return fmt.Errorf("%w: %d vertex floats is not a multiple of 3", ErrLengthMismatch, len(vertices))
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrLengthMismatch, len(indices))
	}
	vcount := len(vertices) / 3
	if vcount < 3 {
		return ErrTooFewVertices
	}
	if len(indices) == 0 {
		return ErrNoTriangles
	}
	if normals != nil && len(normals) != len(vertices) {
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrLengthMismatch, len(normals), vcount)
	}
	if err := checkIndices(indices, vcount); err != nil {
		return err
	}
	if !allFinite(vertices) {
		return fmt.Errorf("%w: vertices", ErrNotFinite)
	}
	if !allFinite(normals) {
		return fmt.Errorf("%w: normals", ErrNotFinite)
	}
	return nil
}

func checkIndices(indices []uint32, vcount int) error {
	for i, idx := range indices {
		if uint64(idx) >= uint64(vcount) {
			return fmt.Errorf("%w: index %d at position %d, vertex count %d", ErrIndexOutOfRange, idx, i, vcount)
		}
	}
	return nil
}

func allFinite(values []float32) bool {
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// checkIntegrity validates a decoded mesh before it is published.
func checkIntegrity(m *mesh) error {
	if m.vertexCount() < 3 {
		return ErrTooFewVertices
	}
	if m.triangleCount() < 1 {
		return ErrNoTriangles
	}
	if err := checkIndices(m.indices, m.vertexCount()); err != nil {
		return err
	}
	if !allFinite(m.vertices) || !allFinite(m.normals) {
		return ErrNotFinite
	}
	for _, fm := range m.uvMaps {
		if !allFinite(fm.values) {
			return fmt.Errorf("%w: uv map %q", ErrNotFinite, fm.name)
		}
	}
	for _, fm := range m.attribMaps {
		if !allFinite(fm.values) {
			return fmt.Errorf("%w: attribute map %q", ErrNotFinite, fm.name)
		}
	}
	return nil
}

// averageEdgeLength sums every half-edge, so interior edges of a closed
// mesh count twice.
func averageEdgeLength(m *mesh) float64 {
	var total float64
	var edges int
	for t := 0; t < m.triangleCount(); t++ {
		tri := m.indices[t*3 : t*3+3]
		for j := 0; j < 3; j++ {
			a := tri[j] * 3
			b := tri[(j+1)%3] * 3
			dx := float64(m.vertices[b] - m.vertices[a])
			dy := float64(m.vertices[b+1] - m.vertices[a+1])
			dz := float64(m.vertices[b+2] - m.vertices[a+2])
			total += math.Sqrt(dx*dx + dy*dy + dz*dz)
			edges++
		}
	}
	if edges == 0 {
		return 0
	}
	return total / float64(edges)
}
