package ctm

import (
	"fmt"
	"math"
)

// SetMethod selects the encoding used by Save.
func (c *Context) SetMethod(m Method) error {
	const op = "set method"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if !m.valid() {
		return c.fail(op, InvalidArgument, fmt.Errorf("%w: %d", ErrUnknownMethod, m))
	}
	c.method = m
	return nil
}

// SetCompressionLevel sets the LZMA effort, 0 (fastest) to 9.
// It is ignored by MethodRaw.
func (c *Context) SetCompressionLevel(level int) error {
	const op = "set compression level"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if level < 0 || level > MaxCompressionLevel {
		return c.fail(op, InvalidArgument, fmt.Errorf("%w: %d", ErrBadLevel, level))
	}
	c.level = level
	return nil
}

// SetComment sets the free text stored in the file header.
func (c *Context) SetComment(comment string) error {
	if err := c.begin("set comment", Export); err != nil {
		return err
	}
	c.comment = comment
	return nil
}

// SetVertexPrecision sets the absolute vertex quantization step for MG2.
func (c *Context) SetVertexPrecision(p float32) error {
	const op = "set vertex precision"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if !validPrecision(p) {
		return c.fail(op, InvalidArgument, ErrBadPrecision)
	}
	c.vertexPrecision = p
	return nil
}

// SetVertexPrecisionRel sets the vertex step relative to the average edge
// length of the defined mesh.
func (c *Context) SetVertexPrecisionRel(rel float32) error {
	const op = "set relative vertex precision"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if !validPrecision(rel) {
		return c.fail(op, InvalidArgument, ErrBadPrecision)
	}
	if c.mesh == nil {
		return c.fail(op, InvalidMesh, ErrNoMesh)
	}
	avg := averageEdgeLength(c.mesh)
	p := float32(float64(rel) * avg)
	if !validPrecision(p) {
		return c.fail(op, InvalidMesh, ErrDegenerate)
	}
	c.vertexPrecision = p
	return nil
}

// SetNormalPrecision sets the normal quantization step for MG2.
func (c *Context) SetNormalPrecision(p float32) error {
	const op = "set normal precision"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	if !validPrecision(p) {
		return c.fail(op, InvalidArgument, ErrBadPrecision)
	}
	c.normalPrecision = p
	return nil
}

// SetUVCoordPrecision sets the quantization step of one UV map for MG2.
func (c *Context) SetUVCoordPrecision(id MapID, p float32) error {
	const op = "set uv precision"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	return c.setMapPrecision(op, id, p, true)
}

// SetAttribPrecision sets the quantization step of one attribute map for MG2.
func (c *Context) SetAttribPrecision(id MapID, p float32) error {
	const op = "set attribute precision"
	if err := c.begin(op, Export); err != nil {
		return err
	}
	return c.setMapPrecision(op, id, p, false)
}

func (c *Context) setMapPrecision(op string, id MapID, p float32, uv bool) error {
	if !validPrecision(p) {
		return c.fail(op, InvalidArgument, ErrBadPrecision)
	}
	if c.mesh == nil {
		return c.fail(op, InvalidMesh, ErrNoMesh)
	}
	maps := c.mesh.attribMaps
	if uv {
		maps = c.mesh.uvMaps
	}
	fm, err := mapAt(op, maps, id)
	if err != nil {
		return c.fail(op, InvalidArgument, fmt.Errorf("%w: slot %d", ErrUnknownMap, id))
	}
	fm.precision = p
	return nil
}

func validPrecision(p float32) bool {
	f := float64(p)
	return p > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
