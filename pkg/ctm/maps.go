package ctm

import "fmt"

// MapInfo describes one UV or attribute map. Values is a borrowed view owned
// by the context; it must not be modified or retained past Free.
type MapInfo struct {
	ID        MapID
	Name      string
	FileName  string
	Precision float32
	Values    []float32
}

// AddUVMap appends a UV map with 2 floats per vertex and returns its slot.
// name and fileName may be empty; a non-empty name must be unique among the
// mesh's UV maps.
func (c *Context) AddUVMap(coords []float32, name, fileName string) (MapID, error) {
	const op = "add uv map"
	if err := c.begin(op, Export); err != nil {
		return NotFound, err
	}
	return c.addMap(op, coords, 2, name, fileName, DefaultUVPrecision, true)
}

// AddAttribMap appends an attribute map with 4 floats per vertex and returns
// its slot.
func (c *Context) AddAttribMap(values []float32, name string) (MapID, error) {
	const op = "add attribute map"
	if err := c.begin(op, Export); err != nil {
		return NotFound, err
	}
	return c.addMap(op, values, 4, name, "", DefaultAttribPrecision, false)
}

func (c *Context) addMap(op string, values []float32, width int, name, fileName string, precision float32, uv bool) (MapID, error) {
	m := c.mesh
	if m == nil || m.vertexCount() == 0 {
		return NotFound, c.fail(op, InvalidMesh, ErrNoMesh)
	}
	if len(values) != m.vertexCount()*width {
		return NotFound, c.fail(op, InvalidMesh,
			fmt.Errorf("%w: %d floats, want %d", ErrLengthMismatch, len(values), m.vertexCount()*width))
	}
	if !allFinite(values) {
		return NotFound, c.fail(op, InvalidMesh, ErrNotFinite)
	}

	maps := m.attribMaps
	if uv {
		maps = m.uvMaps
	}
	if len(maps) >= c.opts.MaxMaps {
		return NotFound, c.fail(op, InvalidOperation, fmt.Errorf("%w: %d", ErrTooManyMaps, c.opts.MaxMaps))
	}
	if name != "" && findMap(maps, name) != NotFound {
		return NotFound, c.fail(op, InvalidArgument, fmt.Errorf("%w: %q", ErrDuplicateName, name))
	}

	fm := &floatMap{
		name:      name,
		fileName:  fileName,
		precision: precision,
		values:    append([]float32(nil), values...),
	}
	if uv {
		m.uvMaps = append(m.uvMaps, fm)
		return MapID(len(m.uvMaps)), nil
	}
	m.attribMaps = append(m.attribMaps, fm)
	return MapID(len(m.attribMaps)), nil
}

// NamedUVMap returns the slot of the UV map with the given name, or NotFound.
func (c *Context) NamedUVMap(name string) MapID {
	m, err := c.view("named uv map")
	if err != nil {
		return NotFound
	}
	return findMap(m.uvMaps, name)
}

// NamedAttribMap returns the slot of the attribute map with the given name,
// or NotFound.
func (c *Context) NamedAttribMap(name string) MapID {
	m, err := c.view("named attribute map")
	if err != nil {
		return NotFound
	}
	return findMap(m.attribMaps, name)
}

func findMap(maps []*floatMap, name string) MapID {
	for i, fm := range maps {
		if fm.name == name {
			return MapID(i + 1)
		}
	}
	return NotFound
}

// UVMap returns the UV map in slot id.
func (c *Context) UVMap(id MapID) (MapInfo, error) {
	m, err := c.view("uv map")
	if err != nil {
		return MapInfo{}, err
	}
	fm, err := mapAt("uv map", m.uvMaps, id)
	if err != nil {
		return MapInfo{}, err
	}
	return fm.info(id), nil
}

// AttribMap returns the attribute map in slot id.
func (c *Context) AttribMap(id MapID) (MapInfo, error) {
	m, err := c.view("attribute map")
	if err != nil {
		return MapInfo{}, err
	}
	fm, err := mapAt("attribute map", m.attribMaps, id)
	if err != nil {
		return MapInfo{}, err
	}
	return fm.info(id), nil
}

func mapAt(op string, maps []*floatMap, id MapID) (*floatMap, error) {
	if id < 1 || int(id) > len(maps) {
		return nil, &Error{Op: op, Code: InvalidArgument, Err: fmt.Errorf("%w: slot %d", ErrUnknownMap, id)}
	}
	return maps[id-1], nil
}

func (fm *floatMap) info(id MapID) MapInfo {
	return MapInfo{
		ID:        id,
		Name:      fm.name,
		FileName:  fm.fileName,
		Precision: fm.precision,
		Values:    fm.values,
	}
}
