package meshio

import "github.com/samcharles93/meshctm/pkg/ctm"

// MapReport describes one UV or attribute map.
type MapReport struct {
	Name      string  `json:"name,omitempty"`
	FileName  string  `json:"file_name,omitempty"`
	Precision float32 `json:"precision"`
}

// Report describes a loaded CTM file.
type Report struct {
	Method          string      `json:"method"`
	Comment         string      `json:"comment,omitempty"`
	VertexPrecision float32     `json:"vertex_precision,omitempty"`
	NormalPrecision float32     `json:"normal_precision,omitempty"`
	UVMaps          []MapReport `json:"uv_maps"`
	AttribMaps      []MapReport `json:"attrib_maps"`
	Stats           Stats       `json:"stats"`
}

// Describe reports on the mesh held by an Import context. Precisions are
// only set for MG2 files, where they are stored.
func Describe(c *ctm.Context) (Report, error) {
	m, err := FromContext(c)
	if err != nil {
		return Report{}, err
	}
	method, _ := c.Method()
	r := Report{
		Method:     method.String(),
		Comment:    m.Comment,
		UVMaps:     []MapReport{},
		AttribMaps: []MapReport{},
		Stats:      m.Stats(),
	}
	if method == ctm.MethodMG2 {
		r.VertexPrecision, _ = c.Float(ctm.VertexPrecision)
		r.NormalPrecision, _ = c.Float(ctm.NormalPrecision)
	}

	// Stats reflect the first maps only; list every map here.
	r.Stats.HasTexCoords, r.Stats.HasColors = false, false
	n, _ := c.Integer(ctm.UVMapCount)
	for i := 0; i < int(n); i++ {
		info, err := c.UVMap(ctm.UVMap1 + ctm.MapID(i))
		if err != nil {
			return Report{}, err
		}
		r.UVMaps = append(r.UVMaps, MapReport{Name: info.Name, FileName: info.FileName, Precision: info.Precision})
		r.Stats.HasTexCoords = true
	}
	n, _ = c.Integer(ctm.AttribMapCount)
	for i := 0; i < int(n); i++ {
		info, err := c.AttribMap(ctm.AttribMap1 + ctm.MapID(i))
		if err != nil {
			return Report{}, err
		}
		r.AttribMaps = append(r.AttribMaps, MapReport{Name: info.Name, Precision: info.Precision})
		r.Stats.HasColors = true
	}
	return r, nil
}
