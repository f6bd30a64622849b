// Package ctm implements the OpenCTM mesh container format.
//
// A Context owns one triangle mesh for one round trip: either it is created
// for Export, the mesh is defined and then saved, or it is created for
// Import and a file is loaded and queried. Three encodings are supported:
// RAW (flat arrays), MG1 (lossless, LZMA packed) and MG2 (fixed point
// quantization with geometric prediction, LZMA packed).
package ctm

import "strings"

// Format constants must never change.
const (
	// Magic is the file magic for all OpenCTM files.
	Magic = "OCTM"

	// FormatVersion is the only stream version this package reads and writes.
	FormatVersion uint32 = 5

	// flagHasNormals is bit 0 of the header flags word.
	flagHasNormals uint32 = 1 << 0
)

// Mode selects the direction of a Context. It is fixed at creation.
type Mode int

const (
	Import Mode = iota + 1
	Export
)

func (m Mode) valid() bool { return m == Import || m == Export }

func (m Mode) String() string {
	switch m {
	case Import:
		return "import"
	case Export:
		return "export"
	default:
		return "invalid"
	}
}

// Method is the payload encoding of a file.
type Method uint32

const (
	MethodRaw Method = iota + 1
	MethodMG1
	MethodMG2
)

// Defaults applied to a fresh export Context.
const (
	DefaultMethod           = MethodMG1
	DefaultCompressionLevel = 1
	MaxCompressionLevel     = 9

	DefaultVertexPrecision float32 = 1.0 / 1024.0
	DefaultNormalPrecision float32 = 1.0 / 256.0
	DefaultUVPrecision     float32 = 1.0 / 4096.0
	DefaultAttribPrecision float32 = 1.0 / 256.0
)

var methodTags = map[Method]string{
	MethodRaw: "RAW\x00",
	MethodMG1: "MG1\x00",
	MethodMG2: "MG2\x00",
}

func (m Method) valid() bool {
	_, ok := methodTags[m]
	return ok
}

func (m Method) tag() string { return methodTags[m] }

func methodFromTag(tag string) (Method, bool) {
	for m, t := range methodTags {
		if t == tag {
			return m, true
		}
	}
	return 0, false
}

func (m Method) String() string {
	switch m {
	case MethodRaw:
		return "RAW"
	case MethodMG1:
		return "MG1"
	case MethodMG2:
		return "MG2"
	default:
		return "UNKNOWN"
	}
}

// ParseMethod parses "raw", "mg1" or "mg2" in any letter case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RAW":
		return MethodRaw, nil
	case "MG1":
		return MethodMG1, nil
	case "MG2":
		return MethodMG2, nil
	}
	return 0, &Error{Op: "parse method", Code: InvalidArgument, Err: ErrUnknownMethod}
}

// Property names an integer or float value readable through Integer or Float.
type Property int

const (
	VertexCount Property = iota + 1
	TriangleCount
	HasNormals
	UVMapCount
	AttribMapCount
	CompressionMethod
	CompressionLevel

	VertexPrecision
	NormalPrecision
)

// MapID identifies a UV or attribute map slot. Slots are 1-based per
// category; NotFound is never a valid slot.
type MapID int

const NotFound MapID = 0

const (
	UVMap1 MapID = iota + 1
	UVMap2
	UVMap3
	UVMap4
	UVMap5
	UVMap6
	UVMap7
	UVMap8
)

const (
	AttribMap1 MapID = iota + 1
	AttribMap2
	AttribMap3
	AttribMap4
	AttribMap5
	AttribMap6
	AttribMap7
	AttribMap8
)
