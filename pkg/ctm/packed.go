package ctm

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/ulikunitz/xz/lzma"
	"golang.org/x/exp/constraints"
)

// Packed arrays are stored as:
//
//	u32 packedSize | 5 bytes LZMA properties | packedSize bytes LZMA data
//
// The LZMA input is the element array split into byte planes, most
// significant plane first. Within a plane the components of each element
// are separated (all x, then all y, ...), which puts bytes of similar
// magnitude next to each other.

const (
	lzmaPropsLen  = 5
	lzmaHeaderLen = lzmaPropsLen + 8
)

// interleave lays out count elements of size words as byte planes.
func interleave(words []uint32, count, size int) []byte {
	n := count * size
	out := make([]byte, 4*n)
	for i := 0; i < count; i++ {
		for k := 0; k < size; k++ {
			v := words[i*size+k]
			pos := i + k*count
			out[pos] = byte(v >> 24)
			out[pos+n] = byte(v >> 16)
			out[pos+2*n] = byte(v >> 8)
			out[pos+3*n] = byte(v)
		}
	}
	return out
}

func deinterleave(data []byte, count, size int) []uint32 {
	n := count * size
	out := make([]uint32, n)
	for i := 0; i < count; i++ {
		for k := 0; k < size; k++ {
			pos := i + k*count
			out[i*size+k] = uint32(data[pos])<<24 |
				uint32(data[pos+n])<<16 |
				uint32(data[pos+2*n])<<8 |
				uint32(data[pos+3*n])
		}
	}
	return out
}

// toWords converts integers to packed words. Signed values are folded to
// sign-magnitude form (0, -1, 1, -2, ... becomes 0, 1, 2, 3, ...).
func toWords[T constraints.Integer](values []T, signed bool) []uint32 {
	out := make([]uint32, len(values))
	for i, v := range values {
		x := int64(v)
		if signed {
			if x < 0 {
				x = -1 - (x << 1)
			} else {
				x <<= 1
			}
		}
		out[i] = uint32(x)
	}
	return out
}

func fromWords[T constraints.Integer](words []uint32, signed bool) []T {
	out := make([]T, len(words))
	for i, w := range words {
		x := int64(w)
		if signed {
			if w&1 != 0 {
				x = -((x + 1) >> 1)
			} else {
				x >>= 1
			}
		}
		out[i] = T(x)
	}
	return out
}

func floatsToWords(values []float32) []uint32 {
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = math.Float32bits(v)
	}
	return out
}

func wordsToFloats(words []uint32) []float32 {
	out := make([]float32, len(words))
	for i, w := range words {
		out[i] = math.Float32frombits(w)
	}
	return out
}

// lzmaDictCap maps a compression level to a dictionary size, shrunk to the
// input length since a larger window cannot help.
func lzmaDictCap(level, inputLen int) int {
	var dc int
	switch {
	case level <= 5:
		dc = 1 << (level*2 + 14)
	case level == 6:
		dc = 1 << 25
	default:
		dc = 1 << 26
	}
	for dc > lzma.MinDictCap && dc/2 >= inputLen {
		dc /= 2
	}
	if dc < lzma.MinDictCap {
		dc = lzma.MinDictCap
	}
	return dc
}

func lzmaCompress(data []byte, level int) (props []byte, packed []byte, err error) {
	var buf bytes.Buffer
	cfg := lzma.WriterConfig{
		DictCap:      lzmaDictCap(level, len(data)),
		SizeInHeader: true,
		Size:         int64(len(data)),
		EOSMarker:    false,
	}
	zw, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, nil, err
	}
	out := buf.Bytes()
	if len(out) < lzmaHeaderLen {
		return nil, nil, io.ErrShortWrite
	}
	return out[:lzmaPropsLen], out[lzmaHeaderLen:], nil
}

// lzmaDecompress unpacks exactly size bytes. The dictionary size in props
// comes from the stream; the decoder allocates it eagerly, so it is capped at
// what size bytes of output can ever reference.
func lzmaDecompress(props, packed []byte, size int) ([]byte, error) {
	hdr := make([]byte, lzmaHeaderLen)
	copy(hdr, props)
	limit := uint32(lzma.MinDictCap)
	if size > int(limit) {
		limit = uint32(min(uint64(size), math.MaxUint32))
	}
	if dict := binary.LittleEndian.Uint32(hdr[1:5]); dict > limit {
		binary.LittleEndian.PutUint32(hdr[1:5], limit)
	}
	binary.LittleEndian.PutUint64(hdr[lzmaPropsLen:], uint64(size))
	zr, err := lzma.ReaderConfig{DictCap: lzma.MinDictCap}.NewReader(io.MultiReader(bytes.NewReader(hdr), bytes.NewReader(packed)))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	out.Grow(min(size, readChunk))
	if _, err := io.CopyN(&out, zr, int64(size)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (s *streamWriter) putPacked(words []uint32, count, size int) {
	if s.err != nil {
		return
	}
	props, packed, err := lzmaCompress(interleave(words, count, size), s.level)
	if err != nil {
		s.setErr(coded(CompressionError, err))
		return
	}
	s.putUint32(uint32(len(packed)))
	s.write(props)
	s.write(packed)
}

func (s *streamWriter) putPackedInts(values []int32, count, size int, signed bool) {
	s.putPacked(toWords(values, signed), count, size)
}

func (s *streamWriter) putPackedUints(values []uint32, count, size int) {
	s.putPacked(values, count, size)
}

func (s *streamWriter) putPackedFloats(values []float32, count, size int) {
	s.putPacked(floatsToWords(values), count, size)
}

func (s *streamReader) readPacked(count, size int) []uint32 {
	packedSize := s.readUint32()
	if s.err != nil {
		return nil
	}
	unpacked := count * size * 4
	// LZMA never expands input by anywhere near this much.
	if uint64(packedSize) > uint64(unpacked)*2+4096 {
		s.setErr(codedf(BadFormat, ErrTooLarge, "packed array of %d bytes for %d", packedSize, unpacked))
		return nil
	}
	props := s.readBytes(lzmaPropsLen)
	packed := s.readBytes(int(packedSize))
	if s.err != nil {
		return nil
	}
	data, err := lzmaDecompress(props, packed, unpacked)
	if err != nil {
		s.setErr(codedf(CompressionError, ErrPackedSize, "%v", err))
		return nil
	}
	return deinterleave(data, count, size)
}

func (s *streamReader) readPackedInts(count, size int, signed bool) []int32 {
	words := s.readPacked(count, size)
	if words == nil {
		return nil
	}
	return fromWords[int32](words, signed)
}

func (s *streamReader) readPackedUints(count, size int) []uint32 {
	return s.readPacked(count, size)
}

func (s *streamReader) readPackedFloats(count, size int) []float32 {
	words := s.readPacked(count, size)
	if words == nil {
		return nil
	}
	return wordsToFloats(words)
}
