package ctm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxStringLen bounds comments and map names read from a stream.
const maxStringLen = 1 << 20

// readChunk is the largest buffer allocated up front for a read. Longer
// reads grow with the data actually present.
const readChunk = 1 << 20

// streamWriter writes little-endian OpenCTM primitives. The first failure is
// kept and every later write becomes a no-op, so encoders check err once.
type streamWriter struct {
	w       io.Writer
	level   int
	err     error
	scratch [4]byte
}

func newStreamWriter(w io.Writer, level int) *streamWriter {
	return &streamWriter{w: w, level: level}
}

func (s *streamWriter) write(p []byte) {
	if s.err != nil {
		return
	}
	if _, err := s.w.Write(p); err != nil {
		s.err = coded(FileError, err)
	}
}

func (s *streamWriter) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *streamWriter) putTag(tag string) {
	s.write([]byte(tag[:4]))
}

func (s *streamWriter) putUint32(v uint32) {
	binary.LittleEndian.PutUint32(s.scratch[:], v)
	s.write(s.scratch[:])
}

func (s *streamWriter) putFloat32(v float32) {
	s.putUint32(math.Float32bits(v))
}

func (s *streamWriter) putString(v string) {
	s.putUint32(uint32(len(v)))
	if len(v) > 0 {
		s.write([]byte(v))
	}
}

func (s *streamWriter) putUint32s(vs []uint32) {
	buf := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	s.write(buf)
}

func (s *streamWriter) putFloat32s(vs []float32) {
	buf := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	s.write(buf)
}

// streamReader mirrors streamWriter for decoding.
type streamReader struct {
	r       io.Reader
	err     error
	scratch [4]byte
}

func newStreamReader(r io.Reader) *streamReader {
	return &streamReader{r: r}
}

func (s *streamReader) read(p []byte) bool {
	if s.err != nil {
		return false
	}
	if _, err := io.ReadFull(s.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.truncated(err)
		} else {
			s.err = coded(FileError, err)
		}
		return false
	}
	return true
}

func (s *streamReader) truncated(err error) {
	s.setErr(coded(FileError, fmt.Errorf("%w: %v", ErrTruncated, err)))
}

// readBytes reads exactly n bytes. Sizes come from the stream, so the buffer
// is never allocated beyond what the input can supply.
func (s *streamReader) readBytes(n int) []byte {
	if s.err != nil {
		return nil
	}
	if n < 0 {
		s.setErr(codedf(BadFormat, ErrTooLarge, "negative length %d", n))
		return nil
	}
	if l, ok := s.r.(interface{ Len() int }); ok && n > l.Len() {
		s.truncated(fmt.Errorf("need %d bytes, %d left", n, l.Len()))
		return nil
	}
	if n <= readChunk {
		buf := make([]byte, n)
		if !s.read(buf) {
			return nil
		}
		return buf
	}
	var buf bytes.Buffer
	buf.Grow(readChunk)
	got, err := io.CopyN(&buf, s.r, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.truncated(fmt.Errorf("need %d bytes, got %d", n, got))
		} else {
			s.setErr(coded(FileError, err))
		}
		return nil
	}
	return buf.Bytes()
}

func (s *streamReader) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *streamReader) readTag() string {
	if !s.read(s.scratch[:]) {
		return ""
	}
	return string(s.scratch[:])
}

// expectTag reads a section tag and records BadFormat on mismatch.
func (s *streamReader) expectTag(want string) bool {
	got := s.readTag()
	if s.err != nil {
		return false
	}
	if got != want {
		s.setErr(codedf(BadFormat, ErrUnexpectedTag, "got %q, want %q", got, want))
		return false
	}
	return true
}

func (s *streamReader) readUint32() uint32 {
	if !s.read(s.scratch[:]) {
		return 0
	}
	return binary.LittleEndian.Uint32(s.scratch[:])
}

func (s *streamReader) readFloat32() float32 {
	return math.Float32frombits(s.readUint32())
}

func (s *streamReader) readString() string {
	n := s.readUint32()
	if s.err != nil || n == 0 {
		return ""
	}
	if n > maxStringLen {
		s.setErr(codedf(BadFormat, ErrTooLarge, "string of %d bytes", n))
		return ""
	}
	buf := s.readBytes(int(n))
	if buf == nil {
		return ""
	}
	return string(buf)
}

func (s *streamReader) readUint32s(n int) []uint32 {
	buf := s.readBytes(4 * n)
	if buf == nil {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return out
}

func (s *streamReader) readFloat32s(n int) []float32 {
	buf := s.readBytes(4 * n)
	if buf == nil {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
