package ctm

import (
	"errors"
	"fmt"
)

// ErrorCode is the sticky per-context error state.
// ErrorCode implements error so callers can write errors.Is(err, ctm.BadFormat).
type ErrorCode int

const (
	NoError ErrorCode = iota
	InvalidContext
	InvalidArgument
	InvalidOperation
	InvalidMesh
	OutOfMemory
	FileError
	BadFormat
	CompressionError
	InternalError
	UnsupportedVersion
)

// String returns the canonical error name.
func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "CTM_NONE"
	case InvalidContext:
		return "CTM_INVALID_CONTEXT"
	case InvalidArgument:
		return "CTM_INVALID_ARGUMENT"
	case InvalidOperation:
		return "CTM_INVALID_OPERATION"
	case InvalidMesh:
		return "CTM_INVALID_MESH"
	case OutOfMemory:
		return "CTM_OUT_OF_MEMORY"
	case FileError:
		return "CTM_FILE_ERROR"
	case BadFormat:
		return "CTM_BAD_FORMAT"
	case CompressionError:
		return "CTM_LZMA_ERROR"
	case InternalError:
		return "CTM_INTERNAL_ERROR"
	case UnsupportedVersion:
		return "CTM_UNSUPPORTED_FORMAT_VERSION"
	default:
		return "Unknown error code"
	}
}

func (c ErrorCode) Error() string { return "ctm: " + c.String() }

var (
	ErrContextFreed     = errors.New("ctm: context is freed or invalid")
	ErrWrongMode        = errors.New("ctm: operation not allowed in this context mode")
	ErrNoMesh           = errors.New("ctm: no mesh defined")
	ErrLengthMismatch   = errors.New("ctm: array length does not match vertex count")
	ErrTooFewVertices   = errors.New("ctm: mesh needs at least 3 vertices")
	ErrNoTriangles      = errors.New("ctm: mesh needs at least one triangle")
	ErrIndexOutOfRange  = errors.New("ctm: index out of range")
	ErrNotFinite        = errors.New("ctm: value is not finite")
	ErrTooManyMaps      = errors.New("ctm: map slot limit reached")
	ErrDuplicateName    = errors.New("ctm: duplicate map name")
	ErrUnknownMap       = errors.New("ctm: unknown map")
	ErrUnknownMethod    = errors.New("ctm: unknown compression method")
	ErrUnknownProperty  = errors.New("ctm: unknown property")
	ErrBadPrecision     = errors.New("ctm: precision must be positive and finite")
	ErrBadLevel         = errors.New("ctm: compression level out of range")
	ErrDegenerate       = errors.New("ctm: mesh has no measurable edges")
	ErrPrecisionRange   = errors.New("ctm: precision too fine for mesh extent")
	ErrInvalidMagic     = errors.New("ctm: invalid magic")
	ErrUnsupportedVer   = errors.New("ctm: unsupported format version")
	ErrUnexpectedTag    = errors.New("ctm: unexpected section tag")
	ErrTruncated        = errors.New("ctm: truncated stream")
	ErrTooLarge         = errors.New("ctm: declared size exceeds limit")
	ErrBadHeader        = errors.New("ctm: malformed header")
	ErrPackedSize       = errors.New("ctm: packed array size mismatch")
	ErrInternalRecovery = errors.New("ctm: internal error")
)

// Error is returned by every failing Context operation.
type Error struct {
	Op   string
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ctm: %s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("ctm: %s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches an ErrorCode target against the error's code.
func (e *Error) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// CodeOf extracts the ErrorCode carried by err.
// A nil error is NoError; foreign errors are InternalError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return InternalError
}

// codedError pairs a cause with the code the context should record.
// Encoders and decoders return it so the caller can fill in the op.
type codedError struct {
	code ErrorCode
	err  error
}

func (e *codedError) Error() string { return e.code.String() + ": " + e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func coded(code ErrorCode, err error) error {
	return &codedError{code: code, err: err}
}

func codedf(code ErrorCode, base error, format string, args ...any) error {
	return &codedError{code: code, err: fmt.Errorf("%w: "+format, append([]any{base}, args...)...)}
}

func splitCoded(err error, fallback ErrorCode) (ErrorCode, error) {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code, ce.err
	}
	return fallback, err
}
