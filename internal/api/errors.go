package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/internal/meshstore"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// classify maps an error to a status, an error type and, for engine
// errors, the engine code name.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error", ""
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "invalid_request_error", ""
	case errors.Is(err, meshstore.ErrMeshNotFound), errors.Is(err, meshstore.ErrInvalidID):
		return http.StatusNotFound, "not_found_error", ""
	case errors.Is(err, meshio.ErrUnsupportedFormat),
		errors.Is(err, meshio.ErrNoTriangles),
		errors.Is(err, meshio.ErrInvalidMesh),
		errors.Is(err, meshio.ErrMalformed):
		return http.StatusBadRequest, "invalid_request_error", ""
	}

	var ce *ctm.Error
	if errors.As(err, &ce) {
		switch ce.Code {
		case ctm.OutOfMemory:
			return http.StatusRequestEntityTooLarge, "invalid_request_error", ce.Code.String()
		case ctm.FileError:
			if errors.Is(err, ctm.ErrTruncated) {
				return http.StatusBadRequest, "invalid_request_error", ce.Code.String()
			}
			return http.StatusInternalServerError, "server_error", ce.Code.String()
		case ctm.InternalError:
			return http.StatusInternalServerError, "server_error", ce.Code.String()
		default:
			return http.StatusBadRequest, "invalid_request_error", ce.Code.String()
		}
	}
	return http.StatusInternalServerError, "server_error", ""
}
