package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

var errBodyTooLarge = errors.New("request body too large")

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return writeJSON(c, status, map[string]any{
		"error": APIError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeFailure reports err with the status classify picks for it.
func (s *Server) writeFailure(c *echo.Context, err error) error {
	status, errType, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request().URL.Path, "error", err)
	}
	return writeError(c, status, errType, err.Error(), "", code)
}

// readBody reads at most limit bytes of the request body.
func readBody(c *echo.Context, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, limit)
	}
	if len(body) == 0 {
		return nil, newInvalidRequest("empty request body")
	}
	return body, nil
}

// uploadFormat picks the format from the "format" query parameter, falling
// back to the request content type.
func uploadFormat(c *echo.Context) (meshio.Format, error) {
	if q := c.QueryParam("format"); q != "" {
		f, err := meshio.ParseFormat(q)
		if err != nil {
			return "", newInvalidRequest(err.Error())
		}
		return f, nil
	}
	ct := c.Request().Header.Get(echo.HeaderContentType)
	for _, f := range meshio.Formats {
		if f.ContentType() == ct && f != meshio.FormatCTM {
			return f, nil
		}
	}
	if ct == "application/octet-stream" {
		return meshio.FormatCTM, nil
	}
	return "", newInvalidRequest("format query parameter is required")
}

// exportOptions applies the method, level and precision query parameters
// on top of the server defaults.
func exportOptions(c *echo.Context, base meshio.ExportOptions) (meshio.ExportOptions, error) {
	opts := base
	if q := c.QueryParam("method"); q != "" {
		m, err := ctm.ParseMethod(q)
		if err != nil {
			return opts, newInvalidRequest(fmt.Sprintf("invalid method %q", q))
		}
		opts.Method = m
	}
	if q := c.QueryParam("level"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return opts, newInvalidRequest(fmt.Sprintf("invalid level %q", q))
		}
		opts.Level = n
	}
	for name, dst := range map[string]*float32{
		"vprec":    &opts.VertexPrecision,
		"vprecrel": &opts.VertexPrecisionRel,
		"nprec":    &opts.NormalPrecision,
		"tprec":    &opts.TexCoordPrecision,
		"cprec":    &opts.ColorPrecision,
	} {
		q := c.QueryParam(name)
		if q == "" {
			continue
		}
		v, err := strconv.ParseFloat(q, 32)
		if err != nil || v <= 0 {
			return opts, newInvalidRequest(fmt.Sprintf("invalid %s %q", name, q))
		}
		*dst = float32(v)
	}
	if q := c.QueryParam("comment"); q != "" {
		opts.Comment = q
	}
	return opts, nil
}
