package api

import (
	"bytes"
	"net/http"
	"os"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/internal/meshstore"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

type MeshList struct {
	Object string            `json:"object"`
	Data   []meshstore.Entry `json:"data"`
}

type MeshObject struct {
	Object string `json:"object"`
	meshstore.Entry
}

type DeleteMeshResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type InspectResp struct {
	Object string `json:"object"`
	meshio.Report
}

func meshObject(e meshstore.Entry) MeshObject {
	return MeshObject{Object: "mesh", Entry: e}
}

func (s *Server) handleCreateMesh(c *echo.Context) error {
	if s.store == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "mesh store not configured", "", "")
	}
	format, err := uploadFormat(c)
	if err != nil {
		return s.writeFailure(c, err)
	}
	opts, err := exportOptions(c, s.export)
	if err != nil {
		return s.writeFailure(c, err)
	}
	body, err := readBody(c, s.maxUpload)
	if err != nil {
		return s.writeFailure(c, err)
	}

	m, err := meshio.Decode(bytes.NewReader(body), format, s.ctmOpts...)
	if err != nil {
		return s.writeFailure(c, err)
	}
	start := s.clock()
	entry, err := s.store.Put(m, opts)
	if err != nil {
		return s.writeFailure(c, err)
	}
	s.log.Info("mesh stored",
		"id", entry.ID,
		"format", format,
		"method", entry.Method,
		"triangles", entry.Triangles,
		"bytes_in", len(body),
		"bytes_out", entry.Size,
		"elapsed", s.clock().Sub(start),
	)
	return writeJSON(c, http.StatusCreated, meshObject(entry))
}

func (s *Server) handleListMeshes(c *echo.Context) error {
	if s.store == nil {
		return writeJSON(c, http.StatusOK, MeshList{Object: "list", Data: []meshstore.Entry{}})
	}
	entries, err := s.store.List()
	if err != nil {
		return s.writeFailure(c, err)
	}
	if entries == nil {
		entries = []meshstore.Entry{}
	}
	return writeJSON(c, http.StatusOK, MeshList{Object: "list", Data: entries})
}

func (s *Server) handleGetMesh(c *echo.Context) error {
	if s.store == nil {
		return s.writeFailure(c, meshstore.ErrMeshNotFound)
	}
	entry, err := s.store.Info(c.Param("id"))
	if err != nil {
		return s.writeFailure(c, err)
	}
	return writeJSON(c, http.StatusOK, meshObject(entry))
}

func (s *Server) handleDeleteMesh(c *echo.Context) error {
	if s.store == nil {
		return s.writeFailure(c, meshstore.ErrMeshNotFound)
	}
	id := c.Param("id")
	if err := s.store.Delete(id); err != nil {
		return s.writeFailure(c, err)
	}
	s.log.Info("mesh deleted", "id", id)
	return writeJSON(c, http.StatusOK, DeleteMeshResp{ID: id, Object: "mesh.deleted", Deleted: true})
}

func (s *Server) handleMeshContent(c *echo.Context) error {
	if s.store == nil {
		return s.writeFailure(c, meshstore.ErrMeshNotFound)
	}
	id := c.Param("id")
	format := meshio.FormatCTM
	if q := c.QueryParam("format"); q != "" {
		f, err := meshio.ParseFormat(q)
		if err != nil {
			return s.writeFailure(c, newInvalidRequest(err.Error()))
		}
		format = f
	}

	if format == meshio.FormatCTM {
		path, err := s.store.Path(id)
		if err != nil {
			return s.writeFailure(c, err)
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return s.writeFailure(c, meshstore.ErrMeshNotFound)
		}
		if err != nil {
			return s.writeFailure(c, err)
		}
		return c.Blob(http.StatusOK, format.ContentType(), data)
	}

	m, err := s.store.Mesh(id)
	if err != nil {
		return s.writeFailure(c, err)
	}
	var buf bytes.Buffer
	if err := meshio.Encode(&buf, format, m, s.export, s.ctmOpts...); err != nil {
		return s.writeFailure(c, err)
	}
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleInspect(c *echo.Context) error {
	body, err := readBody(c, s.maxUpload)
	if err != nil {
		return s.writeFailure(c, err)
	}
	ctx := ctm.New(ctm.Import, s.ctmOpts...)
	defer ctx.Free()
	if err := ctx.LoadFrom(bytes.NewReader(body)); err != nil {
		return s.writeFailure(c, err)
	}
	report, err := meshio.Describe(ctx)
	if err != nil {
		return s.writeFailure(c, err)
	}
	return writeJSON(c, http.StatusOK, InspectResp{Object: "mesh.inspection", Report: report})
}
