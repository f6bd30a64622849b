// Package api serves the mesh store over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/meshctm/internal/logger"
	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/internal/meshstore"
	"github.com/samcharles93/meshctm/internal/version"
	"github.com/samcharles93/meshctm/internal/webui"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

const defaultMaxUpload = 64 << 20

type Config struct {
	Store  *meshstore.Store
	Export meshio.ExportOptions
	CTM    []ctm.Option
	Logger logger.Logger

	// MaxUploadBytes bounds request bodies. Zero means 64 MiB.
	MaxUploadBytes int64
	// RateLimit is the sustained number of uploads per second accepted
	// across all clients. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

type Server struct {
	store     *meshstore.Store
	export    meshio.ExportOptions
	ctmOpts   []ctm.Option
	log       logger.Logger
	maxUpload int64
	limiter   *rate.Limiter
	clock     func() time.Time
}

func NewServer(cfg Config) *Server {
	s := &Server{
		store:     cfg.Store,
		export:    cfg.Export,
		ctmOpts:   cfg.CTM,
		log:       cfg.Logger,
		maxUpload: cfg.MaxUploadBytes,
		clock:     time.Now,
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUpload
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/", echo.WrapHandler(webui.Handler()))
	e.GET("/healthz", s.handleHealth)

	uploads := []echo.MiddlewareFunc{}
	if s.limiter != nil {
		uploads = append(uploads, rateLimit(s.limiter))
	}
	e.POST("/v1/meshes", s.handleCreateMesh, uploads...)
	e.GET("/v1/meshes", s.handleListMeshes)
	e.GET("/v1/meshes/:id", s.handleGetMesh)
	e.DELETE("/v1/meshes/:id", s.handleDeleteMesh)
	e.GET("/v1/meshes/:id/content", s.handleMeshContent)
	e.POST("/v1/inspect", s.handleInspect, uploads...)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

// rateLimit rejects requests once the shared limiter is exhausted.
func rateLimit(l *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if !l.Allow() {
				return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "too many uploads, retry later", "", "")
			}
			return next(c)
		}
	}
}
