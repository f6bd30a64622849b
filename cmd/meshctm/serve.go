package main

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/meshctm/internal/api"
	"github.com/samcharles93/meshctm/internal/logger"
	"github.com/samcharles93/meshctm/internal/meshstore"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		storeDir    string
		readTimeout time.Duration
		exp         exportFlagValues
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the mesh store over HTTP",
		Flags: append(exportFlags(&exp),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "store",
				Usage:       "directory holding stored meshes",
				Value:       filepath.Join(".", "meshes"),
				Destination: &storeDir,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			if cfg.Server.Address != "" && !cmd.IsSet("addr") {
				addr = cfg.Server.Address
			}
			if cfg.Server.StoreDir != "" && !cmd.IsSet("store") {
				storeDir = cfg.Server.StoreDir
			}

			eo, err := exportOptions(cmd, &exp)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			store, err := meshstore.Open(storeDir, ctmOptions()...)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			limit, burst := cfg.Server.Limit()
			server := api.NewServer(api.Config{
				Store:          store,
				Export:         eo,
				CTM:            ctmOptions(),
				Logger:         log,
				MaxUploadBytes: cfg.Server.MaxUploadBytes(),
				RateLimit:      limit,
				RateBurst:      burst,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "store", store.Dir())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
