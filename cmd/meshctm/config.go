package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/meshctm/internal/config"
	"github.com/samcharles93/meshctm/internal/logger"
	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

var (
	cfg       config.Config
	logCloser io.Closer
)

// setup loads the config file and installs the logger in ctx. Flags set on
// the command line win over the config file.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	opts := cfg.LoggerOptions()
	if cmd.IsSet("log-level") || opts.Level == "" {
		opts.Level = logLevel
	}
	if debug {
		opts.Level = "debug"
	}
	if cmd.IsSet("log-format") || opts.Format == "" {
		opts.Format = logFormat
	}
	if cmd.IsSet("log-file") {
		opts.File.Path = logFile
	}

	log, closer, err := logger.Open(os.Stderr, opts)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	logCloser = closer
	log.Debug("configuration loaded", "path", configFile, "default_path", config.DefaultPath())
	return logger.WithContext(ctx, log), nil
}

func teardown(ctx context.Context, cmd *cli.Command) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

func ctmOptions() []ctm.Option {
	return []ctm.Option{ctm.WithOptions(cfg.CTMOptions())}
}

// exportOptions merges config defaults with explicitly set flags.
func exportOptions(cmd *cli.Command, v *exportFlagValues) (meshio.ExportOptions, error) {
	opts, err := cfg.ExportOptions()
	if err != nil {
		return opts, err
	}
	if cmd.IsSet("method") {
		m, err := ctm.ParseMethod(v.method)
		if err != nil {
			return opts, fmt.Errorf("invalid method %q", v.method)
		}
		opts.Method = m
	}
	if cmd.IsSet("level") {
		opts.Level = v.level
	}
	for _, f := range []struct {
		name string
		src  float64
		dst  *float32
	}{
		{"vprec", v.vprec, &opts.VertexPrecision},
		{"vprecrel", v.vprecRel, &opts.VertexPrecisionRel},
		{"nprec", v.nprec, &opts.NormalPrecision},
		{"tprec", v.tprec, &opts.TexCoordPrecision},
		{"cprec", v.cprec, &opts.ColorPrecision},
	} {
		if !cmd.IsSet(f.name) {
			continue
		}
		if f.src <= 0 {
			return opts, fmt.Errorf("--%s must be positive", f.name)
		}
		*f.dst = float32(f.src)
	}
	if cmd.IsSet("vprec") && !cmd.IsSet("vprecrel") {
		opts.VertexPrecisionRel = 0
	}
	opts.NoNormals = v.noNormals
	opts.NoTexCoords = v.noTexCoords
	opts.NoColors = v.noColors
	opts.PLYBinary = v.plyBinary
	return opts, nil
}

func processOptions(v *processFlagValues, noNormals bool) (meshio.ProcessOptions, error) {
	axis, err := meshio.ParseUpAxis(v.upAxis)
	if err != nil {
		return meshio.ProcessOptions{}, err
	}
	return meshio.ProcessOptions{
		Scale:       float32(v.scale),
		UpAxis:      axis,
		Flip:        v.flip,
		CalcNormals: v.calcNormals,
		NoNormals:   noNormals,
	}, nil
}
