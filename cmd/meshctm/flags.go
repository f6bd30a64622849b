package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/meshctm/internal/config"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	logFile    string
	debug      bool
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config file (.yaml or .toml)",
			Sources:     cli.EnvVars(config.EnvPath),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "also write JSON logs to this file, rotated by size",
			Destination: &logFile,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// exportFlagValues backs the OpenCTM output flags shared by convert and
// watch.
type exportFlagValues struct {
	method      string
	level       int
	vprec       float64
	vprecRel    float64
	nprec       float64
	tprec       float64
	cprec       float64
	noNormals   bool
	noTexCoords bool
	noColors    bool
	plyBinary   bool
}

func exportFlags(v *exportFlagValues) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "method", Usage: "compression method (RAW, MG1, MG2)", Destination: &v.method},
		&cli.IntFlag{Name: "level", Usage: "LZMA compression level (0-9)", Destination: &v.level},
		&cli.Float64Flag{Name: "vprec", Usage: "vertex precision (MG2)", Destination: &v.vprec},
		&cli.Float64Flag{Name: "vprecrel", Usage: "vertex precision relative to the average edge length (MG2)", Destination: &v.vprecRel},
		&cli.Float64Flag{Name: "nprec", Usage: "normal precision (MG2)", Destination: &v.nprec},
		&cli.Float64Flag{Name: "tprec", Usage: "texture coordinate precision (MG2)", Destination: &v.tprec},
		&cli.Float64Flag{Name: "cprec", Usage: "colour precision (MG2)", Destination: &v.cprec},
		&cli.BoolFlag{Name: "no-normals", Usage: "do not export normals", Destination: &v.noNormals},
		&cli.BoolFlag{Name: "no-texcoords", Usage: "do not export texture coordinates", Destination: &v.noTexCoords},
		&cli.BoolFlag{Name: "no-colors", Usage: "do not export vertex colours", Destination: &v.noColors},
		&cli.BoolFlag{Name: "ply-binary", Usage: "write PLY output as binary little endian", Destination: &v.plyBinary},
	}
}

// processFlagValues backs the geometry editing flags.
type processFlagValues struct {
	scale       float64
	upAxis      string
	flip        bool
	calcNormals bool
}

func processFlags(v *processFlagValues) []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "scale", Usage: "scale the mesh by this factor", Value: 1, Destination: &v.scale},
		&cli.StringFlag{Name: "upaxis", Usage: "up axis of the input (X, Y, Z, -X, -Y, -Z)", Value: "Z", Destination: &v.upAxis},
		&cli.BoolFlag{Name: "flip", Usage: "flip triangle winding", Destination: &v.flip},
		&cli.BoolFlag{Name: "calc-normals", Usage: "calculate smooth normals when the input has none", Destination: &v.calcNormals},
	}
}
