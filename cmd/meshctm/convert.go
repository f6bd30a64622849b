package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/meshctm/internal/logger"
	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

func convertCmd() *cli.Command {
	var (
		exp     exportFlagValues
		proc    processFlagValues
		comment string
		texFile string
	)

	flags := append(processFlags(&proc), exportFlags(&exp)...)
	flags = append(flags,
		&cli.StringFlag{Name: "comment", Usage: "file comment (default: the input's comment)", Destination: &comment},
		&cli.StringFlag{Name: "texfile", Usage: "texture file reference (default: the input's)", Destination: &texFile},
	)

	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert between CTM, OBJ, JSON, glTF, GLB, PLY and STL",
		ArgsUsage: "<in> [out]",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if n := cmd.Args().Len(); n < 1 || n > 2 {
				return cli.Exit("error: convert takes an input file and an optional output", 1)
			}
			in := cmd.Args().Get(0)
			out, derived, err := resolveConvertOut(in, cmd.Args().Get(1))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			eo, err := exportOptions(cmd, &exp)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			eo.Comment, eo.TexFile = comment, texFile
			po, err := processOptions(&proc, eo.NoNormals)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if derived {
				logger.FromContext(ctx).Info("output path derived from input", "output", out)
			}
			if err := convertFile(ctx, in, out, eo, po, ctmOptions()...); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

// convertFile loads in, edits the geometry and saves out, logging the time
// spent in each phase.
func convertFile(ctx context.Context, in, out string, eo meshio.ExportOptions, po meshio.ProcessOptions, ctmOpts ...ctm.Option) error {
	log := logger.FromContext(ctx)

	start := time.Now()
	m, err := meshio.Read(in, ctmOpts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", in, err)
	}
	log.Info("loaded", "file", in, "vertices", m.VertexCount(), "triangles", m.TriangleCount(), "elapsed", time.Since(start))

	start = time.Now()
	meshio.Process(m, po)
	log.Debug("processed", "scale", po.Scale, "up_axis", po.UpAxis, "flip", po.Flip, "elapsed", time.Since(start))

	start = time.Now()
	if err := meshio.Write(out, m, eo, ctmOpts...); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	log.Info("saved", "file", out, "method", eo.Method, "elapsed", time.Since(start))
	return nil
}
