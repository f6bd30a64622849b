package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

type infoOutput struct {
	File string `json:"file"`
	meshio.Report
	Mesh *meshio.Mesh `json:"mesh,omitempty"`
}

func infoCmd() *cli.Command {
	var (
		asJSON bool
		dump   bool
	)

	return &cli.Command{
		Name:      "info",
		Usage:     "Print header, statistics and maps of a CTM file",
		ArgsUsage: "<file.ctm>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "dump", Usage: "also print every vertex, triangle and map value", Destination: &dump},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("error: info takes exactly one CTM file", 1)
			}
			path := cmd.Args().First()

			c := ctm.New(ctm.Import, ctmOptions()...)
			defer c.Free()
			if err := c.Load(path); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			report, err := meshio.Describe(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			out := infoOutput{File: path, Report: report}
			if dump {
				if out.Mesh, err = meshio.FromContext(c); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			}

			if asJSON {
				b, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout, string(b))
				return err
			}
			return printInfo(os.Stdout, out)
		},
	}
}

func printInfo(w io.Writer, out infoOutput) error {
	r := out.Report
	s := r.Stats
	var b strings.Builder
	fmt.Fprintf(&b, "File:        %s\n", out.File)
	fmt.Fprintf(&b, "Method:      %s\n", r.Method)
	if r.Comment != "" {
		fmt.Fprintf(&b, "Comment:     %s\n", r.Comment)
	}
	fmt.Fprintf(&b, "Vertices:    %d\n", s.Vertices)
	fmt.Fprintf(&b, "Triangles:   %d\n", s.Triangles)
	fmt.Fprintf(&b, "Normals:     %s\n", yesNo(s.HasNormals))
	fmt.Fprintf(&b, "Bounds:      %v - %v\n", s.Bounds.Min, s.Bounds.Max)
	fmt.Fprintf(&b, "Avg. edge:   %g\n", s.AvgEdge)
	if r.Method == ctm.MethodMG2.String() {
		fmt.Fprintf(&b, "Vertex prec: %g\n", r.VertexPrecision)
		if s.HasNormals {
			fmt.Fprintf(&b, "Normal prec: %g\n", r.NormalPrecision)
		}
	}
	for i, m := range r.UVMaps {
		fmt.Fprintf(&b, "UV map %d:    name=%q file=%q precision=%g\n", i+1, m.Name, m.FileName, m.Precision)
	}
	for i, m := range r.AttribMaps {
		fmt.Fprintf(&b, "Attrib %d:    name=%q precision=%g\n", i+1, m.Name, m.Precision)
	}

	if m := out.Mesh; m != nil {
		b.WriteString("\nVertices:\n")
		for i := 0; i < m.VertexCount(); i++ {
			fmt.Fprintf(&b, "  %d: %v", i, m.Vertices[i*3:i*3+3])
			if m.HasNormals() {
				fmt.Fprintf(&b, " n=%v", m.Normals[i*3:i*3+3])
			}
			if m.HasTexCoords() {
				fmt.Fprintf(&b, " uv=%v", m.TexCoords[i*2:i*2+2])
			}
			if m.HasColors() {
				fmt.Fprintf(&b, " c=%v", m.Colors[i*4:i*4+4])
			}
			b.WriteByte('\n')
		}
		b.WriteString("Triangles:\n")
		for i := 0; i < m.TriangleCount(); i++ {
			fmt.Fprintf(&b, "  %d: %v\n", i, m.Indices[i*3:i*3+3])
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
