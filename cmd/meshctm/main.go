package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/meshctm/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    "meshctm",
		Usage:   "Compress, inspect and convert OpenCTM meshes",
		Version: version.String(),
		Flags:   globalFlags(),
		Before:  setup,
		After:   teardown,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			infoCmd(),
			convertCmd(),
			watchCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
