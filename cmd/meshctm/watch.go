package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/meshctm/internal/logger"
	"github.com/samcharles93/meshctm/internal/watch"
)

func watchCmd() *cli.Command {
	var (
		exp      exportFlagValues
		proc     processFlagValues
		outDir   string
		settle   time.Duration
		existing bool
	)

	flags := append(processFlags(&proc), exportFlags(&exp)...)
	flags = append(flags,
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "directory receiving the CTM files", Required: true, Destination: &outDir},
		&cli.DurationFlag{Name: "settle", Usage: "quiet period before a changed file is converted", Value: watch.DefaultSettle, Destination: &settle},
		&cli.BoolFlag{Name: "existing", Usage: "also convert files already in the directory", Destination: &existing},
	)

	return &cli.Command{
		Name:      "watch",
		Usage:     "Convert mesh files dropped into a directory to CTM",
		ArgsUsage: "<dir>",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("error: watch takes exactly one directory", 1)
			}
			eo, err := exportOptions(cmd, &exp)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			po, err := processOptions(&proc, eo.NoNormals)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if !cmd.IsSet("settle") {
				if settle, err = cfg.SettleDelay(); err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			}

			w, err := watch.New(watch.Options{
				In:       cmd.Args().First(),
				Out:      outDir,
				Settle:   settle,
				Export:   eo,
				Process:  po,
				CTM:      ctmOptions(),
				Logger:   logger.FromContext(ctx),
				Existing: existing,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}
}
