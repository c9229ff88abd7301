package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/binrep/binrep/internal/version"
)

func newVersionCommand() *cli.Command {
	var jsonOutput bool

	return &cli.Command{
		Name:  "version",
		Usage: "show build information",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Destination: &jsonOutput},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return version.Write(cmd.Writer, version.Get(), jsonOutput)
		},
	}
}
