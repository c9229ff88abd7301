// Command binrep publishes, pulls, and syncs versioned, signed binary
// artifacts against a filesystem or S3-backed repository.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:                  "binrep",
		Usage:                 "manage versioned, signed binary artifacts",
		Suggest:               true,
		EnableShellCompletion: true,
		HideVersion:           true,
		Commands: []*cli.Command{
			newPushCommand(),
			newPullCommand(),
			newSyncCommand(),
			newWatchCommand(),
			newListArtifactsCommand(),
			newListVersionsCommand(),
			newVersionCommand(),
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if err == nil {
				return
			}
			fmt.Fprintf(os.Stderr, "binrep: %v\n", err)
			os.Exit(1)
		},
	}

	_ = app.Run(context.Background(), os.Args)
}

// configFlag is embedded in every leaf command so it can be loaded without a
// shared parent-command flag.
func configFlag(dest *string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "path to config.sane (default: search XDG_CONFIG_HOME, ~/.binrep, /etc/binrep)",
		Destination: dest,
	}
}
