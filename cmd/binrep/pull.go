package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/binrep/binrep/internal/dirlock"
	"github.com/binrep/binrep/internal/posthook"
)

func newPullCommand() *cli.Command {
	var (
		configPath, execCmd string
		parallel            int64
	)

	return &cli.Command{
		Name:      "pull",
		Usage:     "materialize a resolved version's files into a directory",
		ArgsUsage: "ARTIFACT REQ DIR",
		Flags: []cli.Flag{
			configFlag(&configPath),
			&cli.StringFlag{Name: "exec", Destination: &execCmd, Usage: "command to run once files are installed"},
			&cli.IntFlag{Name: "parallel", Destination: &parallel, Usage: "max concurrent file downloads (default 4)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 3 {
				return fmt.Errorf("pull requires ARTIFACT REQ DIR")
			}
			artifact, req, dir := cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2)

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			repo, err := buildRepository(cfg)
			if err != nil {
				return err
			}
			p := buildPuller(repo, int(parallel))

			lock, err := dirlock.Acquire(dir)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			result, err := p.Pull(ctx, artifact, req, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Writer, "pulled %s %s\n", artifact, result.Version)

			return posthook.Run(ctx, execCmd, result.Version, result.Files)
		},
	}
}
