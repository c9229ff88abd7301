package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/binrep/binrep/internal/posthook"
)

func newSyncCommand() *cli.Command {
	var (
		configPath, execCmd string
		parallel            int64
	)

	return &cli.Command{
		Name:      "sync",
		Usage:     "pull a resolved version only if the destination is out of date",
		ArgsUsage: "ARTIFACT REQ DIR",
		Flags: []cli.Flag{
			configFlag(&configPath),
			&cli.StringFlag{Name: "exec", Destination: &execCmd, Usage: "command to run only when the sync changed something"},
			&cli.IntFlag{Name: "parallel", Destination: &parallel, Usage: "max concurrent file downloads (default 4)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 3 {
				return fmt.Errorf("sync requires ARTIFACT REQ DIR")
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
			s := buildSyncer(repo, int(parallel))

			result, err := s.Sync(ctx, artifact, req, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Writer, "synced %s %s (changed=%v)\n", artifact, result.Version, result.Changed)

			if !result.Changed {
				return nil
			}
			return posthook.Run(ctx, execCmd, result.Version, result.Files)
		},
	}
}
