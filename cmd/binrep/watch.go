package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/binrep/binrep/internal/config"
	"github.com/binrep/binrep/internal/posthook"
)

func newWatchCommand() *cli.Command {
	var (
		configPath, execCmd string
		parallel            int64
		intervalSeconds     int64
	)

	return &cli.Command{
		Name:      "watch",
		Usage:     "run sync on an interval until interrupted, reloading config on change",
		ArgsUsage: "ARTIFACT REQ DIR",
		Flags: []cli.Flag{
			configFlag(&configPath),
			&cli.StringFlag{Name: "exec", Destination: &execCmd, Usage: "command to run only when a sync changed something"},
			&cli.IntFlag{Name: "parallel", Destination: &parallel, Usage: "max concurrent file downloads (default 4)"},
			&cli.IntFlag{Name: "interval", Destination: &intervalSeconds, Value: 60, Usage: "seconds between sync attempts"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 3 {
				return fmt.Errorf("watch requires ARTIFACT REQ DIR")
			}
			artifact, req, dir := cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2)

			log := logrus.NewEntry(logrus.StandardLogger())

			path := configPath
			if path == "" {
				found, err := config.Find()
				if err != nil {
					return err
				}
				path = found
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			reload, stop, err := config.Watch(path, log)
			if err != nil {
				return err
			}
			defer stop()

			ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
			defer ticker.Stop()

			for {
				repo, err := buildRepository(cfg)
				if err != nil {
					log.WithError(err).Error("watch: building repository failed")
				} else {
					s := buildSyncer(repo, int(parallel))
					result, err := s.Sync(ctx, artifact, req, dir)
					if err != nil {
						log.WithError(err).Error("watch: sync failed")
					} else if result.Changed {
						log.WithField("version", result.Version).Info("watch: synced new version")
						if err := posthook.Run(ctx, execCmd, result.Version, result.Files); err != nil {
							log.WithError(err).Warn("watch: post-sync command failed")
						}
					}
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case newCfg, ok := <-reload:
					if !ok {
						return nil
					}
					cfg = newCfg
					log.Info("watch: reloaded configuration")
				case <-ticker.C:
				}
			}
		},
	}
}
