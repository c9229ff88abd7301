package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func newListArtifactsCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:  "list-artifacts",
		Usage: "list published artifact names",
		Flags: []cli.Flag{configFlag(&configPath)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			repo, err := buildRepository(cfg)
			if err != nil {
				return err
			}

			names, err := repo.ListArtifacts(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.Writer, n)
			}
			return nil
		},
	}
}

func newListVersionsCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:      "list-versions",
		Usage:     "list an artifact's published versions, semver-ascending",
		ArgsUsage: "ARTIFACT",
		Flags:     []cli.Flag{configFlag(&configPath)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			artifact := cmd.Args().First()
			if artifact == "" {
				return fmt.Errorf("list-versions requires ARTIFACT")
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			repo, err := buildRepository(cfg)
			if err != nil {
				return err
			}

			versions, err := repo.ListVersions(ctx, artifact)
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Fprintln(cmd.Writer, v)
			}
			return nil
		},
	}
}
