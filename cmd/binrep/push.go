package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/binrep/binrep/internal/model"
	"github.com/binrep/binrep/internal/repository"
)

func newPushCommand() *cli.Command {
	var configPath, checksumMethod, signatureMethod, keyID string

	return &cli.Command{
		Name:      "push",
		Usage:     "publish a new version of an artifact",
		ArgsUsage: "ARTIFACT VERSION|auto FILE...",
		Flags: []cli.Flag{
			configFlag(&configPath),
			&cli.StringFlag{Name: "checksum-method", Destination: &checksumMethod, Usage: "SHA256, SHA384, or SHA512 (overrides config)"},
			&cli.StringFlag{Name: "signature-method", Destination: &signatureMethod, Usage: "HMAC_SHA256, HMAC_SHA384, HMAC_SHA512, or ED25519 (overrides config)"},
			&cli.StringFlag{Name: "key-id", Destination: &keyID, Usage: "signing key id (overrides config)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 3 {
				return fmt.Errorf("push requires ARTIFACT VERSION FILE...")
			}
			artifact := cmd.Args().First()
			version := cmd.Args().Get(1)
			var paths []string
			for i := 2; i < cmd.Args().Len(); i++ {
				paths = append(paths, cmd.Args().Get(i))
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			repo, err := buildRepository(cfg)
			if err != nil {
				return err
			}

			params := cfg.PublishDefaults
			if checksumMethod != "" {
				params.ChecksumMethod = model.ChecksumMethod(checksumMethod)
			}
			if signatureMethod != "" {
				params.SignatureMethod = model.SignatureMethod(signatureMethod)
			}
			if keyID != "" {
				params.KeyID = keyID
			}

			if version == "auto" {
				resolved, err := repo.Resolve(ctx, artifact, "auto")
				if err != nil {
					return err
				}
				version = resolved
			}

			inputs, cleanup, err := gatherInputs(paths)
			defer cleanup()
			if err != nil {
				return err
			}

			if _, err := repo.Publish(ctx, artifact, version, inputs, params); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Writer, "published %s %s\n", artifact, version)
			return nil
		},
	}
}

// gatherInputs expands paths into publish Inputs. Directories are flattened:
// every regular file found under them is added using its leaf filename
// only, never its path relative to the directory argument.
func gatherInputs(paths []string) ([]repository.Input, func(), error) {
	var (
		inputs []repository.Input
		opened []*os.File
	)
	cleanup := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, cleanup, err
		}
		if !info.IsDir() {
			f, err := os.Open(p)
			if err != nil {
				return nil, cleanup, err
			}
			opened = append(opened, f)
			inputs = append(inputs, repository.Input{Name: filepath.Base(p), Content: f})
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			opened = append(opened, f)
			inputs = append(inputs, repository.Input{Name: filepath.Base(path), Content: f})
			return nil
		})
		if err != nil {
			return nil, cleanup, err
		}
	}

	return inputs, cleanup, nil
}
