// Package posthook runs a configured command after a successful pull or
// sync, the `--exec CMD` part of the CLI contract.
package posthook

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/binrep/binrep/internal/binreperr"
)

// Run executes cmd. If cmd contains "{}" it runs once per entry in files,
// substituting the absolute path for "{}"; otherwise it runs once with no
// substitution. BINREP_ARTIFACT_VERSION is exported in every invocation's
// environment.
func Run(ctx context.Context, cmd string, version string, files []string) error {
	if cmd == "" {
		return nil
	}

	if strings.Contains(cmd, "{}") {
		for _, f := range files {
			if err := runOne(ctx, strings.ReplaceAll(cmd, "{}", f), version); err != nil {
				return err
			}
		}
		return nil
	}
	return runOne(ctx, cmd, version)
}

func runOne(ctx context.Context, cmd, version string) error {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil
	}

	c := exec.CommandContext(ctx, fields[0], fields[1:]...)
	c.Env = append(os.Environ(), "BINREP_ARTIFACT_VERSION="+version)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		return binreperr.Wrap(binreperr.CategoryConfig, binreperr.CodeMalformed, "post-install command failed", err)
	}
	return nil
}
