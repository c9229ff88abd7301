// Package orchestrator runs a batch of independent tasks with bounded
// concurrency, cancelling the remaining tasks as soon as one fails.
package orchestrator

import (
	"context"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work submitted to RunAll. It must observe ctx.Done()
// between any internal chunks of work and clean up whatever partial output
// it produced before returning a non-nil error.
type Task func(ctx context.Context) error

// RunAll runs tasks with at most maxParallel running concurrently. The
// first task to return an error cancels the context passed to every other
// task; RunAll returns that first error once every task has returned.
// maxParallel <= 0 is treated as IOConcurrency().
func RunAll(ctx context.Context, tasks []Task, maxParallel int) error {
	if maxParallel <= 0 {
		maxParallel = IOConcurrency()
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

schedule:
	for _, task := range tasks {
		task := task
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			// A task already failed; stop scheduling more and let g.Wait()
			// below surface that first error instead of gctx.Err().
			break schedule
		}

		g.Go(func() error {
			defer func() { <-sem }()
			return task(gctx)
		})
	}

	return g.Wait()
}

// IOConcurrency returns the default bound for I/O-bound task batches: the
// BINREP_MAX_CONCURRENCY environment variable if set to a positive integer
// (capped at 1024), otherwise GOMAXPROCS*8 clamped to [4, 1024].
func IOConcurrency() int {
	if v := os.Getenv("BINREP_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > 1024 {
				return 1024
			}
			return n
		}
	}

	c := runtime.GOMAXPROCS(0) * 8
	if c < 4 {
		c = 4
	}
	if c > 1024 {
		c = 1024
	}
	return c
}
