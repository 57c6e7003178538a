package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pkg.jsn.cam/wordstream/internal/worker"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

func newRunCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] FILE...",
		Short: "Process files with an in-process worker pool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context(), opts, args, cmd)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", envInt("WORDSTREAM_WORKERS", 4), "number of workers")

	return cmd
}

func runLocal(ctx context.Context, opts *options, files []string, cmd *cobra.Command) error {
	if opts.workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", opts.workers)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := zap.L()
	g, gctx := errgroup.WithContext(ctx)

	links := make([]transport.Link, opts.workers)
	for i := range links {
		d, w := transport.Pipe(2)
		links[i] = d
		node := worker.NewNode(worker.Config{Logger: log}, w)
		g.Go(func() error {
			if err := node.Run(gctx); err != nil && !errors.Is(err, transport.ErrClosed) {
				return err
			}
			return nil
		})
	}

	runErr := dispatch(ctx, opts, links, files, cmd.OutOrStdout())
	if runErr != nil {
		cancel()
	}
	if err := g.Wait(); err != nil && runErr == nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return runErr
}
