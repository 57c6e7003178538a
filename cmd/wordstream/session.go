package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pkg.jsn.cam/wordstream/internal/dispatcher"
	"pkg.jsn.cam/wordstream/pkg/wordstream"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

func openStorage(path string, log *zap.Logger) (dispatcher.Storage, error) {
	if path == "" {
		return dispatcher.NewNoOpStorage(), nil
	}
	s, err := dispatcher.NewBboltStorage(path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	return s, nil
}

// inputSize sums file sizes for the progress bar. Unreadable files count
// as empty; the dispatcher reports them.
func inputSize(files []string) int64 {
	var n int64
	for _, name := range files {
		if fi, err := os.Stat(name); err == nil {
			n += fi.Size()
		}
	}
	return n
}

func newProgressBar(total int64, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("reading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

// dispatch runs the files over an established pool and prints the report
// to out. It starts the status server when configured and closes the
// links when done.
func dispatch(ctx context.Context, opts *options, links []transport.Link, files []string, out io.Writer) error {
	log := zap.L()
	defer func() {
		for _, l := range links {
			l.Close()
		}
	}()

	storage, err := openStorage(opts.db, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cfg := dispatcher.Config{
		Logger:    log,
		Storage:   storage,
		Metrics:   dispatcher.NewMetrics(reg),
		ChunkSize: opts.chunkSize,
		Capacity:  opts.capacity,
	}

	var bar *progressbar.ProgressBar
	if opts.progress {
		bar = newProgressBar(inputSize(files), os.Stderr)
		cfg.OnChunk = func(c wordstream.Chunk) {
			_ = bar.Add(c.Bytes)
		}
	}

	d, err := dispatcher.New(cfg, links)
	if err != nil {
		return err
	}

	serveCtx, stopServing := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(serveCtx)
	if opts.statusAddr != "" {
		srv := dispatcher.NewStatusServer(dispatcher.StatusConfig{
			Logger:   log,
			Gatherer: reg,
			Storage:  storage,
			Addr:     opts.statusAddr,
		}, d)
		g.Go(func() error { return srv.ListenAndServe(gctx) })
	}

	report, runErr := d.Run(ctx, files)
	stopServing()
	if err := g.Wait(); err != nil {
		log.Warn("status server", zap.Error(err))
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if runErr != nil {
		return runErr
	}

	return printReport(out, report)
}
