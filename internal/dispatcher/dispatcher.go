package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/pkg/wordstream"
	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

// stopTimeout bounds the "no more work" broadcast after a failed run.
const stopTimeout = 5 * time.Second

// Config holds dispatcher configuration
type Config struct {
	Logger  *zap.Logger
	Storage Storage  // nil keeps reports in memory only
	Metrics *Metrics // nil registers on a private registry
	// OnChunk is called for every chunk read, dispatched or not.
	OnChunk func(wordstream.Chunk)
	// Open overrides how input files are opened.
	Open      func(name string) (io.ReadCloser, error)
	ChunkSize int // code points per chunk before boundary extension
	Capacity  int // hard limit on code points per chunk
}

// Dispatcher reads files, fans chunks out to a fixed pool of workers
// round-robin and folds their answers into per-file totals
type Dispatcher struct {
	log     *zap.Logger
	storage Storage
	metrics *Metrics
	links   []transport.Link
	cfg     Config

	mu     sync.RWMutex
	status protocol.StatusResponse
}

// New creates a dispatcher over an already connected pool. Worker rank is
// the position in links.
func New(cfg Config, links []transport.Link) (*Dispatcher, error) {
	if len(links) == 0 {
		return nil, ErrNoWorkers
	}
	if cfg.ChunkSize < 0 {
		return nil, fmt.Errorf("%w: %d", wordstream.ErrInvalidChunkSize, cfg.ChunkSize)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = wordstream.DefaultMaxFill
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	storage := cfg.Storage
	if storage == nil {
		storage = NewNoOpStorage()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}
	metrics.workers.Set(float64(len(links)))

	return &Dispatcher{
		log:     logger.Named("dispatcher"),
		storage: storage,
		metrics: metrics,
		links:   links,
		cfg:     cfg,
		status: protocol.StatusResponse{
			State:       protocol.RunStateIdle,
			Workers:     len(links),
			CurrentFile: -1,
		},
	}, nil
}

// Workers returns the pool size
func (d *Dispatcher) Workers() int {
	return len(d.links)
}

// Run processes files in order and returns their totals. Soft file
// failures are recorded in the report; anything else aborts the run.
// Workers are always told there is no more work before Run returns.
func (d *Dispatcher) Run(ctx context.Context, files []string) (*Report, error) {
	reader, err := wordstream.NewChunkReader(files, wordstream.ChunkConfig{
		Open:     d.cfg.Open,
		Logger:   d.log,
		MaxFill:  d.cfg.ChunkSize,
		Capacity: d.cfg.Capacity,
	})
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	r := &run{
		d:      d,
		reader: reader,
		agg:    newAggregator(files),
		report: &Report{
			RunID:     uuid.New().String(),
			StartedAt: time.Now(),
			Workers:   len(d.links),
			ChunkSize: d.cfg.ChunkSize,
		},
	}
	d.begin(r)

	log := d.log.With(zap.String("run", r.report.RunID))
	log.Info("run started", zap.Int("files", len(files)), zap.Int("workers", len(d.links)), zap.Int("chunk_size", d.cfg.ChunkSize))

	err = r.loop(ctx)

	stopCtx := ctx
	if err != nil {
		var cancel context.CancelFunc
		stopCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()
	}
	if stopErr := d.broadcastStop(stopCtx); stopErr != nil {
		if err == nil {
			err = stopErr
		} else {
			log.Warn("unable to stop every worker", zap.Error(stopErr))
		}
	}

	r.report.FinishedAt = time.Now()
	r.report.Files = r.agg.reports()

	if err != nil {
		d.finish(r, err)
		d.metrics.runs.WithLabelValues("failed").Inc()
		log.Error("run failed", zap.Error(err), zap.Int("round", r.report.Rounds))
		return nil, err
	}

	d.finish(r, nil)
	d.metrics.runs.WithLabelValues("ok").Inc()
	if err := d.storage.SaveReport(r.report); err != nil {
		log.Warn("failed to archive report", zap.Error(err))
	}

	log.Info("run finished",
		zap.Int("rounds", r.report.Rounds),
		zap.Int("chunks", r.report.Chunks),
		zap.Duration("elapsed", r.report.Duration()))

	return r.report, nil
}

// broadcastStop tells every worker there is no more work. Every link is
// attempted even if some fail.
func (d *Dispatcher) broadcastStop(ctx context.Context) error {
	var errs []error
	for rank, link := range d.links {
		if err := link.Send(ctx, protocol.NewControl(false)); err != nil {
			errs = append(errs, fmt.Errorf("worker %d: send stop: %w", rank, err))
		}
	}
	return errors.Join(errs...)
}

// Status returns a snapshot of the current run
func (d *Dispatcher) Status() protocol.StatusResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := d.status
	s.Files = append([]protocol.FileStatus(nil), d.status.Files...)
	return s
}

func (d *Dispatcher) begin(r *run) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status = protocol.StatusResponse{
		StartedAt:   r.report.StartedAt,
		RunID:       r.report.RunID,
		State:       protocol.RunStateFetching,
		Files:       r.agg.status(),
		Workers:     len(d.links),
		CurrentFile: -1,
	}
}

func (d *Dispatcher) setState(state protocol.RunState, round int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status.State = state
	d.status.Round = round
}

// publish copies the running totals into the status snapshot
func (d *Dispatcher) publish(r *run) {
	current := -1
	if idx, ok := r.reader.Current(); ok {
		current = idx
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.status.Files = r.agg.status()
	d.status.Chunks = r.report.Chunks
	d.status.CurrentFile = current
}

func (d *Dispatcher) finish(r *run, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status.Files = r.agg.status()
	d.status.Chunks = r.report.Chunks
	d.status.Round = r.report.Rounds
	d.status.CurrentFile = -1
	if err != nil {
		d.status.State = protocol.RunStateFailed
		d.status.Error = err.Error()
		return
	}
	d.status.State = protocol.RunStateDone
}
