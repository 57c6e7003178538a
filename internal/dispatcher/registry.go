package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

// Registry admits remote workers into a fixed-size pool
type Registry struct {
	log   *zap.Logger
	ids   map[string]int
	links []transport.Link
	size  int
	mu    sync.Mutex
}

// NewRegistry creates a registry that admits up to size workers
func NewRegistry(size int, logger *zap.Logger) (*Registry, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: pool size %d", ErrNoWorkers, size)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		log:  logger.Named("registry"),
		ids:  make(map[string]int),
		size: size,
	}, nil
}

// Admit runs the handshake on link and returns the worker's rank. A
// rejected worker has already been told why when Admit returns.
func (r *Registry) Admit(ctx context.Context, link transport.Link) (int, error) {
	msg, err := link.Receive(ctx)
	if err != nil {
		return 0, fmt.Errorf("receive hello: %w", err)
	}
	if err := protocol.Expect(msg, protocol.KindHello); err != nil {
		return 0, err
	}
	hello := msg.Hello

	rank, err := r.register(hello)
	if err != nil {
		r.log.Warn("rejected worker", zap.String("worker", hello.WorkerID), zap.String("version", hello.Version), zap.Error(err))
		if sendErr := link.Send(ctx, protocol.NewWelcome(&protocol.Welcome{Error: err.Error()})); sendErr != nil {
			return 0, errors.Join(err, sendErr)
		}
		return 0, err
	}

	if err := link.Send(ctx, protocol.NewWelcome(&protocol.Welcome{Accepted: true, Rank: rank})); err != nil {
		r.unregister(hello.WorkerID)
		return 0, fmt.Errorf("send welcome: %w", err)
	}

	r.mu.Lock()
	r.links[rank] = link
	r.mu.Unlock()

	r.log.Info("worker joined", zap.String("worker", hello.WorkerID), zap.Int("rank", rank))
	return rank, nil
}

func (r *Registry) register(hello *protocol.Hello) (int, error) {
	if err := protocol.CheckVersion(hello.Version); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[hello.WorkerID]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateWorker, hello.WorkerID)
	}
	if len(r.ids) >= r.size {
		return 0, ErrPoolFull
	}

	rank := len(r.links)
	r.ids[hello.WorkerID] = rank
	r.links = append(r.links, nil)
	return rank, nil
}

// unregister is only valid for the most recently registered worker
func (r *Registry) unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rank, ok := r.ids[id]; ok && rank == len(r.links)-1 {
		delete(r.ids, id)
		r.links = r.links[:rank]
	}
}

// Full reports whether every slot is taken
func (r *Registry) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.links) == r.size
}

// Links returns the admitted links in rank order
func (r *Registry) Links() []transport.Link {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transport.Link(nil), r.links...)
}

// Close closes every admitted link
func (r *Registry) Close() error {
	var errs []error
	for _, l := range r.Links() {
		if l != nil {
			errs = append(errs, l.Close())
		}
	}
	return errors.Join(errs...)
}

// Accept takes connections from ln until the pool is full. Workers that
// fail the handshake are dropped and do not take a slot.
func (r *Registry) Accept(ctx context.Context, ln *transport.Listener) ([]transport.Link, error) {
	r.log.Info("waiting for workers", zap.String("addr", ln.Addr()), zap.Int("workers", r.size))

	for !r.Full() {
		conn, err := ln.Accept(ctx)
		if err != nil {
			return nil, fmt.Errorf("accept: %w", err)
		}

		if _, err := r.Admit(ctx, conn); err != nil {
			r.log.Warn("handshake failed", zap.String("remote", conn.RemoteAddr()), zap.Error(err))
			conn.Close()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		}
	}

	return r.Links(), nil
}
