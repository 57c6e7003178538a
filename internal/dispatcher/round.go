package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pkg.jsn.cam/wordstream/pkg/wordstream"
	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

// run is the state of a single Run call
type run struct {
	d      *Dispatcher
	reader *wordstream.ChunkReader
	agg    *aggregator
	report *Report
}

// pending is a chunk a worker owes an answer for
type pending struct {
	req  *protocol.ChunkRequest
	rank int
}

func (r *run) loop(ctx context.Context) error {
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.d.setState(protocol.RunStateDistributing, round)
		start := time.Now()

		sent, exhausted, err := r.distribute(ctx, round)
		if err != nil {
			return err
		}

		if len(sent) > 0 {
			r.d.setState(protocol.RunStateCollecting, round)
			if err := r.collect(ctx, sent); err != nil {
				return err
			}
			r.report.Rounds = round
			r.d.metrics.rounds.Inc()
			r.d.metrics.roundDuration.Observe(time.Since(start).Seconds())
			r.d.log.Debug("round complete", zap.Int("round", round), zap.Int("chunks", len(sent)))
		}
		r.d.publish(r)

		if exhausted {
			return nil
		}
		r.d.setState(protocol.RunStateFetching, round)
	}
}

// distribute hands at most one chunk to each worker in rank order. The
// round ends early at the end of a file. It reports whether every file
// has been consumed.
func (r *run) distribute(ctx context.Context, round int) ([]pending, bool, error) {
	var sent []pending

	for rank, link := range r.d.links {
		chunk, err := r.reader.Next()
		if errors.Is(err, wordstream.ErrNoMoreFiles) {
			return sent, true, nil
		}

		var fe *wordstream.FileError
		if errors.As(err, &fe) {
			r.agg.fail(fe)
			r.d.metrics.fileErrors.Inc()
			r.d.log.Warn("skipping file", zap.String("file", fe.Name), zap.Error(fe.Err))
			return sent, false, nil
		}
		if err != nil {
			return sent, false, err
		}

		r.agg.read(chunk)
		r.d.metrics.bytes.Add(float64(chunk.Bytes))
		if r.d.cfg.OnChunk != nil {
			r.d.cfg.OnChunk(chunk)
		}

		if chunk.Terminal() {
			return sent, false, nil
		}

		req := &protocol.ChunkRequest{
			ID:    uuid.New().String(),
			Chunk: chunk,
			Round: round,
		}
		if err := link.Send(ctx, protocol.NewControl(true)); err != nil {
			return sent, false, fmt.Errorf("worker %d: send control: %w", rank, err)
		}
		if err := link.Send(ctx, protocol.NewChunk(req)); err != nil {
			return sent, false, fmt.Errorf("worker %d: send chunk: %w", rank, err)
		}

		sent = append(sent, pending{req: req, rank: rank})
		r.agg.dispatched(chunk)
		r.report.Chunks++
		r.d.metrics.chunks.Inc()

		if chunk.EOF {
			return sent, false, nil
		}
	}

	return sent, false, nil
}

// collect waits for one result from every worker sent a chunk this round.
// Answers may arrive in any order; totals are folded only once all are in.
func (r *run) collect(ctx context.Context, sent []pending) error {
	results := make([]wordstream.Counts, len(sent))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range sent {
		link := r.d.links[p.rank]
		g.Go(func() error {
			msg, err := link.Receive(gctx)
			if err != nil {
				return fmt.Errorf("worker %d: receive result: %w", p.rank, err)
			}
			if err := protocol.Expect(msg, protocol.KindResult); err != nil {
				return fmt.Errorf("worker %d: %w", p.rank, err)
			}
			if msg.Result.ChunkID != p.req.ID {
				return fmt.Errorf("%w: worker %d answered chunk %q, expected %q",
					ErrProtocolDesync, p.rank, msg.Result.ChunkID, p.req.ID)
			}
			results[i] = msg.Result.Counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, p := range sent {
		r.agg.add(p.req.Chunk.FileIndex, results[i])
		r.d.metrics.words.WithLabelValues("all").Add(float64(results[i].Words))
		r.d.metrics.words.WithLabelValues("vowel_start").Add(float64(results[i].VowelStarts))
		r.d.metrics.words.WithLabelValues("consonant_end").Add(float64(results[i].ConsonantEnds))
	}

	return nil
}
