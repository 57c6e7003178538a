package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

// Config holds worker configuration
type Config struct {
	Logger *zap.Logger
	ID     string // defaults to a random UUID
}

// Node is a stateless worker bound to one link to the dispatcher
type Node struct {
	link      transport.Link
	processor *Processor
	log       *zap.Logger
	id        string
	processed int
}

// NewNode creates a new worker node
func NewNode(cfg Config, link transport.Link) *Node {
	id := cfg.ID
	if id == "" {
		id = uuid.New().String()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("worker").With(zap.String("worker", id))

	return &Node{
		link:      link,
		processor: NewProcessor(id, logger),
		log:       logger,
		id:        id,
	}
}

// ID returns the worker ID
func (n *Node) ID() string {
	return n.id
}

// Processed returns how many chunks this node has classified
func (n *Node) Processed() int {
	return n.processed
}

// Run serves chunks until the dispatcher signals there is no more work.
// Each round is a control message, then a chunk, then the reply.
func (n *Node) Run(ctx context.Context) error {
	n.log.Debug("waiting for work")

	for {
		msg, err := n.link.Receive(ctx)
		if err != nil {
			return fmt.Errorf("receive control: %w", err)
		}
		if err := protocol.Expect(msg, protocol.KindControl); err != nil {
			return err
		}

		if !msg.Control.Work {
			n.log.Debug("no more work", zap.Int("processed", n.processed))
			return nil
		}

		msg, err = n.link.Receive(ctx)
		if err != nil {
			return fmt.Errorf("receive chunk: %w", err)
		}
		if err := protocol.Expect(msg, protocol.KindChunk); err != nil {
			return err
		}

		res := n.processor.Process(msg.Chunk)
		if err := n.link.Send(ctx, protocol.NewResult(res)); err != nil {
			return fmt.Errorf("send result for chunk %s: %w", res.ChunkID, err)
		}
		n.processed++
	}
}
