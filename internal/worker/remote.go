package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

// Join introduces the node to a remote dispatcher and returns its rank
func (n *Node) Join(ctx context.Context) (int, error) {
	if err := n.link.Send(ctx, protocol.NewHello(n.id, protocol.WordstreamVersion)); err != nil {
		return 0, fmt.Errorf("send hello: %w", err)
	}

	msg, err := n.link.Receive(ctx)
	if err != nil {
		return 0, fmt.Errorf("receive welcome: %w", err)
	}
	if err := protocol.Expect(msg, protocol.KindWelcome); err != nil {
		return 0, err
	}

	if !msg.Welcome.Accepted {
		return 0, fmt.Errorf("%w: %s", protocol.ErrRejected, msg.Welcome.Error)
	}

	n.log.Info("joined dispatcher", zap.Int("rank", msg.Welcome.Rank))
	return msg.Welcome.Rank, nil
}

// Connect dials a dispatcher, joins it and serves chunks until told to stop
func Connect(ctx context.Context, addr string, cfg Config) error {
	conn, err := transport.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	n := NewNode(cfg, conn)
	n.log.Info("starting worker", zap.String("dispatcher", addr), zap.String("version", protocol.WordstreamVersion))

	if _, err := n.Join(ctx); err != nil {
		return fmt.Errorf("join %s: %w", addr, err)
	}

	if err := n.Run(ctx); err != nil {
		return err
	}

	n.log.Info("worker finished", zap.Int("processed", n.Processed()))
	return nil
}
