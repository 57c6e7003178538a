package worker

import (
	"go.uber.org/zap"

	"pkg.jsn.cam/wordstream/pkg/wordstream"
	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

// Processor classifies chunks
type Processor struct {
	log      *zap.Logger
	workerID string
}

// NewProcessor creates a new chunk processor
func NewProcessor(workerID string, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		log:      log,
		workerID: workerID,
	}
}

// Process classifies one chunk with fresh state and builds the reply
func (p *Processor) Process(req *protocol.ChunkRequest) *protocol.Result {
	counts := wordstream.Classify(req.Chunk.Points)

	p.log.Debug("processed chunk",
		zap.String("chunk", req.ID),
		zap.Int("round", req.Round),
		zap.Int("file", req.Chunk.FileIndex),
		zap.Int("points", req.Chunk.Len()),
		zap.Int("words", counts.Words))

	return &protocol.Result{
		ChunkID:  req.ID,
		WorkerID: p.workerID,
		Counts:   counts,
	}
}
