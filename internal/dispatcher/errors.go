package dispatcher

import "errors"

var (
	ErrNoWorkers       = errors.New("no workers")
	ErrProtocolDesync  = errors.New("protocol desynchronised")
	ErrReportNotFound  = errors.New("report not found")
	ErrPoolFull        = errors.New("worker pool is full")
	ErrDuplicateWorker = errors.New("worker already joined")
)
