package dispatcher

import (
	"time"

	"pkg.jsn.cam/wordstream/pkg/wordstream"
	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

// FileReport holds the totals for one input file
type FileReport struct {
	Name   string            `json:"name"`
	Error  string            `json:"error,omitempty"` // set when the file was skipped or cut short
	Counts wordstream.Counts `json:"counts"`
	Index  int               `json:"index"`
	Chunks int               `json:"chunks"`
	Bytes  int64             `json:"bytes"`
}

// Report is the outcome of one run
type Report struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	RunID      string       `json:"run_id"`
	Files      []FileReport `json:"files"`
	Rounds     int          `json:"rounds"`
	Chunks     int          `json:"chunks"`
	Workers    int          `json:"workers"`
	ChunkSize  int          `json:"chunk_size"`
}

// Duration returns how long the run took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Bytes returns the raw bytes read across all files
func (r *Report) Bytes() int64 {
	var n int64
	for _, f := range r.Files {
		n += f.Bytes
	}
	return n
}

// Total sums the counters of every file
func (r *Report) Total() wordstream.Counts {
	var c wordstream.Counts
	for _, f := range r.Files {
		c.Add(f.Counts)
	}
	return c
}

// aggregator keeps per-file running totals. It is owned by the
// dispatcher goroutine.
type aggregator struct {
	files []FileReport
}

func newAggregator(names []string) *aggregator {
	files := make([]FileReport, len(names))
	for i, name := range names {
		files[i] = FileReport{Index: i, Name: name}
	}

	return &aggregator{files: files}
}

// read records a chunk pulled from a file, dispatched or not
func (a *aggregator) read(c wordstream.Chunk) {
	a.files[c.FileIndex].Bytes += int64(c.Bytes)
}

// dispatched records a chunk handed to a worker
func (a *aggregator) dispatched(c wordstream.Chunk) {
	a.files[c.FileIndex].Chunks++
}

func (a *aggregator) add(index int, c wordstream.Counts) {
	a.files[index].Counts.Add(c)
}

func (a *aggregator) fail(fe *wordstream.FileError) {
	a.files[fe.Index].Error = fe.Err.Error()
}

func (a *aggregator) reports() []FileReport {
	out := make([]FileReport, len(a.files))
	copy(out, a.files)
	return out
}

func (a *aggregator) status() []protocol.FileStatus {
	out := make([]protocol.FileStatus, len(a.files))
	for i, f := range a.files {
		out[i] = protocol.FileStatus{
			Name:   f.Name,
			Error:  f.Error,
			Counts: f.Counts,
			Chunks: f.Chunks,
			Bytes:  f.Bytes,
			Index:  f.Index,
		}
	}
	return out
}
