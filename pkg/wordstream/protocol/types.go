package protocol

import (
	"time"

	"pkg.jsn.cam/wordstream/pkg/wordstream"
)

// MessageKind identifies the payload carried by a Message
type MessageKind string

const (
	KindControl MessageKind = "control"
	KindChunk   MessageKind = "chunk"
	KindResult  MessageKind = "result"
	KindHello   MessageKind = "hello"
	KindWelcome MessageKind = "welcome"
)

// Control tells a worker whether another chunk follows
type Control struct {
	Work bool `json:"work"`
}

// ChunkRequest is a chunk sent to one worker
type ChunkRequest struct {
	ID    string           `json:"id"` // echoed back in Result.ChunkID
	Chunk wordstream.Chunk `json:"chunk"`
	Round int              `json:"round"`
}

// Result is a worker's answer to exactly one ChunkRequest
type Result struct {
	ChunkID  string            `json:"chunk_id"`
	WorkerID string            `json:"worker_id"`
	Counts   wordstream.Counts `json:"counts"`
}

// Hello is sent by a remote worker when it connects
type Hello struct {
	WorkerID string `json:"worker_id"`
	Version  string `json:"version"` // wordstream version
}

// Welcome answers a Hello
type Welcome struct {
	Error    string `json:"error,omitempty"`
	Rank     int    `json:"rank"`
	Accepted bool   `json:"accepted"`
}

// Message is a union type for everything exchanged between dispatcher and workers
type Message struct {
	Control *Control      `json:"control,omitempty"`
	Chunk   *ChunkRequest `json:"chunk,omitempty"`
	Result  *Result       `json:"result,omitempty"`
	Hello   *Hello        `json:"hello,omitempty"`
	Welcome *Welcome      `json:"welcome,omitempty"`
	Kind    MessageKind   `json:"kind"`
}

// NewControl wraps a control flag
func NewControl(work bool) Message {
	return Message{Kind: KindControl, Control: &Control{Work: work}}
}

// NewChunk wraps a chunk request
func NewChunk(req *ChunkRequest) Message {
	return Message{Kind: KindChunk, Chunk: req}
}

// NewResult wraps a result
func NewResult(res *Result) Message {
	return Message{Kind: KindResult, Result: res}
}

// NewHello wraps a handshake request
func NewHello(workerID, version string) Message {
	return Message{Kind: KindHello, Hello: &Hello{WorkerID: workerID, Version: version}}
}

// NewWelcome wraps a handshake answer
func NewWelcome(w *Welcome) Message {
	return Message{Kind: KindWelcome, Welcome: w}
}

// Valid reports whether the payload matching Kind is present
func (m Message) Valid() bool {
	switch m.Kind {
	case KindControl:
		return m.Control != nil
	case KindChunk:
		return m.Chunk != nil
	case KindResult:
		return m.Result != nil
	case KindHello:
		return m.Hello != nil
	case KindWelcome:
		return m.Welcome != nil
	default:
		return false
	}
}

// RunState represents the dispatcher's position in the round protocol
type RunState string

const (
	RunStateIdle         RunState = "idle"
	RunStateFetching     RunState = "fetching"
	RunStateDistributing RunState = "distributing"
	RunStateCollecting   RunState = "collecting"
	RunStateDone         RunState = "done"
	RunStateFailed       RunState = "failed"
)

// FileStatus is the running total for one input file
type FileStatus struct {
	Name   string            `json:"name"`
	Error  string            `json:"error,omitempty"`
	Counts wordstream.Counts `json:"counts"`
	Chunks int               `json:"chunks"`
	Bytes  int64             `json:"bytes"`
	Index  int               `json:"index"`
}

// StatusResponse provides overall run status
type StatusResponse struct {
	StartedAt   time.Time    `json:"started_at"`
	RunID       string       `json:"run_id"`
	State       RunState     `json:"state"`
	Error       string       `json:"error,omitempty"`
	Files       []FileStatus `json:"files"`
	Round       int          `json:"round"`
	Chunks      int          `json:"chunks"`
	Workers     int          `json:"workers"`
	CurrentFile int          `json:"current_file"` // -1 when no file is open
}

// HealthResponse indicates node health
type HealthResponse struct {
	Status string `json:"status"`
}
