package wordstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Chunking errors
	ErrNoMoreFiles      = errors.New("no more files")
	ErrChunkOverflow    = errors.New("chunk capacity exceeded")
	ErrInvalidChunkSize = errors.New("invalid chunk size")
	ErrInvalidCapacity  = errors.New("invalid chunk capacity")
)

// FileError reports a per-file failure. It is recoverable: the file is
// skipped and the run carries on with the next one.
type FileError struct {
	Err   error
	Name  string
	Index int
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
