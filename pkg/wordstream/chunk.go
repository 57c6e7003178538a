package wordstream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

const (
	// DefaultMaxFill is the number of code points read before a chunk
	// starts looking for a word boundary.
	DefaultMaxFill = 500
	// DefaultExtension is how far past MaxFill a chunk may grow while
	// looking for a split character.
	DefaultExtension = 4096
)

// ChunkConfig holds chunk reader configuration
type ChunkConfig struct {
	// Open opens an input file. Defaults to os.Open.
	Open     func(name string) (io.ReadCloser, error)
	Logger   *zap.Logger
	MaxFill  int
	Capacity int // hard limit on points per chunk, defaults to MaxFill + DefaultExtension
}

type openFile struct {
	rc    io.ReadCloser
	dec   *Decoder
	name  string
	index int
}

// ChunkReader cuts an ordered list of files into word-aligned chunks.
// It owns the only open file handle; the next file is opened lazily on
// the first call after the previous one was closed.
type ChunkReader struct {
	cur   *openFile
	log   *zap.Logger
	names []string
	cfg   ChunkConfig
	next  int
}

// NewChunkReader creates a reader over names.
func NewChunkReader(names []string, cfg ChunkConfig) (*ChunkReader, error) {
	if cfg.MaxFill < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, cfg.MaxFill)
	}
	if cfg.MaxFill == 0 {
		cfg.MaxFill = DefaultMaxFill
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = cfg.MaxFill + DefaultExtension
	}
	if cfg.Capacity < cfg.MaxFill {
		return nil, fmt.Errorf("%w: %d is below chunk size %d", ErrInvalidCapacity, cfg.Capacity, cfg.MaxFill)
	}
	if cfg.Open == nil {
		cfg.Open = func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChunkReader{
		names: names,
		cfg:   cfg,
		log:   logger.Named("chunks"),
	}, nil
}

// Next returns the next chunk.
//
// The last chunk of each file has EOF set; it is empty when the file
// ended exactly on a chunk boundary. A file that cannot be opened or read
// yields an empty EOF chunk together with a *FileError. Once every file
// has been consumed Next returns ErrNoMoreFiles.
func (r *ChunkReader) Next() (Chunk, error) {
	if r.cur == nil {
		if r.next >= len(r.names) {
			return Chunk{}, ErrNoMoreFiles
		}

		index := r.next
		r.next++
		if err := r.open(index); err != nil {
			r.log.Warn("unable to open file", zap.String("file", r.names[index]), zap.Error(err))
			return Chunk{FileIndex: index, EOF: true}, &FileError{Index: index, Name: r.names[index], Err: err}
		}
	}

	f := r.cur
	start := f.dec.Consumed()
	buf := NewPointBuffer(r.cfg.MaxFill, r.cfg.Capacity)

	eof, err := r.fill(f.dec, buf)
	if err != nil {
		r.closeCurrent()
		if errors.Is(err, ErrChunkOverflow) {
			return Chunk{}, fmt.Errorf("file %s: %w", f.name, err)
		}

		r.log.Warn("read failed, skipping rest of file", zap.String("file", f.name), zap.Error(err))
		return Chunk{FileIndex: f.index, EOF: true}, &FileError{Index: f.index, Name: f.name, Err: err}
	}

	chunk := Chunk{
		FileIndex: f.index,
		Points:    buf.Points(),
		Bytes:     f.dec.Consumed() - start,
		EOF:       eof,
	}

	if eof {
		if f.dec.Truncated() {
			r.log.Debug("truncated sequence treated as end of file", zap.String("file", f.name))
		}
		r.closeCurrent()
	}

	return chunk, nil
}

// Current returns the index of the open file, if any.
func (r *ChunkReader) Current() (int, bool) {
	if r.cur == nil {
		return 0, false
	}

	return r.cur.index, true
}

// Close releases the open file, if any.
func (r *ChunkReader) Close() error {
	if r.cur == nil {
		return nil
	}
	err := r.cur.rc.Close()
	r.cur = nil

	return err
}

func (r *ChunkReader) open(index int) error {
	rc, err := r.cfg.Open(r.names[index])
	if err != nil {
		return err
	}

	r.cur = &openFile{
		rc:    rc,
		dec:   NewDecoder(rc),
		name:  r.names[index],
		index: index,
	}
	r.log.Debug("opened file", zap.String("file", r.names[index]), zap.Int("index", index))

	return nil
}

func (r *ChunkReader) closeCurrent() {
	f := r.cur
	r.cur = nil
	if err := f.rc.Close(); err != nil {
		r.log.Warn("close failed", zap.String("file", f.name), zap.Error(err))
	}
	r.log.Debug("closed file", zap.String("file", f.name), zap.Int("bytes", f.dec.Consumed()))
}

// fill reads up to MaxFill points, then keeps reading until the chunk
// ends on a split character. It reports whether end of file was hit.
func (r *ChunkReader) fill(dec *Decoder, buf *PointBuffer) (bool, error) {
	for buf.Len() < r.cfg.MaxFill {
		eof, err := r.pull(dec, buf)
		if eof || err != nil {
			return eof, err
		}
	}

	for {
		if last, _ := buf.Last(); IsSplit(last) {
			return false, nil
		}

		eof, err := r.pull(dec, buf)
		if eof || err != nil {
			return eof, err
		}
	}
}

func (r *ChunkReader) pull(dec *Decoder, buf *PointBuffer) (bool, error) {
	c, err := dec.Next()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return false, buf.Append(c)
}
