package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"pkg.jsn.cam/wordstream/internal/worker"
	"pkg.jsn.cam/wordstream/pkg/wordstream"
	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
	"pkg.jsn.cam/wordstream/pkg/wordstream/transport"
)

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}

	return path
}

// startPool runs n in-process workers and returns the dispatcher ends of
// their links. wait returns once every worker has exited.
func startPool(t *testing.T, ctx context.Context, n int) (links []transport.Link, wait func() error) {
	t.Helper()

	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		d, w := transport.Pipe(2)
		links = append(links, d)
		node := worker.NewNode(worker.Config{ID: fmt.Sprintf("w%d", i)}, w)
		g.Go(func() error { return node.Run(gctx) })
	}

	return links, g.Wait
}

var words = []string{
	"era", "uma", "vez", "casa", "amarela", "ação", "Ética", "pão",
	"don't", "’tis", "rhythm", "cat", "dog", "elephant", "runs", "x",
	"Curaç", "ônibus", "mar", "sol",
}

var separators = []string{" ", "  ", "\n", ", ", ". ", "—", "…", " “", "” ", "-", "; "}

func randomDocument(r *rand.Rand, n int) string {
	var b strings.Builder
	for range n {
		b.WriteString(words[r.IntN(len(words))])
		b.WriteString(separators[r.IntN(len(separators))])
	}
	if r.IntN(2) == 0 {
		b.WriteString(words[r.IntN(len(words))])
	}

	return b.String()
}

func TestDispatcher_WorkerCountInvariance(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(11, 23))
	dir := t.TempDir()

	var files []string
	var want []wordstream.Counts
	for i := range 4 {
		text := randomDocument(r, 50+r.IntN(300))
		files = append(files, writeFile(t, dir, fmt.Sprintf("doc%d.txt", i), text))
		want = append(want, wordstream.Classify([]rune(text)))
	}

	for _, workers := range []int{1, 2, 3, 7} {
		for _, chunkSize := range []int{1, 16, 500} {
			t.Run(fmt.Sprintf("workers=%d/chunk=%d", workers, chunkSize), func(t *testing.T) {
				t.Parallel()

				ctx := testContext(t)
				links, wait := startPool(t, ctx, workers)

				d, err := New(Config{ChunkSize: chunkSize, Capacity: 10000}, links)
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}

				report, err := d.Run(ctx, files)
				if err != nil {
					t.Fatalf("Run() error = %v", err)
				}
				if err := wait(); err != nil {
					t.Fatalf("worker error = %v", err)
				}

				if len(report.Files) != len(files) {
					t.Fatalf("report has %d files, want %d", len(report.Files), len(files))
				}
				for i, f := range report.Files {
					if f.Index != i || f.Name != files[i] {
						t.Errorf("file %d reported as #%d %s", i, f.Index, f.Name)
					}
					if f.Counts != want[i] {
						t.Errorf("file %d counts = %+v, want %+v", i, f.Counts, want[i])
					}
				}
			})
		}
	}
}

func TestDispatcher_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "a.txt", "cat dog"),
		filepath.Join(dir, "missing.txt"),
		writeFile(t, dir, "empty.txt", ""),
		writeFile(t, dir, "b.txt", "a bc"),
	}

	ctx := testContext(t)
	links, wait := startPool(t, ctx, 2)
	storage := NewNoOpStorage()

	d, err := New(Config{ChunkSize: 4, Storage: storage}, links)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var seen int
	d.cfg.OnChunk = func(wordstream.Chunk) { seen++ }

	report, err := d.Run(ctx, files)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := wait(); err != nil {
		t.Fatalf("worker error = %v", err)
	}

	want := []wordstream.Counts{
		{Words: 2, VowelStarts: 0, ConsonantEnds: 2},
		{},
		{},
		{Words: 2, VowelStarts: 1, ConsonantEnds: 1},
	}
	for i, f := range report.Files {
		if f.Counts != want[i] {
			t.Errorf("%s counts = %+v, want %+v", filepath.Base(f.Name), f.Counts, want[i])
		}
	}

	if report.Files[1].Error == "" {
		t.Error("missing file should carry an error")
	}
	if report.Files[2].Error != "" || report.Files[2].Chunks != 0 {
		t.Errorf("empty file report = %+v", report.Files[2])
	}
	if report.Files[0].Bytes != int64(len("cat dog")) {
		t.Errorf("bytes = %d, want %d", report.Files[0].Bytes, len("cat dog"))
	}
	if report.Chunks == 0 || seen < report.Chunks {
		t.Errorf("chunks = %d, OnChunk saw %d", report.Chunks, seen)
	}
	if total := report.Total(); total.Words != 4 {
		t.Errorf("Total() = %+v", total)
	}

	stored, err := storage.LoadReport(report.RunID)
	if err != nil {
		t.Fatalf("report was not archived: %v", err)
	}
	if stored.Total() != report.Total() {
		t.Errorf("archived totals %+v, want %+v", stored.Total(), report.Total())
	}

	status := d.Status()
	if status.State != protocol.RunStateDone || status.RunID != report.RunID {
		t.Errorf("status = %+v", status)
	}
	if status.CurrentFile != -1 {
		t.Errorf("CurrentFile = %d after run, want -1", status.CurrentFile)
	}
}

func TestDispatcher_RoundEndsAtEndOfFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "one.txt", "um "),
		writeFile(t, dir, "two.txt", "dois "),
	}

	ctx := testContext(t)
	links, wait := startPool(t, ctx, 4)

	d, err := New(Config{ChunkSize: 3}, links)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := d.Run(ctx, files)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := wait(); err != nil {
		t.Fatalf("worker error = %v", err)
	}

	// Each file fills one chunk exactly; its empty terminal chunk ends
	// the round without being sent.
	if report.Chunks != 2 {
		t.Errorf("chunks = %d, want 2", report.Chunks)
	}
	if report.Rounds != 2 {
		t.Errorf("rounds = %d, want 2", report.Rounds)
	}
}

// fakeWorker answers every chunk with the chunk ID reply returns.
func fakeWorker(ctx context.Context, link transport.Link, reply func(req *protocol.ChunkRequest) protocol.Message) error {
	for {
		msg, err := link.Receive(ctx)
		if err != nil {
			return err
		}
		if !msg.Control.Work {
			return nil
		}
		msg, err = link.Receive(ctx)
		if err != nil {
			return err
		}
		if err := link.Send(ctx, reply(msg.Chunk)); err != nil {
			return err
		}
	}
}

func TestDispatcher_ProtocolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reply   func(req *protocol.ChunkRequest) protocol.Message
		wantErr error
	}{
		{
			name: "wrong chunk id",
			reply: func(req *protocol.ChunkRequest) protocol.Message {
				return protocol.NewResult(&protocol.Result{ChunkID: "not-" + req.ID})
			},
			wantErr: ErrProtocolDesync,
		},
		{
			name: "wrong message kind",
			reply: func(req *protocol.ChunkRequest) protocol.Message {
				return protocol.NewControl(true)
			},
			wantErr: protocol.ErrUnexpectedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := testContext(t)
			path := writeFile(t, t.TempDir(), "in.txt", "uma casa amarela")

			d, w := transport.Pipe(2)
			done := make(chan error, 1)
			go func() { done <- fakeWorker(ctx, w, tt.reply) }()

			disp, err := New(Config{}, []transport.Link{d})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			_, err = disp.Run(ctx, []string{path})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if err := <-done; err != nil {
				t.Errorf("worker was not stopped cleanly: %v", err)
			}

			status := disp.Status()
			if status.State != protocol.RunStateFailed || status.Error == "" {
				t.Errorf("status = %+v, want failed with error", status)
			}
		})
	}
}

func TestDispatcher_ChunkOverflowIsFatal(t *testing.T) {
	t.Parallel()

	ctx := testContext(t)
	path := writeFile(t, t.TempDir(), "long.txt", "a "+strings.Repeat("x", 50)+" b")
	links, wait := startPool(t, ctx, 2)
	storage := NewNoOpStorage()

	d, err := New(Config{ChunkSize: 2, Capacity: 10, Storage: storage}, links)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := d.Run(ctx, []string{path}); !errors.Is(err, wordstream.ErrChunkOverflow) {
		t.Fatalf("Run() error = %v, want ErrChunkOverflow", err)
	}
	if err := wait(); err != nil {
		t.Errorf("workers should exit cleanly after a fatal error: %v", err)
	}

	if reports, _ := storage.ListReports(); len(reports) != 0 {
		t.Errorf("failed run was archived: %+v", reports)
	}
}

func TestDispatcher_ContextCancelled(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "in.txt", "olá mundo")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _ := transport.Pipe(2)
	disp, err := New(Config{}, []transport.Link{d})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := disp.Run(ctx, []string{path}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, nil); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("New() without links error = %v, want ErrNoWorkers", err)
	}

	d, _ := transport.Pipe(1)
	if _, err := New(Config{ChunkSize: -5}, []transport.Link{d}); !errors.Is(err, wordstream.ErrInvalidChunkSize) {
		t.Errorf("New() error = %v, want ErrInvalidChunkSize", err)
	}

	disp, err := New(Config{ChunkSize: 10, Capacity: 5}, []transport.Link{d})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := disp.Run(context.Background(), nil); !errors.Is(err, wordstream.ErrInvalidCapacity) {
		t.Errorf("Run() error = %v, want ErrInvalidCapacity", err)
	}
}
