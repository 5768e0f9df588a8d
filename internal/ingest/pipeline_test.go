package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hireloop/cvchat/internal/chunking"
)

// fakeExtractor serves canned text per filename and can fail on demand.
type fakeExtractor struct {
	failOn string
}

func (f *fakeExtractor) Supported(path string) bool {
	return strings.HasSuffix(path, ".txt")
}

func (f *fakeExtractor) Text(path string) (string, error) {
	if f.failOn != "" && strings.HasSuffix(path, f.failOn) {
		return "", errors.New("extraction failed")
	}
	return "content of " + filepath.Base(path), nil
}

// fakeIndex records inserted chunks and can fail on demand.
type fakeIndex struct {
	chunks []chunking.Chunk
	err    error
}

func (f *fakeIndex) Insert(ctx context.Context, chunks []chunking.Chunk) error {
	if f.err != nil {
		return f.err
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func cvDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun(t *testing.T) {
	dir := cvDir(t, "alice_smith.txt", "bob-jones.txt")
	index := &fakeIndex{}
	p, err := New(&fakeExtractor{}, index, chunking.Config{Size: 10, Overlap: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n, err := p.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != len(index.chunks) {
		t.Errorf("Run returned %d, index holds %d", n, len(index.chunks))
	}
	if n == 0 {
		t.Fatal("no chunks ingested")
	}

	candidates := map[string]bool{}
	for _, ch := range index.chunks {
		candidates[ch.Candidate] = true
		if ch.ID == "" || ch.DocID == "" {
			t.Errorf("chunk missing ids: %+v", ch)
		}
		if ch.Filename == "" {
			t.Errorf("chunk missing filename: %+v", ch)
		}
	}
	for _, want := range []string{"alice smith", "bob jones"} {
		if !candidates[want] {
			t.Errorf("candidate %q missing, got %v", want, candidates)
		}
	}
}

func TestRun_SharedDocID(t *testing.T) {
	dir := cvDir(t, "carol.txt")
	index := &fakeIndex{}
	p, err := New(&fakeExtractor{}, index, chunking.Config{Size: 5, Overlap: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Run(context.Background(), dir); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(index.chunks) < 2 {
		t.Fatalf("want multiple chunks, got %d", len(index.chunks))
	}
	docID := index.chunks[0].DocID
	for _, ch := range index.chunks {
		if ch.DocID != docID {
			t.Errorf("chunks of one file have differing doc ids")
		}
		if ch.ID == docID {
			t.Errorf("chunk id equals doc id")
		}
	}
}

func TestRun_ExtractionFailureAborts(t *testing.T) {
	dir := cvDir(t, "alice.txt", "broken.txt")
	index := &fakeIndex{}
	p, err := New(&fakeExtractor{failOn: "broken.txt"}, index, chunking.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Run(context.Background(), dir); err == nil {
		t.Fatal("Run succeeded despite extraction failure")
	}
	if len(index.chunks) != 0 {
		t.Errorf("index holds %d chunks after failed run, want 0", len(index.chunks))
	}
}

func TestRun_IndexFailureAborts(t *testing.T) {
	dir := cvDir(t, "alice.txt")
	p, err := New(&fakeExtractor{}, &fakeIndex{err: errors.New("embed down")}, chunking.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Run(context.Background(), dir); err == nil {
		t.Fatal("Run succeeded despite index failure")
	}
}

func TestRun_SkipsUnsupported(t *testing.T) {
	dir := cvDir(t, "alice.txt", "photo.png", ".DS_Store")
	index := &fakeIndex{}
	p, err := New(&fakeExtractor{}, index, chunking.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := p.Run(context.Background(), dir); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, ch := range index.chunks {
		if ch.Filename != "alice.txt" {
			t.Errorf("unexpected file ingested: %q", ch.Filename)
		}
	}
}

func TestRun_InvalidChunking(t *testing.T) {
	_, err := New(&fakeExtractor{}, &fakeIndex{}, chunking.Config{Size: 10, Overlap: 10})
	if !errors.Is(err, chunking.ErrInvalidConfig) {
		t.Errorf("New = %v, want ErrInvalidConfig", err)
	}
}

func TestCandidateName(t *testing.T) {
	cases := map[string]string{
		"jane_doe.pdf":        "jane doe",
		"bob-jones.txt":       "bob jones",
		"Alice Smith.pdf":     "Alice Smith",
		"carol_van-dam.html":  "carol van dam",
		"plain":               "plain",
		"trailing_.md":        "trailing",
	}
	for in, want := range cases {
		if got := CandidateName(in); got != want {
			t.Errorf("CandidateName(%q) = %q, want %q", in, got, want)
		}
	}
}
