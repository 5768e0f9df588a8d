package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/hireloop/cvchat/internal/chunking"
)

func newTestIndex(t *testing.T, engine EmbedEngine) *Index {
	t.Helper()
	store := openTestStore(t)
	return NewIndex(NewEmbedder(engine, "m"), store)
}

func TestIndex_InsertAndQuery(t *testing.T) {
	engine := &fakeEngine{vectors: map[string][]float32{
		"Go and Python services": {1, 0, 0},
		"Frontend React apps":    {0, 1, 0},
		"python":                 {0.9, 0.1, 0},
	}}
	ix := newTestIndex(t, engine)

	chunks := []chunking.Chunk{
		{ID: "c1", DocID: "d1", Candidate: "Alice", Filename: "alice.pdf", Text: "Go and Python services"},
		{ID: "c2", DocID: "d2", Candidate: "Bob", Filename: "bob.pdf", Text: "Frontend React apps"},
	}
	if err := ix.Insert(context.Background(), chunks); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := ix.Query(context.Background(), "python", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Candidate != "Alice" {
		t.Errorf("top candidate = %q, want Alice", results[0].Candidate)
	}
}

func TestIndex_InsertEmbeddingFailureAborts(t *testing.T) {
	ix := newTestIndex(t, &fakeEngine{err: errors.New("down")})

	err := ix.Insert(context.Background(), []chunking.Chunk{{ID: "c1", Text: "x"}})
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("Insert = %v, want ErrEmbedding", err)
	}

	n, err := ix.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d after failed insert, want 0", n)
	}
}

func TestIndex_InsertEmptyBatch(t *testing.T) {
	ix := newTestIndex(t, &fakeEngine{})
	if err := ix.Insert(context.Background(), nil); err != nil {
		t.Errorf("Insert(nil) = %v, want nil", err)
	}
}
