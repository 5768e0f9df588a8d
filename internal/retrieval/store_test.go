package retrieval

import (
	"fmt"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeRecord(id, candidate string, vec []float32) Record {
	return Record{
		ID:        id,
		DocID:     "doc-" + id,
		Candidate: candidate,
		Filename:  candidate + ".pdf",
		Text:      "chunk " + id,
		Embedding: vec,
	}
}

func TestInsertAndSearch(t *testing.T) {
	s := openTestStore(t)

	vec := []float32{1, 0, 0}
	if err := s.Insert([]Record{makeRecord("r1", "alice", vec)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search(vec, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score < 0.99 {
		t.Errorf("score = %f, want > 0.99", results[0].Score)
	}
	if results[0].ID != "r1" {
		t.Errorf("ID = %q, want %q", results[0].ID, "r1")
	}
	if results[0].Candidate != "alice" {
		t.Errorf("Candidate = %q, want %q", results[0].Candidate, "alice")
	}
}

func TestSearch_TopKAndOrder(t *testing.T) {
	s := openTestStore(t)

	// Synthetic vectors of known cosine similarity to the query (1,0,0):
	// r0 = 1.0, r1 ≈ 0.894, r2 = 0.0.
	records := []Record{
		makeRecord("r0", "a", []float32{1, 0, 0}),
		makeRecord("r1", "b", []float32{2, 1, 0}),
		makeRecord("r2", "c", []float32{0, 1, 0}),
	}
	if err := s.Insert(records); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "r0" || results[1].ID != "r1" {
		t.Errorf("order = [%s %s], want [r0 r1]", results[0].ID, results[1].ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %f then %f", results[0].Score, results[1].Score)
	}
}

func TestSearch_TiesBrokenByInsertionOrder(t *testing.T) {
	s := openTestStore(t)

	// Identical vectors score identically; earlier insert must win.
	same := []float32{1, 1, 0}
	var records []Record
	for i := 0; i < 5; i++ {
		records = append(records, makeRecord(fmt.Sprintf("r%d", i), "x", same))
	}
	if err := s.Insert(records); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search(same, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"r0", "r1", "r2"}
	for i, w := range want {
		if results[i].ID != w {
			t.Errorf("results[%d] = %q, want %q", i, results[i].ID, w)
		}
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	results, err := s.Search([]float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearch_ZeroQueryVector(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert([]Record{makeRecord("r1", "a", []float32{1, 0, 0})}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := s.Search([]float32{0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Errorf("got results for zero vector, want none")
	}
}

func TestCount(t *testing.T) {
	s := openTestStore(t)
	if err := s.Insert([]Record{
		makeRecord("r1", "a", []float32{1, 0, 0}),
		makeRecord("r2", "b", []float32{0, 1, 0}),
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}
