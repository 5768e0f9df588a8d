package retrieval

import (
	"context"
	"fmt"

	"github.com/hireloop/cvchat/internal/chunking"
)

// Index is the similarity-search index: it embeds chunks on insertion and
// queries on lookup, delegating storage and scoring to the Store.
type Index struct {
	embedder *Embedder
	store    *Store
}

// NewIndex creates an Index backed by the given Embedder and Store.
func NewIndex(embedder *Embedder, store *Store) *Index {
	return &Index{embedder: embedder, store: store}
}

// Insert embeds every chunk and stores the whole batch in one
// transaction. Any embedding failure aborts the batch.
func (ix *Index) Insert(ctx context.Context, chunks []chunking.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}

	records := make([]Record, len(chunks))
	for i, ch := range chunks {
		records[i] = Record{
			ID:        ch.ID,
			DocID:     ch.DocID,
			Candidate: ch.Candidate,
			Filename:  ch.Filename,
			Position:  ch.Offset,
			Text:      ch.Text,
			Embedding: vectors[i],
		}
	}
	return ix.store.Insert(records)
}

// Query embeds text and returns the topK most similar records, sorted by
// descending similarity with insertion-order tie-breaking.
func (ix *Index) Query(ctx context.Context, text string, topK int) ([]ScoredRecord, error) {
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return ix.store.Search(vec, topK)
}

// Count returns the number of indexed chunks.
func (ix *Index) Count() (int, error) {
	return ix.store.Count()
}
