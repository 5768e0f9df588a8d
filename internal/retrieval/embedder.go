// Package retrieval combines embedding generation and a SQLite-backed
// vector store into the similarity-search index used by the chat agent.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrEmbedding wraps failures of the embedding provider: unreachable
// backend or malformed vectors. Never retried here; callers decide.
var ErrEmbedding = errors.New("embedding provider error")

// EmbedEngine generates embeddings for text. *ollama.Client satisfies it.
type EmbedEngine interface {
	Embed(ctx context.Context, model string, text string) ([]float32, error)
}

// Embedder wraps an EmbedEngine with a fixed model name and validates
// that every vector it hands out is well-formed.
type Embedder struct {
	engine EmbedEngine
	model  string
	dim    int // dimension of the first vector seen; 0 until then
}

// NewEmbedder creates an Embedder using the given engine and model name.
func NewEmbedder(e EmbedEngine, model string) *Embedder {
	return &Embedder{engine: e, model: model}
}

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.engine.Embed(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrEmbedding)
	}
	if e.dim == 0 {
		e.dim = len(vec)
	} else if len(vec) != e.dim {
		return nil, fmt.Errorf("%w: dimension %d, expected %d", ErrEmbedding, len(vec), e.dim)
	}
	return vec, nil
}

// EmbedBatch returns embedding vectors for multiple texts concurrently.
// Returns nil (not error) for empty/nil input.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4) // Bound concurrency to avoid overwhelming the engine.

	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.engine.Embed(gCtx, e.model, text)
			if err != nil {
				return fmt.Errorf("%w: text %d: %v", ErrEmbedding, i, err)
			}
			if len(vec) == 0 {
				return fmt.Errorf("%w: empty vector for text %d", ErrEmbedding, i)
			}
			results[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, vec := range results {
		if e.dim == 0 {
			e.dim = len(vec)
		} else if len(vec) != e.dim {
			return nil, fmt.Errorf("%w: dimension %d, expected %d", ErrEmbedding, len(vec), e.dim)
		}
	}
	return results, nil
}
