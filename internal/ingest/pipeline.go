// Package ingest loads CV files from a directory and feeds them through
// extraction, chunking, and embedding into the similarity index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hireloop/cvchat/internal/chunking"
)

// TextExtractor yields raw text per source file.
type TextExtractor interface {
	Text(path string) (string, error)
	Supported(path string) bool
}

// ChunkIndex inserts chunk batches into the similarity index.
type ChunkIndex interface {
	Insert(ctx context.Context, chunks []chunking.Chunk) error
}

// Pipeline orchestrates the one-shot startup ingestion:
// load → tag → chunk → embed → index.
type Pipeline struct {
	extractor TextExtractor
	index     ChunkIndex
	cfg       chunking.Config
	logger    *slog.Logger
}

// New creates a Pipeline. The chunking config is validated here so bad
// parameters are rejected at startup rather than mid-run.
func New(extractor TextExtractor, index ChunkIndex, cfg chunking.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		extractor: extractor,
		index:     index,
		cfg:       cfg,
		logger:    slog.Default(),
	}, nil
}

// Run ingests every supported file under dir and returns the total chunk
// count. Ingestion is fail-fast: the first extraction or embedding error
// aborts the whole run. Files with unsupported extensions are skipped.
func (p *Pipeline) Run(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading CV directory %s: %w", dir, err)
	}

	var batch []chunking.Chunk
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !p.extractor.Supported(name) {
			p.logger.Warn("skipping unsupported file", "file", name)
			continue
		}

		path := filepath.Join(dir, name)
		text, err := p.extractor.Text(path)
		if err != nil {
			return 0, fmt.Errorf("extracting %s: %w", name, err)
		}

		docID := uuid.New().String()
		candidate := CandidateName(name)
		count := 0
		for ch := range p.cfg.Split(text) {
			ch.ID = uuid.New().String()
			ch.DocID = docID
			ch.Candidate = candidate
			ch.Filename = name
			batch = append(batch, ch)
			count++
		}
		p.logger.Info("loaded CV", "file", name, "candidate", candidate, "chunks", count)
	}

	// One insert per directory so a failing embed leaves the index empty
	// rather than half-built.
	if err := p.index.Insert(ctx, batch); err != nil {
		return 0, fmt.Errorf("indexing %d chunks: %w", len(batch), err)
	}

	return len(batch), nil
}

// CandidateName derives a display name from a CV filename: the extension
// is dropped and separators become spaces, so "jane_doe.pdf" → "jane doe".
func CandidateName(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
