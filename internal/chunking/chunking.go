// Package chunking splits document text into bounded, overlapping
// segments suitable for embedding and retrieval.
package chunking

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidConfig is returned when chunking parameters cannot produce a
// valid sliding window.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

const (
	// DefaultSize is the default chunk width in runes.
	DefaultSize = 2000
	// DefaultOverlap is the default number of runes shared between
	// adjacent chunks.
	DefaultOverlap = 200
)

// Chunk is a bounded substring of a source document, tagged with enough
// metadata to trace it back to the candidate it came from.
type Chunk struct {
	ID        string
	DocID     string
	Candidate string
	Filename  string
	Offset    int // rune offset of Text within the parent document
	Text      string
}

// Config describes the sliding window: chunk i starts at rune offset
// i*(Size-Overlap) and spans Size runes, the last chunk truncated to the
// remaining length. Adjacent chunks share Overlap runes, so concatenating
// the sequence with overlaps removed reconstructs the parent text.
type Config struct {
	Size    int
	Overlap int
}

// DefaultConfig returns the standard window used for CV ingestion.
func DefaultConfig() Config {
	return Config{Size: DefaultSize, Overlap: DefaultOverlap}
}

// Validate checks the window parameters.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidConfig, c.Overlap, c.Size)
	}
	return nil
}

// Split returns the chunk sequence for text. The sequence is lazy and
// restartable: ranging over it again re-walks the text from the start.
// Split panics if the config is invalid; call Validate first.
// Offsets and sizes are measured in runes so multi-byte text never splits
// mid-character.
func (c Config) Split(text string) iter.Seq[Chunk] {
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return func(yield func(Chunk) bool) {
		runes := []rune(text)
		step := c.Size - c.Overlap
		for start := 0; start < len(runes); start += step {
			end := start + c.Size
			if end > len(runes) {
				end = len(runes)
			}
			if !yield(Chunk{Offset: start, Text: string(runes[start:end])}) {
				return
			}
			if end == len(runes) {
				return
			}
		}
	}
}
