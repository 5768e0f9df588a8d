// Package extract turns CV files on disk into raw text for ingestion.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file types no extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

// Extractor yields the raw text of a single source file.
type Extractor interface {
	Text(path string) (string, error)
}

// FileExtractor dispatches on file extension: PDF, HTML, and plain text.
type FileExtractor struct{}

// New creates a FileExtractor.
func New() *FileExtractor {
	return &FileExtractor{}
}

// Supported reports whether the file at path has an extension some
// extractor handles.
func (e *FileExtractor) Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".html", ".htm", ".txt", ".md":
		return true
	}
	return false
}

// Text extracts the raw text of the file at path.
func (e *FileExtractor) Text(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return pdfText(path)
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return htmlText(string(data))
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}
