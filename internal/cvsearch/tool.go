// Package cvsearch implements the search_cvs tool: semantic search over
// the CV index with results aggregated per candidate.
package cvsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hireloop/cvchat/internal/ollama"
	"github.com/hireloop/cvchat/internal/retrieval"
)

// Name is the tool identifier exposed to the model.
const Name = "search_cvs"

// NoResultsText is the exact reply for queries with zero index hits.
const NoResultsText = "No relevant CVs found for your query."

// topK is the fixed similarity cutoff for every search.
const topK = 4

// Searcher answers similarity queries. *retrieval.Index satisfies it.
type Searcher interface {
	Query(ctx context.Context, text string, topK int) ([]retrieval.ScoredRecord, error)
}

// Tool wraps the index behind the agent-callable search_cvs contract.
type Tool struct {
	index Searcher
}

// New creates the search_cvs tool over the given index.
func New(index Searcher) *Tool {
	return &Tool{index: index}
}

// Definition returns the tool schema sent to the model.
func (t *Tool) Definition() ollama.Tool {
	return ollama.Tool{
		Type: "function",
		Function: ollama.ToolFunction{
			Name:        Name,
			Description: "Search the indexed candidate CVs for passages relevant to a natural-language query. Use this whenever the user asks about candidates, their skills, or their experience.",
			Parameters: ollama.ToolParams{
				Type: "object",
				Properties: map[string]ollama.ToolProperty{
					"query": {
						Type:        "string",
						Description: "Natural-language search query, e.g. \"candidates with Python experience\"",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

// Handle executes one search. Raw nearest-neighbor hits are grouped by
// candidate (first-seen order) so the model reasons over coherent
// profiles instead of disjoint fragments.
func (t *Tool) Handle(ctx context.Context, args json.RawMessage) (string, error) {
	var a searchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", fmt.Errorf("parsing search_cvs arguments: %w", err)
	}
	if strings.TrimSpace(a.Query) == "" {
		return "", fmt.Errorf("search_cvs: query is required")
	}

	records, err := t.index.Query(ctx, a.Query, topK)
	if err != nil {
		return "", fmt.Errorf("searching CVs: %w", err)
	}

	return Format(records), nil
}

// Format renders scored records into the per-candidate report.
func Format(records []retrieval.ScoredRecord) string {
	if len(records) == 0 {
		return NoResultsText
	}

	var order []string
	grouped := make(map[string][]string)
	for _, r := range records {
		if _, seen := grouped[r.Candidate]; !seen {
			order = append(order, r.Candidate)
		}
		grouped[r.Candidate] = append(grouped[r.Candidate], r.Text)
	}

	var sb strings.Builder
	sb.WriteString("Here's what I found in the CVs:\n")
	for _, candidate := range order {
		sb.WriteString(fmt.Sprintf("\n**%s:**\n", candidate))
		for _, text := range grouped[candidate] {
			sb.WriteString(text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
