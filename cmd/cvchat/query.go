package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hireloop/cvchat/internal/chunking"
	"github.com/hireloop/cvchat/internal/config"
	"github.com/hireloop/cvchat/internal/cvsearch"
	"github.com/hireloop/cvchat/internal/extract"
	"github.com/hireloop/cvchat/internal/ingest"
	"github.com/hireloop/cvchat/internal/ollama"
	"github.com/hireloop/cvchat/internal/retrieval"
)

// queryCmd runs one retrieval against a fresh index without starting the
// server or the agent. Useful for checking what the model would see.
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Index the CV folder and run a single search (no server)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		return runQuery(dir, args[0])
	},
}

func init() {
	queryCmd.Flags().String("dir", "", "CV directory (default: configured ingest.cv_dir)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cvDir, text string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cvDir != "" {
		cfg.Ingest.CVDir = cvDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	if !ollamaClient.IsRunning(ctx) {
		return fmt.Errorf("Ollama is not reachable at %s", cfg.Ollama.BaseURL)
	}

	store, err := retrieval.OpenStore(":memory:")
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer store.Close()

	embedder := retrieval.NewEmbedder(ollamaClient, cfg.Ollama.EmbedModel)
	index := retrieval.NewIndex(embedder, store)

	pipe, err := ingest.New(extract.New(), index, chunking.Config{
		Size:    cfg.Chunking.Size,
		Overlap: cfg.Chunking.Overlap,
	})
	if err != nil {
		return fmt.Errorf("configuring ingestion: %w", err)
	}

	printStep("Indexing CVs from %s...", cfg.Ingest.CVDir)
	chunks, err := pipe.Run(ctx, cfg.Ingest.CVDir)
	if err != nil {
		return fmt.Errorf("indexing CVs: %w", err)
	}
	printSuccess("Indexed %d chunks", chunks)

	args, err := json.Marshal(map[string]string{"query": text})
	if err != nil {
		return err
	}
	tool := cvsearch.New(index)
	result, err := tool.Handle(ctx, args)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, result)
	return nil
}
