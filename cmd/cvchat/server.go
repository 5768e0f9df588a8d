package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/hireloop/cvchat/internal/agent"
	"github.com/hireloop/cvchat/internal/api"
	"github.com/hireloop/cvchat/internal/chunking"
	"github.com/hireloop/cvchat/internal/config"
	"github.com/hireloop/cvchat/internal/cvsearch"
	"github.com/hireloop/cvchat/internal/extract"
	"github.com/hireloop/cvchat/internal/ingest"
	"github.com/hireloop/cvchat/internal/ollama"
	"github.com/hireloop/cvchat/internal/retrieval"
)

var startCmd = &cobra.Command{
	Use:   "start [cv-dir]",
	Short: "Index a CV folder and start the chat server (foreground)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		return runServer(dir)
	},
}

func runServer(cvDir string) error {
	fmt.Fprintf(os.Stderr, "cvchat version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cvDir != "" {
		cfg.Ingest.CVDir = cvDir
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Check Ollama readiness, pulling missing models.
	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	if err := ollama.EnsureReady(ctx, ollamaClient, cfg.Ollama.ChatModel, cfg.Ollama.EmbedModel, os.Stderr); err != nil {
		return err
	}

	// The index lives in memory for the lifetime of the process; every
	// start re-reads the CV folder.
	store, err := retrieval.OpenStore(":memory:")
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing vector store: %v\n", err)
		}
	}()

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
	start := time.Now()
	chunks, err := pipe.Run(ctx, cfg.Ingest.CVDir)
	if err != nil {
		return fmt.Errorf("indexing CVs: %w", err)
	}
	printSuccess("Indexed %d chunks in %s", chunks, time.Since(start).Round(time.Millisecond))

	// Register the CV search tool and build the agent.
	searchTool := cvsearch.New(index)
	registry := agent.NewRegistry()
	registry.Register(searchTool.Definition(), searchTool.Handle)
	chatAgent := agent.New(ollamaClient, cfg.Ollama.ChatModel, registry, cfg.Agent.MaxToolCalls)

	handler := api.NewHandler(api.Deps{
		Agent:  chatAgent,
		Logger: slog.Default(),
	})

	// MCP server on stdio, exposing CV search to external clients.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Searcher: searchTool,
		Index:    index,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "cvchat listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
