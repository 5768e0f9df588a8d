package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireloop/cvchat/internal/agent"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Stream markers written around tool activity and on failure.
const (
	toolStartMarker = "\n[Searching CVs...]\n"
	toolEndMarker   = "\n[Done searching]\n"
	errorMarker     = "\n[Error: response failed]\n"
)

// ThreadHeader selects the conversation thread for a chat request.
const ThreadHeader = "X-Thread-ID"

// ChatAgent abstracts the conversational agent for the HTTP layer.
type ChatAgent interface {
	Send(ctx context.Context, threadID, text string) <-chan agent.Event
}

type ChatRequest struct {
	Message string `json:"message"`
}

type Deps struct {
	Agent  ChatAgent
	Logger *slog.Logger
}

// NewHandler returns the HTTP handler for the chat service.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/chat", handleChat(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleChat streams a single agent turn as chunked text/plain. Agent
// events are written in order: tokens as raw text, tool activity
// bracketed by markers, errors as a final marker.
func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		threadID := r.Header.Get(ThreadHeader)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		flusher, canFlush := w.(http.Flusher)

		// The turn must finish even if the client goes away: model and
		// tool calls run on a detached context, and the event channel is
		// drained to completion either way.
		events := deps.Agent.Send(context.WithoutCancel(r.Context()), threadID, req.Message)

		clientGone := r.Context().Done()
		writing := true

		for ev := range events {
			if writing {
				select {
				case <-clientGone:
					writing = false
				default:
				}
			}
			if !writing {
				continue
			}

			switch ev.Type {
			case agent.EventToken:
				fmt.Fprint(w, ev.Token)
			case agent.EventToolStart:
				fmt.Fprint(w, toolStartMarker)
			case agent.EventToolEnd:
				fmt.Fprint(w, ev.ToolResult)
				fmt.Fprint(w, toolEndMarker)
			case agent.EventError:
				deps.Logger.Warn("chat turn failed", "thread", threadID, "error", ev.Err)
				fmt.Fprint(w, errorMarker)
			}
			if canFlush {
				flusher.Flush()
			}
		}
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
