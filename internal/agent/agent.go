// Package agent runs the conversational loop: per user message it lets
// the model interleave tool invocations with token generation, producing
// an ordered event stream for one turn.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hireloop/cvchat/internal/ollama"
)

// ErrModel wraps failures of the model collaborator. The failed turn is
// rolled back; the thread stays usable for the next message.
var ErrModel = errors.New("model invocation error")

// ErrToolLoopExceeded ends a turn in which the model kept requesting
// tools past the per-turn limit.
var ErrToolLoopExceeded = errors.New("tool call limit exceeded")

// DefaultMaxToolCalls bounds tool invocations per turn. One tool call is
// the expected case; the bound only exists to stop a misbehaving model.
const DefaultMaxToolCalls = 4

const systemPrompt = "You are a recruiting assistant with access to a set of candidate CVs. " +
	"Use the search_cvs tool to look up candidates before answering questions about " +
	"their skills or experience. Answer concisely and only from retrieved CV content."

// Streamer is the model collaborator. *ollama.Client satisfies it.
type Streamer interface {
	ChatStream(ctx context.Context, model string, messages []ollama.Message, tools []ollama.Tool, fn func(ollama.Delta) error) error
}

// Agent drives the turn-taking state machine over a thread store.
type Agent struct {
	engine       engineRef
	tools        *Registry
	threads      *Threads
	maxToolCalls int
	logger       *slog.Logger
}

type engineRef struct {
	streamer Streamer
	model    string
}

// New creates an Agent. If maxToolCalls <= 0, DefaultMaxToolCalls is used.
func New(streamer Streamer, model string, tools *Registry, maxToolCalls int) *Agent {
	if maxToolCalls <= 0 {
		maxToolCalls = DefaultMaxToolCalls
	}
	return &Agent{
		engine:       engineRef{streamer: streamer, model: model},
		tools:        tools,
		threads:      NewThreads(),
		maxToolCalls: maxToolCalls,
		logger:       slog.Default(),
	}
}

// Threads exposes the agent's thread store for diagnostics and tests.
func (a *Agent) Threads() *Threads {
	return a.threads
}

// Send runs one turn for the given thread and returns its event channel.
// The channel is closed exactly once, when the turn completes or fails;
// a failed turn emits a final EventError. The consumer must drain the
// channel. Turns on the same thread serialize; distinct threads run
// concurrently.
func (a *Agent) Send(ctx context.Context, threadID, text string) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		a.run(ctx, threadID, text, events)
	}()
	return events
}

func (a *Agent) run(ctx context.Context, threadID, text string, events chan<- Event) {
	th := a.threads.get(threadID)
	th.mu.Lock()
	defer th.mu.Unlock()

	if len(th.messages) == 0 {
		th.messages = append(th.messages, ollama.Message{Role: "system", Content: systemPrompt})
	}
	th.messages = append(th.messages, ollama.Message{Role: "user", Content: text})

	// Rollback point: on failure the thread keeps the user message but
	// none of the turn's assistant or tool entries.
	base := len(th.messages)

	fail := func(err error) {
		th.messages = th.messages[:base]
		a.logger.Warn("turn failed", "thread", threadID, "error", err)
		events <- Event{Type: EventError, Err: err}
	}

	var response strings.Builder
	toolCalls := 0

	for {
		var pending []ollama.ToolCall
		toolPhase := false

		err := a.engine.streamer.ChatStream(ctx, a.engine.model, th.messages, a.tools.Definitions(), func(d ollama.Delta) error {
			if len(d.ToolCalls) > 0 {
				pending = append(pending, d.ToolCalls...)
				toolPhase = true
				return nil
			}
			// Text arriving after a tool request in the same reply is
			// model scratch output; never forward it.
			if d.Content != "" && !toolPhase {
				response.WriteString(d.Content)
				events <- Event{Type: EventToken, Token: d.Content}
			}
			return nil
		})
		if err != nil {
			fail(fmt.Errorf("%w: %v", ErrModel, err))
			return
		}

		if len(pending) == 0 {
			// Responding finished: commit the assistant message.
			th.messages = append(th.messages, ollama.Message{Role: "assistant", Content: response.String()})
			return
		}

		for _, call := range pending {
			toolCalls++
			if toolCalls > a.maxToolCalls {
				fail(fmt.Errorf("%w: %d calls in one turn", ErrToolLoopExceeded, toolCalls))
				return
			}

			a.logger.Debug("tool requested", "thread", threadID, "tool", call.Function.Name)
			events <- Event{Type: EventToolStart}

			result, err := a.tools.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				fail(fmt.Errorf("tool %s: %w", call.Function.Name, err))
				return
			}
			events <- Event{Type: EventToolEnd, ToolResult: result}

			th.messages = append(th.messages,
				ollama.Message{Role: "assistant", ToolCalls: []ollama.ToolCall{call}},
				ollama.Message{Role: "tool", Content: result},
			)
		}
		// Back to the model with the tool results incorporated.
	}
}
