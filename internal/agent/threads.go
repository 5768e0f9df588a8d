package agent

import (
	"sync"

	"github.com/hireloop/cvchat/internal/ollama"
)

// DefaultThreadID scopes conversations whose caller supplies no id.
const DefaultThreadID = "default"

// thread holds one conversation's message history. Its mutex serializes
// turns: a second message on the same thread waits for the first turn to
// finish, while other threads proceed independently.
type thread struct {
	mu       sync.Mutex
	messages []ollama.Message
}

// Threads is the in-memory conversation store, keyed by opaque thread
// id. Threads are created on first reference and live for the process.
type Threads struct {
	mu      sync.Mutex
	threads map[string]*thread
}

// NewThreads creates an empty thread store.
func NewThreads() *Threads {
	return &Threads{threads: make(map[string]*thread)}
}

// get returns the thread for id, creating it on first reference.
// An empty id maps to DefaultThreadID.
func (t *Threads) get(id string) *thread {
	if id == "" {
		id = DefaultThreadID
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	th, ok := t.threads[id]
	if !ok {
		th = &thread{}
		t.threads[id] = th
	}
	return th
}

// History returns a copy of the given thread's messages. Intended for
// tests and diagnostics; an unknown id yields nil.
func (t *Threads) History(id string) []ollama.Message {
	if id == "" {
		id = DefaultThreadID
	}
	t.mu.Lock()
	th, ok := t.threads[id]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	th.mu.Lock()
	defer th.mu.Unlock()
	return append([]ollama.Message(nil), th.messages...)
}
