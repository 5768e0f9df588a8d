package config

import (
	"testing"
)

// mapBackend is an in-memory test double for Backend.
type mapBackend struct {
	data map[string]any
	err  error
}

func (m *mapBackend) GetString(key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", false, nil
	}
	return s, true, nil
}

func (m *mapBackend) GetInt(key string) (int, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return 0, false, nil
	}
	i, isInt := v.(int)
	if !isInt {
		return 0, false, nil
	}
	return i, true, nil
}

func (m *mapBackend) SetString(key, val string) error { m.data[key] = val; return nil }
func (m *mapBackend) SetInt(key string, val int) error { m.data[key] = val; return nil }
func (m *mapBackend) Delete(key string) error          { delete(m.data, key); return nil }

func TestDefaults(t *testing.T) {
	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("Ollama.BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.ChatModel != "llama3.1" {
		t.Errorf("Ollama.ChatModel = %q", cfg.Ollama.ChatModel)
	}
	if cfg.Ollama.EmbedModel != "nomic-embed-text" {
		t.Errorf("Ollama.EmbedModel = %q", cfg.Ollama.EmbedModel)
	}
	if cfg.Chunking.Size != 2000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("Chunking = %+v, want 2000/200", cfg.Chunking)
	}
	if cfg.Agent.MaxToolCalls != 4 {
		t.Errorf("Agent.MaxToolCalls = %d, want 4", cfg.Agent.MaxToolCalls)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestBackendValues(t *testing.T) {
	b := &mapBackend{data: map[string]any{
		"server.port":          9000,
		"ollama.chat_model":    "qwen2.5",
		"ingest.cv_dir":        "/data/cvs",
		"chunking.size":        1000,
		"chunking.overlap":     100,
		"agent.max_tool_calls": 2,
	}}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Ollama.ChatModel != "qwen2.5" {
		t.Errorf("Ollama.ChatModel = %q", cfg.Ollama.ChatModel)
	}
	if cfg.Ingest.CVDir != "/data/cvs" {
		t.Errorf("Ingest.CVDir = %q", cfg.Ingest.CVDir)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 100 {
		t.Errorf("Chunking = %+v, want 1000/100", cfg.Chunking)
	}
	if cfg.Agent.MaxToolCalls != 2 {
		t.Errorf("Agent.MaxToolCalls = %d, want 2", cfg.Agent.MaxToolCalls)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	b := &mapBackend{data: map[string]any{
		"ollama.base_url": "http://file:11434",
	}}

	t.Setenv("CVCHAT_OLLAMA_BASE_URL", "http://env:11434")
	t.Setenv("CVCHAT_SERVER_PORT", "7070")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Ollama.BaseURL != "http://env:11434" {
		t.Errorf("Ollama.BaseURL = %q, want env value", cfg.Ollama.BaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestEnvBadIntKeepsDefault(t *testing.T) {
	t.Setenv("CVCHAT_SERVER_PORT", "not-a-port")

	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want the 8080 default", cfg.Server.Port)
	}
}

func TestShowAll(t *testing.T) {
	infos := ShowAll(defaults())

	if len(infos) != len(specs) {
		t.Fatalf("ShowAll returned %d keys, want %d", len(infos), len(specs))
	}
	byKey := make(map[string]KeyInfo, len(infos))
	for _, ki := range infos {
		byKey[ki.Key] = ki
	}
	if byKey["ollama.chat_model"].Value != "llama3.1" {
		t.Errorf("ollama.chat_model = %q", byKey["ollama.chat_model"].Value)
	}
	if byKey["server.port"].EnvVar != "CVCHAT_SERVER_PORT" {
		t.Errorf("server.port env = %q", byKey["server.port"].EnvVar)
	}
}
