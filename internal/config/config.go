package config

type Config struct {
	Server   ServerConfig
	Ollama   OllamaConfig
	Ingest   IngestConfig
	Chunking ChunkingConfig
	Agent    AgentConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL    string
	ChatModel  string
	EmbedModel string
}

type IngestConfig struct {
	CVDir string
}

type ChunkingConfig struct {
	Size    int
	Overlap int
}

type AgentConfig struct {
	MaxToolCalls int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			ChatModel:  "llama3.1",
			EmbedModel: "nomic-embed-text",
		},
		Ingest: IngestConfig{
			CVDir: "./cvs",
		},
		Chunking: ChunkingConfig{
			Size:    2000,
			Overlap: 200,
		},
		Agent: AgentConfig{
			MaxToolCalls: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the config file at
// $XDG_CONFIG_HOME/cvchat/config.json, then applies CVCHAT_* environment
// variable overrides on top.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}
