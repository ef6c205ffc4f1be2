package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pdf-rag/internal/models"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultTopK         = 3
	defaultMaxFileMB    = 10

	StoreChromem  = "chromem"
	StorePostgres = "postgres"
)

// LLMConfig configures one external model endpoint. Key is resolved from the
// yaml value first, then from the environment variable named by KeyEnv.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
	KeyEnv   string `yaml:"key_env"`
}

// RAGConfig holds the pipeline tuning knobs.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
	MaxFileMB    int `yaml:"max_file_mb"`
}

// StoreConfig selects the vector index backend.
type StoreConfig struct {
	Type     string `yaml:"type"`
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type Config struct {
	EmbedLLM LLMConfig   `yaml:"embed_llm"`
	InferLLM LLMConfig   `yaml:"infer_llm"`
	RAG      RAGConfig   `yaml:"rag"`
	Store    StoreConfig `yaml:"store"`
}

// LoadConfig reads the yaml config at path, resolving credentials from the
// environment (a .env file is honored if present) and applying defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	resolveKeys(&cfg)
	return &cfg, nil
}

// Validate reports startup-fatal configuration problems.
func (c *Config) Validate() error {
	if c.InferLLM.Model == "" {
		return models.NewConfigError("infer_llm.model", "inference model is required")
	}
	if c.InferLLM.Provider == "openai" && c.InferLLM.Key == "" {
		return models.NewConfigError("infer_llm.key", "missing API key (set key, or key_env to a populated environment variable)")
	}
	if c.EmbedLLM.Provider == "openai" && c.EmbedLLM.Key == "" {
		return models.NewConfigError("embed_llm.key", "missing API key (set key, or key_env to a populated environment variable)")
	}
	if c.EmbedLLM.Model == "" {
		return models.NewConfigError("embed_llm.model", "embedding model is required")
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return models.NewConfigError("rag.chunk_overlap", "overlap must be smaller than chunk size")
	}
	if c.Store.Type == StorePostgres && c.Store.DSN == "" {
		return models.NewConfigError("store.dsn", "postgres store requires a dsn")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.MaxFileMB == 0 {
		cfg.RAG.MaxFileMB = defaultMaxFileMB
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = StoreChromem
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.InferLLM.Provider == "" {
		cfg.InferLLM.Provider = "openai"
	}
}

func resolveKeys(cfg *Config) {
	for _, llm := range []*LLMConfig{&cfg.EmbedLLM, &cfg.InferLLM} {
		if llm.Key == "" && llm.KeyEnv != "" {
			llm.Key = os.Getenv(llm.KeyEnv)
		}
	}
}
