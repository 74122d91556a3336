package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig holds connection details for one model endpoint.
type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	KeyEnv    string `yaml:"key_env"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Seed      int    `yaml:"seed"`
}

// RAGConfig controls chunking, retrieval and on-disk locations.
type RAGConfig struct {
	DataDir      string `yaml:"data_dir"`
	IndexPath    string `yaml:"index_path"`
	Collection   string `yaml:"collection"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
}

// DatabaseConfig enables the pgvector-backed index instead of chromem.
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Key     string `yaml:"key"`
	Debug   bool   `yaml:"debug"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Server     ServerConfig   `yaml:"server"`
	EmbedLLM   LLMConfig      `yaml:"embed_llm"`
	ChatLLM    LLMConfig      `yaml:"chat_llm"`
	ExtractLLM LLMConfig      `yaml:"extract_llm"`
	RAG        RAGConfig      `yaml:"rag"`
	Database   DatabaseConfig `yaml:"database"`
}

const (
	defaultChunkSize    = 1500 // characters
	defaultChunkOverlap = 100  // characters
	defaultTopK         = 4
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config usable without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.RAG.DataDir == "" {
		cfg.RAG.DataDir = "./uploaded_pdfs"
	}
	if cfg.RAG.IndexPath == "" {
		cfg.RAG.IndexPath = "./chromemdb"
	}
	if cfg.RAG.Collection == "" {
		cfg.RAG.Collection = "pdf_collection"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "nomic-embed-text"
	}
	if cfg.ChatLLM.BaseURL == "" {
		cfg.ChatLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.ChatLLM.Model == "" {
		cfg.ChatLLM.Model = "gemma:2b-instruct"
	}
	if cfg.ChatLLM.MaxTokens == 0 {
		cfg.ChatLLM.MaxTokens = 500
	}
	if cfg.ExtractLLM.Model == "" {
		cfg.ExtractLLM.Model = "gpt-3.5-turbo-0125"
	}
	if cfg.ExtractLLM.MaxTokens == 0 {
		cfg.ExtractLLM.MaxTokens = 4096
	}
	if cfg.ExtractLLM.Seed == 0 {
		cfg.ExtractLLM.Seed = 42
	}
	if cfg.ExtractLLM.KeyEnv == "" {
		cfg.ExtractLLM.KeyEnv = "OPENAI_API_KEY"
	}
	if cfg.ExtractLLM.Key == "" {
		cfg.ExtractLLM.Key = os.Getenv(cfg.ExtractLLM.KeyEnv)
	}
}
