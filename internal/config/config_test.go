package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.RAG.ChunkSize != 1500 {
		t.Errorf("chunk size %d, want 1500", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.ChunkOverlap != 100 {
		t.Errorf("chunk overlap %d, want 100", cfg.RAG.ChunkOverlap)
	}
	if cfg.ExtractLLM.Seed != 42 {
		t.Errorf("seed %d, want 42", cfg.ExtractLLM.Seed)
	}
	if cfg.ExtractLLM.MaxTokens != 4096 {
		t.Errorf("max tokens %d, want 4096", cfg.ExtractLLM.MaxTokens)
	}
	if cfg.ExtractLLM.Model != "gpt-3.5-turbo-0125" {
		t.Errorf("extract model %q", cfg.ExtractLLM.Model)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
rag:
  chunk_size: 800
  data_dir: "/tmp/docs"
chat_llm:
  model: "llama3"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr %q, want :9090", cfg.Server.Addr)
	}
	if cfg.RAG.ChunkSize != 800 {
		t.Errorf("chunk size %d, want 800", cfg.RAG.ChunkSize)
	}
	if cfg.ChatLLM.Model != "llama3" {
		t.Errorf("chat model %q, want llama3", cfg.ChatLLM.Model)
	}
	// unset fields fall back to defaults
	if cfg.RAG.ChunkOverlap != 100 {
		t.Errorf("chunk overlap %d, want default 100", cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK == 0 {
		t.Error("top_k default not applied")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
