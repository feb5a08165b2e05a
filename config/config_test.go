package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for an explicitly named missing file")
	}

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Server.Address != ":8000" {
		t.Fatalf("expected default address, got %q", cfg.Server.Address)
	}
	if cfg.Retrieval.K != 5 || cfg.Retrieval.MinBestScore != 0.15 || cfg.Retrieval.MinOverlap != 0.12 {
		t.Fatalf("unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Corpus.ChunkSize != 500 || cfg.Corpus.ChunkOverlap != 50 {
		t.Fatalf("unexpected corpus defaults: %+v", cfg.Corpus)
	}
	if cfg.Ollama.Timeout != 12*time.Second {
		t.Fatalf("unexpected ollama timeout: %v", cfg.Ollama.Timeout)
	}
	if cfg.General.Mode != "" {
		t.Fatalf("default mode must be auto-select, got %q", cfg.General.Mode)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
general:
  mode: baseline
server:
  address: ":9001"
retrieval:
  k: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.General.Mode != "baseline" {
		t.Fatalf("expected mode baseline, got %q", cfg.General.Mode)
	}
	if cfg.Server.Address != ":9001" {
		t.Fatalf("expected overridden address, got %q", cfg.Server.Address)
	}
	if cfg.Retrieval.K != 3 {
		t.Fatalf("expected k=3, got %d", cfg.Retrieval.K)
	}
	// untouched keys keep their defaults
	if cfg.Answer.MaxSentences != 6 {
		t.Fatalf("expected default max_sentences, got %d", cfg.Answer.MaxSentences)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.Corpus.Path = "doc.txt"
		c.Corpus.ChunkSize = 500
		c.Corpus.ChunkOverlap = 50
		c.Retrieval.K = 5
		c.Answer.MaxContextChars = 9000
		return c
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	c := base()
	c.Corpus.Path = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for empty corpus path")
	}

	c = base()
	c.Retrieval.K = 0
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for k=0")
	}

	c = base()
	c.Corpus.ChunkOverlap = 500
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for overlap >= chunk size")
	}
}
