package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the QA service. It is loaded once by the
// host process and passed by reference; core packages never read the
// environment themselves.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Answer    AnswerConfig    `mapstructure:"answer"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug bool `mapstructure:"debug"`
	// Mode is the default answer strategy: baseline | local | llm.
	// Empty means auto-select from the configured backends.
	Mode string `mapstructure:"mode"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// CorpusConfig locates the source document and the index snapshot.
type CorpusConfig struct {
	Path         string `mapstructure:"path"`
	SnapshotPath string `mapstructure:"snapshot_path"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
}

// RetrievalConfig tunes BM25 retrieval and the admission gates.
type RetrievalConfig struct {
	K            int     `mapstructure:"k"`
	MinBestScore float64 `mapstructure:"min_best_score"`
	MinOverlap   float64 `mapstructure:"min_overlap"`
}

// AnswerConfig tunes answer synthesis and validation.
type AnswerConfig struct {
	MaxSentences    int     `mapstructure:"max_sentences"`
	MaxContextChars int     `mapstructure:"max_context_chars"`
	MinGrounding    float64 `mapstructure:"min_grounding"`
	// WeakScore marks answers built from low-scoring retrieval; the
	// extractive header switches to its hedged variant below it.
	WeakScore float64 `mapstructure:"weak_score"`
}

// OllamaConfig configures the local generation backend.
type OllamaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig configures the remote OpenAI-compatible generation backend.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.mode", "")
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("corpus.path", "data/doc_chatbot.txt")
	viper.SetDefault("corpus.snapshot_path", "data/baseline_bm25.gob")
	viper.SetDefault("corpus.chunk_size", 500)
	viper.SetDefault("corpus.chunk_overlap", 50)
	viper.SetDefault("retrieval.k", 5)
	viper.SetDefault("retrieval.min_best_score", 0.15)
	viper.SetDefault("retrieval.min_overlap", 0.12)
	viper.SetDefault("answer.max_sentences", 6)
	viper.SetDefault("answer.max_context_chars", 9000)
	viper.SetDefault("answer.min_grounding", 0.05)
	viper.SetDefault("answer.weak_score", 0.30)
	viper.SetDefault("ollama.base_url", "")
	viper.SetDefault("ollama.model", "qwen2.5:3b")
	viper.SetDefault("ollama.timeout", 12*time.Second)
	viper.SetDefault("openai.api_key", "")
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.3)
	viper.SetDefault("openai.max_tokens", 512)
	viper.SetDefault("openai.timeout", 120*time.Second)
}

// LoadConfig reads configuration from an optional file plus RISKRAG_* env
// overrides. A missing file is fine; defaults cover every key.
func LoadConfig(path string) (*Config, error) {
	setDefaults()

	if path == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("RISKRAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no pipeline could run with.
func (c *Config) Validate() error {
	if c.Corpus.Path == "" {
		return fmt.Errorf("corpus.path must be set")
	}
	if c.Retrieval.K <= 0 {
		return fmt.Errorf("retrieval.k must be > 0")
	}
	if c.Corpus.ChunkSize <= 0 {
		return fmt.Errorf("corpus.chunk_size must be > 0")
	}
	if c.Corpus.ChunkOverlap < 0 || c.Corpus.ChunkOverlap >= c.Corpus.ChunkSize {
		return fmt.Errorf("corpus.chunk_overlap must be in [0, chunk_size)")
	}
	if c.Answer.MaxContextChars <= 0 {
		return fmt.Errorf("answer.max_context_chars must be > 0")
	}
	return nil
}
