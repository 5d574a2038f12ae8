package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig configures the knowledge store.
type StoreConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// FilesConfig configures the document file store.
type FilesConfig struct {
	Dir string `yaml:"dir"`
}

// AIConfig configures the OpenAI-compatible embedding and completion services.
type AIConfig struct {
	Host            string  `yaml:"host"`
	EmbeddingHost   string  `yaml:"embedding_host,omitempty"`
	CompletionHost  string  `yaml:"completion_host,omitempty"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	CompletionModel string  `yaml:"completion_model"`
	TokenEnv        string  `yaml:"token_env"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
}

// DialogflowConfig configures the intent classifier.
type DialogflowConfig struct {
	ProjectID       string `yaml:"project_id"`
	Language        string `yaml:"language"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// RetrievalConfig configures the similarity query of a turn.
type RetrievalConfig struct {
	TopK          int     `yaml:"top_k"`
	MinSimilarity float32 `yaml:"min_similarity"`
}

// ChunkingConfig configures document splitting, in runes.
type ChunkingConfig struct {
	WindowSize int `yaml:"window_size"`
	Overlap    int `yaml:"overlap"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Files      FilesConfig      `yaml:"files"`
	AI         AIConfig         `yaml:"ai"`
	Dialogflow DialogflowConfig `yaml:"dialogflow"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
}

// Load reads a config from the given path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration: a local store and a local
// OpenAI-compatible endpoint.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Store.Path == "" && !cfg.Store.InMemory {
		cfg.Store.Path = "data/charla"
	}
	if cfg.Files.Dir == "" {
		cfg.Files.Dir = "data/documents"
	}
	if cfg.AI.Host == "" {
		cfg.AI.Host = "http://localhost:11434/v1"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "embeddinggemma"
	}
	if cfg.AI.CompletionModel == "" {
		cfg.AI.CompletionModel = "qwen2.5:3b"
	}
	if cfg.AI.TokenEnv == "" {
		cfg.AI.TokenEnv = "CHARLA_AI_TOKEN"
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.2
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 512
	}
	if cfg.Dialogflow.Language == "" {
		cfg.Dialogflow.Language = "es"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.MinSimilarity == 0 {
		cfg.Retrieval.MinSimilarity = 0.60
	}
	if cfg.Chunking.WindowSize == 0 {
		cfg.Chunking.WindowSize = 1000
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 200
	}
}
