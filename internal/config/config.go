package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	ChromaDB  ChromaDBConfig  `mapstructure:"chromadb"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embeddings"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Collect   CollectConfig   `mapstructure:"collect"`
	Chunk     ChunkConfig     `mapstructure:"chunk"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Session   SessionConfig   `mapstructure:"session"`
}

// ServerConfig holds HTTP server related configuration
type ServerConfig struct {
	Port  int    `mapstructure:"port"`
	Host  string `mapstructure:"host"`
	Debug bool   `mapstructure:"debug"`
}

// ChromaDBConfig holds ChromaDB related configuration
type ChromaDBConfig struct {
	URL string `mapstructure:"url"`
}

// LLMConfig holds completion service related configuration
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// EmbeddingConfig holds embedding backend related configuration. The three
// backends are probed in order: HuggingFace (code model), Ollama, OpenAI.
type EmbeddingConfig struct {
	HFAPIKey     string `mapstructure:"hf_api_key"`
	HFModel      string `mapstructure:"hf_model"`
	OllamaURL    string `mapstructure:"ollama_url"`
	OllamaModel  string `mapstructure:"ollama_model"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`
	BatchSize    int    `mapstructure:"batch_size"`
}

// FetchConfig holds repository fetch related configuration
type FetchConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	AllowedPrefixes []string      `mapstructure:"allowed_prefixes"`
}

// CollectConfig holds file collection related configuration
type CollectConfig struct {
	MaxFileSize      int      `mapstructure:"max_file_size"`
	MinContentLength int      `mapstructure:"min_content_length"`
	MaxTotalFiles    int      `mapstructure:"max_total_files"`
	ExtraExtensions  []string `mapstructure:"extra_extensions"`
	ExtraIgnoreDirs  []string `mapstructure:"extra_ignore_dirs"`
	ExtraIgnoreFiles []string `mapstructure:"extra_ignore_files"`
}

// ChunkConfig holds chunking related configuration
type ChunkConfig struct {
	Size           int `mapstructure:"size"`
	Overlap        int `mapstructure:"overlap"`
	MinChunkLength int `mapstructure:"min_chunk_length"`
}

// RetrievalConfig holds similarity search related configuration
type RetrievalConfig struct {
	K    int `mapstructure:"k"`
	MinK int `mapstructure:"min_k"`
	MaxK int `mapstructure:"max_k"`
}

// SessionConfig holds session lifecycle related configuration
type SessionConfig struct {
	MaxHistory int `mapstructure:"max_history"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("REPOCHAT")
	v.AutomaticEnv()
	bindSecrets(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindSecrets maps the conventional environment variable names for API keys
// onto their config keys so they never have to live in a config file.
func bindSecrets(v *viper.Viper) {
	_ = v.BindEnv("llm.api_key", "GROQ_API_KEY")
	_ = v.BindEnv("embeddings.hf_api_key", "HF_API_KEY")
	_ = v.BindEnv("embeddings.openai_api_key", "OPENAI_API_KEY")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debug", false)

	v.SetDefault("chromadb.url", "http://localhost:8000")

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.1-8b-instant")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", "5m")

	// Embedding defaults
	v.SetDefault("embeddings.hf_model", "microsoft/codebert-base")
	v.SetDefault("embeddings.ollama_url", "http://localhost:11434")
	v.SetDefault("embeddings.ollama_model", "nomic-embed-text")
	v.SetDefault("embeddings.openai_model", "text-embedding-3-small")
	v.SetDefault("embeddings.batch_size", 32)

	// Fetch defaults
	v.SetDefault("fetch.timeout", "300s")
	v.SetDefault("fetch.allowed_prefixes", []string{
		"https://github.com/",
		"git@github.com:",
	})

	// Collection defaults
	v.SetDefault("collect.max_file_size", 500_000)
	v.SetDefault("collect.min_content_length", 20)
	v.SetDefault("collect.max_total_files", 500)

	// Chunking defaults
	v.SetDefault("chunk.size", 1000)
	v.SetDefault("chunk.overlap", 200)
	v.SetDefault("chunk.min_chunk_length", 50)

	// Retrieval defaults
	v.SetDefault("retrieval.k", 5)
	v.SetDefault("retrieval.min_k", 3)
	v.SetDefault("retrieval.max_k", 10)

	v.SetDefault("session.max_history", 50)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ChromaDB.URL == "" {
		return fmt.Errorf("chromadb url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model cannot be empty")
	}
	if c.Chunk.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Chunk.Size)
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		return fmt.Errorf("chunk overlap must be in [0, size), got %d", c.Chunk.Overlap)
	}
	if c.Retrieval.MinK <= 0 || c.Retrieval.MaxK < c.Retrieval.MinK {
		return fmt.Errorf("invalid retrieval k bounds [%d, %d]", c.Retrieval.MinK, c.Retrieval.MaxK)
	}
	return nil
}
