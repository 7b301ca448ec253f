package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.ChromaDB.URL)

	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)

	assert.Equal(t, "microsoft/codebert-base", cfg.Embedding.HFModel)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.OllamaModel)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.OpenAIModel)

	assert.Equal(t, 300*time.Second, cfg.Fetch.Timeout)
	assert.Contains(t, cfg.Fetch.AllowedPrefixes, "https://github.com/")

	assert.Equal(t, 500_000, cfg.Collect.MaxFileSize)
	assert.Equal(t, 20, cfg.Collect.MinContentLength)
	assert.Equal(t, 500, cfg.Collect.MaxTotalFiles)

	assert.Equal(t, 1000, cfg.Chunk.Size)
	assert.Equal(t, 200, cfg.Chunk.Overlap)
	assert.Equal(t, 50, cfg.Chunk.MinChunkLength)

	assert.Equal(t, 5, cfg.Retrieval.K)
	assert.Equal(t, 50, cfg.Session.MaxHistory)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
chunk:
  size: 800
  overlap: 100
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 800, cfg.Chunk.Size)
	assert.Equal(t, 100, cfg.Chunk.Overlap)
	// Untouched keys keep their defaults.
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSecretEnvBindings(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "groq-secret")
	t.Setenv("HF_API_KEY", "hf-secret")
	t.Setenv("OPENAI_API_KEY", "openai-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "groq-secret", cfg.LLM.APIKey)
	assert.Equal(t, "hf-secret", cfg.Embedding.HFAPIKey)
	assert.Equal(t, "openai-secret", cfg.Embedding.OpenAIAPIKey)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.ChromaDB.URL = ""
	assert.ErrorContains(t, cfg.Validate(), "chromadb url")

	cfg = base()
	cfg.Server.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "server port")

	cfg = base()
	cfg.LLM.Model = ""
	assert.ErrorContains(t, cfg.Validate(), "model")

	cfg = base()
	cfg.Chunk.Overlap = cfg.Chunk.Size
	assert.ErrorContains(t, cfg.Validate(), "overlap")

	cfg = base()
	cfg.Retrieval.MaxK = cfg.Retrieval.MinK - 1
	assert.ErrorContains(t, cfg.Validate(), "k bounds")
}
