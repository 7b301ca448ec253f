package embed

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	chromahf "github.com/amikos-tech/chroma-go/pkg/embeddings/hf"
	chromaollama "github.com/amikos-tech/chroma-go/pkg/embeddings/ollama"
	chromaopenai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
	chromatypes "github.com/amikos-tech/chroma-go/types"
	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/config"
)

// ErrNoBackend is returned when no embedding backend is available.
var ErrNoBackend = errors.New("no embedding backend available")

// probeTimeout bounds the local Ollama availability check.
const probeTimeout = 2 * time.Second

// Select probes the configured backends in preference order and returns the
// first available one: the code-specialized HuggingFace model, then a local
// Ollama model, then a general-purpose OpenAI model. Provider functions are
// adapted onto the legacy embedding interface the collection layer consumes.
func Select(cfg config.EmbeddingConfig, logger zerolog.Logger) (Embedder, error) {
	if cfg.HFAPIKey != "" {
		ef := chromahf.NewHuggingFaceEmbeddingFunction(cfg.HFAPIKey, cfg.HFModel)
		logger.Info().Str("backend", "huggingface").Str("model", cfg.HFModel).
			Msg("selected embedding backend")
		return newBackend("huggingface/"+cfg.HFModel, adapt(ef), cfg.BatchSize), nil
	}
	logger.Debug().Msg("huggingface embedding backend unavailable: no API key")

	if ollamaReachable(cfg.OllamaURL) {
		ef, err := chromaollama.NewOllamaEmbeddingFunction(
			chromaollama.WithBaseURL(cfg.OllamaURL),
			chromaollama.WithModel(embeddings.EmbeddingModel(cfg.OllamaModel)),
		)
		if err != nil {
			return nil, fmt.Errorf("ollama embedding function: %w", err)
		}
		logger.Info().Str("backend", "ollama").Str("model", cfg.OllamaModel).
			Msg("selected embedding backend")
		return newBackend("ollama/"+cfg.OllamaModel, adapt(ef), cfg.BatchSize), nil
	}
	logger.Debug().Str("url", cfg.OllamaURL).Msg("ollama embedding backend unreachable")

	if cfg.OpenAIAPIKey != "" {
		ef, err := chromaopenai.NewOpenAIEmbeddingFunction(
			cfg.OpenAIAPIKey,
			chromaopenai.WithModel(chromaopenai.EmbeddingModel(cfg.OpenAIModel)),
		)
		if err != nil {
			return nil, fmt.Errorf("openai embedding function: %w", err)
		}
		logger.Info().Str("backend", "openai").Str("model", cfg.OpenAIModel).
			Msg("selected embedding backend")
		return newBackend("openai/"+cfg.OpenAIModel, adapt(ef), cfg.BatchSize), nil
	}
	logger.Debug().Msg("openai embedding backend unavailable: no API key")

	return nil, ErrNoBackend
}

// adapt bridges a provider embedding function onto the legacy interface used
// by the collection layer.
func adapt(ef embeddings.EmbeddingFunction) chromatypes.EmbeddingFunction {
	return chromatypes.NewV2EmbeddingFunctionAdapter(ef)
}

// ollamaReachable reports whether an Ollama server answers at baseURL.
func ollamaReachable(baseURL string) bool {
	if baseURL == "" {
		return false
	}
	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Get(strings.TrimSuffix(baseURL, "/") + "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
