// Package embed selects and wraps the embedding backend used for both
// index-time and query-time vectors. Three interchangeable backends present
// one interface; availability is probed once at startup and call sites never
// branch on which is active.
package embed

import (
	"context"
	"fmt"

	chromatypes "github.com/amikos-tech/chroma-go/types"
)

// Embedder produces fixed-dimension vectors for chunk texts and queries.
// A collection must be written and queried with the same Embedder or the
// distances are meaningless.
type Embedder interface {
	// Name identifies the active backend for logging.
	Name() string

	// EmbedTexts embeds a batch of chunk texts, preserving order.
	EmbedTexts(ctx context.Context, texts []string) ([]*chromatypes.Embedding, error)

	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) (*chromatypes.Embedding, error)
}

// backend adapts a chroma-go embedding function to the Embedder interface
// and batches large inputs.
type backend struct {
	name      string
	ef        chromatypes.EmbeddingFunction
	batchSize int
}

func newBackend(name string, ef chromatypes.EmbeddingFunction, batchSize int) *backend {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &backend{name: name, ef: ef, batchSize: batchSize}
}

func (b *backend) Name() string { return b.name }

func (b *backend) EmbedTexts(ctx context.Context, texts []string) ([]*chromatypes.Embedding, error) {
	out := make([]*chromatypes.Embedding, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		embs, err := b.ef.EmbedDocuments(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%s: embed batch [%d:%d]: %w", b.name, start, end, err)
		}
		out = append(out, embs...)
	}
	return out, nil
}

func (b *backend) EmbedQuery(ctx context.Context, text string) (*chromatypes.Embedding, error) {
	emb, err := b.ef.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s: embed query: %w", b.name, err)
	}
	return emb, nil
}
