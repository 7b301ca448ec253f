// Package answer turns a question into a grounded response: it retrieves the
// nearest chunks from the active collection, assembles a bounded context
// prompt, and calls the completion service.
package answer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/embed"
	"github.com/repochat/repochat/internal/types"
	"github.com/repochat/repochat/internal/vectorstore"
)

const (
	// DefaultK is the default number of retrieval results.
	DefaultK = 5
	// DefaultMinK and DefaultMaxK bound the result count unless the
	// retriever is configured otherwise.
	DefaultMinK = 3
	DefaultMaxK = 10
)

// Retriever performs similarity search with the same embedding backend used
// at index time.
type Retriever struct {
	store    vectorstore.Store
	embedder embed.Embedder
	logger   zerolog.Logger

	minK int
	maxK int
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithKBounds overrides the allowed result count range.
func WithKBounds(min, max int) RetrieverOption {
	return func(r *Retriever) {
		if min > 0 && max >= min {
			r.minK = min
			r.maxK = max
		}
	}
}

// NewRetriever creates a Retriever over the given store and embedder.
func NewRetriever(store vectorstore.Store, embedder embed.Embedder, logger zerolog.Logger, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger,
		minK:     DefaultMinK,
		maxK:     DefaultMaxK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// clampK forces k into the retriever's range, substituting the default for
// non-positive values.
func (r *Retriever) clampK(k int) int {
	if k <= 0 {
		k = DefaultK
	}
	if k < r.minK {
		return r.minK
	}
	if k > r.maxK {
		return r.maxK
	}
	return k
}

// Retrieve embeds the query and returns up to k results ordered by ascending
// distance. With no active collection it returns an empty result set rather
// than an error, so the conversational loop keeps going.
func (r *Retriever) Retrieve(ctx context.Context, collection, query string, k int) ([]types.RetrievalResult, error) {
	if collection == "" {
		r.logger.Debug().Msg("retrieve called with no active collection")
		return nil, nil
	}
	k = r.clampK(k)

	emb, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	hits, err := r.store.Search(ctx, collection, emb, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]types.RetrievalResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.RetrievalResult{
			Chunk:    chunkFromHit(h),
			Distance: h.Distance,
		})
	}

	r.logger.Debug().Str("collection", collection).Int("k", k).
		Int("results", len(results)).Msg("retrieval complete")
	return results, nil
}

// chunkFromHit rebuilds a Chunk from a stored document and its metadata.
// Numeric metadata comes back as float64 from the JSON transport.
func chunkFromHit(h vectorstore.Result) types.Chunk {
	c := types.Chunk{Text: h.Document}
	if v, ok := h.Metadata["file_path"].(string); ok {
		c.SourcePath = v
	}
	if v, ok := h.Metadata["file_extension"].(string); ok {
		c.Extension = v
	}
	if v, ok := h.Metadata["chunk_index"].(float64); ok {
		c.Ordinal = int(v)
	}
	if v, ok := h.Metadata["total_chunks"].(float64); ok {
		c.SiblingCount = int(v)
	}
	return c
}
