// Package index embeds chunk sequences and persists them into a fresh,
// uniquely named vector store collection per repository load.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/embed"
	"github.com/repochat/repochat/internal/types"
	"github.com/repochat/repochat/internal/vectorstore"
)

// collectionPrefix namespaces collections created by this application.
const collectionPrefix = "codebase"

// Builder turns a load's chunk sequence into an indexed collection.
type Builder struct {
	store    vectorstore.Store
	embedder embed.Embedder
	logger   zerolog.Logger
}

// NewBuilder creates a Builder over the given store and embedding backend.
func NewBuilder(store vectorstore.Store, embedder embed.Embedder, logger zerolog.Logger) *Builder {
	return &Builder{store: store, embedder: embedder, logger: logger}
}

// NewCollectionName returns a fresh collection identifier. Every load gets
// its own collection so concurrent or repeated loads never share state; the
// previous collection simply becomes unreferenced.
func NewCollectionName() string {
	return fmt.Sprintf("%s_%s", collectionPrefix, uuid.NewString()[:8])
}

// Build embeds every chunk and persists the collection, returning its name.
// On failure nothing is left referenced as active: a partially created
// collection is deleted before the error is returned.
func (b *Builder) Build(ctx context.Context, chunks []types.Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", fmt.Errorf("no chunks to index")
	}

	name := NewCollectionName()
	b.logger.Info().Str("collection", name).Int("chunks", len(chunks)).
		Str("embedder", b.embedder.Name()).Msg("building index")

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embs, err := b.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return "", fmt.Errorf("embedding failed: %w", err)
	}
	if len(embs) != len(chunks) {
		return "", fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(embs), len(chunks))
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:        chunkID(c),
			Document:  c.Text,
			Embedding: embs[i],
			Metadata: map[string]interface{}{
				"file_path":      c.SourcePath,
				"file_extension": c.Extension,
				"chunk_index":    c.Ordinal,
				"total_chunks":   c.SiblingCount,
				"source":         fmt.Sprintf("%s#%d", c.SourcePath, c.Ordinal),
			},
		}
	}

	if err := b.store.CreateCollection(ctx, name, records); err != nil {
		if delErr := b.store.DeleteCollection(ctx, name); delErr != nil {
			b.logger.Warn().Str("collection", name).Err(delErr).
				Msg("failed to drop partial collection")
		}
		return "", fmt.Errorf("persisting collection failed: %w", err)
	}

	b.logger.Info().Str("collection", name).Msg("index built")
	return name, nil
}

// chunkID derives a stable unique ID from a chunk's source and position.
func chunkID(c types.Chunk) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", c.SourcePath, c.Ordinal, len(c.Text))))
	return hex.EncodeToString(sum[:])
}
