package vectorstore

import (
	"context"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go"
	"github.com/amikos-tech/chroma-go/collection"
	chromatypes "github.com/amikos-tech/chroma-go/types"
	"github.com/rs/zerolog"
)

// ChromaStore implements Store against a ChromaDB server.
type ChromaStore struct {
	client *chromago.Client
	logger zerolog.Logger
}

// NewChromaStore creates a ChromaDB-backed store for the given server URL.
func NewChromaStore(url string, logger zerolog.Logger) (*ChromaStore, error) {
	client, err := chromago.NewClient(chromago.WithBasePath(url))
	if err != nil {
		return nil, fmt.Errorf("failed to create ChromaDB client: %w", err)
	}
	return &ChromaStore{client: client, logger: logger}, nil
}

// CreateCollection creates the named collection and persists all records.
func (s *ChromaStore) CreateCollection(ctx context.Context, name string, records []Record) error {
	col, err := s.client.NewCollection(
		ctx,
		name,
		collection.WithHNSWDistanceFunction(chromatypes.L2),
		collection.WithCreateIfNotExist(true),
	)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	if len(records) == 0 {
		s.logger.Warn().Str("collection", name).Msg("no records to store")
		return nil
	}

	ids := make([]string, 0, len(records))
	documents := make([]string, 0, len(records))
	metadatas := make([]map[string]interface{}, 0, len(records))
	embeddings := make([]*chromatypes.Embedding, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
		documents = append(documents, r.Document)
		metadatas = append(metadatas, r.Metadata)
		embeddings = append(embeddings, r.Embedding)
	}

	if _, err := col.Add(ctx, embeddings, metadatas, documents, ids); err != nil {
		return fmt.Errorf("failed to add documents to collection %s: %w", name, err)
	}

	s.logger.Info().Str("collection", name).Int("count", len(records)).
		Msg("persisted records to collection")
	return nil
}

// Search runs a k-nearest-neighbor query against a collection using the
// provided query vector.
func (s *ChromaStore) Search(ctx context.Context, name string, query *chromatypes.Embedding, k int) ([]Result, error) {
	col, err := s.client.GetCollection(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s: %w", name, err)
	}

	qr, err := col.QueryWithOptions(
		ctx,
		chromatypes.WithQueryEmbedding(query),
		chromatypes.WithNResults(int32(k)),
		chromatypes.WithInclude("documents", "metadatas", "distances"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", name, err)
	}

	var results []Result
	if len(qr.Documents) > 0 {
		for i := range qr.Documents[0] {
			r := Result{Document: qr.Documents[0][i]}
			if len(qr.Distances) > 0 && len(qr.Distances[0]) > i {
				r.Distance = float64(qr.Distances[0][i])
			}
			if len(qr.Metadatas) > 0 && len(qr.Metadatas[0]) > i {
				r.Metadata = qr.Metadatas[0][i]
			}
			results = append(results, r)
		}
	}
	return results, nil
}

// DeleteCollection drops a collection by name.
func (s *ChromaStore) DeleteCollection(ctx context.Context, name string) error {
	if _, err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	return nil
}
