// Package vectorstore wraps the ChromaDB client behind the narrow contracts
// the index builder and retriever need: create a named collection from
// records, and k-nearest-neighbor search by query vector.
package vectorstore

import (
	"context"

	chromatypes "github.com/amikos-tech/chroma-go/types"
)

// Record is one (text, metadata, vector) triple persisted into a collection.
type Record struct {
	ID        string
	Document  string
	Metadata  map[string]interface{}
	Embedding *chromatypes.Embedding
}

// Result is one search hit, ordered by ascending distance by the store.
type Result struct {
	Document string
	Metadata map[string]interface{}
	Distance float64
}

// Store is the vector store contract. Collection names are opaque unique
// strings owned by the caller.
type Store interface {
	// CreateCollection creates name and persists records into it.
	CreateCollection(ctx context.Context, name string, records []Record) error

	// Search returns up to k results nearest to query, ascending by distance.
	Search(ctx context.Context, collection string, query *chromatypes.Embedding, k int) ([]Result, error)

	// DeleteCollection drops a collection. Used to avoid leaving partial
	// collections referenced after a failed load.
	DeleteCollection(ctx context.Context, name string) error
}
