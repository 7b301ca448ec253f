package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	chromatypes "github.com/amikos-tech/chroma-go/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repochat/repochat/internal/types"
	"github.com/repochat/repochat/internal/vectorstore"
)

type fakeStore struct {
	createErr error

	created map[string][]vectorstore.Record
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{created: make(map[string][]vectorstore.Record)}
}

func (s *fakeStore) CreateCollection(_ context.Context, name string, records []vectorstore.Record) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created[name] = records
	return nil
}

func (s *fakeStore) Search(context.Context, string, *chromatypes.Embedding, int) ([]vectorstore.Result, error) {
	return nil, nil
}

func (s *fakeStore) DeleteCollection(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

type fakeEmbedder struct {
	err   error
	short bool

	batches [][]string
}

func (fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([]*chromatypes.Embedding, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([]*chromatypes.Embedding, n)
	for i := 0; i < n; i++ {
		out[i] = chromatypes.NewEmbeddingFromFloat32([]float32{float32(i)})
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) (*chromatypes.Embedding, error) {
	return chromatypes.NewEmbeddingFromFloat32([]float32{0}), nil
}

func testChunks() []types.Chunk {
	return []types.Chunk{
		{Text: "def a(): pass", SourcePath: "a.py", Extension: ".py", Ordinal: 0, SiblingCount: 2},
		{Text: "def b(): pass", SourcePath: "a.py", Extension: ".py", Ordinal: 1, SiblingCount: 2},
		{Text: "func C() {}", SourcePath: "c.go", Extension: ".go", Ordinal: 0, SiblingCount: 1},
	}
}

func TestNewCollectionNameIsUnique(t *testing.T) {
	a := NewCollectionName()
	b := NewCollectionName()

	assert.True(t, strings.HasPrefix(a, "codebase_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("codebase_")+8)
}

func TestBuildPersistsRecordsWithMetadata(t *testing.T) {
	store := newFakeStore()
	b := NewBuilder(store, &fakeEmbedder{}, zerolog.Nop())

	name, err := b.Build(context.Background(), testChunks())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "codebase_"))

	records := store.created[name]
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "def a(): pass", first.Document)
	assert.NotNil(t, first.Embedding)
	assert.Equal(t, "a.py", first.Metadata["file_path"])
	assert.Equal(t, ".py", first.Metadata["file_extension"])
	assert.Equal(t, 0, first.Metadata["chunk_index"])
	assert.Equal(t, 2, first.Metadata["total_chunks"])
	assert.Equal(t, "a.py#0", first.Metadata["source"])

	// IDs are stable for the same chunk and distinct across chunks.
	assert.Equal(t, chunkID(testChunks()[0]), first.ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.NotEqual(t, records[1].ID, records[2].ID)

	assert.Empty(t, store.deleted)
}

func TestBuildFreshCollectionPerCall(t *testing.T) {
	store := newFakeStore()
	b := NewBuilder(store, &fakeEmbedder{}, zerolog.Nop())

	first, err := b.Build(context.Background(), testChunks())
	require.NoError(t, err)
	second, err := b.Build(context.Background(), testChunks())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, store.created, 2)
}

func TestBuildNoChunksIsAnError(t *testing.T) {
	b := NewBuilder(newFakeStore(), &fakeEmbedder{}, zerolog.Nop())

	_, err := b.Build(context.Background(), nil)
	assert.ErrorContains(t, err, "no chunks")
}

func TestBuildEmbeddingFailureSkipsStore(t *testing.T) {
	store := newFakeStore()
	b := NewBuilder(store, &fakeEmbedder{err: errors.New("quota exceeded")}, zerolog.Nop())

	_, err := b.Build(context.Background(), testChunks())

	assert.ErrorContains(t, err, "embedding failed")
	assert.Empty(t, store.created)
	assert.Empty(t, store.deleted)
}

func TestBuildVectorCountMismatchIsAnError(t *testing.T) {
	store := newFakeStore()
	b := NewBuilder(store, &fakeEmbedder{short: true}, zerolog.Nop())

	_, err := b.Build(context.Background(), testChunks())

	assert.ErrorContains(t, err, "count mismatch")
	assert.Empty(t, store.created)
}

func TestBuildStoreFailureDropsPartialCollection(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("chroma write failed")
	b := NewBuilder(store, &fakeEmbedder{}, zerolog.Nop())

	_, err := b.Build(context.Background(), testChunks())

	assert.ErrorContains(t, err, "persisting collection failed")
	require.Len(t, store.deleted, 1)
	assert.True(t, strings.HasPrefix(store.deleted[0], "codebase_"))
}
