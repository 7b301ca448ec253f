// Package chunk splits source files into bounded, overlapping segments along
// extension-specific structural boundaries. For languages with a tree-sitter
// grammar the coarsest boundaries come from the parse tree; everything else
// uses ordered textual separator chains, coarsest to finest.
package chunk

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/types"
)

const (
	// DefaultChunkSize is the target chunk size in characters.
	DefaultChunkSize = 1000
	// DefaultOverlap is the maximum overlap carried between adjacent chunks.
	DefaultOverlap = 200
	// DefaultMinChunkLength is the minimum stripped length of a kept chunk.
	DefaultMinChunkLength = 50
)

// Chunker turns SourceFiles into ordered Chunk sequences.
type Chunker struct {
	splitter   splitter
	minLength  int
	structural *structuralParser
	logger     zerolog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size.
func WithChunkSize(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.splitter.size = n
		}
	}
}

// WithOverlap sets the maximum overlap between adjacent chunks.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.splitter.overlap = n
		}
	}
}

// WithMinChunkLength sets the minimum stripped length below which a piece is
// discarded as too low-signal to index.
func WithMinChunkLength(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.minLength = n
		}
	}
}

// NewChunker creates a Chunker with the default size, overlap, and minimum
// chunk length.
func NewChunker(logger zerolog.Logger, opts ...Option) *Chunker {
	c := &Chunker{
		splitter:   splitter{size: DefaultChunkSize, overlap: DefaultOverlap},
		minLength:  DefaultMinChunkLength,
		structural: newStructuralParser(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChunkFile splits one file into kept chunks. Ordinals are assigned after
// discarding, contiguous from zero; SiblingCount is the kept count.
func (c *Chunker) ChunkFile(file types.SourceFile) []types.Chunk {
	pieces := c.splitText(file.Content, file.Extension)

	kept := pieces[:0]
	for _, p := range pieces {
		if len(strings.TrimSpace(p)) >= c.minLength {
			kept = append(kept, p)
		}
	}

	chunks := make([]types.Chunk, 0, len(kept))
	for i, text := range kept {
		chunks = append(chunks, types.Chunk{
			Text:         text,
			SourcePath:   file.Path,
			Extension:    file.Extension,
			Ordinal:      i,
			SiblingCount: len(kept),
		})
	}
	return chunks
}

// ChunkAll chunks every file in the manifest. Files producing zero eligible
// chunks are logged and skipped; they never fail the batch.
func (c *Chunker) ChunkAll(files []types.SourceFile) []types.Chunk {
	var all []types.Chunk
	degenerate := 0

	for _, f := range files {
		chunks := c.ChunkFile(f)
		if len(chunks) == 0 {
			degenerate++
			c.logger.Debug().Str("path", f.Path).Msg("file produced no eligible chunks")
			continue
		}
		all = append(all, chunks...)
	}

	c.logger.Info().
		Int("files", len(files)).
		Int("chunks", len(all)).
		Int("degenerate_files", degenerate).
		Msg("chunking complete")

	return all
}

// splitText produces raw pieces for one file's content. The tree-sitter
// pre-pass supplies declaration-aligned coarse pieces when the grammar is
// available and the parse succeeds; otherwise the textual chain alone is
// used. Oversized pieces always recurse into the extension's separators.
func (c *Chunker) splitText(content, ext string) []string {
	seps := SeparatorsFor(ext)

	if pieces, ok := c.structural.pieces(content, ext); ok {
		return c.splitter.assemble(pieces, seps)
	}
	return c.splitter.split(content, seps)
}
