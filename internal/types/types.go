package types

import "strings"

// SourceFile is a single eligible file from a repository snapshot. Paths are
// relative to the repository root with forward-slash separators. Content has
// already been decoded with lossy UTF-8 fallback and passed the collector's
// size and triviality checks.
type SourceFile struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Extension string `json:"extension"`
}

// Lines returns the number of lines in the file content.
func (f SourceFile) Lines() int {
	if f.Content == "" {
		return 0
	}
	return len(strings.Split(f.Content, "\n"))
}

// Chunk is one retrievable segment of a SourceFile. Ordinal is the 0-based
// position among the chunks kept for the same file; SiblingCount is how many
// chunks that file produced in total after discarding low-signal pieces.
type Chunk struct {
	Text         string `json:"text"`
	SourcePath   string `json:"source_path"`
	Extension    string `json:"extension"`
	Ordinal      int    `json:"ordinal"`
	SiblingCount int    `json:"sibling_count"`
}

// RetrievalResult pairs a chunk with its similarity distance to a query.
// Smaller distance means more similar.
type RetrievalResult struct {
	Chunk    Chunk   `json:"chunk"`
	Distance float64 `json:"distance"`
}

// Source is one citation attached to an Answer. Snippet is truncated for
// display; Distance is carried through for caller-side sorting.
type Source struct {
	Path     string  `json:"path"`
	Snippet  string  `json:"snippet"`
	Distance float64 `json:"distance"`
}

// Answer is the response to a single question. ContextUsed is false when no
// relevant chunks were retrieved or the completion backend failed.
type Answer struct {
	Text        string   `json:"text"`
	Sources     []Source `json:"sources"`
	ContextUsed bool     `json:"context_used"`
}

// ExtensionStats aggregates file and line counts for one extension.
type ExtensionStats struct {
	Count int `json:"count"`
	Lines int `json:"lines"`
}

// RepoStats is a read-only summary of a collected manifest, computed once
// per repository load.
type RepoStats struct {
	TotalFiles int                       `json:"total_files"`
	TotalLines int                       `json:"total_lines"`
	Extensions map[string]ExtensionStats `json:"extensions"`
}
