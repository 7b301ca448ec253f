// Package session owns the caller-scoped state of one loaded repository:
// the active collection, the fetched workspace, repository stats, and the
// chat history. All pipeline calls flow through an explicit Session; there
// are no process-wide globals.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/answer"
	"github.com/repochat/repochat/internal/chunk"
	"github.com/repochat/repochat/internal/collect"
	"github.com/repochat/repochat/internal/config"
	"github.com/repochat/repochat/internal/embed"
	"github.com/repochat/repochat/internal/fetch"
	"github.com/repochat/repochat/internal/index"
	"github.com/repochat/repochat/internal/types"
	"github.com/repochat/repochat/internal/vectorstore"
)

// EmptyRepoError reports a load that found no eligible files. The skip
// counts let the caller explain why nothing matched.
type EmptyRepoError struct {
	Skipped collect.SkipReport
}

func (e *EmptyRepoError) Error() string {
	return fmt.Sprintf("no eligible files found (%d skipped: %d ignored dirs, %d ignored files, %d binary, %d extension, %d unreadable, %d too large, %d too small, %d over cap)",
		e.Skipped.Total(), e.Skipped.IgnoredDir, e.Skipped.IgnoredFile,
		e.Skipped.Binary, e.Skipped.Extension, e.Skipped.Unreadable,
		e.Skipped.TooLarge, e.Skipped.TooSmall, e.Skipped.OverCap)
}

// Exchange is one question/answer pair in the chat history.
type Exchange struct {
	Question string       `json:"question"`
	Answer   types.Answer `json:"answer"`
	At       time.Time    `json:"at"`
}

// repoFetcher obtains a local checkout of a repository URL. Satisfied by
// *fetch.Fetcher; a seam for tests.
type repoFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Session is the caller-owned pipeline state for one repository at a time.
// It is not safe for concurrent use.
type Session struct {
	fetcher   repoFetcher
	collector *collect.Collector
	chunker   *chunk.Chunker
	builder   *index.Builder
	retriever *answer.Retriever
	composer  *answer.Composer
	logger    zerolog.Logger

	maxHistory int

	repoName   string
	repoPath   string
	collection string
	stats      types.RepoStats
	history    []Exchange
}

// New wires a Session from configuration and the shared external clients.
func New(cfg *config.Config, store vectorstore.Store, embedder embed.Embedder, completer answer.Completer, logger zerolog.Logger) *Session {
	return &Session{
		fetcher: fetch.NewFetcher(logger,
			fetch.WithTimeout(cfg.Fetch.Timeout),
			fetch.WithAllowedPrefixes(cfg.Fetch.AllowedPrefixes)),
		collector: collect.NewCollector(logger,
			collect.WithMaxFileSize(cfg.Collect.MaxFileSize),
			collect.WithMinContentLength(cfg.Collect.MinContentLength),
			collect.WithMaxTotalFiles(cfg.Collect.MaxTotalFiles),
			collect.WithExtensions(cfg.Collect.ExtraExtensions...),
			collect.WithIgnoreDirs(cfg.Collect.ExtraIgnoreDirs...),
			collect.WithIgnoreFiles(cfg.Collect.ExtraIgnoreFiles...)),
		chunker: chunk.NewChunker(logger,
			chunk.WithChunkSize(cfg.Chunk.Size),
			chunk.WithOverlap(cfg.Chunk.Overlap),
			chunk.WithMinChunkLength(cfg.Chunk.MinChunkLength)),
		builder: index.NewBuilder(store, embedder, logger),
		retriever: answer.NewRetriever(store, embedder, logger,
			answer.WithKBounds(cfg.Retrieval.MinK, cfg.Retrieval.MaxK)),
		composer:   answer.NewComposer(completer, logger),
		logger:     logger,
		maxHistory: cfg.Session.MaxHistory,
	}
}

// Load runs fetch, collect, chunk, and index for a repository URL. On
// success the session's previous state is replaced; on failure the previous
// state is untouched and no temporary directory or partial collection is
// left behind.
func (s *Session) Load(ctx context.Context, url string) error {
	path, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}

	manifest, err := s.collector.Collect(path)
	if err != nil {
		s.removeCheckout(path)
		return fmt.Errorf("collecting files: %w", err)
	}
	if len(manifest.Files) == 0 {
		s.removeCheckout(path)
		return &EmptyRepoError{Skipped: manifest.Skipped}
	}

	stats := collect.Stats(manifest)

	chunks := s.chunker.ChunkAll(manifest.Files)
	if len(chunks) == 0 {
		s.removeCheckout(path)
		return fmt.Errorf("no indexable chunks produced from %d files", len(manifest.Files))
	}

	collection, err := s.builder.Build(ctx, chunks)
	if err != nil {
		s.removeCheckout(path)
		return err
	}

	// Replace prior state only now that the load fully succeeded.
	s.removeCheckout(s.repoPath)
	s.repoName = fetch.RepoName(url)
	s.repoPath = path
	s.collection = collection
	s.stats = stats
	s.history = nil

	s.logger.Info().Str("repo", s.repoName).Str("collection", collection).
		Int("files", stats.TotalFiles).Int("lines", stats.TotalLines).
		Msg("repository loaded")
	return nil
}

// Ask answers a question against the loaded repository. Query-level errors
// degrade to an explanatory Answer; they never abort the session.
func (s *Session) Ask(ctx context.Context, question string, k int) types.Answer {
	results, err := s.retriever.Retrieve(ctx, s.collection, question, k)
	var ans types.Answer
	if err != nil {
		s.logger.Error().Err(err).Msg("retrieval failed")
		ans = types.Answer{
			Text:        fmt.Sprintf("Sorry, I encountered an error: %v", err),
			Sources:     []types.Source{},
			ContextUsed: false,
		}
	} else {
		ans = s.composer.Compose(ctx, question, results)
	}

	s.history = append(s.history, Exchange{Question: question, Answer: ans, At: time.Now()})
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	return ans
}

// Loaded reports whether a repository is currently indexed.
func (s *Session) Loaded() bool { return s.collection != "" }

// RepoName returns the display name of the loaded repository.
func (s *Session) RepoName() string { return s.repoName }

// Collection returns the active collection identifier.
func (s *Session) Collection() string { return s.collection }

// Stats returns the stats computed at load time.
func (s *Session) Stats() types.RepoStats { return s.stats }

// History returns the recorded exchanges, oldest first.
func (s *Session) History() []Exchange { return s.history }

// Reset drops the collection reference, clears history and stats, and
// removes the temporary fetch workspace. The unreferenced collection is left
// for the store to garbage-collect.
func (s *Session) Reset() {
	s.removeCheckout(s.repoPath)
	s.repoName = ""
	s.repoPath = ""
	s.collection = ""
	s.stats = types.RepoStats{}
	s.history = nil
}

func (s *Session) removeCheckout(path string) {
	if err := fetch.Cleanup(path); err != nil {
		s.logger.Warn().Str("path", path).Err(err).Msg("failed to remove fetch workspace")
	}
}
