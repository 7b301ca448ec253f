// Package fetch obtains a local read-only snapshot of a remote repository.
// Two interchangeable clone strategies are tried in sequence; the first
// success wins and any partial state from a failed attempt is removed before
// the next strategy runs.
package fetch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single repository fetch end to end.
const DefaultTimeout = 300 * time.Second

// DefaultAllowedPrefixes are the URL shapes accepted without configuration.
var DefaultAllowedPrefixes = []string{
	"https://github.com/",
	"git@github.com:",
}

// Fetcher produces shallow repository checkouts in per-attempt temporary
// directories. The caller owns the returned path and is responsible for
// removing its parent directory (see Cleanup).
type Fetcher struct {
	strategies      []cloneStrategy
	allowedPrefixes []string
	timeout         time.Duration
	logger          zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithAllowedPrefixes overrides the accepted URL prefixes.
func WithAllowedPrefixes(prefixes []string) Option {
	return func(f *Fetcher) {
		if len(prefixes) > 0 {
			f.allowedPrefixes = prefixes
		}
	}
}

// withStrategies replaces the clone strategy chain. Test seam.
func withStrategies(strategies ...cloneStrategy) Option {
	return func(f *Fetcher) {
		f.strategies = strategies
	}
}

// NewFetcher creates a Fetcher with the go-git and git-exec strategies.
func NewFetcher(logger zerolog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		strategies:      []cloneStrategy{goGitStrategy{}, gitExecStrategy{}},
		allowedPrefixes: DefaultAllowedPrefixes,
		timeout:         DefaultTimeout,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ValidURL reports whether url matches an accepted scheme/host pattern.
// Malformed URLs fail fast here, before any network access.
func (f *Fetcher) ValidURL(url string) bool {
	for _, prefix := range f.allowedPrefixes {
		if strings.HasPrefix(url, prefix) && len(url) > len(prefix) {
			return true
		}
	}
	return false
}

// Fetch clones url into a fresh temporary workspace and returns the checkout
// path. On failure every partially created directory is removed and a typed
// *Error is returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if !f.ValidURL(url) {
		return "", &Error{Reason: ReasonInvalidURL, URL: url}
	}

	var lastErr *Error
	for _, s := range f.strategies {
		tmp, err := os.MkdirTemp("", "repochat-")
		if err != nil {
			return "", &Error{Reason: ReasonToolUnavailable, URL: url, Err: err}
		}
		dest := filepath.Join(tmp, "repo")

		f.logger.Info().Str("url", url).Str("strategy", s.name()).Str("dest", dest).
			Msg("attempting clone")

		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err = s.attempt(attemptCtx, url, dest)
		cancel()

		if err == nil {
			f.logger.Info().Str("url", url).Str("strategy", s.name()).
				Msg("clone succeeded")
			return dest, nil
		}

		lastErr = classify(url, err)
		f.logger.Warn().Str("url", url).Str("strategy", s.name()).
			Str("reason", string(lastErr.Reason)).Err(err).
			Msg("clone attempt failed")

		if rmErr := os.RemoveAll(tmp); rmErr != nil {
			f.logger.Warn().Str("dir", tmp).Err(rmErr).
				Msg("failed to remove partial clone workspace")
		}
	}

	return "", lastErr
}

// Cleanup removes the temporary workspace that owns a checkout path returned
// by Fetch. Safe to call with an empty path.
func Cleanup(path string) error {
	if path == "" {
		return nil
	}
	return os.RemoveAll(filepath.Dir(path))
}

// RepoName extracts a repository name from its URL for display.
func RepoName(url string) string {
	url = strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		return url[i+1:]
	}
	return url
}
