package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStrategy records every attempt and either materializes a checkout at
// dest or fails with a fixed error.
type fakeStrategy struct {
	label string
	err   error
	dests []string
}

func (s *fakeStrategy) name() string { return s.label }

func (s *fakeStrategy) attempt(_ context.Context, _, dest string) error {
	s.dests = append(s.dests, dest)
	if s.err != nil {
		return s.err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "README.md"), []byte("# test repo\n"), 0o644)
}

func TestValidURL(t *testing.T) {
	f := NewFetcher(zerolog.Nop())

	assert.True(t, f.ValidURL("https://github.com/owner/repo"))
	assert.True(t, f.ValidURL("git@github.com:owner/repo.git"))

	assert.False(t, f.ValidURL("https://github.com/"))
	assert.False(t, f.ValidURL("http://github.com/owner/repo"))
	assert.False(t, f.ValidURL("https://gitlab.com/owner/repo"))
	assert.False(t, f.ValidURL("not a url"))
	assert.False(t, f.ValidURL(""))
}

func TestFetchInvalidURLFailsFast(t *testing.T) {
	strat := &fakeStrategy{label: "fake"}
	f := NewFetcher(zerolog.Nop(), withStrategies(strat))

	_, err := f.Fetch(context.Background(), "ftp://example.com/repo")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ReasonInvalidURL, fe.Reason)
	assert.Empty(t, strat.dests, "no strategy should run for an invalid URL")
}

func TestFetchFirstStrategyWins(t *testing.T) {
	first := &fakeStrategy{label: "first"}
	second := &fakeStrategy{label: "second"}
	f := NewFetcher(zerolog.Nop(), withStrategies(first, second))

	path, err := f.Fetch(context.Background(), "https://github.com/owner/repo")
	require.NoError(t, err)
	defer Cleanup(path)

	assert.Len(t, first.dests, 1)
	assert.Empty(t, second.dests)
	assert.FileExists(t, filepath.Join(path, "README.md"))
}

func TestFetchFallsBackAndCleansUpFailedAttempts(t *testing.T) {
	first := &fakeStrategy{label: "first", err: errors.New("remote hung up")}
	second := &fakeStrategy{label: "second"}
	f := NewFetcher(zerolog.Nop(), withStrategies(first, second))

	path, err := f.Fetch(context.Background(), "https://github.com/owner/repo")
	require.NoError(t, err)
	defer Cleanup(path)

	require.Len(t, first.dests, 1)
	require.Len(t, second.dests, 1)
	assert.NotEqual(t, first.dests[0], second.dests[0])

	// The failed attempt's workspace is gone; the winning one exists.
	assert.NoDirExists(t, filepath.Dir(first.dests[0]))
	assert.DirExists(t, path)
}

func TestFetchAllStrategiesFailLeavesNothingBehind(t *testing.T) {
	first := &fakeStrategy{label: "first", err: transport.ErrAuthenticationRequired}
	second := &fakeStrategy{label: "second", err: errors.New("connection refused")}
	f := NewFetcher(zerolog.Nop(), withStrategies(first, second))

	_, err := f.Fetch(context.Background(), "https://github.com/owner/private")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	// The last attempt's classification is reported.
	assert.Equal(t, ReasonNetwork, fe.Reason)

	for _, dest := range append(first.dests, second.dests...) {
		assert.NoDirExists(t, filepath.Dir(dest))
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Reason
	}{
		{"deadline", context.DeadlineExceeded, ReasonTimeout},
		{"auth sentinel", transport.ErrAuthenticationRequired, ReasonAuthRequired},
		{"authz sentinel", transport.ErrAuthorizationFailed, ReasonAuthRequired},
		{"prompt disabled", errors.New("fatal: could not read Username: terminal prompts disabled"), ReasonAuthRequired},
		{"http 403", errors.New("unexpected status: 403 Forbidden"), ReasonAuthRequired},
		{"timeout text", errors.New("dial tcp: i/o timed out"), ReasonTimeout},
		{"generic", errors.New("connection reset by peer"), ReasonNetwork},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fe := classify("https://github.com/o/r", tc.err)
			assert.Equal(t, tc.want, fe.Reason)
			assert.ErrorIs(t, fe, tc.err)
		})
	}

	// An already classified error passes through unchanged.
	orig := &Error{Reason: ReasonToolUnavailable, URL: "u"}
	assert.Same(t, orig, classify("u", orig))
}

func TestCleanup(t *testing.T) {
	tmp, err := os.MkdirTemp("", "repochat-")
	require.NoError(t, err)
	checkout := filepath.Join(tmp, "repo")
	require.NoError(t, os.MkdirAll(checkout, 0o755))

	require.NoError(t, Cleanup(checkout))
	assert.NoDirExists(t, tmp)

	assert.NoError(t, Cleanup(""))
}

func TestRepoName(t *testing.T) {
	assert.Equal(t, "repo", RepoName("https://github.com/owner/repo"))
	assert.Equal(t, "repo", RepoName("https://github.com/owner/repo.git"))
	assert.Equal(t, "repo", RepoName("https://github.com/owner/repo/"))
	assert.Equal(t, "repo.git", RepoName("git@github.com:owner/repo.git.git"))
	assert.Equal(t, "repo", RepoName("git@github.com:owner/repo"))
}
