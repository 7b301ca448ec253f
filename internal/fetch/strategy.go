package fetch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// cloneStrategy is one way of producing a depth-1 checkout of url at dest.
// Implementations must not leave partial state at dest on failure; the
// fetcher removes the enclosing temp directory regardless.
type cloneStrategy interface {
	name() string
	attempt(ctx context.Context, url, dest string) error
}

// goGitStrategy clones with the pure-Go git implementation. Preferred because
// it needs no git binary on the host.
type goGitStrategy struct{}

func (goGitStrategy) name() string { return "go-git" }

func (goGitStrategy) attempt(ctx context.Context, url, dest string) error {
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		return fmt.Errorf("go-git clone: %w", err)
	}
	return nil
}

// gitExecStrategy shells out to the git binary. Kept as a fallback because
// some transports and credential helpers only work through real git.
type gitExecStrategy struct{}

func (gitExecStrategy) name() string { return "git-exec" }

func (gitExecStrategy) attempt(ctx context.Context, url, dest string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return &Error{Reason: ReasonToolUnavailable, URL: url, Err: err}
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dest)
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// classify maps a raw strategy error onto the fetch error taxonomy.
func classify(url string, err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	reason := ReasonNetwork
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = ReasonTimeout
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		reason = ReasonAuthRequired
	default:
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "authentication") ||
			strings.Contains(msg, "could not read username") ||
			strings.Contains(msg, "terminal prompts disabled") ||
			strings.Contains(msg, "403") {
			reason = ReasonAuthRequired
		} else if strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline") {
			reason = ReasonTimeout
		}
	}

	return &Error{Reason: reason, URL: url, Err: err}
}
