package fetch

import "fmt"

// Reason identifies why a repository fetch failed. Callers branch on it
// because the remediation differs per cause.
type Reason string

const (
	ReasonInvalidURL      Reason = "invalid_url"
	ReasonToolUnavailable Reason = "tool_unavailable"
	ReasonAuthRequired    Reason = "auth_required"
	ReasonNetwork         Reason = "network"
	ReasonTimeout         Reason = "timeout"
)

// Error is a classified repository fetch failure.
type Error struct {
	Reason Reason
	URL    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s)", e.URL, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }
