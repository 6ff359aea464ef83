package llm

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMissingAPIKey is returned before any request is sent when no
// credential is configured.
var ErrMissingAPIKey = errors.New("reasoning backend API key is not configured")

// Response bodies are cut to this many bytes in TransportError.
const maxErrorBodyBytes = 512

// TransportError covers calls that did not complete or returned a
// non-success status. StatusCode is 0 when no response arrived.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("reasoning backend request failed: %v", e.Err)
	}
	return fmt.Sprintf("reasoning backend error %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the backend answered but no JSON object could
// be recovered from its content.
type MalformedResponseError struct {
	Reason  string
	Content string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed reasoning backend response: %s: %v", e.Reason, e.Err)
	}
	return "malformed reasoning backend response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
