package model

import (
	"errors"
	"strings"
)

// UpstreamError is the normalized form of any GitHub API failure: a single
// human-readable message preferring the server-supplied message field, the
// upstream HTTP status when one was received (0 for transport failures),
// and a structured rate-limit flag so callers do not have to parse text.
type UpstreamError struct {
	StatusCode  int
	Message     string
	RateLimited bool
}

// Error returns the normalized message.
func (e *UpstreamError) Error() string {
	return e.Message
}

// IsRateLimited reports whether err is an upstream rejection caused by the
// API rate limit. It checks the structured flag first and falls back to the
// upstream's literal "rate limit exceeded" wording for errors that were
// normalized elsewhere.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.RateLimited
	}
	return err != nil && strings.Contains(err.Error(), "rate limit exceeded")
}
