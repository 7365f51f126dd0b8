// Package github proxies the public repository listing of a GitHub user.
package github

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxRepos bounds the number of repositories returned per user.
const MaxRepos = 5

// RepoSummary is the subset of a GitHub repository exposed by the API.
type RepoSummary struct {
	Name            string
	FullName        string
	Description     string
	HTMLURL         string
	Language        string
	StargazersCount int
	WatchersCount   int
	ForksCount      int
	CreatedAt       time.Time
}

// Service lists a user's public repositories, oldest first.
type Service interface {
	ListRepos(ctx context.Context, username string) ([]RepoSummary, error)
}

// Sentinels wrapped by UpstreamError, one per kind.
var (
	ErrNotFound    = errors.New("github user not found")
	ErrForbidden   = errors.New("github access forbidden")
	ErrRateLimited = errors.New("github rate limit exceeded")
	ErrUpstream    = errors.New("github upstream error")
)

// UpstreamErrorKind classifies a non-200 GitHub answer.
type UpstreamErrorKind string

const (
	UpstreamErrorKindNotFound    UpstreamErrorKind = "not_found"
	UpstreamErrorKindForbidden   UpstreamErrorKind = "forbidden"
	UpstreamErrorKindRateLimited UpstreamErrorKind = "rate_limited"
	UpstreamErrorKindUpstream    UpstreamErrorKind = "upstream"
)

// UpstreamError carries the status and rate limit headers of a failed
// listing. The response body is never kept.
type UpstreamError struct {
	Kind           UpstreamErrorKind
	Status         int
	RetryAfter     string
	RateLimitReset string
	cause          error
}

func (e *UpstreamError) Error() string {
	switch {
	case e == nil:
		return "github upstream error"
	case e.cause == nil:
		return fmt.Sprintf("github %s (status %d)", e.Kind, e.Status)
	default:
		return fmt.Sprintf("github %s (status %d): %v", e.Kind, e.Status, e.cause)
	}
}

// Unwrap returns the kind's sentinel.
func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}
