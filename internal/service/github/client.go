package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "devconnector-api"
	apiVersion     = "2022-11-28"
	acceptHeader   = "application/vnd.github+json"

	// maxBodyBytes caps how much of a listing response is decoded.
	maxBodyBytes = 1 << 20
)

// Client implements Service using the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      credentials
}

// credentials authenticate outgoing requests. A token wins over an OAuth app
// id and secret; with neither, requests are anonymous.
type credentials struct {
	token        string
	clientID     string
	clientSecret string
}

func (c credentials) apply(req *http.Request) {
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.clientID != "":
		req.SetBasicAuth(c.clientID, c.clientSecret)
	}
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithToken sends a personal access token as a Bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.creds.token = token
	}
}

// WithClientCredentials authenticates as an OAuth app using HTTP basic auth.
func WithClientCredentials(id, secret string) Option {
	return func(c *Client) {
		c.creds.clientID = id
		c.creds.clientSecret = secret
	}
}

// NewClient creates a GitHub API client. A nil httpClient means
// http.DefaultClient; callers should pass one with a timeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{httpClient: httpClient, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ghRepo is the part of a GitHub repository object the listing keeps.
type ghRepo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Language    string `json:"language"`
	Stargazers  int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
	CreatedAt   string `json:"created_at"`
}

func (r ghRepo) summary() (RepoSummary, error) {
	if r.CreatedAt == "" {
		return RepoSummary{}, errors.New("missing created_at")
	}
	created, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return RepoSummary{}, fmt.Errorf("parsing created_at %q: %w", r.CreatedAt, err)
	}
	return RepoSummary{
		Name:            r.Name,
		FullName:        r.FullName,
		Description:     r.Description,
		HTMLURL:         r.HTMLURL,
		Language:        r.Language,
		StargazersCount: r.Stargazers,
		WatchersCount:   r.Watchers,
		ForksCount:      r.Forks,
		CreatedAt:       created,
	}, nil
}

// ListRepos returns up to MaxRepos public repositories of username, oldest
// first. Any non-200 answer becomes an *UpstreamError.
func (c *Client) ListRepos(ctx context.Context, username string) ([]RepoSummary, error) {
	query := url.Values{
		"per_page":  {strconv.Itoa(MaxRepos)},
		"sort":      {"created"},
		"direction": {"asc"},
	}
	endpoint := c.baseURL + "/users/" + url.PathEscape(username) + "/repos?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	c.creds.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching repos: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		uerr := classify(resp)
		logUpstream(ctx, uerr, resp.Header)
		return nil, uerr
	}

	var raw []ghRepo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding github response: %w", err)
	}
	if len(raw) > MaxRepos {
		raw = raw[:MaxRepos]
	}

	repos := make([]RepoSummary, len(raw))
	for i, r := range raw {
		if repos[i], err = r.summary(); err != nil {
			return nil, fmt.Errorf("decoding repo %d: %w", i, err)
		}
	}
	return repos, nil
}

// classify maps a non-200 response to an UpstreamError. GitHub signals a
// secondary rate limit with 403 plus either an exhausted quota or Retry-After.
func classify(resp *http.Response) *UpstreamError {
	h := resp.Header
	kind, cause := UpstreamErrorKindUpstream, ErrUpstream
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind, cause = UpstreamErrorKindNotFound, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && headerValue(h, "X-RateLimit-Remaining") == "0",
		resp.StatusCode == http.StatusForbidden && headerValue(h, "Retry-After") != "":
		kind, cause = UpstreamErrorKindRateLimited, ErrRateLimited
	case resp.StatusCode == http.StatusForbidden:
		kind, cause = UpstreamErrorKindForbidden, ErrForbidden
	}
	return &UpstreamError{
		Kind:           kind,
		Status:         resp.StatusCode,
		RetryAfter:     headerValue(h, "Retry-After"),
		RateLimitReset: headerValue(h, "X-RateLimit-Reset"),
		cause:          cause,
	}
}

// upstreamLogMessages holds the warning logged per kind. Unknown users are
// routine and not logged here.
var upstreamLogMessages = map[UpstreamErrorKind]string{
	UpstreamErrorKindRateLimited: "github api rate limit exceeded",
	UpstreamErrorKindForbidden:   "github api access denied",
	UpstreamErrorKindUpstream:    "github api error",
}

func logUpstream(ctx context.Context, e *UpstreamError, h http.Header) {
	msg, ok := upstreamLogMessages[e.Kind]
	if !ok {
		return
	}
	fields := []zap.Field{
		zap.Int("status", e.Status),
		zap.String("X-RateLimit-Remaining", headerValue(h, "X-RateLimit-Remaining")),
		zap.String("X-RateLimit-Reset", e.RateLimitReset),
	}
	if e.RetryAfter != "" {
		fields = append(fields, zap.String("Retry-After", e.RetryAfter))
	}
	applog.LogWarn(ctx, msg, fields...)
}

func headerValue(h http.Header, key string) string {
	return strings.TrimSpace(h.Get(key))
}

var _ Service = (*Client)(nil)
