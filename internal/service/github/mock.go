package github

import (
	"context"
	"sync"
	"time"
)

// MockService implements Service for unit tests with pre-populated demo data.
type MockService struct {
	mu    sync.Mutex
	repos map[string][]RepoSummary
	err   error
	calls []string
}

// NewMockService creates a mock knowing the repositories of octocat.
func NewMockService() *MockService {
	created := time.Date(2011, 1, 26, 19, 1, 12, 0, time.UTC)
	return &MockService{
		repos: map[string][]RepoSummary{
			"octocat": {
				{
					Name:            "Hello-World",
					FullName:        "octocat/Hello-World",
					Description:     "My first repository on GitHub!",
					HTMLURL:         "https://github.com/octocat/Hello-World",
					StargazersCount: 80,
					WatchersCount:   80,
					ForksCount:      9,
					CreatedAt:       created,
				},
				{
					Name:            "Spoon-Knife",
					FullName:        "octocat/Spoon-Knife",
					Description:     "This repo is for demonstration purposes only.",
					HTMLURL:         "https://github.com/octocat/Spoon-Knife",
					Language:        "HTML",
					StargazersCount: 12,
					WatchersCount:   12,
					ForksCount:      140,
					CreatedAt:       created.Add(24 * time.Hour),
				},
			},
		},
	}
}

// SetRepos replaces the repositories of username.
func (m *MockService) SetRepos(username string, repos []RepoSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos[username] = repos
}

// SetError makes every call fail with err until reset with nil.
func (m *MockService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the usernames requested so far.
func (m *MockService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ListRepos returns the configured repositories, or a not found upstream
// error for unknown users.
func (m *MockService) ListRepos(_ context.Context, username string) ([]RepoSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, username)
	if m.err != nil {
		return nil, m.err
	}
	repos, ok := m.repos[username]
	if !ok {
		return nil, &UpstreamError{Kind: UpstreamErrorKindNotFound, Status: 404, cause: ErrNotFound}
	}
	repos = append([]RepoSummary(nil), repos...)
	if len(repos) > MaxRepos {
		repos = repos[:MaxRepos]
	}
	return repos, nil
}

// Compile-time interface check
var _ Service = (*MockService)(nil)
