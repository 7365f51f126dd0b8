package github

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
	"github.com/janisto/devconnector-api/internal/platform/timeutil"
	githubsvc "github.com/janisto/devconnector-api/internal/service/github"
)

const (
	msgNoGitHubProfile = "No github profile found"
	msgServerError     = "Server Error"
)

// Register wires GitHub routes into the provided API router.
func Register(api huma.API, svc githubsvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-github-repos",
		Method:      http.MethodGet,
		Path:        "/profile/github/{username}",
		Summary:     "List a user's GitHub repositories",
		Description: "Returns up to five public repositories of the GitHub user, oldest first.",
		Tags:        []string{"GitHub"},
	}, func(ctx context.Context, input *ReposListInput) (*ReposListOutput, error) {
		repos, err := svc.ListRepos(ctx, input.Username)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ReposListOutput{Body: toHTTPRepoSummaries(repos)}, nil
	})
}

// mapServiceError hides upstream details: any upstream answer becomes a 404,
// anything else a generic 500.
func mapServiceError(ctx context.Context, err error) error {
	var upstreamErr *githubsvc.UpstreamError
	if errors.As(err, &upstreamErr) {
		applog.LogInfo(ctx, "github lookup failed",
			zap.String("kind", string(upstreamErr.Kind)),
			zap.Int("upstreamStatus", upstreamErr.Status),
		)
		return huma.Error404NotFound(msgNoGitHubProfile)
	}
	return huma.Error500InternalServerError(msgServerError, err)
}

func toHTTPRepoSummaries(repos []githubsvc.RepoSummary) []RepoSummary {
	out := make([]RepoSummary, len(repos))
	for i, r := range repos {
		out[i] = RepoSummary{
			Name:            r.Name,
			FullName:        r.FullName,
			Description:     r.Description,
			HTMLURL:         r.HTMLURL,
			Language:        r.Language,
			StargazersCount: r.StargazersCount,
			WatchersCount:   r.WatchersCount,
			ForksCount:      r.ForksCount,
			CreatedAt:       timeutil.NewTime(r.CreatedAt),
		}
	}
	return out
}
