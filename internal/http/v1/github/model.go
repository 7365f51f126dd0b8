package github

import (
	"github.com/janisto/devconnector-api/internal/platform/timeutil"
)

// RepoSummary contains basic repository information.
type RepoSummary struct {
	Name            string        `json:"name"            doc:"Repository name"                   example:"Hello-World"`
	FullName        string        `json:"fullName"        doc:"Full repository name (owner/repo)" example:"octocat/Hello-World"`
	Description     string        `json:"description"     doc:"Repository description"`
	HTMLURL         string        `json:"htmlUrl"         doc:"GitHub repository URL"             example:"https://github.com/octocat/Hello-World"`
	Language        string        `json:"language"        doc:"Primary language"                  example:"Go"`
	StargazersCount int           `json:"stargazersCount" doc:"Stargazer count"                   example:"80"`
	WatchersCount   int           `json:"watchersCount"   doc:"Watcher count"                     example:"80"`
	ForksCount      int           `json:"forksCount"      doc:"Fork count"                        example:"9"`
	CreatedAt       timeutil.Time `json:"createdAt"       doc:"Repository creation"               example:"2011-01-26T19:01:12.000Z"`
}
