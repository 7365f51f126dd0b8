package github

// ReposListOutput is the response wrapper for GET /profile/github/{username}.
type ReposListOutput struct {
	Body []RepoSummary
}
