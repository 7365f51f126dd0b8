package github

// ReposListInput defines the path parameter for listing a user's repositories.
type ReposListInput struct {
	Username string `path:"username" doc:"GitHub username" example:"octocat"`
}
