package profile

// ProfileOutput wraps a single profile.
type ProfileOutput struct {
	Body Profile
}

// ProfileListOutput for GET /profile
type ProfileListOutput struct {
	Link string `header:"Link" doc:"RFC 8288 link to the next page"`
	Body []Profile
}

// AccountDeleteOutput for DELETE /profile
type AccountDeleteOutput struct {
	Body DeleteResult
}
