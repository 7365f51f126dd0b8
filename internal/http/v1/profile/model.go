package profile

import (
	"github.com/janisto/devconnector-api/internal/platform/timeutil"
)

// Owner is the public view of the user a profile belongs to.
type Owner struct {
	ID     string `json:"id"               doc:"User id"     example:"test-user-123"`
	Name   string `json:"name,omitempty"   doc:"Display name" example:"Ada Lovelace"`
	Avatar string `json:"avatar,omitempty" doc:"Avatar URL"  example:"https://gravatar.com/avatar/ada"`
}

// Social holds the profile's social network links.
type Social struct {
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is a work history entry.
type Experience struct {
	ID          string         `json:"id"                    doc:"Entry id"`
	Title       string         `json:"title"                 doc:"Job title"  example:"Backend Developer"`
	Company     string         `json:"company"               doc:"Company"    example:"Acme"`
	Location    string         `json:"location,omitempty"    doc:"Location"`
	From        timeutil.Time  `json:"from"                  doc:"Start date" example:"2020-03-01T00:00:00.000Z"`
	To          *timeutil.Time `json:"to,omitempty"          doc:"End date"   example:"2022-06-30T00:00:00.000Z"`
	Current     bool           `json:"current"               doc:"Still in this position"`
	Description string         `json:"description,omitempty" doc:"Description"`
}

// Education is an education history entry.
type Education struct {
	ID           string         `json:"id"                    doc:"Entry id"`
	School       string         `json:"school"                doc:"School"         example:"University of Helsinki"`
	Degree       string         `json:"degree"                doc:"Degree"         example:"MSc"`
	FieldOfStudy string         `json:"fieldofstudy"          doc:"Field of study" example:"Computer Science"`
	From         timeutil.Time  `json:"from"                  doc:"Start date"     example:"2014-09-01T00:00:00.000Z"`
	To           *timeutil.Time `json:"to,omitempty"          doc:"End date"`
	Current      bool           `json:"current"               doc:"Still studying"`
	Description  string         `json:"description,omitempty" doc:"Description"`
}

// Profile represents a developer profile response. Experience and education
// are newest first.
type Profile struct {
	Owner          Owner         `json:"owner"                    doc:"Profile owner"`
	Company        string        `json:"company,omitempty"        doc:"Company"`
	Website        string        `json:"website,omitempty"        doc:"Website URL"`
	Location       string        `json:"location,omitempty"       doc:"Location"`
	Bio            string        `json:"bio,omitempty"            doc:"Short biography"`
	Status         string        `json:"status,omitempty"         doc:"Professional status" example:"Developer"`
	GitHubUsername string        `json:"githubUsername,omitempty" doc:"GitHub username"     example:"octocat"`
	Skills         []string      `json:"skills"                   doc:"Skills"              example:"[\"go\",\"rust\"]"`
	Social         Social        `json:"social"                   doc:"Social links"`
	Experience     []Experience  `json:"experience"               doc:"Work history, newest first"`
	Education      []Education   `json:"education"                doc:"Education history, newest first"`
	CreatedAt      timeutil.Time `json:"createdAt"                doc:"Creation timestamp"    example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt      timeutil.Time `json:"updatedAt"                doc:"Last update timestamp" example:"2024-01-15T10:30:00.000Z"`
}

// DeleteResult is the account deletion acknowledgement.
type DeleteResult struct {
	Msg string `json:"msg" example:"User deleted"`
}
