package profile

import (
	"net/url"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/devconnector-api/internal/platform/pagination"
	"github.com/janisto/devconnector-api/internal/platform/timeutil"
)

// ProfileUpsertBody is the create-or-update request. Empty strings count as
// not provided.
type ProfileUpsertBody struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Company        *string `json:"company,omitempty"        maxLength:"200"  doc:"Company"                   example:"Acme"`
	Website        *string `json:"website,omitempty"        maxLength:"500"  doc:"Website URL"               example:"https://acme.dev"`
	Location       *string `json:"location,omitempty"       maxLength:"200"  doc:"Location"                  example:"Helsinki"`
	Bio            *string `json:"bio,omitempty"            maxLength:"2000" doc:"Short biography"`
	Status         *string `json:"status,omitempty"         maxLength:"200"  doc:"Professional status"       example:"Developer"`
	GitHubUsername *string `json:"githubUsername,omitempty" maxLength:"100"  doc:"GitHub username"           example:"octocat"`
	Skills         *string `json:"skills,omitempty"         maxLength:"2000" doc:"Comma separated skills"    example:"go, rust"`
	Twitter        *string `json:"twitter,omitempty"        maxLength:"500"  doc:"Twitter profile URL"`
	Facebook       *string `json:"facebook,omitempty"       maxLength:"500"  doc:"Facebook profile URL"`
	LinkedIn       *string `json:"linkedin,omitempty"       maxLength:"500"  doc:"LinkedIn profile URL"`
	YouTube        *string `json:"youtube,omitempty"        maxLength:"500"  doc:"YouTube channel URL"`
	Instagram      *string `json:"instagram,omitempty"      maxLength:"500"  doc:"Instagram profile URL"`
}

// ProfileUpsertInput for POST /profile
type ProfileUpsertInput struct {
	Body ProfileUpsertBody `required:"false"`
}

// Resolve reports the required fields that are missing.
func (i *ProfileUpsertInput) Resolve(_ huma.Context) []error {
	var errs []error
	if blank(i.Body.Status) {
		errs = append(errs, fieldError("status", "Status is required"))
	}
	if blank(i.Body.Skills) {
		errs = append(errs, fieldError("skills", "Skills are required"))
	}
	return errs
}

// ProfileMeInput for GET /profile/me (no body needed)
type ProfileMeInput struct{}

// ProfileListInput for GET /profile. Without limit or cursor the whole list is
// returned.
type ProfileListInput struct {
	pagination.Params

	path  string
	query url.Values
}

// Resolve captures the request path for the Link header.
func (i *ProfileListInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.path = u.Path
	i.query = u.Query()
	i.query.Del("cursor")
	i.query.Del("limit")
	return nil
}

// ProfileByUserInput for GET /profile/user/{userId}
type ProfileByUserInput struct {
	UserID string `path:"userId" doc:"Owner user id" example:"test-user-123"`
}

// AccountDeleteInput for DELETE /profile (no body needed)
type AccountDeleteInput struct{}

// ExperienceBody is a new work history entry.
type ExperienceBody struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Title       string `json:"title,omitempty"       maxLength:"200"  doc:"Job title"                  example:"Backend Developer"`
	Company     string `json:"company,omitempty"     maxLength:"200"  doc:"Company"                    example:"Acme"`
	Location    string `json:"location,omitempty"    maxLength:"200"  doc:"Location"                   example:"Helsinki"`
	From        string `json:"from,omitempty"                         doc:"Start date (YYYY-MM-DD or RFC 3339)" example:"2020-03-01"`
	To          string `json:"to,omitempty"                           doc:"End date (YYYY-MM-DD or RFC 3339)"   example:"2022-06-30"`
	Current     bool   `json:"current,omitempty"                      doc:"Still in this position"`
	Description string `json:"description,omitempty" maxLength:"2000" doc:"Description"`
}

// ExperienceAddInput for PUT /profile/experience
type ExperienceAddInput struct {
	Body ExperienceBody `required:"false"`

	from time.Time
	to   *time.Time
}

// Resolve validates required fields and parses the dates.
func (i *ExperienceAddInput) Resolve(_ huma.Context) []error {
	var errs []error
	if strings.TrimSpace(i.Body.Title) == "" {
		errs = append(errs, fieldError("title", "Title is required"))
	}
	if strings.TrimSpace(i.Body.Company) == "" {
		errs = append(errs, fieldError("company", "Company is required"))
	}
	i.from, i.to, errs = resolveDates(i.Body.From, i.Body.To, errs)
	return errs
}

// EducationBody is a new education history entry.
type EducationBody struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	School       string `json:"school,omitempty"       maxLength:"200"  doc:"School"         example:"University of Helsinki"`
	Degree       string `json:"degree,omitempty"       maxLength:"200"  doc:"Degree"         example:"MSc"`
	FieldOfStudy string `json:"fieldofstudy,omitempty" maxLength:"200"  doc:"Field of study" example:"Computer Science"`
	From         string `json:"from,omitempty"                          doc:"Start date (YYYY-MM-DD or RFC 3339)" example:"2014-09-01"`
	To           string `json:"to,omitempty"                            doc:"End date (YYYY-MM-DD or RFC 3339)"   example:"2019-06-30"`
	Current      bool   `json:"current,omitempty"                       doc:"Still studying"`
	Description  string `json:"description,omitempty"  maxLength:"2000" doc:"Description"`
}

// EducationAddInput for PUT /profile/education
type EducationAddInput struct {
	Body EducationBody `required:"false"`

	from time.Time
	to   *time.Time
}

// Resolve validates required fields and parses the dates.
func (i *EducationAddInput) Resolve(_ huma.Context) []error {
	var errs []error
	if strings.TrimSpace(i.Body.School) == "" {
		errs = append(errs, fieldError("school", "School is required"))
	}
	if strings.TrimSpace(i.Body.Degree) == "" {
		errs = append(errs, fieldError("degree", "Degree is required"))
	}
	if strings.TrimSpace(i.Body.FieldOfStudy) == "" {
		errs = append(errs, fieldError("fieldofstudy", "Field of study is required"))
	}
	i.from, i.to, errs = resolveDates(i.Body.From, i.Body.To, errs)
	return errs
}

// EntryDeleteInput for DELETE /profile/{experience,education}/{id}
type EntryDeleteInput struct {
	ID string `path:"id" maxLength:"128" doc:"Entry id" example:"5f0c3c1e-8d3b-4a57-9b38-2b1f0f0d1a11"`
}

func resolveDates(rawFrom, rawTo string, errs []error) (time.Time, *time.Time, []error) {
	var from time.Time
	if strings.TrimSpace(rawFrom) == "" {
		errs = append(errs, fieldError("from", "From date is required"))
	} else if parsed, err := timeutil.ParseDate(rawFrom); err != nil {
		errs = append(errs, fieldError("from", "From date is invalid"))
	} else {
		from = parsed
	}

	var to *time.Time
	if strings.TrimSpace(rawTo) != "" {
		parsed, err := timeutil.ParseDate(rawTo)
		if err != nil {
			errs = append(errs, fieldError("to", "To date is invalid"))
		} else {
			to = &parsed
		}
	}
	return from, to, errs
}

func fieldError(field, msg string) *huma.ErrorDetail {
	return &huma.ErrorDetail{Location: "body." + field, Message: msg}
}

func blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}
