package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/devconnector-api/internal/platform/auth"
	"github.com/janisto/devconnector-api/internal/platform/pagination"
	"github.com/janisto/devconnector-api/internal/platform/timeutil"
	profilesvc "github.com/janisto/devconnector-api/internal/service/profile"
)

const (
	msgNoProfileForUser = "There is no profile for this user"
	msgProfileNotFound  = "Profile not found"
	msgProfileMissing   = "Profile does not exist"
	msgNoProfileFound   = "No profile found"
	msgServerError      = "Server Error"
	msgUserDeleted      = "User deleted"
	msgInvalidCursor    = "Invalid cursor"

	cursorKind = "profile"
)

var bearerAuth = []map[string][]string{{"bearerAuth": {}}}

// Register registers profile endpoints.
func Register(api huma.API, svc profilesvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-my-profile",
		Method:      http.MethodGet,
		Path:        "/profile/me",
		Summary:     "Get current user's profile",
		Description: "Returns the authenticated user's profile with the owner's name and avatar.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, _ *ProfileMeInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.Get(ctx, user.UID)
		if err != nil {
			return nil, mapLookupError(err, msgNoProfileForUser)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "upsert-profile",
		Method:      http.MethodPost,
		Path:        "/profile",
		Summary:     "Create or update current user's profile",
		Description: "Creates the profile on first call and merges the provided fields afterwards. " +
			"Status and skills are required; skills is a comma separated list.",
		Tags:     []string{"Profile"},
		Security: bearerAuth,
	}, func(ctx context.Context, input *ProfileUpsertInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)
		b := input.Body

		p, err := svc.Upsert(ctx, user.UID, profilesvc.UpsertParams{
			Company:        b.Company,
			Website:        b.Website,
			Location:       b.Location,
			Bio:            b.Bio,
			Status:         b.Status,
			GitHubUsername: b.GitHubUsername,
			Skills:         b.Skills,
			Twitter:        b.Twitter,
			Facebook:       b.Facebook,
			LinkedIn:       b.LinkedIn,
			YouTube:        b.YouTube,
			Instagram:      b.Instagram,
		})
		if err != nil {
			return nil, huma.Error500InternalServerError(msgServerError, err)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "List all profiles",
		Description: "Returns every profile, oldest first. Set limit to page through them with the Link header.",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, input *ProfileListInput) (*ProfileListOutput, error) {
		profiles, err := svc.List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError(msgServerError, err)
		}
		page, err := pagination.Apply(profiles, input.Params, cursorKind,
			func(p profilesvc.Profile) string { return p.Owner.ID }, input.path, input.query)
		if err != nil {
			return nil, huma.Error400BadRequest(msgInvalidCursor)
		}
		out := make([]Profile, len(page.Items))
		for i := range page.Items {
			out[i] = toHTTPProfile(&page.Items[i])
		}
		return &ProfileListOutput{Link: page.Link, Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile-by-user",
		Method:      http.MethodGet,
		Path:        "/profile/user/{userId}",
		Summary:     "Get a profile by user id",
		Description: "Returns the profile owned by the given user.",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, input *ProfileByUserInput) (*ProfileOutput, error) {
		p, err := svc.GetByOwner(ctx, input.UserID)
		if err != nil {
			return nil, mapLookupError(err, msgProfileNotFound)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-account",
		Method:      http.MethodDelete,
		Path:        "/profile",
		Summary:     "Delete current user's account",
		Description: "Deletes the user's posts, profile and user record.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, _ *AccountDeleteInput) (*AccountDeleteOutput, error) {
		user := auth.UserFromContext(ctx)

		if err := svc.DeleteAccount(ctx, user.UID); err != nil {
			return nil, huma.Error500InternalServerError(msgServerError, err)
		}
		return &AccountDeleteOutput{Body: DeleteResult{Msg: msgUserDeleted}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-experience",
		Method:      http.MethodPut,
		Path:        "/profile/experience",
		Summary:     "Add profile experience",
		Description: "Adds a work history entry at the front of the list.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *ExperienceAddInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)
		b := input.Body

		p, err := svc.AddExperience(ctx, user.UID, profilesvc.ExperienceParams{
			Title:       b.Title,
			Company:     b.Company,
			Location:    b.Location,
			From:        input.from,
			To:          input.to,
			Current:     b.Current,
			Description: b.Description,
		})
		if err != nil {
			return nil, mapLookupError(err, msgProfileMissing)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-experience",
		Method:      http.MethodDelete,
		Path:        "/profile/experience/{id}",
		Summary:     "Delete profile experience",
		Description: "Removes the work history entry with the given id. Unknown ids are ignored.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *EntryDeleteInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.RemoveExperience(ctx, user.UID, input.ID)
		if err != nil {
			return nil, mapLookupError(err, msgNoProfileFound)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-education",
		Method:      http.MethodPut,
		Path:        "/profile/education",
		Summary:     "Add profile education",
		Description: "Adds an education entry at the front of the list.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *EducationAddInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)
		b := input.Body

		p, err := svc.AddEducation(ctx, user.UID, profilesvc.EducationParams{
			School:       b.School,
			Degree:       b.Degree,
			FieldOfStudy: b.FieldOfStudy,
			From:         input.from,
			To:           input.to,
			Current:      b.Current,
			Description:  b.Description,
		})
		if err != nil {
			return nil, mapLookupError(err, msgProfileMissing)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-education",
		Method:      http.MethodDelete,
		Path:        "/profile/education/{id}",
		Summary:     "Delete profile education",
		Description: "Removes the education entry with the given id. Unknown ids are ignored.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *EntryDeleteInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		p, err := svc.RemoveEducation(ctx, user.UID, input.ID)
		if err != nil {
			return nil, mapLookupError(err, msgNoProfileFound)
		}
		return &ProfileOutput{Body: toHTTPProfile(p)}, nil
	})
}

// mapLookupError renders missing profiles as 400 with notFound and anything
// else as a generic 500.
func mapLookupError(err error, notFound string) error {
	switch {
	case errors.Is(err, profilesvc.ErrNotFound), errors.Is(err, profilesvc.ErrInvalidOwnerID):
		return huma.Error400BadRequest(notFound)
	default:
		return huma.Error500InternalServerError(msgServerError, err)
	}
}

func toHTTPProfile(p *profilesvc.Profile) Profile {
	out := Profile{
		Owner: Owner{
			ID:     p.Owner.ID,
			Name:   p.Owner.Name,
			Avatar: p.Owner.Avatar,
		},
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GitHubUsername: p.GitHubUsername,
		Skills:         p.Skills,
		Social: Social{
			Twitter:   p.Social.Twitter,
			Facebook:  p.Social.Facebook,
			LinkedIn:  p.Social.LinkedIn,
			YouTube:   p.Social.YouTube,
			Instagram: p.Social.Instagram,
		},
		Experience: make([]Experience, len(p.Experience)),
		Education:  make([]Education, len(p.Education)),
		CreatedAt:  timeutil.NewTime(p.CreatedAt),
		UpdatedAt:  timeutil.NewTime(p.UpdatedAt),
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	for i, e := range p.Experience {
		out.Experience[i] = Experience{
			ID:          e.ID,
			Title:       e.Title,
			Company:     e.Company,
			Location:    e.Location,
			From:        timeutil.NewTime(e.From),
			To:          timeutil.NewTimePtr(e.To),
			Current:     e.Current,
			Description: e.Description,
		}
	}
	for i, e := range p.Education {
		out.Education[i] = Education{
			ID:           e.ID,
			School:       e.School,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			From:         timeutil.NewTime(e.From),
			To:           timeutil.NewTimePtr(e.To),
			Current:      e.Current,
			Description:  e.Description,
		}
	}
	return out
}
