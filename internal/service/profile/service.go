// Package profile implements the developer profile aggregate: one profile per
// user with newest-first experience and education entries.
package profile

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrNotFound means the owner has no profile.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidOwnerID means the owner id cannot identify any user.
	ErrInvalidOwnerID = errors.New("invalid owner id")
)

var ownerIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidOwnerID reports whether id has the shape of a user id.
func ValidOwnerID(id string) bool {
	return ownerIDPattern.MatchString(id)
}

// Social links keyed by network. Empty means unset.
type Social struct {
	Twitter   string
	Facebook  string
	LinkedIn  string
	YouTube   string
	Instagram string
}

// Owner is the public view of the user a profile belongs to. Name and Avatar
// are only filled by read operations.
type Owner struct {
	ID     string
	Name   string
	Avatar string
}

// Experience is one work history entry.
type Experience struct {
	ID          string
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

// Education is one education history entry.
type Education struct {
	ID           string
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

// Profile is the aggregate, identified by Owner.ID.
type Profile struct {
	Owner          Owner
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	Skills         []string
	Social         Social
	Experience     []Experience
	Education      []Education
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// User is the account record a profile hangs off. Profiles only read Name and
// Avatar; the account delete removes the record.
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}

// Post is a user's post. Only the author link matters here.
type Post struct {
	ID     string
	UserID string
	Text   string
}

// UpsertParams carries the fields of a create-or-update request. Nil or empty
// values are not provided and leave the stored value alone.
type UpsertParams struct {
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GitHubUsername *string

	// Skills is the raw comma separated list.
	Skills *string

	Twitter   *string
	Facebook  *string
	LinkedIn  *string
	YouTube   *string
	Instagram *string
}

// ExperienceParams describes a new experience entry.
type ExperienceParams struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

// EducationParams describes a new education entry.
type EducationParams struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

// Update is a normalized partial write. Nil pointers, a nil Skills slice and
// empty Social fields are left untouched.
type Update struct {
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GitHubUsername *string
	Skills         []string
	Social         Social
}

// Apply merges u into p.
func (u Update) Apply(p *Profile) {
	setIf(&p.Company, u.Company)
	setIf(&p.Website, u.Website)
	setIf(&p.Location, u.Location)
	setIf(&p.Bio, u.Bio)
	setIf(&p.Status, u.Status)
	setIf(&p.GitHubUsername, u.GitHubUsername)
	if u.Skills != nil {
		p.Skills = append([]string{}, u.Skills...)
	}
	mergeString(&p.Social.Twitter, u.Social.Twitter)
	mergeString(&p.Social.Facebook, u.Social.Facebook)
	mergeString(&p.Social.LinkedIn, u.Social.LinkedIn)
	mergeString(&p.Social.YouTube, u.Social.YouTube)
	mergeString(&p.Social.Instagram, u.Social.Instagram)
}

// socialFields lists the provided social links by stored key.
func (u Update) socialFields() map[string]string {
	fields := map[string]string{}
	for key, v := range map[string]string{
		"twitter":   u.Social.Twitter,
		"facebook":  u.Social.Facebook,
		"linkedin":  u.Social.LinkedIn,
		"youtube":   u.Social.YouTube,
		"instagram": u.Social.Instagram,
	} {
		if v != "" {
			fields[key] = v
		}
	}
	return fields
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ParseSkills splits a comma separated list, trims every token and drops the
// empty ones. Order and duplicates are kept. The result is never nil.
func ParseSkills(raw string) []string {
	skills := []string{}
	for token := range strings.SplitSeq(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			skills = append(skills, token)
		}
	}
	return skills
}

// Store persists profiles. Every mutation must be atomic per owner so
// concurrent writers never lose each other's changes.
type Store interface {
	// Get returns the owner's profile with the owner view resolved.
	Get(ctx context.Context, ownerID string) (*Profile, error)
	// List returns every profile with owner views resolved.
	List(ctx context.Context) ([]Profile, error)
	// Upsert creates the profile when missing, with empty entry lists, and
	// then applies u.
	Upsert(ctx context.Context, ownerID string, u Update) (*Profile, error)

	PrependExperience(ctx context.Context, ownerID string, e Experience) (*Profile, error)
	RemoveExperience(ctx context.Context, ownerID, entryID string) (*Profile, error)
	PrependEducation(ctx context.Context, ownerID string, e Education) (*Profile, error)
	RemoveEducation(ctx context.Context, ownerID, entryID string) (*Profile, error)

	// DeleteAccount removes the owner's posts, then the profile, then the user record.
	DeleteAccount(ctx context.Context, ownerID string) error
}

// Service is the profile API consumed by the HTTP layer.
type Service interface {
	Get(ctx context.Context, ownerID string) (*Profile, error)
	GetByOwner(ctx context.Context, ownerID string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Upsert(ctx context.Context, ownerID string, params UpsertParams) (*Profile, error)
	AddExperience(ctx context.Context, ownerID string, params ExperienceParams) (*Profile, error)
	RemoveExperience(ctx context.Context, ownerID, entryID string) (*Profile, error)
	AddEducation(ctx context.Context, ownerID string, params EducationParams) (*Profile, error)
	RemoveEducation(ctx context.Context, ownerID, entryID string) (*Profile, error)
	DeleteAccount(ctx context.Context, ownerID string) error
}

// AccountRemover deletes the identity provider account of a user.
type AccountRemover interface {
	RemoveAccount(ctx context.Context, uid string) error
}
