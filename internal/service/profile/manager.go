package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/janisto/devconnector-api/internal/platform/logging"
)

const resourceProfile = "profile"

// Manager implements Service on top of a Store.
type Manager struct {
	store   Store
	remover AccountRemover
	newID   func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithAccountRemover also deletes the identity provider account when an
// account is deleted.
func WithAccountRemover(r AccountRemover) Option {
	return func(m *Manager) { m.remover = r }
}

// WithIDGenerator replaces the UUIDv4 generator for entry ids.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager returns a Manager persisting through store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, newID: uuid.NewString}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the profile of an authenticated owner.
func (m *Manager) Get(ctx context.Context, ownerID string) (*Profile, error) {
	return m.store.Get(ctx, ownerID)
}

// GetByOwner returns the profile of an arbitrary owner id taken from a URL.
func (m *Manager) GetByOwner(ctx context.Context, ownerID string) (*Profile, error) {
	if !ValidOwnerID(ownerID) {
		return nil, ErrInvalidOwnerID
	}
	return m.store.Get(ctx, ownerID)
}

// List returns all profiles.
func (m *Manager) List(ctx context.Context) ([]Profile, error) {
	return m.store.List(ctx)
}

// Upsert creates or partially updates the owner's profile.
func (m *Manager) Upsert(ctx context.Context, ownerID string, params UpsertParams) (*Profile, error) {
	p, err := m.store.Upsert(ctx, ownerID, params.update())
	m.audit(ctx, "upsert", ownerID, resourceProfile, ownerID, err)
	return p, err
}

func (p UpsertParams) update() Update {
	u := Update{
		Company:        provided(p.Company),
		Website:        provided(p.Website),
		Location:       provided(p.Location),
		Bio:            provided(p.Bio),
		Status:         provided(p.Status),
		GitHubUsername: provided(p.GitHubUsername),
		Social: Social{
			Twitter:   deref(p.Twitter),
			Facebook:  deref(p.Facebook),
			LinkedIn:  deref(p.LinkedIn),
			YouTube:   deref(p.YouTube),
			Instagram: deref(p.Instagram),
		},
	}
	if raw := provided(p.Skills); raw != nil {
		u.Skills = ParseSkills(*raw)
	}
	return u
}

func provided(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// AddExperience prepends a new experience entry. A current position never
// keeps an end date.
func (m *Manager) AddExperience(ctx context.Context, ownerID string, params ExperienceParams) (*Profile, error) {
	e := Experience{
		ID:          m.newID(),
		Title:       params.Title,
		Company:     params.Company,
		Location:    params.Location,
		From:        params.From,
		To:          params.To,
		Current:     params.Current,
		Description: params.Description,
	}
	if e.Current {
		e.To = nil
	}
	p, err := m.store.PrependExperience(ctx, ownerID, e)
	m.audit(ctx, "add", ownerID, "experience", e.ID, err)
	return p, err
}

// RemoveExperience removes the entry with exactly entryID. An unknown id
// leaves the profile unchanged.
func (m *Manager) RemoveExperience(ctx context.Context, ownerID, entryID string) (*Profile, error) {
	p, err := m.store.RemoveExperience(ctx, ownerID, entryID)
	m.audit(ctx, "remove", ownerID, "experience", entryID, err)
	return p, err
}

// AddEducation prepends a new education entry. A current entry never keeps
// an end date.
func (m *Manager) AddEducation(ctx context.Context, ownerID string, params EducationParams) (*Profile, error) {
	e := Education{
		ID:           m.newID(),
		School:       params.School,
		Degree:       params.Degree,
		FieldOfStudy: params.FieldOfStudy,
		From:         params.From,
		To:           params.To,
		Current:      params.Current,
		Description:  params.Description,
	}
	if e.Current {
		e.To = nil
	}
	p, err := m.store.PrependEducation(ctx, ownerID, e)
	m.audit(ctx, "add", ownerID, "education", e.ID, err)
	return p, err
}

// RemoveEducation removes the entry with exactly entryID.
func (m *Manager) RemoveEducation(ctx context.Context, ownerID, entryID string) (*Profile, error) {
	p, err := m.store.RemoveEducation(ctx, ownerID, entryID)
	m.audit(ctx, "remove", ownerID, "education", entryID, err)
	return p, err
}

// DeleteAccount removes posts, profile and user record, then the identity
// provider account when a remover is configured.
func (m *Manager) DeleteAccount(ctx context.Context, ownerID string) error {
	err := m.store.DeleteAccount(ctx, ownerID)
	if err == nil && m.remover != nil {
		if err = m.remover.RemoveAccount(ctx, ownerID); err != nil {
			err = fmt.Errorf("remove identity account: %w", err)
		}
	}
	m.audit(ctx, "delete", ownerID, "account", ownerID, err)
	if err != nil {
		logging.LogError(ctx, "account delete failed", err, zap.String("ownerId", ownerID))
	}
	return err
}

func (m *Manager) audit(ctx context.Context, action, ownerID, resourceType, resourceID string, err error) {
	if err != nil {
		logging.LogAuditEvent(ctx, action, ownerID, resourceType, resourceID, logging.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return
	}
	logging.LogAuditEvent(ctx, action, ownerID, resourceType, resourceID, logging.AuditSuccess, nil)
}

// categorizeError converts errors to audit-safe labels.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidOwnerID):
		return "invalid_owner_id"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal_error"
	}
}

var _ Service = (*Manager)(nil)
