package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	profilesCollection = "profiles"
	usersCollection    = "users"
	postsCollection    = "posts"

	// postAuthorField holds the author's uid on post documents.
	postAuthorField = "user"
)

type firestoreSocial struct {
	Twitter   string `firestore:"twitter,omitempty"`
	Facebook  string `firestore:"facebook,omitempty"`
	LinkedIn  string `firestore:"linkedin,omitempty"`
	YouTube   string `firestore:"youtube,omitempty"`
	Instagram string `firestore:"instagram,omitempty"`
}

type firestoreExperience struct {
	ID          string     `firestore:"id"`
	Title       string     `firestore:"title"`
	Company     string     `firestore:"company"`
	Location    string     `firestore:"location,omitempty"`
	From        time.Time  `firestore:"from"`
	To          *time.Time `firestore:"to,omitempty"`
	Current     bool       `firestore:"current"`
	Description string     `firestore:"description,omitempty"`
}

type firestoreEducation struct {
	ID           string     `firestore:"id"`
	School       string     `firestore:"school"`
	Degree       string     `firestore:"degree"`
	FieldOfStudy string     `firestore:"fieldofstudy"`
	From         time.Time  `firestore:"from"`
	To           *time.Time `firestore:"to,omitempty"`
	Current      bool       `firestore:"current"`
	Description  string     `firestore:"description,omitempty"`
}

// firestoreProfile is the profiles/{uid} document.
type firestoreProfile struct {
	Company        string                `firestore:"company,omitempty"`
	Website        string                `firestore:"website,omitempty"`
	Location       string                `firestore:"location,omitempty"`
	Bio            string                `firestore:"bio,omitempty"`
	Status         string                `firestore:"status,omitempty"`
	GitHubUsername string                `firestore:"githubusername,omitempty"`
	Skills         []string              `firestore:"skills"`
	Social         firestoreSocial       `firestore:"social"`
	Experience     []firestoreExperience `firestore:"experience"`
	Education      []firestoreEducation  `firestore:"education"`
	CreatedAt      time.Time             `firestore:"createdAt"`
	UpdatedAt      time.Time             `firestore:"updatedAt"`
}

// firestoreUser is the part of users/{uid} the profile reads and seeds.
type firestoreUser struct {
	Name   string `firestore:"name"`
	Email  string `firestore:"email,omitempty"`
	Avatar string `firestore:"avatar,omitempty"`
}

// FirestoreStore implements Store on Firestore. Each mutation is a
// read-modify-write transaction, so concurrent writers are retried instead
// of overwriting each other.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore returns a store using client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) profileRef(ownerID string) *firestore.DocumentRef {
	return s.client.Collection(profilesCollection).Doc(ownerID)
}

func (s *FirestoreStore) userRef(ownerID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(ownerID)
}

// Get returns the owner's profile joined with the owner's name and avatar.
func (s *FirestoreStore) Get(ctx context.Context, ownerID string) (*Profile, error) {
	docs, err := s.client.GetAll(ctx, []*firestore.DocumentRef{s.profileRef(ownerID), s.userRef(ownerID)})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !docs[0].Exists() {
		return nil, ErrNotFound
	}
	p, err := decodeFirestoreProfile(docs[0])
	if err != nil {
		return nil, err
	}
	if err := attachFirestoreOwner(p, docs[1]); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every profile, oldest first, with owner views resolved in one
// batched read.
func (s *FirestoreStore) List(ctx context.Context) ([]Profile, error) {
	snaps, err := s.client.Collection(profilesCollection).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if len(snaps) == 0 {
		return []Profile{}, nil
	}

	refs := make([]*firestore.DocumentRef, len(snaps))
	for i, snap := range snaps {
		refs[i] = s.userRef(snap.Ref.ID)
	}
	users, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("list profile owners: %w", err)
	}

	out := make([]Profile, 0, len(snaps))
	for i, snap := range snaps {
		p, err := decodeFirestoreProfile(snap)
		if err != nil {
			return nil, err
		}
		if err := attachFirestoreOwner(p, users[i]); err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Upsert creates the profile document when missing and merges u into it.
func (s *FirestoreStore) Upsert(ctx context.Context, ownerID string, u Update) (*Profile, error) {
	ref := s.profileRef(ownerID)
	var result *Profile
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC()
		p := &Profile{Owner: Owner{ID: ownerID}, Experience: []Experience{}, Education: []Education{}, CreatedAt: now}

		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if p, err = decodeFirestoreProfile(snap); err != nil {
				return err
			}
		case status.Code(err) != codes.NotFound:
			return err
		}

		u.Apply(p)
		p.UpdatedAt = now
		result = p
		return tx.Set(ref, toFirestoreProfile(p))
	})
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return result, nil
}

func (s *FirestoreStore) PrependExperience(ctx context.Context, ownerID string, e Experience) (*Profile, error) {
	return s.mutate(ctx, ownerID, func(p *Profile) {
		p.Experience = slices.Insert(p.Experience, 0, e)
	})
}

func (s *FirestoreStore) RemoveExperience(ctx context.Context, ownerID, entryID string) (*Profile, error) {
	return s.mutate(ctx, ownerID, func(p *Profile) {
		p.Experience = slices.DeleteFunc(p.Experience, func(e Experience) bool { return e.ID == entryID })
	})
}

func (s *FirestoreStore) PrependEducation(ctx context.Context, ownerID string, e Education) (*Profile, error) {
	return s.mutate(ctx, ownerID, func(p *Profile) {
		p.Education = slices.Insert(p.Education, 0, e)
	})
}

func (s *FirestoreStore) RemoveEducation(ctx context.Context, ownerID, entryID string) (*Profile, error) {
	return s.mutate(ctx, ownerID, func(p *Profile) {
		p.Education = slices.DeleteFunc(p.Education, func(e Education) bool { return e.ID == entryID })
	})
}

// mutate applies fn to an existing profile inside a transaction.
func (s *FirestoreStore) mutate(ctx context.Context, ownerID string, fn func(*Profile)) (*Profile, error) {
	ref := s.profileRef(ownerID)
	var result *Profile
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		p, err := decodeFirestoreProfile(snap)
		if err != nil {
			return err
		}
		fn(p)
		p.UpdatedAt = time.Now().UTC()
		result = p
		return tx.Set(ref, toFirestoreProfile(p))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return result, nil
}

// DeleteAccount deletes the owner's posts, profile and user record in one
// transaction. A transaction holds at most 500 writes, which bounds the
// number of posts removed together.
func (s *FirestoreStore) DeleteAccount(ctx context.Context, ownerID string) error {
	posts := s.client.Collection(postsCollection).Where(postAuthorField, "==", ownerID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(posts).GetAll()
		if err != nil {
			return fmt.Errorf("query posts: %w", err)
		}
		for _, snap := range snaps {
			if err := tx.Delete(snap.Ref); err != nil {
				return err
			}
		}
		if err := tx.Delete(s.profileRef(ownerID)); err != nil {
			return err
		}
		return tx.Delete(s.userRef(ownerID))
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// PutUser writes a users/{uid} document. The account service owns these
// records; tests and local seeding use this.
func (s *FirestoreStore) PutUser(ctx context.Context, u User) error {
	_, err := s.userRef(u.ID).Set(ctx, firestoreUser{Name: u.Name, Email: u.Email, Avatar: u.Avatar})
	return err
}

// PutPost writes a posts document authored by p.UserID.
func (s *FirestoreStore) PutPost(ctx context.Context, p Post) error {
	_, err := s.client.Collection(postsCollection).Doc(p.ID).Set(ctx, map[string]any{
		postAuthorField: p.UserID,
		"text":          p.Text,
	})
	return err
}

func decodeFirestoreProfile(snap *firestore.DocumentSnapshot) (*Profile, error) {
	var fp firestoreProfile
	if err := snap.DataTo(&fp); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", snap.Ref.ID, err)
	}
	p := &Profile{
		Owner:          Owner{ID: snap.Ref.ID},
		Company:        fp.Company,
		Website:        fp.Website,
		Location:       fp.Location,
		Bio:            fp.Bio,
		Status:         fp.Status,
		GitHubUsername: fp.GitHubUsername,
		Skills:         fp.Skills,
		Social:         Social(fp.Social),
		Experience:     make([]Experience, len(fp.Experience)),
		Education:      make([]Education, len(fp.Education)),
		CreatedAt:      fp.CreatedAt,
		UpdatedAt:      fp.UpdatedAt,
	}
	for i, e := range fp.Experience {
		p.Experience[i] = Experience(e)
	}
	for i, e := range fp.Education {
		p.Education[i] = Education(e)
	}
	return p, nil
}

func toFirestoreProfile(p *Profile) firestoreProfile {
	fp := firestoreProfile{
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GitHubUsername: p.GitHubUsername,
		Skills:         p.Skills,
		Social:         firestoreSocial(p.Social),
		Experience:     make([]firestoreExperience, len(p.Experience)),
		Education:      make([]firestoreEducation, len(p.Education)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for i, e := range p.Experience {
		fp.Experience[i] = firestoreExperience(e)
	}
	for i, e := range p.Education {
		fp.Education[i] = firestoreEducation(e)
	}
	return fp
}

func attachFirestoreOwner(p *Profile, snap *firestore.DocumentSnapshot) error {
	if snap == nil || !snap.Exists() {
		return nil
	}
	var u firestoreUser
	if err := snap.DataTo(&u); err != nil {
		return fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	p.Owner.Name = u.Name
	p.Owner.Avatar = u.Avatar
	return nil
}

var _ Store = (*FirestoreStore)(nil)
