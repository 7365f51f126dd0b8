package profile

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and local development. A
// single mutex serializes all mutations.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	users    map[string]User
	posts    map[string]Post
	failNext error
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
		users:    make(map[string]User),
		posts:    make(map[string]Post),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PutUser stores or replaces a user record.
func (s *MemoryStore) PutUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// User returns the user record with id.
func (s *MemoryStore) User(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// PutPost stores or replaces a post.
func (s *MemoryStore) PutPost(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
}

// PostsBy returns the posts authored by userID.
func (s *MemoryStore) PostsBy(userID string) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Post
	for _, p := range s.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// FailNext makes the next store operation return err.
func (s *MemoryStore) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Clear removes all data.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.profiles)
	clear(s.users)
	clear(s.posts)
	s.failNext = nil
}

// takeFailure must be called with the lock held.
func (s *MemoryStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *MemoryStore) Get(_ context.Context, ownerID string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.withOwner(p), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *s.withOwner(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Owner.ID < out[j].Owner.ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Upsert(_ context.Context, ownerID string, u Update) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	now := s.now()
	p, ok := s.profiles[ownerID]
	if !ok {
		p = &Profile{
			Owner:      Owner{ID: ownerID},
			Experience: []Experience{},
			Education:  []Education{},
			CreatedAt:  now,
		}
		s.profiles[ownerID] = p
	}
	u.Apply(p)
	p.UpdatedAt = now
	return cloneProfile(p), nil
}

func (s *MemoryStore) PrependExperience(_ context.Context, ownerID string, e Experience) (*Profile, error) {
	return s.mutate(ownerID, func(p *Profile) {
		p.Experience = slices.Insert(p.Experience, 0, e)
	})
}

func (s *MemoryStore) RemoveExperience(_ context.Context, ownerID, entryID string) (*Profile, error) {
	return s.mutate(ownerID, func(p *Profile) {
		p.Experience = slices.DeleteFunc(p.Experience, func(e Experience) bool { return e.ID == entryID })
	})
}

func (s *MemoryStore) PrependEducation(_ context.Context, ownerID string, e Education) (*Profile, error) {
	return s.mutate(ownerID, func(p *Profile) {
		p.Education = slices.Insert(p.Education, 0, e)
	})
}

func (s *MemoryStore) RemoveEducation(_ context.Context, ownerID, entryID string) (*Profile, error) {
	return s.mutate(ownerID, func(p *Profile) {
		p.Education = slices.DeleteFunc(p.Education, func(e Education) bool { return e.ID == entryID })
	})
}

func (s *MemoryStore) DeleteAccount(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	for id, p := range s.posts {
		if p.UserID == ownerID {
			delete(s.posts, id)
		}
	}
	delete(s.profiles, ownerID)
	delete(s.users, ownerID)
	return nil
}

func (s *MemoryStore) mutate(ownerID string, fn func(*Profile)) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	fn(p)
	p.UpdatedAt = s.now()
	return cloneProfile(p), nil
}

// withOwner must be called with the lock held.
func (s *MemoryStore) withOwner(p *Profile) *Profile {
	out := cloneProfile(p)
	if u, ok := s.users[p.Owner.ID]; ok {
		out.Owner.Name = u.Name
		out.Owner.Avatar = u.Avatar
	}
	return out
}

func cloneProfile(p *Profile) *Profile {
	out := *p
	out.Skills = slices.Clone(p.Skills)
	out.Experience = slices.Clone(p.Experience)
	out.Education = slices.Clone(p.Education)
	if out.Experience == nil {
		out.Experience = []Experience{}
	}
	if out.Education == nil {
		out.Education = []Education{}
	}
	return &out
}

var _ Store = (*MemoryStore)(nil)
