package profile

import (
	"context"
	"errors"
	"testing"
)

func newMemoryFixture(t *testing.T) storeFixture {
	t.Helper()
	s := NewMemoryStore()
	return storeFixture{
		store: s,
		putUser: func(_ context.Context, u User) error {
			s.PutUser(u)
			return nil
		},
		putPost: func(_ context.Context, p Post) error {
			s.PutPost(p)
			return nil
		},
		countPosts: func(_ context.Context, uid string) (int, error) {
			return len(s.PostsBy(uid)), nil
		},
		hasUser: func(_ context.Context, uid string) (bool, error) {
			_, ok := s.User(uid)
			return ok, nil
		},
		writers: 25,
	}
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, newMemoryFixture)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, err := s.Upsert(ctx, "owner-1", Update{Skills: []string{"go"}})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p.Skills[0] = "mutated"
	p.Experience = append(p.Experience, Experience{ID: "sneaky"})

	got, err := s.Get(ctx, "owner-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Skills[0] != "go" || len(got.Experience) != 0 {
		t.Fatalf("stored profile was mutated through a returned copy: %+v", got)
	}
}

func TestMemoryStoreFailNext(t *testing.T) {
	s := NewMemoryStore()
	boom := errors.New("boom")
	s.FailNext(boom)

	if _, err := s.List(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("failure should apply once, got %v", err)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryStore()
	s.PutUser(User{ID: "u"})
	s.PutPost(Post{ID: "p", UserID: "u"})
	if _, err := s.Upsert(context.Background(), "u", Update{}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.Clear()

	if _, ok := s.User("u"); ok {
		t.Error("expected users cleared")
	}
	if len(s.PostsBy("u")) != 0 {
		t.Error("expected posts cleared")
	}
	if _, err := s.Get(context.Background(), "u"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected profiles cleared, got %v", err)
	}
}
