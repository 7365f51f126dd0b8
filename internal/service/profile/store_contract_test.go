package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// storeFixture adapts a Store backend to the shared behaviour tests.
type storeFixture struct {
	store      Store
	putUser    func(context.Context, User) error
	putPost    func(context.Context, Post) error
	countPosts func(context.Context, string) (int, error)
	hasUser    func(context.Context, string) (bool, error)

	// writers is the number of concurrent mutators used by the race test.
	writers int
}

func strPtr(s string) *string { return &s }

func entryDate(year int) time.Time {
	return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func runStoreContract(t *testing.T, newFixture func(t *testing.T) storeFixture) {
	ctx := context.Background()

	t.Run("upsert creates with empty entries", func(t *testing.T) {
		f := newFixture(t)
		p, err := f.store.Upsert(ctx, "owner-1", Update{Status: strPtr("dev"), Skills: []string{"go", "rust"}})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if p.Owner.ID != "owner-1" || p.Status != "dev" {
			t.Fatalf("unexpected profile %+v", p)
		}
		if fmt.Sprint(p.Skills) != "[go rust]" {
			t.Fatalf("expected skills [go rust], got %v", p.Skills)
		}
		if p.Experience == nil || len(p.Experience) != 0 || p.Education == nil || len(p.Education) != 0 {
			t.Fatalf("expected empty non-nil entry lists, got %v %v", p.Experience, p.Education)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Fatal("expected timestamps")
		}
	})

	t.Run("upsert merges provided fields only", func(t *testing.T) {
		f := newFixture(t)
		first := Update{
			Status:  strPtr("dev"),
			Company: strPtr("Acme"),
			Skills:  []string{"go"},
			Social:  Social{Twitter: "https://twitter.com/a", LinkedIn: "https://linkedin.com/in/a"},
		}
		if _, err := f.store.Upsert(ctx, "owner-1", first); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if _, err := f.store.PrependExperience(ctx, "owner-1", Experience{ID: "e1", Title: "Dev", Company: "Acme", From: entryDate(2020)}); err != nil {
			t.Fatalf("prepend: %v", err)
		}

		p, err := f.store.Upsert(ctx, "owner-1", Update{Bio: strPtr("hello"), Social: Social{Twitter: "https://twitter.com/b"}})
		if err != nil {
			t.Fatalf("second upsert: %v", err)
		}
		if p.Status != "dev" || p.Company != "Acme" || p.Bio != "hello" {
			t.Fatalf("scalar merge failed: %+v", p)
		}
		if fmt.Sprint(p.Skills) != "[go]" {
			t.Fatalf("skills should be untouched, got %v", p.Skills)
		}
		if p.Social.Twitter != "https://twitter.com/b" || p.Social.LinkedIn != "https://linkedin.com/in/a" {
			t.Fatalf("social merge failed: %+v", p.Social)
		}
		if len(p.Experience) != 1 || p.Experience[0].ID != "e1" {
			t.Fatalf("experience should survive upsert, got %+v", p.Experience)
		}
	})

	t.Run("entries are prepended", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.store.Upsert(ctx, "owner-1", Update{Status: strPtr("dev")}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		for _, id := range []string{"e1", "e2"} {
			if _, err := f.store.PrependExperience(ctx, "owner-1", Experience{ID: id, Title: "T", Company: "C", From: entryDate(2020)}); err != nil {
				t.Fatalf("prepend %s: %v", id, err)
			}
		}
		for _, id := range []string{"d1", "d2"} {
			if _, err := f.store.PrependEducation(ctx, "owner-1", Education{ID: id, School: "S", Degree: "D", FieldOfStudy: "F", From: entryDate(2010)}); err != nil {
				t.Fatalf("prepend %s: %v", id, err)
			}
		}
		p, err := f.store.Get(ctx, "owner-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(p.Experience) != 2 || p.Experience[0].ID != "e2" || p.Experience[1].ID != "e1" {
			t.Fatalf("expected [e2 e1], got %+v", p.Experience)
		}
		if len(p.Education) != 2 || p.Education[0].ID != "d2" || p.Education[1].ID != "d1" {
			t.Fatalf("expected [d2 d1], got %+v", p.Education)
		}
		if !p.Experience[0].From.Equal(entryDate(2020)) {
			t.Fatalf("from date not preserved: %v", p.Experience[0].From)
		}
	})

	t.Run("remove is exact and idempotent", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.store.Upsert(ctx, "owner-1", Update{Status: strPtr("dev")}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		end := entryDate(2021)
		if _, err := f.store.PrependExperience(ctx, "owner-1", Experience{ID: "a", Title: "T", Company: "C", From: entryDate(2020), To: &end}); err != nil {
			t.Fatalf("prepend: %v", err)
		}
		if _, err := f.store.PrependEducation(ctx, "owner-1", Education{ID: "b", School: "S", Degree: "D", FieldOfStudy: "F", From: entryDate(2010)}); err != nil {
			t.Fatalf("prepend: %v", err)
		}

		p, err := f.store.RemoveExperience(ctx, "owner-1", "A")
		if err != nil {
			t.Fatalf("remove unknown: %v", err)
		}
		if len(p.Experience) != 1 {
			t.Fatalf("unknown id must not remove anything, got %+v", p.Experience)
		}
		if p.Experience[0].To == nil || !p.Experience[0].To.Equal(end) {
			t.Fatalf("to date not preserved: %v", p.Experience[0].To)
		}

		p, err = f.store.RemoveExperience(ctx, "owner-1", "a")
		if err != nil {
			t.Fatalf("remove: %v", err)
		}
		if len(p.Experience) != 0 {
			t.Fatalf("expected empty experience, got %+v", p.Experience)
		}
		p, err = f.store.RemoveEducation(ctx, "owner-1", "b")
		if err != nil {
			t.Fatalf("remove education: %v", err)
		}
		if len(p.Education) != 0 {
			t.Fatalf("expected empty education, got %+v", p.Education)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.store.Get(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Errorf("get: expected ErrNotFound, got %v", err)
		}
		if _, err := f.store.PrependExperience(ctx, "nobody", Experience{ID: "x"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("prepend experience: expected ErrNotFound, got %v", err)
		}
		if _, err := f.store.RemoveExperience(ctx, "nobody", "x"); !errors.Is(err, ErrNotFound) {
			t.Errorf("remove experience: expected ErrNotFound, got %v", err)
		}
		if _, err := f.store.PrependEducation(ctx, "nobody", Education{ID: "x"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("prepend education: expected ErrNotFound, got %v", err)
		}
		if _, err := f.store.RemoveEducation(ctx, "nobody", "x"); !errors.Is(err, ErrNotFound) {
			t.Errorf("remove education: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reads resolve the owner view", func(t *testing.T) {
		f := newFixture(t)
		if err := f.putUser(ctx, User{ID: "owner-1", Name: "Ada", Email: "ada@example.com", Avatar: "https://gravatar.com/ada"}); err != nil {
			t.Fatalf("put user: %v", err)
		}
		for _, id := range []string{"owner-1", "owner-2"} {
			if _, err := f.store.Upsert(ctx, id, Update{Status: strPtr("dev")}); err != nil {
				t.Fatalf("upsert %s: %v", id, err)
			}
		}

		p, err := f.store.Get(ctx, "owner-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if p.Owner != (Owner{ID: "owner-1", Name: "Ada", Avatar: "https://gravatar.com/ada"}) {
			t.Fatalf("unexpected owner view %+v", p.Owner)
		}

		all, err := f.store.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 profiles, got %d", len(all))
		}
		owners := map[string]Owner{}
		for _, p := range all {
			owners[p.Owner.ID] = p.Owner
		}
		if owners["owner-1"].Name != "Ada" {
			t.Errorf("expected resolved owner-1, got %+v", owners["owner-1"])
		}
		if owners["owner-2"] != (Owner{ID: "owner-2"}) {
			t.Errorf("owner without user record should only carry id, got %+v", owners["owner-2"])
		}
	})

	t.Run("delete account cascades", func(t *testing.T) {
		f := newFixture(t)
		if err := f.putUser(ctx, User{ID: "owner-1", Name: "Ada"}); err != nil {
			t.Fatalf("put user: %v", err)
		}
		if err := f.putUser(ctx, User{ID: "owner-2", Name: "Bob"}); err != nil {
			t.Fatalf("put user: %v", err)
		}
		for _, post := range []Post{{ID: "p1", UserID: "owner-1"}, {ID: "p2", UserID: "owner-1"}, {ID: "p3", UserID: "owner-2"}} {
			if err := f.putPost(ctx, post); err != nil {
				t.Fatalf("put post: %v", err)
			}
		}
		if _, err := f.store.Upsert(ctx, "owner-1", Update{Status: strPtr("dev")}); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		if err := f.store.DeleteAccount(ctx, "owner-1"); err != nil {
			t.Fatalf("delete: %v", err)
		}

		if n, err := f.countPosts(ctx, "owner-1"); err != nil || n != 0 {
			t.Errorf("expected owner posts gone, got %d %v", n, err)
		}
		if n, err := f.countPosts(ctx, "owner-2"); err != nil || n != 1 {
			t.Errorf("expected other posts kept, got %d %v", n, err)
		}
		if _, err := f.store.Get(ctx, "owner-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected profile gone, got %v", err)
		}
		if ok, err := f.hasUser(ctx, "owner-1"); err != nil || ok {
			t.Errorf("expected user gone, got %v %v", ok, err)
		}
		if ok, err := f.hasUser(ctx, "owner-2"); err != nil || !ok {
			t.Errorf("expected other user kept, got %v %v", ok, err)
		}
	})

	t.Run("delete account without data succeeds", func(t *testing.T) {
		f := newFixture(t)
		if err := f.store.DeleteAccount(ctx, "ghost"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("concurrent prepends are not lost", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.store.Upsert(ctx, "owner-1", Update{Status: strPtr("dev")}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		var wg sync.WaitGroup
		errs := make(chan error, 2*f.writers)
		for i := range f.writers {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := f.store.PrependExperience(ctx, "owner-1", Experience{ID: fmt.Sprintf("e%d", i), Title: "T", Company: "C", From: entryDate(2020)})
				errs <- err
			}()
			go func() {
				defer wg.Done()
				_, err := f.store.PrependEducation(ctx, "owner-1", Education{ID: fmt.Sprintf("d%d", i), School: "S", Degree: "D", FieldOfStudy: "F", From: entryDate(2010)})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent mutation: %v", err)
			}
		}

		p, err := f.store.Get(ctx, "owner-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(p.Experience) != f.writers || len(p.Education) != f.writers {
			t.Fatalf("expected %d entries each, got %d experience and %d education",
				f.writers, len(p.Experience), len(p.Education))
		}
	})
}
