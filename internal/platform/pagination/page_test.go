package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

func keys(n int) []string {
	out := make([]string, n)
	for i := range n {
		out[i] = fmt.Sprintf("user-%02d", i+1)
	}
	return out
}

func identity(s string) string { return s }

func TestApplyUnpagedReturnsEverything(t *testing.T) {
	items := keys(150)
	page, err := Apply(items, Params{}, "profile", identity, "/api/profile", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 150 {
		t.Fatalf("expected all 150 items, got %d", len(page.Items))
	}
	if page.Next != "" || page.Link != "" {
		t.Fatalf("expected no next link, got %q / %q", page.Next, page.Link)
	}
}

func TestApplyWalksAllPages(t *testing.T) {
	items := keys(7)
	var seen []string
	p := Params{Limit: 3}
	for range 5 {
		page, err := Apply(items, p, "profile", identity, "/api/profile", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen = append(seen, page.Items...)
		if page.Next == "" {
			break
		}
		p.Cursor = page.Next
	}
	if strings.Join(seen, ",") != strings.Join(items, ",") {
		t.Fatalf("pages did not cover items in order: %v", seen)
	}
}

func TestApplyLastPageHasNoLink(t *testing.T) {
	items := keys(4)
	page, err := Apply(items, Params{Limit: 4}, "profile", identity, "/api/profile", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Link != "" {
		t.Fatalf("expected no link on last page, got %q", page.Link)
	}
}

func TestApplyLinkPreservesQuery(t *testing.T) {
	items := keys(5)
	query := url.Values{"sort": {"created"}}
	page, err := Apply(items, Params{Limit: 2}, "profile", identity, "/api/profile", query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(page.Link, "</api/profile?") || !strings.HasSuffix(page.Link, `>; rel="next"`) {
		t.Fatalf("unexpected link %q", page.Link)
	}
	for _, want := range []string{"sort=created", "limit=2", "cursor=" + page.Next} {
		if !strings.Contains(page.Link, want) {
			t.Errorf("expected link to contain %q, got %q", want, page.Link)
		}
	}
	if _, ok := query["cursor"]; ok {
		t.Fatal("input query was modified")
	}
}

func TestApplyClampsLimit(t *testing.T) {
	items := keys(150)
	page, err := Apply(items, Params{Cursor: Cursor{Kind: "profile", Key: "user-01"}.Encode()}, "profile", identity, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != MaxLimit {
		t.Fatalf("expected %d items, got %d", MaxLimit, len(page.Items))
	}
	if page.Items[0] != "user-02" {
		t.Fatalf("expected page to start after cursor, got %s", page.Items[0])
	}
}

func TestApplyRejectsBadCursors(t *testing.T) {
	items := keys(3)
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "***"},
		{"no separator", "cHJvZmlsZQ"}, // "profile"
		{"wrong kind", Cursor{Kind: "post", Key: "user-01"}.Encode()},
		{"unknown key", Cursor{Kind: "profile", Key: "ghost"}.Encode()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(items, Params{Limit: 1, Cursor: tt.cursor}, "profile", identity, "", nil)
			if !errors.Is(err, ErrInvalidCursor) {
				t.Fatalf("expected ErrInvalidCursor, got %v", err)
			}
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{Kind: "profile", Key: "a:b"}
	got, err := DecodeCursor(c.Encode(), "profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != c {
		t.Fatalf("expected %+v, got %+v", c, got)
	}
}

func TestDecodeEmptyCursor(t *testing.T) {
	got, err := DecodeCursor("", "profile")
	if err != nil || got != (Cursor{}) {
		t.Fatalf("expected zero cursor, got %+v, %v", got, err)
	}
}
