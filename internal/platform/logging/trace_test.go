package logging

import (
	"sync"
	"testing"
)

const validTraceparent = "00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01"

func TestParseTraceparent(t *testing.T) {
	tests := []struct {
		header  string
		ok      bool
		sampled bool
	}{
		{validTraceparent, true, true},
		{"00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-00", true, false},
		{"", false, false},
		{"garbage", false, false},
		{"00-short-d21f7bc17caa5aba-01", false, false},
	}
	for _, tt := range tests {
		tc, ok := parseTraceparent(tt.header)
		if ok != tt.ok {
			t.Errorf("%q: expected ok=%v, got %v", tt.header, tt.ok, ok)
			continue
		}
		if ok && tc.sampled != tt.sampled {
			t.Errorf("%q: expected sampled=%v", tt.header, tt.sampled)
		}
	}
}

func TestRequestFields(t *testing.T) {
	fields := requestFields(validTraceparent, "proj", "req-1")
	got := map[string]any{}
	for _, f := range fields {
		if f.String != "" {
			got[f.Key] = f.String
		} else {
			got[f.Key] = f.Integer == 1
		}
	}
	if got["logging.googleapis.com/trace"] != "projects/proj/traces/ab42124a3c573678d4d8b21ba52df3bf" {
		t.Errorf("unexpected trace field %v", got["logging.googleapis.com/trace"])
	}
	if got["logging.googleapis.com/spanId"] != "d21f7bc17caa5aba" {
		t.Errorf("unexpected span field %v", got["logging.googleapis.com/spanId"])
	}
	if got["logging.googleapis.com/trace_sampled"] != true {
		t.Errorf("expected sampled trace")
	}
	if got["requestId"] != "req-1" {
		t.Errorf("expected request id field")
	}

	if fields := requestFields(validTraceparent, "", ""); len(fields) != 0 {
		t.Errorf("expected no fields without project id, got %d", len(fields))
	}
}

func TestCorrelationID(t *testing.T) {
	if got := correlationID(validTraceparent, "proj", "req-1"); got != "projects/proj/traces/ab42124a3c573678d4d8b21ba52df3bf" {
		t.Errorf("expected trace resource, got %q", got)
	}
	if got := correlationID("bad", "proj", "req-1"); got != "req-1" {
		t.Errorf("expected request id fallback, got %q", got)
	}
}

func TestResolveProjectIDFromEnv(t *testing.T) {
	projectIDOnce = sync.Once{}
	cachedProjectID = ""
	t.Cleanup(func() {
		projectIDOnce = sync.Once{}
		cachedProjectID = ""
	})
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "gcp-proj")

	if got := resolveProjectID(); got != "gcp-proj" {
		t.Fatalf("expected gcp-proj, got %q", got)
	}
}
