package timeutil

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTimeMarshalJSONFixedMillis(t *testing.T) {
	ts := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("EET", 2*3600)))
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `"2024-01-15T08:30:00.000Z"`; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestTimeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{`"2020-03-01"`, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)},
		{`"2020-03-01T12:00:00Z"`, time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)},
		{`"2020-03-01T12:00:00.123456+02:00"`, time.Date(2020, 3, 1, 10, 0, 0, 123456000, time.UTC)},
	}
	for _, tt := range tests {
		var ts Time
		if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.input, err)
		}
		if !ts.Equal(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.input, tt.want, ts.Time)
		}
	}
}

func TestTimeUnmarshalNullPreservesValue(t *testing.T) {
	orig := time.Date(2021, 5, 5, 0, 0, 0, 0, time.UTC)
	ts := NewTime(orig)
	if err := json.Unmarshal([]byte("null"), &ts); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !ts.Equal(orig) {
		t.Fatalf("expected value preserved, got %v", ts.Time)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "  ", "yesterday", "2020-13-01", "01/02/2020"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("%q: expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestNewTimePtr(t *testing.T) {
	if NewTimePtr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
	now := time.Now()
	if got := NewTimePtr(&now); got == nil || !got.Equal(now) {
		t.Fatalf("expected wrapped time, got %v", got)
	}
}
