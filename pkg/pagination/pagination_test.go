package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{in: -5, want: DefaultLimit},
		{in: 0, want: DefaultLimit},
		{in: 1, want: 1},
		{in: MaxLimit, want: MaxLimit},
		{in: MaxLimit + 1, want: MaxLimit},
	}
	for _, tt := range cases {
		if got := NormalizeLimit(tt.in); got != tt.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLimitWithBuffer(t *testing.T) {
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
	if got := LimitWithBuffer(0); got != DefaultLimit+1 {
		t.Fatalf("expected %d, got %d", DefaultLimit+1, got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 5, 17, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("ParseCursor returned unexpected error: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected a cursor, got nil")
	}
	if !parsed.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("expected created_at %s, got %s", original.CreatedAt, parsed.CreatedAt)
	}
	if parsed.ID != original.ID {
		t.Fatalf("expected id %s, got %s", original.ID, parsed.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("   ")
	if err != nil {
		t.Fatalf("expected no error for blank cursor, got %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor, got %+v", cursor)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	bad := []string{
		"%%%not-base64%%%",
		"bm8tcGlwZQ==",                 // decodes without a separator
		"bm90LWEtdGltZXw=",             // bad timestamp
		"MjAyNi0wNS0xN1QwOTozMDowMFo=", // timestamp without an id
	}
	for _, value := range bad {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for cursor %q", value)
		}
	}
}
