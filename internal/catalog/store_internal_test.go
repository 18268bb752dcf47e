package catalog

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"unique index hit", errors.New("constraint failed: UNIQUE constraint failed: videos.source_file_id (2067)"), true},
		{"not null violation", errors.New("constraint failed: NOT NULL constraint failed: videos.file_name (1299)"), false},
		{"check violation", errors.New("constraint failed: CHECK constraint failed: videos (275)"), false},
		{"unrelated error", errors.New("database is locked (5)"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("isUniqueViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
