package main

import (
	"reflect"
	"testing"
)

func TestDescriptionFromFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-10-01-001-create-users.sql", "create users"},
		{"2026-10-01-004-create-meal-log-items.sql", "create meal log items"},
		{"no-prefix.sql", "no prefix"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := descriptionFromFilename(tc.in); got != tc.want {
				t.Errorf("descriptionFromFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPendingMigrations(t *testing.T) {
	files := []string{
		"db/2026-10-01-003-create-weight-log.sql",
		"db/2026-10-01-001-create-migrations.sql",
		"db/2026-10-01-002-create-users.sql",
	}
	applied := map[string]bool{"2026-10-01-001-create-migrations.sql": true}

	got := pendingMigrations(files, applied)
	want := []string{
		"db/2026-10-01-002-create-users.sql",
		"db/2026-10-01-003-create-weight-log.sql",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pending = %v, want %v", got, want)
	}
	if files[0] != "db/2026-10-01-003-create-weight-log.sql" {
		t.Error("input slice was reordered")
	}
}
