package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsDefineCreditTables(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected embedded migrations")
	}

	var all strings.Builder
	for _, e := range entries {
		raw, err := fs.ReadFile(migrationFiles, "migrations/"+e.Name())
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		body := string(raw)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", e.Name())
		}
		all.WriteString(body)
	}
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS profiles", "CREATE TABLE IF NOT EXISTS credit_grants", "payment_id TEXT PRIMARY KEY", "CHECK (credits >= 0)"} {
		if !strings.Contains(all.String(), want) {
			t.Fatalf("expected migrations to contain %q", want)
		}
	}
}
