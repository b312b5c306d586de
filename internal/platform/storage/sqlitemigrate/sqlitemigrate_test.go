package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_matches.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE matches(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE matches;"),
		},
	}

	if err := ApplyMigrations(db, migrations, ""); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("migration rows = %d, want 1", rows)
	}
	if !tableExists(t, db, "matches") {
		t.Fatal("expected matches table to exist")
	}
}

func TestApplyMigrationsSkipsAlreadyApplied(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"001_matches.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE matches(id TEXT PRIMARY KEY);"),
		},
	}
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(db, migrations, ""); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("migration rows after replay = %d, want 1", rows)
	}
}

func TestApplyMigrationsDoesNotRecordFailedMigration(t *testing.T) {
	db := openInMemoryDB(t)

	bad := fstest.MapFS{
		"001_rounds.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREAT TABLE rounds(id INT);"),
		},
	}
	if err := ApplyMigrations(db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 0 {
		t.Fatalf("failed migration recorded %d rows", rows)
	}

	good := fstest.MapFS{
		"001_rounds.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE rounds(id INTEGER PRIMARY KEY);"),
		},
	}
	if err := ApplyMigrations(db, good, ""); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
	if rows := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); rows != 1 {
		t.Fatalf("fixed migration rows = %d, want 1", rows)
	}
}

func TestApplyMigrationsRespectsMigrationRoot(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"archive/001_matches.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE archived(id TEXT PRIMARY KEY);"),
		},
	}
	if err := ApplyMigrations(db, migrations, "archive"); err != nil {
		t.Fatalf("apply migrations with root: %v", err)
	}

	applied, err := Applied(context.Background(), db)
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if !reflect.DeepEqual(applied, []string{"archive/001_matches.sql"}) {
		t.Fatalf("applied = %v", applied)
	}
	if !tableExists(t, db, "archived") {
		t.Fatal("expected migrated table in root-based migration")
	}
}

func TestApplyMigrationsContextCanceled(t *testing.T) {
	db := openInMemoryDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	migrations := fstest.MapFS{
		"001_matches.sql": &fstest.MapFile{Data: []byte("CREATE TABLE matches(id TEXT);")},
	}
	if err := ApplyMigrationsContext(ctx, db, migrations, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestLoadOrdersAndSkipsBlankFiles(t *testing.T) {
	migrations := fstest.MapFS{
		"002_rounds.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE rounds(id INT);")},
		"001_matches.sql": &fstest.MapFile{Data: []byte("CREATE TABLE matches(id TEXT);")},
		"003_blank.sql":   &fstest.MapFile{Data: []byte("-- +migrate Up\n\n-- +migrate Down\nDROP TABLE x;")},
		"README.md":       &fstest.MapFile{Data: []byte("notes")},
	}

	got, err := Load(migrations, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].Name != "001_matches.sql" || got[1].Name != "002_rounds.sql" {
		t.Fatalf("loaded = %+v", got)
	}
}

func TestExtractUpMigration(t *testing.T) {
	tcs := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a(id INT);", want: "CREATE TABLE a(id INT);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(id INT);", want: "CREATE TABLE a(id INT);"},
		{name: "up and down", content: "-- +migrate Up\nCREATE TABLE a(id INT);\n-- +migrate Down\nDROP TABLE a;", want: "CREATE TABLE a(id INT);"},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := strings.TrimSpace(ExtractUpMigration(tc.content)); got != tc.want {
				t.Fatalf("ExtractUpMigration = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if IsAlreadyExistsError(nil) {
		t.Fatal("nil error reported as already exists")
	}
	if !IsAlreadyExistsError(errors.New("table matches already exists")) {
		t.Fatal("expected already exists match")
	}
	if IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("unexpected already exists match")
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query int value: %v", err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		t.Fatalf("check table exists: %v", err)
	}
	return name == tableName
}
