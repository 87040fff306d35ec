package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "insight.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteCreatesSchema(t *testing.T) {
	s := testSQLite(t)

	for _, table := range []string{"result_sets", "articles"} {
		var count int
		err := s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestSQLiteCreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "insight.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

func TestSQLiteArticleFieldsRoundTrip(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	want := sampleSet(2)
	if _, err := s.Save(ctx, "fields", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	found, _, err := s.Load(ctx, []string{"fields"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := found["fields"]

	if got.Query != want.Query || got.FromDate != want.FromDate || got.ToDate != want.ToDate || got.OrderBy != want.OrderBy {
		t.Errorf("provenance fields = %q %q %q %q", got.Query, got.FromDate, got.ToDate, got.OrderBy)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if !reflect.DeepEqual(got.Articles, want.Articles) {
		t.Errorf("Articles = %+v, want %+v", got.Articles, want.Articles)
	}
}

func TestSQLiteReplaceRemovesOldArticles(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, "shrink", sampleSet(3)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Save(ctx, "shrink", sampleSet(1)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT count(*) FROM articles WHERE set_name = ?`, "shrink").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("article rows = %d, want 1 after replacement", count)
	}
}

func TestSQLitePreservesArticleOrder(t *testing.T) {
	s := testSQLite(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, "ordered", sampleSet(3)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	found, _, err := s.Load(ctx, []string{"ordered"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"31452104", "29320736", "27959684"}
	var got []string
	for _, a := range found["ordered"].Articles {
		got = append(got, a.PMID)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PMIDs = %v, want %v", got, want)
	}
}
