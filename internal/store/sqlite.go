// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// SQLiteStore persists result sets in a single SQLite database, one row
// per set plus one row per article. Replacing a set and its articles
// happens in one transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at path and ensures the schema
// exists.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS result_sets (
			name TEXT PRIMARY KEY,
			query TEXT,
			from_date TEXT,
			to_date TEXT,
			order_by TEXT,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			set_name TEXT NOT NULL REFERENCES result_sets(name) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			pmid TEXT,
			title TEXT,
			abstract TEXT,
			authors TEXT,
			journal TEXT,
			pub_date TEXT,
			doi TEXT,
			keywords TEXT,
			PRIMARY KEY (set_name, seq)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save upserts the set row and rewrites its articles in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, name string, set *types.ResultSet) (string, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	if set == nil || len(set.Articles) == 0 {
		return "", ErrEmptySet
	}

	createdAt := set.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO result_sets (name, query, from_date, to_date, order_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			query=excluded.query, from_date=excluded.from_date,
			to_date=excluded.to_date, order_by=excluded.order_by,
			created_at=excluded.created_at`,
		normalized, set.Query, set.FromDate, set.ToDate, set.OrderBy,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("upserting result set: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE set_name = ?`, normalized); err != nil {
		return "", fmt.Errorf("deleting old articles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (set_name, seq, pmid, title, abstract, authors, journal, pub_date, doi, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range set.Articles {
		authorsJSON, _ := json.Marshal(a.Authors)
		keywordsJSON, _ := json.Marshal(a.Keywords)
		_, err := stmt.ExecContext(ctx,
			normalized, i, a.PMID, a.Title, a.Abstract, string(authorsJSON),
			a.Journal, a.PubDate, a.DOI, string(keywordsJSON),
		)
		if err != nil {
			return "", fmt.Errorf("inserting article %s: %w", a.PMID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing result set: %w", err)
	}
	return normalized, nil
}

// Load fetches each requested set. Unknown and invalid names land in
// missing; database failures abort the whole load.
func (s *SQLiteStore) Load(ctx context.Context, names []string) (map[string]*types.ResultSet, []string, error) {
	found := make(map[string]*types.ResultSet)
	var missing []string
	for _, raw := range names {
		normalized, err := NormalizeName(raw)
		if err != nil {
			missing = append(missing, raw)
			continue
		}
		set, err := s.loadOne(ctx, normalized)
		if errors.Is(err, sql.ErrNoRows) {
			missing = append(missing, raw)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		found[raw] = set
	}
	return found, missing, nil
}

func (s *SQLiteStore) loadOne(ctx context.Context, name string) (*types.ResultSet, error) {
	set := &types.ResultSet{Name: name}
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT query, from_date, to_date, order_by, created_at FROM result_sets WHERE name = ?`, name,
	).Scan(&set.Query, &set.FromDate, &set.ToDate, &set.OrderBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("loading result set %s: %w", name, err)
	}
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		set.CreatedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pmid, title, abstract, authors, journal, pub_date, doi, keywords
		 FROM articles WHERE set_name = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("loading articles for %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a types.ArticleRecord
		var authorsJSON, keywordsJSON string
		if err := rows.Scan(&a.PMID, &a.Title, &a.Abstract, &authorsJSON,
			&a.Journal, &a.PubDate, &a.DOI, &keywordsJSON); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &a.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors for %s: %w", a.PMID, err)
		}
		if err := json.Unmarshal([]byte(keywordsJSON), &a.Keywords); err != nil {
			return nil, fmt.Errorf("decoding keywords for %s: %w", a.PMID, err)
		}
		set.Articles = append(set.Articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return set, nil
}
