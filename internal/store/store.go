// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists named result sets and loads them back for the
// downstream tools. Backends share one contract: saves are atomic, loads
// report which names were found and which were not, and a set with no
// articles is never persisted.
package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// ErrInvalidName reports a result-set name that no backend will accept.
var ErrInvalidName = errors.New("invalid result name")

// ErrEmptySet reports an attempt to persist a set with no articles.
var ErrEmptySet = errors.New("result set has no articles")

// namePattern constrains stored names to a single path segment.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store is the persistence contract shared by all backends.
type Store interface {
	// Save persists the set under name and returns the normalized name
	// it was stored as. Saving an existing name replaces the old set.
	Save(ctx context.Context, name string, set *types.ResultSet) (string, error)

	// Load fetches the named sets. It returns the found sets keyed by
	// the name they were requested under, plus the names that could not
	// be loaded. Only a backend-wide failure returns an error; a name
	// that is absent, malformed, or unreadable just lands in missing.
	Load(ctx context.Context, names []string) (map[string]*types.ResultSet, []string, error)

	// Close releases backend resources.
	Close() error
}

// NormalizeName strips a trailing .yaml extension and validates that the
// remainder is a plain single-segment name. Callers may therefore refer
// to a set either by its bare name or by the filename the file backend
// gives it.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".yaml")
	if name == "" || name == "." || name == ".." || !namePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// DefaultName derives a stable name for a fetch result from the query,
// the article count, and the fetch date, e.g.
// "pubmed_20260823_3f2a9c01_12articles".
func DefaultName(query string, count int, now time.Time) string {
	hash := "noquery"
	if query != "" {
		sum := sha1.Sum([]byte(query))
		hash = hex.EncodeToString(sum[:])[:8]
	}
	return fmt.Sprintf("pubmed_%s_%s_%darticles", now.Format("20060102"), hash, count)
}
