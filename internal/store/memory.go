// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"sync"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// Memory is an in-process Store. It backs tests and serves as the
// reference implementation of the interface contract.
type Memory struct {
	mu   sync.Mutex
	sets map[string]*types.ResultSet
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sets: make(map[string]*types.ResultSet)}
}

// Save stores a copy of the set under the normalized name.
func (m *Memory) Save(_ context.Context, name string, set *types.ResultSet) (string, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	if set == nil || len(set.Articles) == 0 {
		return "", ErrEmptySet
	}

	record := *set
	record.Name = normalized
	record.Articles = append([]types.ArticleRecord(nil), set.Articles...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[normalized] = &record
	return normalized, nil
}

// Load returns the stored sets for the requested names.
func (m *Memory) Load(_ context.Context, names []string) (map[string]*types.ResultSet, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := make(map[string]*types.ResultSet)
	var missing []string
	for _, raw := range names {
		normalized, err := NormalizeName(raw)
		if err != nil {
			missing = append(missing, raw)
			continue
		}
		set, ok := m.sets[normalized]
		if !ok {
			missing = append(missing, raw)
			continue
		}
		found[raw] = set
	}
	return found, missing, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
