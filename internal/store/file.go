// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// FileStore keeps each result set as one YAML file in a flat directory.
// Files are self-describing: the set's name, query, and date range are
// stored alongside the articles, so a file can be read on its own.
type FileStore struct {
	dir string
}

// NewFile creates the store directory if needed and returns a FileStore
// rooted there.
func NewFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the set to [dir]/[name].yaml via a temp file renamed into
// place, so readers never observe a partially written set.
func (f *FileStore) Save(_ context.Context, name string, set *types.ResultSet) (string, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	if set == nil || len(set.Articles) == 0 {
		return "", ErrEmptySet
	}

	record := *set
	record.Name = normalized

	data, err := yaml.Marshal(&record)
	if err != nil {
		return "", fmt.Errorf("marshaling result set: %w", err)
	}

	tmpFile, err := os.CreateTemp(f.dir, ".store-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing result set: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, f.path(normalized)); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return normalized, nil
}

// Load reads each requested set from disk. A name that is invalid,
// absent, or does not parse is reported as missing rather than failing
// the whole load.
func (f *FileStore) Load(_ context.Context, names []string) (map[string]*types.ResultSet, []string, error) {
	found := make(map[string]*types.ResultSet)
	var missing []string
	for _, raw := range names {
		normalized, err := NormalizeName(raw)
		if err != nil {
			missing = append(missing, raw)
			continue
		}
		data, err := os.ReadFile(f.path(normalized))
		if err != nil {
			missing = append(missing, raw)
			continue
		}
		var set types.ResultSet
		if err := yaml.Unmarshal(data, &set); err != nil {
			missing = append(missing, raw)
			continue
		}
		found[raw] = &set
	}
	return found, missing, nil
}

// Close is a no-op; the file backend holds no open resources.
func (f *FileStore) Close() error { return nil }

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, name+".yaml")
}
