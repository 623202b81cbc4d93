package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AssetStore lists and fetches card artwork laid out as
// <category>/<series>/<image>. Listings come back sorted so catalog
// ingestion sees the same order on every backend.
type AssetStore interface {
	Categories(ctx context.Context) ([]string, error)
	Series(ctx context.Context, category string) ([]string, error)
	Images(ctx context.Context, category, series string) ([]string, error)
	Fetch(ctx context.Context, category, series, filename string) ([]byte, error)
}

// LocalStore serves assets from a directory tree on disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Categories(ctx context.Context) ([]string, error) {
	return s.listDirs(s.root)
}

func (s *LocalStore) Series(ctx context.Context, category string) ([]string, error) {
	return s.listDirs(filepath.Join(s.root, category))
}

func (s *LocalStore) Images(ctx context.Context, category, series string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, category, series))
	if err != nil {
		return nil, fmt.Errorf("failed to list images for %s/%s: %w", category, series, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) Fetch(ctx context.Context, category, series, filename string) ([]byte, error) {
	// Reject anything that could climb out of the asset root.
	for _, part := range []string{category, series, filename} {
		if strings.Contains(part, "..") || strings.ContainsRune(part, os.PathSeparator) {
			return nil, fmt.Errorf("invalid asset path component: %q", part)
		}
	}

	data, err := os.ReadFile(filepath.Join(s.root, category, series, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s/%s/%s: %w", category, series, filename, err)
	}
	return data, nil
}

func (s *LocalStore) listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
