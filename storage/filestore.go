package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirFileStore implements FileStore over a local directory.
// Locators are paths relative to the store's root.
type DirFileStore struct {
	root string
}

// NewDirFileStore creates a file store rooted at the given directory.
func NewDirFileStore(root string) (*DirFileStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return &DirFileStore{root: root}, nil
}

// Fetch reads the document at the locator, relative to the root.
// Locators escaping the root are rejected.
func (s *DirFileStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	clean := filepath.Clean(locator)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
	}

	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return nil, err
	}
	return data, nil
}
