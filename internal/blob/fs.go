package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore keeps blobs as plain files in a single directory, the same layout
// the upload endpoint serves back over /uploads/.
type FSStore struct {
	dir string
}

// NewFSStore creates the directory if needed and returns a store rooted there.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FSStore{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *FSStore) Dir() string { return s.dir }

func (s *FSStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	// Base strips any path components a caller might smuggle into the name.
	location := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(location, data, 0o660); err != nil {
		return "", fmt.Errorf("write %s: %w", location, err)
	}
	return location, nil
}

func (s *FSStore) Read(ctx context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

func (s *FSStore) Delete(ctx context.Context, location string) error {
	err := os.Remove(location)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", location, err)
	}
	return nil
}
