package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/target/spotify-auth/internal/ports"
)

// FileStore persists entries as a YAML document mapping scopes to key/value pairs.
// Every Apply rewrites the file through a temporary file and rename.
type FileStore struct {
	path string

	mu     sync.RWMutex
	scopes map[string]map[string]string
}

var _ ports.KeyValueStore = (*FileStore)(nil)

// OpenFileStore loads path, treating a missing file as an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path cannot be empty")
	}
	s := &FileStore{path: path, scopes: make(map[string]map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s.scopes); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.scopes == nil {
		s.scopes = make(map[string]map[string]string)
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Get returns the value stored under key in scope.
func (s *FileStore) Get(_ context.Context, scope, key string) (string, bool, error) {
	if err := validateKey(scope, key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.scopes[scope][key]
	return v, ok, nil
}

// Keys lists the keys of scope in sorted order.
func (s *FileStore) Keys(_ context.Context, scope string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.scopes[scope]), nil
}

// Apply writes the mutations and flushes the document. On a failed flush the
// in-memory state is left unchanged.
func (s *FileStore) Apply(ctx context.Context, scope string, mutations ...ports.Mutation) error {
	if err := validateMutations(scope, mutations); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneScopes(s.scopes)
	applyMutations(next, scope, mutations)
	if err := s.flush(next); err != nil {
		return err
	}
	s.scopes = next
	return nil
}

func (s *FileStore) flush(scopes map[string]map[string]string) error {
	out, err := yaml.Marshal(scopes)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
