// Package file stores the document as a single JSON file, replaced
// atomically through a temp file and rename.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/saminkc999/coinledger/internal/domain"
	"github.com/saminkc999/coinledger/internal/repos/document"
)

var _ document.Store = (*Store)(nil)

// Store versions writes in process memory, so it serializes writers of a
// single process only.
type Store struct {
	path    string
	mu      sync.Mutex
	version document.Version
}

// New prepares a store at path, creating its directory. An existing file is
// treated as already initialized.
func New(path string) (*Store, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}

	s := &Store{path: path}

	_, err = os.Stat(path)
	switch {
	case err == nil:
		s.version = 1
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("stat document: %w", err)
	}

	return s, nil
}

func (s *Store) Load(ctx context.Context) (domain.Document, document.Version, error) {
	err := ctx.Err()
	if err != nil {
		return domain.Document{}, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Document{}, s.version, nil
		}

		return domain.Document{}, 0, fmt.Errorf("read document: %w", err)
	}

	doc, err := document.Unmarshal(body)
	if err != nil {
		return domain.Document{}, 0, err
	}

	return doc, s.version, nil
}

func (s *Store) Save(ctx context.Context, doc domain.Document, expected document.Version) (document.Version, error) {
	err := ctx.Err()
	if err != nil {
		return 0, err
	}

	body, err := document.Marshal(doc)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != expected {
		return 0, document.ErrVersionConflict
	}

	err = writeAtomic(s.path, body)
	if err != nil {
		return 0, err
	}

	s.version++

	return s.version, nil
}

func (s *Store) Close() error {
	return nil
}

func writeAtomic(path string, body []byte) (retErr error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(body)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	err = tmp.Sync()
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("replace document: %w", err)
	}

	return nil
}
